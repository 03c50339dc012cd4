package bankfeed

import (
	"fmt"

	"github.com/erp/bankfeed/internal/domain/shared"
)

// ErrDuplicateExternalID is returned by repositories when the unique constraint
// on the external transaction id rejects an insert.
var ErrDuplicateExternalID = shared.NewDomainError(shared.CodeAlreadyExists, "A bank statement line with this external id already exists")

// ErrDuplicateMapping is returned when a mapping for the same identifier already
// exists in the journal's company.
var ErrDuplicateMapping = shared.NewDomainError(shared.CodeAlreadyExists, "Mapping for this account identifier already exists in this company")

// NewValidationError reports a missing or malformed transaction field.
func NewValidationError(message string) *shared.DomainError {
	return shared.NewDomainError(shared.CodeValidation, message)
}

// NewConfigurationError reports a deployment problem such as an unresolvable journal.
func NewConfigurationError(format string, args ...any) *shared.DomainError {
	return shared.NewDomainError(shared.CodeConfiguration, fmt.Sprintf(format, args...))
}
