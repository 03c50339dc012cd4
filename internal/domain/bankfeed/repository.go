package bankfeed

import (
	"context"

	"github.com/google/uuid"
)

// StatementLineRepository persists statement lines
type StatementLineRepository interface {
	// FindByExternalID returns the line created for a provider transaction id,
	// or shared.ErrNotFound
	FindByExternalID(ctx context.Context, externalID string) (*StatementLine, error)

	// Create inserts a new line. A line with the same external id already
	// present yields ErrDuplicateExternalID.
	Create(ctx context.Context, line *StatementLine) error
}

// JournalRepository defines the interface for journal persistence
type JournalRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Journal, error)

	// FindActiveBankByAccountNumber finds an active bank journal whose registered
	// bank account number equals accountNumber
	FindActiveBankByAccountNumber(ctx context.Context, accountNumber string) (*Journal, error)

	FindAll(ctx context.Context, companyID *uuid.UUID) ([]*Journal, error)
	Save(ctx context.Context, journal *Journal) error
}

// MappingFilter narrows mapping listings
type MappingFilter struct {
	Identifier string
	CompanyID  *uuid.UUID
	ActiveOnly bool
}

// BankAccountMappingRepository defines the interface for mapping persistence
type BankAccountMappingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BankAccountMapping, error)

	// FindActive returns active mappings for identifier, oldest first. A nil
	// companyID matches every company.
	FindActive(ctx context.Context, identifier string, companyID *uuid.UUID) ([]*BankAccountMapping, error)

	FindAll(ctx context.Context, filter MappingFilter) ([]*BankAccountMapping, error)

	// Save creates or updates a mapping. A second mapping for the same
	// identifier and company yields ErrDuplicateMapping.
	Save(ctx context.Context, mapping *BankAccountMapping) error
}

// ConfigParameterRepository is the operator-managed key/value store
type ConfigParameterRepository interface {
	// GetAll returns every stored parameter keyed by name
	GetAll(ctx context.Context) (map[string]string, error)
	Set(ctx context.Context, key, value string) error
}
