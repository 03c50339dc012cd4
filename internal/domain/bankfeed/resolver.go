package bankfeed

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/bankfeed/internal/domain/shared"
	"github.com/google/uuid"
)

// AccountResolver maps an external account identifier to the bank journal
// that should receive the statement line.
type AccountResolver struct {
	mappings BankAccountMappingRepository
	journals JournalRepository
	// companyID is the operating company; nil skips the company-scoped lookup
	companyID *uuid.UUID
}

// NewAccountResolver creates a resolver
func NewAccountResolver(mappings BankAccountMappingRepository, journals JournalRepository, companyID *uuid.UUID) *AccountResolver {
	return &AccountResolver{
		mappings:  mappings,
		journals:  journals,
		companyID: companyID,
	}
}

// Resolve returns the journal for identifier. First match wins:
//  1. active mapping in the operating company
//  2. active mapping in any company, oldest first
//  3. the configured default journal, which must be a bank journal
//  4. an active bank journal registered with the identifier as account number
//
// Anything else is a configuration error.
func (r *AccountResolver) Resolve(ctx context.Context, identifier string, settings Settings) (*Journal, error) {
	if r.companyID != nil {
		journal, err := r.fromMappings(ctx, identifier, r.companyID)
		if err != nil || journal != nil {
			return journal, err
		}
	}

	journal, err := r.fromMappings(ctx, identifier, nil)
	if err != nil || journal != nil {
		return journal, err
	}

	if settings.DefaultJournalID != nil {
		journal, err := r.journals.FindByID(ctx, *settings.DefaultJournalID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, NewConfigurationError("Configured default journal %s does not exist.", settings.DefaultJournalID.String())
			}
			return nil, fmt.Errorf("load default journal: %w", err)
		}
		if !journal.IsBank() {
			return nil, NewConfigurationError("Configured default journal must be of type 'bank'.")
		}
		return journal, nil
	}

	journal, err = r.journals.FindActiveBankByAccountNumber(ctx, identifier)
	if err == nil {
		return journal, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("find journal by account number: %w", err)
	}

	return nil, NewConfigurationError(
		"Cannot resolve bank journal for account identifier '%s'. Set system parameter '%s' to a Bank journal ID.",
		identifier, ParamDefaultJournalID,
	)
}

// fromMappings walks the active mappings for identifier and returns the first
// whose journal is still an active bank journal.
func (r *AccountResolver) fromMappings(ctx context.Context, identifier string, companyID *uuid.UUID) (*Journal, error) {
	mappings, err := r.mappings.FindActive(ctx, identifier, companyID)
	if err != nil {
		return nil, fmt.Errorf("find mappings: %w", err)
	}
	for _, m := range mappings {
		journal, err := r.journals.FindByID(ctx, m.JournalID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("load mapped journal: %w", err)
		}
		if journal.Active && journal.IsBank() {
			return journal, nil
		}
	}
	return nil, nil
}
