package bankfeed

import (
	"context"
	"fmt"

	"github.com/erp/bankfeed/internal/domain/bankfeed"
	"github.com/erp/bankfeed/internal/domain/shared"
	"github.com/google/uuid"
)

// AdminService manages journals, account mappings and webhook parameters
type AdminService struct {
	journals bankfeed.JournalRepository
	mappings bankfeed.BankAccountMappingRepository
	lines    bankfeed.StatementLineRepository
	params   bankfeed.ConfigParameterRepository
}

// NewAdminService creates a new AdminService
func NewAdminService(
	journals bankfeed.JournalRepository,
	mappings bankfeed.BankAccountMappingRepository,
	lines bankfeed.StatementLineRepository,
	params bankfeed.ConfigParameterRepository,
) *AdminService {
	return &AdminService{
		journals: journals,
		mappings: mappings,
		lines:    lines,
		params:   params,
	}
}

// CreateJournal registers a journal
func (s *AdminService) CreateJournal(ctx context.Context, req CreateJournalRequest) (*JournalResponse, error) {
	journal, err := bankfeed.NewJournal(req.CompanyID, req.Name, req.Code, bankfeed.JournalType(req.Type), req.BankAccountNumber)
	if err != nil {
		return nil, err
	}
	if err := s.journals.Save(ctx, journal); err != nil {
		return nil, err
	}
	resp := ToJournalResponse(journal)
	return &resp, nil
}

// ListJournals lists journals, optionally of one company
func (s *AdminService) ListJournals(ctx context.Context, companyID *uuid.UUID) ([]JournalResponse, error) {
	journals, err := s.journals.FindAll(ctx, companyID)
	if err != nil {
		return nil, err
	}
	responses := make([]JournalResponse, len(journals))
	for i, j := range journals {
		responses[i] = ToJournalResponse(j)
	}
	return responses, nil
}

// CreateMapping routes an account identifier to a bank journal. The journal
// must exist and be of type bank; the company is taken from the journal.
func (s *AdminService) CreateMapping(ctx context.Context, req CreateMappingRequest) (*MappingResponse, error) {
	journal, err := s.journals.FindByID(ctx, req.JournalID)
	if err != nil {
		return nil, err
	}
	mapping, err := bankfeed.NewBankAccountMapping(req.ExternalAccountIdentifier, journal)
	if err != nil {
		return nil, err
	}
	if err := s.mappings.Save(ctx, mapping); err != nil {
		return nil, err
	}
	resp := ToMappingResponse(mapping)
	return &resp, nil
}

// ListMappings lists mappings matching filter, oldest first
func (s *AdminService) ListMappings(ctx context.Context, filter MappingListFilter) ([]MappingResponse, error) {
	mappings, err := s.mappings.FindAll(ctx, bankfeed.MappingFilter{
		Identifier: filter.Identifier,
		CompanyID:  filter.CompanyID,
		ActiveOnly: filter.ActiveOnly,
	})
	if err != nil {
		return nil, err
	}
	responses := make([]MappingResponse, len(mappings))
	for i, m := range mappings {
		responses[i] = ToMappingResponse(m)
	}
	return responses, nil
}

// ActivateMapping puts a mapping back into routing. Reactivating can collide
// with another active mapping for the same identifier and company.
func (s *AdminService) ActivateMapping(ctx context.Context, id uuid.UUID) (*MappingResponse, error) {
	return s.toggleMapping(ctx, id, true)
}

// DeactivateMapping removes a mapping from routing
func (s *AdminService) DeactivateMapping(ctx context.Context, id uuid.UUID) (*MappingResponse, error) {
	return s.toggleMapping(ctx, id, false)
}

func (s *AdminService) toggleMapping(ctx context.Context, id uuid.UUID, active bool) (*MappingResponse, error) {
	mapping, err := s.mappings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if mapping.Active == active {
		resp := ToMappingResponse(mapping)
		return &resp, nil
	}
	if active {
		mapping.Activate()
	} else {
		mapping.Deactivate()
	}
	if err := s.mappings.Save(ctx, mapping); err != nil {
		return nil, err
	}
	resp := ToMappingResponse(mapping)
	return &resp, nil
}

// GetStatementLine looks a line up by provider transaction id
func (s *AdminService) GetStatementLine(ctx context.Context, externalID string) (*StatementLineResponse, error) {
	line, err := s.lines.FindByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	resp := ToStatementLineResponse(line)
	return &resp, nil
}

// SetParameter stores one of the transaction_webhook.* parameters
func (s *AdminService) SetParameter(ctx context.Context, key string, req SetParameterRequest) (*ParameterResponse, error) {
	if !bankfeed.IsKnownParam(key) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Unknown parameter '%s'", key))
	}
	if key == bankfeed.ParamDefaultJournalID && req.Value != "" {
		id, err := uuid.Parse(req.Value)
		if err != nil {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Default journal id must be a UUID")
		}
		journal, err := s.journals.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if !journal.IsBank() {
			return nil, shared.NewDomainError(shared.CodeBusinessRule, "Default journal must be of type 'bank'")
		}
	}
	if err := s.params.Set(ctx, key, req.Value); err != nil {
		return nil, err
	}

	resp := &ParameterResponse{Key: key, Value: req.Value}
	if key == bankfeed.ParamHMACSecret {
		resp.Value = ""
	}
	return resp, nil
}
