package bankfeed

import (
	"context"
	"sync"

	"github.com/erp/bankfeed/internal/domain/bankfeed"
	"github.com/erp/bankfeed/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockStatementLineRepository is a mock implementation of StatementLineRepository
type MockStatementLineRepository struct {
	mock.Mock
}

func (m *MockStatementLineRepository) FindByExternalID(ctx context.Context, externalID string) (*bankfeed.StatementLine, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bankfeed.StatementLine), args.Error(1)
}

func (m *MockStatementLineRepository) Create(ctx context.Context, line *bankfeed.StatementLine) error {
	args := m.Called(ctx, line)
	return args.Error(0)
}

// MockJournalRepository is a mock implementation of JournalRepository
type MockJournalRepository struct {
	mock.Mock
}

func (m *MockJournalRepository) FindByID(ctx context.Context, id uuid.UUID) (*bankfeed.Journal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bankfeed.Journal), args.Error(1)
}

func (m *MockJournalRepository) FindActiveBankByAccountNumber(ctx context.Context, accountNumber string) (*bankfeed.Journal, error) {
	args := m.Called(ctx, accountNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bankfeed.Journal), args.Error(1)
}

func (m *MockJournalRepository) FindAll(ctx context.Context, companyID *uuid.UUID) ([]*bankfeed.Journal, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).([]*bankfeed.Journal), args.Error(1)
}

func (m *MockJournalRepository) Save(ctx context.Context, journal *bankfeed.Journal) error {
	args := m.Called(ctx, journal)
	return args.Error(0)
}

// MockMappingRepository is a mock implementation of BankAccountMappingRepository
type MockMappingRepository struct {
	mock.Mock
}

func (m *MockMappingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bankfeed.BankAccountMapping, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bankfeed.BankAccountMapping), args.Error(1)
}

func (m *MockMappingRepository) FindActive(ctx context.Context, identifier string, companyID *uuid.UUID) ([]*bankfeed.BankAccountMapping, error) {
	args := m.Called(ctx, identifier, companyID)
	return args.Get(0).([]*bankfeed.BankAccountMapping), args.Error(1)
}

func (m *MockMappingRepository) FindAll(ctx context.Context, filter bankfeed.MappingFilter) ([]*bankfeed.BankAccountMapping, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*bankfeed.BankAccountMapping), args.Error(1)
}

func (m *MockMappingRepository) Save(ctx context.Context, mapping *bankfeed.BankAccountMapping) error {
	args := m.Called(ctx, mapping)
	return args.Error(0)
}

// MockConfigParameterRepository is a mock implementation of ConfigParameterRepository
type MockConfigParameterRepository struct {
	mock.Mock
}

func (m *MockConfigParameterRepository) GetAll(ctx context.Context) (map[string]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockConfigParameterRepository) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// MockJournalResolver is a mock implementation of JournalResolver
type MockJournalResolver struct {
	mock.Mock
}

func (m *MockJournalResolver) Resolve(ctx context.Context, identifier string, settings bankfeed.Settings) (*bankfeed.Journal, error) {
	args := m.Called(ctx, identifier, settings)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bankfeed.Journal), args.Error(1)
}

// memoryLines enforces the external id uniqueness of the real table
type memoryLines struct {
	mu    sync.Mutex
	lines map[string]*bankfeed.StatementLine
}

func newMemoryLines() *memoryLines {
	return &memoryLines{lines: make(map[string]*bankfeed.StatementLine)}
}

func (r *memoryLines) FindByExternalID(_ context.Context, externalID string) (*bankfeed.StatementLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if line, ok := r.lines[externalID]; ok {
		return line, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memoryLines) Create(_ context.Context, line *bankfeed.StatementLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lines[line.ExternalID]; ok {
		return bankfeed.ErrDuplicateExternalID
	}
	r.lines[line.ExternalID] = line
	return nil
}

func (r *memoryLines) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lines)
}
