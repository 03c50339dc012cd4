package persistence

import (
	"context"
	"errors"

	"github.com/erp/bankfeed/internal/domain/bankfeed"
	"github.com/erp/bankfeed/internal/domain/shared"
	"github.com/erp/bankfeed/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormJournalRepository implements bankfeed.JournalRepository using GORM
type GormJournalRepository struct {
	db *gorm.DB
}

// NewGormJournalRepository creates a new GormJournalRepository
func NewGormJournalRepository(db *gorm.DB) *GormJournalRepository {
	return &GormJournalRepository{db: db}
}

// FindByID finds a journal by its ID
func (r *GormJournalRepository) FindByID(ctx context.Context, id uuid.UUID) (*bankfeed.Journal, error) {
	var model models.JournalModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveBankByAccountNumber finds the oldest active bank journal registered
// with accountNumber
func (r *GormJournalRepository) FindActiveBankByAccountNumber(ctx context.Context, accountNumber string) (*bankfeed.Journal, error) {
	if accountNumber == "" {
		return nil, shared.ErrNotFound
	}
	var model models.JournalModel
	err := r.db.WithContext(ctx).
		Where("type = ? AND active = ? AND bank_account_number = ?", bankfeed.JournalTypeBank, true, accountNumber).
		Order("created_at ASC").
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists journals, optionally restricted to one company
func (r *GormJournalRepository) FindAll(ctx context.Context, companyID *uuid.UUID) ([]*bankfeed.Journal, error) {
	query := r.db.WithContext(ctx).Model(&models.JournalModel{})
	if companyID != nil {
		query = query.Where("company_id = ?", *companyID)
	}

	var rows []models.JournalModel
	if err := query.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	journals := make([]*bankfeed.Journal, len(rows))
	for i := range rows {
		journals[i] = rows[i].ToDomain()
	}
	return journals, nil
}

// Save creates or updates a journal
func (r *GormJournalRepository) Save(ctx context.Context, journal *bankfeed.Journal) error {
	var model models.JournalModel
	model.FromDomain(journal)
	return r.db.WithContext(ctx).Save(&model).Error
}
