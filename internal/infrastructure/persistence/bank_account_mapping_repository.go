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

// GormBankAccountMappingRepository implements bankfeed.BankAccountMappingRepository using GORM
type GormBankAccountMappingRepository struct {
	db *gorm.DB
}

// NewGormBankAccountMappingRepository creates a new GormBankAccountMappingRepository
func NewGormBankAccountMappingRepository(db *gorm.DB) *GormBankAccountMappingRepository {
	return &GormBankAccountMappingRepository{db: db}
}

// FindByID finds a mapping by its ID
func (r *GormBankAccountMappingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bankfeed.BankAccountMapping, error) {
	var model models.BankAccountMappingModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActive returns the active mappings of identifier, oldest first
func (r *GormBankAccountMappingRepository) FindActive(ctx context.Context, identifier string, companyID *uuid.UUID) ([]*bankfeed.BankAccountMapping, error) {
	return r.FindAll(ctx, bankfeed.MappingFilter{
		Identifier: identifier,
		CompanyID:  companyID,
		ActiveOnly: true,
	})
}

// FindAll lists mappings matching filter, oldest first
func (r *GormBankAccountMappingRepository) FindAll(ctx context.Context, filter bankfeed.MappingFilter) ([]*bankfeed.BankAccountMapping, error) {
	query := r.db.WithContext(ctx).Model(&models.BankAccountMappingModel{})
	if filter.Identifier != "" {
		query = query.Where("external_account_identifier = ?", filter.Identifier)
	}
	if filter.CompanyID != nil {
		query = query.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.ActiveOnly {
		query = query.Where("active = ?", true)
	}

	var rows []models.BankAccountMappingModel
	if err := query.Order("created_at ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	mappings := make([]*bankfeed.BankAccountMapping, len(rows))
	for i := range rows {
		mappings[i] = rows[i].ToDomain()
	}
	return mappings, nil
}

// Save creates or updates a mapping
func (r *GormBankAccountMappingRepository) Save(ctx context.Context, mapping *bankfeed.BankAccountMapping) error {
	var model models.BankAccountMappingModel
	model.FromDomain(mapping)
	if err := r.db.WithContext(ctx).Save(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return bankfeed.ErrDuplicateMapping
		}
		return err
	}
	return nil
}
