package persistence

import (
	"context"
	"errors"

	"github.com/erp/bankfeed/internal/domain/bankfeed"
	"github.com/erp/bankfeed/internal/domain/shared"
	"github.com/erp/bankfeed/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormStatementLineRepository implements bankfeed.StatementLineRepository using GORM.
// The *gorm.DB must be opened with TranslateError so that unique violations
// surface as gorm.ErrDuplicatedKey.
type GormStatementLineRepository struct {
	db *gorm.DB
}

// NewGormStatementLineRepository creates a new GormStatementLineRepository
func NewGormStatementLineRepository(db *gorm.DB) *GormStatementLineRepository {
	return &GormStatementLineRepository{db: db}
}

// FindByExternalID finds the line created for a provider transaction id
func (r *GormStatementLineRepository) FindByExternalID(ctx context.Context, externalID string) (*bankfeed.StatementLine, error) {
	var model models.StatementLineModel
	if err := r.db.WithContext(ctx).First(&model, "external_id = ?", externalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts a line. The uniq_tw_casso_id constraint turns a racing
// second insert into bankfeed.ErrDuplicateExternalID.
func (r *GormStatementLineRepository) Create(ctx context.Context, line *bankfeed.StatementLine) error {
	model := models.StatementLineModelFromDomain(line)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return bankfeed.ErrDuplicateExternalID
		}
		return err
	}
	return nil
}
