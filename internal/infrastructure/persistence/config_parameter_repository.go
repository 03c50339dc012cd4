package persistence

import (
	"context"
	"time"

	"github.com/erp/bankfeed/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormConfigParameterRepository implements bankfeed.ConfigParameterRepository using GORM
type GormConfigParameterRepository struct {
	db *gorm.DB
}

// NewGormConfigParameterRepository creates a new GormConfigParameterRepository
func NewGormConfigParameterRepository(db *gorm.DB) *GormConfigParameterRepository {
	return &GormConfigParameterRepository{db: db}
}

// GetAll returns every stored parameter
func (r *GormConfigParameterRepository) GetAll(ctx context.Context) (map[string]string, error) {
	var rows []models.ConfigParameterModel
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	params := make(map[string]string, len(rows))
	for _, row := range rows {
		params[row.Key] = row.Value
	}
	return params, nil
}

// Set inserts or replaces a parameter
func (r *GormConfigParameterRepository) Set(ctx context.Context, key, value string) error {
	row := models.ConfigParameterModel{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
}
