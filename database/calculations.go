package database

import (
	"context"
	"fmt"

	"options-pricer/models"

	"gorm.io/gorm"
)

type CalculationRepo struct {
	db *gorm.DB
}

func NewCalculationRepo(db *gorm.DB) *CalculationRepo {
	return &CalculationRepo{db: db}
}

// Create inserts calc inside a transaction and fills in its ID and Timestamp.
func (r *CalculationRepo) Create(ctx context.Context, calc *models.Calculation) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(calc).Error
	})
	if err != nil {
		return fmt.Errorf("insert calculation: %w", err)
	}
	return nil
}

// List returns every stored calculation in insertion order.
func (r *CalculationRepo) List(ctx context.Context) ([]models.Calculation, error) {
	calcs := []models.Calculation{}
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&calcs).Error; err != nil {
		return nil, fmt.Errorf("list calculations: %w", err)
	}
	return calcs, nil
}

func (r *CalculationRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Calculation{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count calculations: %w", err)
	}
	return n, nil
}
