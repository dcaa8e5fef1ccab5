package repository

import (
	"context"
	"errors"

	"erp/internal/domain/model"
	repo "erp/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CostGormRepository struct {
	db *gorm.DB
}

// DI
func NewCostGormRepository(db *gorm.DB) *CostGormRepository {
	return &CostGormRepository{db: db}
}

// (sku, period, type)キーで行ごと置き換える。last-write-wins。
func (r *CostGormRepository) Replace(ctx context.Context, sheet model.CostSheet) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "sku_id"}, {Name: "period"}, {Name: "cost_type"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"sheet_no", "qty", "material_cost", "labor_cost", "unit_cost", "total_cost", "source_no", "updated_at",
			}),
		}).
		Create(&sheet).Error
}

func (r *CostGormRepository) FindByKey(ctx context.Context, skuID, period string, costType model.CostType) (model.CostSheet, error) {
	var s model.CostSheet
	err := r.db.WithContext(ctx).
		Where("sku_id = ? AND period = ? AND cost_type = ?", skuID, period, costType).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.CostSheet{}, repo.ErrNotFound
	}
	if err != nil {
		return model.CostSheet{}, err
	}
	return s, nil
}

func (r *CostGormRepository) List(ctx context.Context, q repo.CostQuery) ([]model.CostSheet, int64, error) {
	var sheets []model.CostSheet
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.CostSheet{})
	if q.SkuID != "" {
		tx = tx.Where("sku_id = ?", q.SkuID)
	}
	if q.Period != "" {
		tx = tx.Where("period = ?", q.Period)
	}
	if q.CostType != "" {
		tx = tx.Where("cost_type = ?", q.CostType)
	}

	if err := tx.Count(&total).Error; err != nil {
		return []model.CostSheet{}, 0, err
	}

	offset := (q.Page - 1) * q.Limit
	if err := tx.Order("period desc").Order("sku_id asc").
		Offset(offset).Limit(q.Limit).Find(&sheets).Error; err != nil {
		return []model.CostSheet{}, 0, err
	}
	return sheets, total, nil
}
