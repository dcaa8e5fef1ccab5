package repository

import (
	"context"
	"errors"

	"erp/internal/domain/model"
	repo "erp/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductionGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductionGormRepository(db *gorm.DB) *ProductionGormRepository {
	return &ProductionGormRepository{db: db}
}

func (r *ProductionGormRepository) CreateBom(ctx context.Context, bom model.BomTemplate) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&bom).Error; err != nil {
		return 0, err
	}
	return bom.ID, nil
}

func (r *ProductionGormRepository) CreateBomItems(ctx context.Context, bomID int64, items []model.BomTemplateItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].BomID = bomID
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *ProductionGormRepository) FindBom(ctx context.Context, id int64) (model.BomTemplate, error) {
	var bom model.BomTemplate
	err := r.db.WithContext(ctx).First(&bom, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.BomTemplate{}, repo.ErrNotFound
	}
	if err != nil {
		return model.BomTemplate{}, err
	}
	return bom, nil
}

func (r *ProductionGormRepository) ListBomItems(ctx context.Context, bomID int64) ([]model.BomTemplateItem, error) {
	var items []model.BomTemplateItem
	err := r.db.WithContext(ctx).
		Where("bom_id = ?", bomID).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ProductionGormRepository) ListBoms(ctx context.Context, page, limit int) ([]model.BomTemplate, int64, error) {
	var boms []model.BomTemplate
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.BomTemplate{})
	if err := tx.Count(&total).Error; err != nil {
		return []model.BomTemplate{}, 0, err
	}

	offset := (page - 1) * limit
	if err := tx.Order("id asc").Offset(offset).Limit(limit).Find(&boms).Error; err != nil {
		return []model.BomTemplate{}, 0, err
	}
	return boms, total, nil
}

func (r *ProductionGormRepository) CreateMo(ctx context.Context, mo model.ManufactureOrder) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&mo).Error; err != nil {
		return 0, err
	}
	return mo.ID, nil
}

func (r *ProductionGormRepository) FindMoByNo(ctx context.Context, moNo string) (model.ManufactureOrder, error) {
	var mo model.ManufactureOrder
	err := r.db.WithContext(ctx).Where("mo_no = ?", moNo).First(&mo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ManufactureOrder{}, repo.ErrNotFound
	}
	if err != nil {
		return model.ManufactureOrder{}, err
	}
	return mo, nil
}

func (r *ProductionGormRepository) FindMoByNoForUpdate(ctx context.Context, moNo string) (model.ManufactureOrder, error) {
	var mo model.ManufactureOrder
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("mo_no = ?", moNo).
		First(&mo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ManufactureOrder{}, repo.ErrNotFound
	}
	if err != nil {
		return model.ManufactureOrder{}, err
	}
	return mo, nil
}

func (r *ProductionGormRepository) SaveMo(ctx context.Context, mo *model.ManufactureOrder) error {
	res := r.db.WithContext(ctx).
		Model(&model.ManufactureOrder{}).
		Where("id = ?", mo.ID).
		Updates(map[string]interface{}{
			"completed_qty": mo.CompletedQty,
			"status":        mo.Status,
			"started_at":    mo.StartedAt,
			"completed_at":  mo.CompletedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *ProductionGormRepository) ListMos(ctx context.Context, q repo.MoQuery) ([]model.ManufactureOrder, int64, error) {
	var mos []model.ManufactureOrder
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.ManufactureOrder{})
	if q.SkuID != "" {
		tx = tx.Where("sku_id = ?", q.SkuID)
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}

	if err := tx.Count(&total).Error; err != nil {
		return []model.ManufactureOrder{}, 0, err
	}

	offset := (q.Page - 1) * q.Limit
	if err := tx.Order("created_at desc").Order("id desc").
		Offset(offset).Limit(q.Limit).Find(&mos).Error; err != nil {
		return []model.ManufactureOrder{}, 0, err
	}
	return mos, total, nil
}
