package repository

import (
	"context"
	"errors"
	"strings"

	"erp/internal/domain/model"
	repo "erp/internal/repository"

	"gorm.io/gorm"
)

type ItemGormRepository struct {
	db *gorm.DB
}

// DI
func NewItemGormRepository(db *gorm.DB) *ItemGormRepository {
	return &ItemGormRepository{db: db}
}

func (r *ItemGormRepository) Create(ctx context.Context, it model.Item) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&it).Error; err != nil {
		return 0, err
	}
	return it.ID, nil
}

func (r *ItemGormRepository) FindByID(ctx context.Context, id int64) (model.Item, error) {
	var it model.Item
	err := r.db.WithContext(ctx).First(&it, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Item{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Item{}, err
	}
	return it, nil
}

func (r *ItemGormRepository) FindBySkuID(ctx context.Context, skuID string) (model.Item, error) {
	var it model.Item
	err := r.db.WithContext(ctx).Where("sku_id = ?", skuID).First(&it).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Item{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Item{}, err
	}
	return it, nil
}

func (r *ItemGormRepository) Save(ctx context.Context, it *model.Item) error {
	res := r.db.WithContext(ctx).
		Model(&model.Item{}).
		Where("id = ?", it.ID).
		Updates(map[string]interface{}{
			"name":        it.Name,
			"category_id": it.CategoryID,
			"unit":        it.Unit,
			"price":       it.Price,
			"status":      it.Status,
			"description": it.Description,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 検索/カテゴリ/状態/ページング付き
func (r *ItemGormRepository) List(ctx context.Context, q repo.ItemQuery) ([]model.Item, int64, error) {
	var items []model.Item
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Item{})
	if strings.TrimSpace(q.Q) != "" {
		like := "%" + strings.TrimSpace(q.Q) + "%"
		tx = tx.Where("name ILIKE ? OR sku_id ILIKE ?", like, like)
	}
	if q.CategoryID != nil {
		tx = tx.Where("category_id = ?", *q.CategoryID)
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}

	if err := tx.Count(&total).Error; err != nil {
		return []model.Item{}, 0, err
	}

	offset := (q.Page - 1) * q.Limit
	if err := tx.Order("created_at desc").Order("id desc").
		Offset(offset).Limit(q.Limit).Find(&items).Error; err != nil {
		return []model.Item{}, 0, err
	}
	return items, total, nil
}

func (r *ItemGormRepository) CreateCategory(ctx context.Context, c model.ItemCategory) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return 0, err
	}
	return c.ID, nil
}

func (r *ItemGormRepository) ListCategories(ctx context.Context) ([]model.ItemCategory, error) {
	var cs []model.ItemCategory
	if err := r.db.WithContext(ctx).Order("sort_order asc").Order("id asc").Find(&cs).Error; err != nil {
		return nil, err
	}
	return cs, nil
}
