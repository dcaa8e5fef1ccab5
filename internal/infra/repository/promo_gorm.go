package repository

import (
	"context"
	"errors"
	"time"

	"erp/internal/domain/model"
	repo "erp/internal/repository"

	"gorm.io/gorm"
)

type PromoGormRepository struct {
	db *gorm.DB
}

// DI
func NewPromoGormRepository(db *gorm.DB) *PromoGormRepository {
	return &PromoGormRepository{db: db}
}

func (r *PromoGormRepository) Create(ctx context.Context, p model.Promo) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return 0, err
	}
	return p.ID, nil
}

func (r *PromoGormRepository) FindByID(ctx context.Context, id int64) (model.Promo, error) {
	var p model.Promo
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Promo{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Promo{}, err
	}
	return p, nil
}

func (r *PromoGormRepository) FindByCode(ctx context.Context, code string) (model.Promo, error) {
	var p model.Promo
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Promo{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Promo{}, err
	}
	return p, nil
}

func (r *PromoGormRepository) Save(ctx context.Context, p *model.Promo) error {
	res := r.db.WithContext(ctx).
		Model(&model.Promo{}).
		Where("id = ?", p.ID).
		Updates(map[string]interface{}{
			"name":            p.Name,
			"promo_type":      p.PromoType,
			"scope_type":      p.ScopeType,
			"scope_value":     p.ScopeValue,
			"condition_type":  p.ConditionType,
			"condition_value": p.ConditionValue,
			"benefit_value":   p.BenefitValue,
			"max_discount":    p.MaxDiscount,
			"priority":        p.Priority,
			"status":          p.Status,
			"valid_from":      p.ValidFrom,
			"valid_to":        p.ValidTo,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *PromoGormRepository) List(ctx context.Context, q repo.PromoQuery) ([]model.Promo, int64, error) {
	var promos []model.Promo
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Promo{})
	if q.Code != "" {
		tx = tx.Where("code = ?", q.Code)
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}

	if err := tx.Count(&total).Error; err != nil {
		return []model.Promo{}, 0, err
	}

	offset := (q.Page - 1) * q.Limit
	if err := tx.Order("priority desc").Order("id asc").
		Offset(offset).Limit(q.Limit).Find(&promos).Error; err != nil {
		return []model.Promo{}, 0, err
	}
	return promos, total, nil
}

// ENABLEDかつ有効期間内の活動。評価順は選定側で決める。
func (r *PromoGormRepository) ListEnabledAt(ctx context.Context, now time.Time) ([]model.Promo, error) {
	var promos []model.Promo
	err := r.db.WithContext(ctx).
		Where("status = ? AND valid_from <= ? AND valid_to >= ?", model.PromoStatusEnabled, now, now).
		Order("priority desc").Order("id asc").
		Find(&promos).Error
	if err != nil {
		return nil, err
	}
	return promos, nil
}

func (r *PromoGormRepository) CreateRecord(ctx context.Context, rec model.PromoRecord) error {
	return r.db.WithContext(ctx).Create(&rec).Error
}
