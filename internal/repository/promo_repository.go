package repository

import (
	"context"
	"time"

	"erp/internal/domain/model"
)

type PromoQuery struct {
	Code   string
	Status model.PromoStatus
	Page   int
	Limit  int
}

type PromoRepository interface {
	Create(ctx context.Context, p model.Promo) (int64, error)
	FindByID(ctx context.Context, id int64) (model.Promo, error)
	FindByCode(ctx context.Context, code string) (model.Promo, error)
	Save(ctx context.Context, p *model.Promo) error
	List(ctx context.Context, q PromoQuery) ([]model.Promo, int64, error)

	// ListEnabledAtはstatus=ENABLEDかつ有効期間内の活動を返す。
	ListEnabledAt(ctx context.Context, now time.Time) ([]model.Promo, error)

	CreateRecord(ctx context.Context, r model.PromoRecord) error
}
