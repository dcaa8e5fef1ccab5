package repository

import (
	"context"

	"erp/internal/domain/model"
)

type ItemQuery struct {
	Q          string
	CategoryID *int64
	Status     model.ItemStatus
	Page       int
	Limit      int
}

type ItemRepository interface {
	Create(ctx context.Context, it model.Item) (int64, error)
	FindByID(ctx context.Context, id int64) (model.Item, error)
	FindBySkuID(ctx context.Context, skuID string) (model.Item, error)
	Save(ctx context.Context, it *model.Item) error
	List(ctx context.Context, q ItemQuery) ([]model.Item, int64, error)

	CreateCategory(ctx context.Context, c model.ItemCategory) (int64, error)
	ListCategories(ctx context.Context) ([]model.ItemCategory, error)
}
