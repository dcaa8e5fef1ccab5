package repository

import (
	"context"

	"erp/internal/domain/model"
)

type CostQuery struct {
	SkuID    string
	Period   string
	CostType model.CostType
	Page     int
	Limit    int
}

type CostRepository interface {
	// Replaceは(sku, period, type)キーの既存行を原子的に置き換える。
	// 部分更新はしない。last-write-wins。
	Replace(ctx context.Context, sheet model.CostSheet) error

	FindByKey(ctx context.Context, skuID, period string, costType model.CostType) (model.CostSheet, error)
	List(ctx context.Context, q CostQuery) ([]model.CostSheet, int64, error)
}
