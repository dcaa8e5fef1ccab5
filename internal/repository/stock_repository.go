package repository

import (
	"context"
	"time"

	"erp/internal/domain/model"
)

type MovementQuery struct {
	SkuID       string
	WarehouseID *int64
	MoveType    model.MoveType
	SourceType  model.SourceType
	SourceNo    string
	From        *time.Time
	To          *time.Time
	Page        int
	Limit       int
}

// StockRepositoryは在庫行・流水・ロックの唯一の変更入口。
type StockRepository interface {
	FindLine(ctx context.Context, skuID string, warehouseID int64) (model.Stock, error)

	// FindLineForUpdateは行ロック付きで取得する（SELECT ... FOR UPDATE）。
	// 複数行を触る呼び出し側は(sku, warehouse)昇順で取得すること。
	FindLineForUpdate(ctx context.Context, skuID string, warehouseID int64) (model.Stock, error)

	// FindOrCreateLineForUpdateは初回移動時に行を作る。作成後もロックを保持する。
	FindOrCreateLineForUpdate(ctx context.Context, skuID string, warehouseID int64) (model.Stock, error)

	SaveLine(ctx context.Context, line *model.Stock) error

	CreateMovement(ctx context.Context, mv model.StockMovement) error
	ListMovements(ctx context.Context, q MovementQuery) ([]model.StockMovement, int64, error)

	CreateLock(ctx context.Context, lock model.StockLock) error
	SaveLock(ctx context.Context, lock *model.StockLock) error
	FindActiveLocksByRef(ctx context.Context, sourceNo string) ([]model.StockLock, error)
	FindExpiredActiveLocks(ctx context.Context, before time.Time, limit int) ([]model.StockLock, error)

	FindWarehouse(ctx context.Context, id int64) (model.Warehouse, error)
	ListWarehouses(ctx context.Context) ([]model.Warehouse, error)
	CreateWarehouse(ctx context.Context, w model.Warehouse) (int64, error)
}
