package repository

import (
	"context"
	"errors"
	"time"

	"erp/internal/domain/model"
	repo "erp/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StockGormRepository struct {
	db *gorm.DB
}

// DI
func NewStockGormRepository(db *gorm.DB) *StockGormRepository {
	return &StockGormRepository{db: db}
}

func (r *StockGormRepository) FindLine(ctx context.Context, skuID string, warehouseID int64) (model.Stock, error) {
	var s model.Stock
	err := r.db.WithContext(ctx).
		Where("sku_id = ? AND warehouse_id = ?", skuID, warehouseID).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Stock{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Stock{}, err
	}
	return s, nil
}

// SELECT ... FOR UPDATE で行ロックを取る。
// 複数行を触る呼び出し側は(sku, warehouse)昇順で取得すること。
func (r *StockGormRepository) FindLineForUpdate(ctx context.Context, skuID string, warehouseID int64) (model.Stock, error) {
	var s model.Stock
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("sku_id = ? AND warehouse_id = ?", skuID, warehouseID).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Stock{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Stock{}, err
	}
	return s, nil
}

// 初回移動時はゼロ在庫行を作ってからロックを取り直す
func (r *StockGormRepository) FindOrCreateLineForUpdate(ctx context.Context, skuID string, warehouseID int64) (model.Stock, error) {
	s, err := r.FindLineForUpdate(ctx, skuID, warehouseID)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return model.Stock{}, err
	}

	line := model.Stock{
		SkuID:       skuID,
		WarehouseID: warehouseID,
		Qty:         decimal.Zero,
		LockedQty:   decimal.Zero,
		AvgCost:     decimal.Zero,
	}
	// 同時作成と競合したらDoNothingで既存行に流す
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sku_id"}, {Name: "warehouse_id"}},
			DoNothing: true,
		}).
		Create(&line).Error; err != nil {
		return model.Stock{}, err
	}
	return r.FindLineForUpdate(ctx, skuID, warehouseID)
}

func (r *StockGormRepository) SaveLine(ctx context.Context, line *model.Stock) error {
	res := r.db.WithContext(ctx).
		Model(&model.Stock{}).
		Where("id = ?", line.ID).
		Updates(map[string]interface{}{
			"qty":        line.Qty,
			"locked_qty": line.LockedQty,
			"avg_cost":   line.AvgCost,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *StockGormRepository) CreateMovement(ctx context.Context, mv model.StockMovement) error {
	return r.db.WithContext(ctx).Create(&mv).Error
}

func (r *StockGormRepository) ListMovements(ctx context.Context, q repo.MovementQuery) ([]model.StockMovement, int64, error) {
	var moves []model.StockMovement
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.StockMovement{})
	if q.SkuID != "" {
		tx = tx.Where("sku_id = ?", q.SkuID)
	}
	if q.WarehouseID != nil {
		tx = tx.Where("warehouse_id = ?", *q.WarehouseID)
	}
	if q.MoveType != "" {
		tx = tx.Where("move_type = ?", q.MoveType)
	}
	if q.SourceType != "" {
		tx = tx.Where("source_type = ?", q.SourceType)
	}
	if q.SourceNo != "" {
		tx = tx.Where("source_no = ?", q.SourceNo)
	}
	if q.From != nil {
		tx = tx.Where("created_at >= ?", *q.From)
	}
	if q.To != nil {
		tx = tx.Where("created_at < ?", *q.To)
	}

	if err := tx.Count(&total).Error; err != nil {
		return []model.StockMovement{}, 0, err
	}

	offset := (q.Page - 1) * q.Limit
	if err := tx.Order("created_at desc").Order("id desc").
		Offset(offset).Limit(q.Limit).Find(&moves).Error; err != nil {
		return []model.StockMovement{}, 0, err
	}
	return moves, total, nil
}

func (r *StockGormRepository) CreateLock(ctx context.Context, lock model.StockLock) error {
	return r.db.WithContext(ctx).Create(&lock).Error
}

func (r *StockGormRepository) SaveLock(ctx context.Context, lock *model.StockLock) error {
	res := r.db.WithContext(ctx).
		Model(&model.StockLock{}).
		Where("id = ?", lock.ID).
		Updates(map[string]interface{}{
			"status":      lock.Status,
			"consumed":    lock.Consumed,
			"released_at": lock.ReleasedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 参照番号に紐づくACTIVEなロックを(sku, warehouse)昇順で返す
func (r *StockGormRepository) FindActiveLocksByRef(ctx context.Context, sourceNo string) ([]model.StockLock, error) {
	var locks []model.StockLock
	err := r.db.WithContext(ctx).
		Where("source_no = ? AND status = ?", sourceNo, model.LockStatusActive).
		Order("sku_id asc").Order("warehouse_id asc").
		Find(&locks).Error
	if err != nil {
		return nil, err
	}
	return locks, nil
}

func (r *StockGormRepository) FindExpiredActiveLocks(ctx context.Context, before time.Time, limit int) ([]model.StockLock, error) {
	var locks []model.StockLock
	err := r.db.WithContext(ctx).
		Where("status = ? AND locked_at < ?", model.LockStatusActive, before).
		Order("locked_at asc").
		Limit(limit).
		Find(&locks).Error
	if err != nil {
		return nil, err
	}
	return locks, nil
}

func (r *StockGormRepository) FindWarehouse(ctx context.Context, id int64) (model.Warehouse, error) {
	var w model.Warehouse
	err := r.db.WithContext(ctx).First(&w, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Warehouse{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Warehouse{}, err
	}
	return w, nil
}

func (r *StockGormRepository) ListWarehouses(ctx context.Context) ([]model.Warehouse, error) {
	var ws []model.Warehouse
	if err := r.db.WithContext(ctx).Order("id asc").Find(&ws).Error; err != nil {
		return nil, err
	}
	return ws, nil
}

func (r *StockGormRepository) CreateWarehouse(ctx context.Context, w model.Warehouse) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&w).Error; err != nil {
		return 0, err
	}
	return w.ID, nil
}
