package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type MoveType string

const (
	MoveTypeIn          MoveType = "IN"
	MoveTypeOut         MoveType = "OUT"
	MoveTypeLock        MoveType = "LOCK"
	MoveTypeUnlock      MoveType = "UNLOCK"
	MoveTypeAdjustIn    MoveType = "ADJUST_IN"
	MoveTypeAdjustOut   MoveType = "ADJUST_OUT"
	MoveTypeTransferIn  MoveType = "TRANSFER_IN"
	MoveTypeTransferOut MoveType = "TRANSFER_OUT"
)

type SourceType string

const (
	SourceTypePurchase   SourceType = "PURCHASE"
	SourceTypeSale       SourceType = "SALE"
	SourceTypeProduction SourceType = "PRODUCTION"
	SourceTypeAdjust     SourceType = "ADJUST"
	SourceTypeTransfer   SourceType = "TRANSFER"
)

type LockStatus string

const (
	LockStatusActive   LockStatus = "ACTIVE"
	LockStatusReleased LockStatus = "RELEASED"
)

// Stockは(sku, warehouse)ごとの在庫行。数量の変更は在庫台帳だけが行う。
type Stock struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	SkuID       string          `gorm:"type:varchar(50);not null;uniqueIndex:uk_sku_warehouse,priority:1;index" json:"sku_id"`
	WarehouseID int64           `gorm:"not null;uniqueIndex:uk_sku_warehouse,priority:2;index" json:"warehouse_id"`
	Qty         decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"qty"`
	LockedQty   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"locked_qty"`
	AvgCost     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"avg_cost"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// AvailableQtyは常に qty - locked_qty（導出値、永続化しない）
func (s Stock) AvailableQty() decimal.Decimal {
	return s.Qty.Sub(s.LockedQty)
}

// StockMovementは追記専用の流水。書いたら変更しない。
type StockMovement struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	MoveNo      string          `gorm:"type:varchar(50);not null;uniqueIndex" json:"move_no"`
	SkuID       string          `gorm:"type:varchar(50);not null;index" json:"sku_id"`
	WarehouseID int64           `gorm:"not null;index" json:"warehouse_id"`
	MoveType    MoveType        `gorm:"type:varchar(20);not null;index" json:"move_type"`
	Qty         decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"qty"`
	BeforeQty   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"before_qty"`
	AfterQty    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"after_qty"`
	UnitCost    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_cost"`
	SourceType  SourceType      `gorm:"type:varchar(20);not null;index:idx_move_source,priority:1" json:"source_type"`
	SourceNo    string          `gorm:"type:varchar(50);index:idx_move_source,priority:2" json:"source_no"`
	Operator    string          `gorm:"type:varchar(50)" json:"operator"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime;index" json:"created_at"`
}

// StockLockはひとつの参照（注文など）に紐づく予約。
type StockLock struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	LockNo      string          `gorm:"type:varchar(50);not null;uniqueIndex" json:"lock_no"`
	SkuID       string          `gorm:"type:varchar(50);not null;index" json:"sku_id"`
	WarehouseID int64           `gorm:"not null" json:"warehouse_id"`
	Qty         decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"qty"`
	Status      LockStatus      `gorm:"type:varchar(20);not null;index" json:"status"`
	Consumed    bool            `gorm:"not null;default:false" json:"consumed"`
	SourceType  SourceType      `gorm:"type:varchar(20);not null;index:idx_lock_source,priority:1" json:"source_type"`
	SourceNo    string          `gorm:"type:varchar(50);not null;index:idx_lock_source,priority:2" json:"source_no"`
	Operator    string          `gorm:"type:varchar(50)" json:"operator"`
	LockedAt    time.Time       `gorm:"not null;autoCreateTime" json:"locked_at"`
	ReleasedAt  *time.Time      `json:"released_at"`
}

type Warehouse struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Code      string    `gorm:"type:varchar(50);not null;uniqueIndex" json:"code"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Address   string    `gorm:"type:varchar(255)" json:"address"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
