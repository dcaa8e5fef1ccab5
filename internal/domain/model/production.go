package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type MoStatus string

const (
	MoStatusPlanned    MoStatus = "PLANNED"
	MoStatusInProgress MoStatus = "IN_PROGRESS"
	MoStatusCompleted  MoStatus = "COMPLETED"
	MoStatusCancelled  MoStatus = "CANCELLED"
)

// BomTemplateは完成品1単位あたりの構成と標準工賃。
type BomTemplate struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Code         string          `gorm:"type:varchar(50);not null;uniqueIndex" json:"code"`
	Name         string          `gorm:"type:varchar(255);not null" json:"name"`
	SkuID        string          `gorm:"type:varchar(50);not null;index" json:"sku_id"`
	StdLaborRate decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"std_labor_rate"` // 時間あたり工賃
	Status       string          `gorm:"type:varchar(20);not null;default:'ACTIVE'" json:"status"`
	CreatedAt    time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

type BomTemplateItem struct {
	ID             int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	BomID          int64           `gorm:"not null;index" json:"bom_id"`
	ComponentSkuID string          `gorm:"type:varchar(50);not null" json:"component_sku_id"`
	Qty            decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"qty"` // 完成品1単位あたり
}

type ManufactureOrder struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	MoNo         string          `gorm:"type:varchar(50);not null;uniqueIndex" json:"mo_no"`
	BomID        int64           `gorm:"not null;index" json:"bom_id"`
	SkuID        string          `gorm:"type:varchar(50);not null;index" json:"sku_id"`
	WarehouseID  int64           `gorm:"not null" json:"warehouse_id"`
	PlannedQty   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"planned_qty"`
	CompletedQty decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"completed_qty"`
	Status       MoStatus        `gorm:"type:varchar(20);not null;index" json:"status"`
	StartedAt    *time.Time      `json:"started_at"`
	CompletedAt  *time.Time      `json:"completed_at"`
	CreatedBy    string          `gorm:"type:varchar(50)" json:"created_by"`
	CreatedAt    time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
