package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type CostType string

const (
	CostTypePurchase CostType = "PURCHASE"
	CostTypeProduce  CostType = "PRODUCE"
)

// CostSheetは(sku, period, type)ごとの単位原価。再計算のたびに行ごと置き換える。
type CostSheet struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	SheetNo      string          `gorm:"type:varchar(50);not null;uniqueIndex" json:"sheet_no"`
	SkuID        string          `gorm:"type:varchar(50);not null;uniqueIndex:uk_cost_key,priority:1" json:"sku_id"`
	Period       string          `gorm:"type:varchar(10);not null;uniqueIndex:uk_cost_key,priority:2" json:"period"` // YYYY-MM
	CostType     CostType        `gorm:"type:varchar(20);not null;uniqueIndex:uk_cost_key,priority:3" json:"cost_type"`
	Qty          decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"qty"`
	MaterialCost decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"material_cost"`
	LaborCost    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"labor_cost"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_cost"`
	TotalCost    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_cost"`
	SourceNo     string          `gorm:"type:varchar(50)" json:"source_no"`
	CreatedAt    time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
