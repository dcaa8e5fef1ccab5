package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PurchaseOrderStatus string

const (
	PoStatusDraft     PurchaseOrderStatus = "DRAFT"
	PoStatusApproved  PurchaseOrderStatus = "APPROVED"
	PoStatusReceived  PurchaseOrderStatus = "RECEIVED"
	PoStatusCancelled PurchaseOrderStatus = "CANCELLED"
)

type Supplier struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Code         string    `gorm:"type:varchar(50);not null;uniqueIndex" json:"code"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	ContactName  string    `gorm:"type:varchar(50)" json:"contact_name"`
	ContactPhone string    `gorm:"type:varchar(20)" json:"contact_phone"`
	Address      string    `gorm:"type:varchar(255)" json:"address"`
	Status       string    `gorm:"type:varchar(20);not null;default:'ACTIVE'" json:"status"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

type PurchaseOrder struct {
	ID          int64               `gorm:"primaryKey;autoIncrement" json:"id"`
	PoNo        string              `gorm:"type:varchar(50);not null;uniqueIndex" json:"po_no"`
	SupplierID  int64               `gorm:"not null;index" json:"supplier_id"`
	WarehouseID int64               `gorm:"not null" json:"warehouse_id"`
	TotalQty    decimal.Decimal     `gorm:"type:decimal(18,4);not null" json:"total_qty"`
	TotalAmount decimal.Decimal     `gorm:"type:decimal(18,4);not null" json:"total_amount"`
	Status      PurchaseOrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	ApprovedBy  string              `gorm:"type:varchar(50)" json:"approved_by"`
	ApprovedAt  *time.Time          `json:"approved_at"`
	ReceivedAt  *time.Time          `json:"received_at"`
	CreatedBy   string              `gorm:"type:varchar(50)" json:"created_by"`
	CreatedAt   time.Time           `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time           `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

type PurchaseOrderItem struct {
	ID       int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	PoID     int64           `gorm:"not null;index" json:"po_id"`
	SkuID    string          `gorm:"type:varchar(50);not null;index" json:"sku_id"`
	SkuName  string          `gorm:"type:varchar(255);not null" json:"sku_name"`
	Qty      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"qty"`
	UnitCost decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_cost"`
	Amount   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	LineNo   int             `gorm:"not null" json:"line_no"`
}
