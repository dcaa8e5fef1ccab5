package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPendingPayment OrderStatus = "PENDING_PAYMENT"
	OrderStatusPaid           OrderStatus = "PAID"
	OrderStatusShipped        OrderStatus = "SHIPPED"
	OrderStatusCompleted      OrderStatus = "COMPLETED"
	OrderStatusCancelled      OrderStatus = "CANCELLED"
	OrderStatusRefundPending  OrderStatus = "REFUND_PENDING"
	OrderStatusRefunded       OrderStatus = "REFUNDED"
)

type SalesOrder struct {
	ID             int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNo        string          `gorm:"type:varchar(50);not null;uniqueIndex" json:"order_no"`
	MemberID       *int64          `gorm:"index" json:"member_id"`
	Status         OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	SubtotalAmount decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"subtotal_amount"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"discount_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_amount"`
	PaidAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"paid_amount"`
	PromoID        *int64          `json:"promo_id"`
	Remark         string          `gorm:"type:varchar(255)" json:"remark"`
	CreatedBy      string          `gorm:"type:varchar(50)" json:"created_by"`
	CreatedAt      time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

type SalesOrderItem struct {
	ID             int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID        int64           `gorm:"not null;index" json:"order_id"`
	SkuID          string          `gorm:"type:varchar(50);not null;index" json:"sku_id"`
	SkuName        string          `gorm:"type:varchar(255);not null" json:"sku_name"`
	WarehouseID    int64           `gorm:"not null" json:"warehouse_id"`
	Qty            decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"qty"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"discount_amount"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	LineNo         int             `gorm:"not null" json:"line_no"`
	CreatedAt      time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}

type Payment struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	PaymentNo string          `gorm:"type:varchar(50);not null;uniqueIndex" json:"payment_no"`
	OrderID   int64           `gorm:"not null;index" json:"order_id"`
	Method    string          `gorm:"type:varchar(20);not null" json:"method"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	PaidBy    string          `gorm:"type:varchar(50)" json:"paid_by"`
	CreatedAt time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}

type Shipment struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ShipmentNo string    `gorm:"type:varchar(50);not null;uniqueIndex" json:"shipment_no"`
	OrderID    int64     `gorm:"not null;index" json:"order_id"`
	Carrier    string    `gorm:"type:varchar(50)" json:"carrier"`
	TrackingNo string    `gorm:"type:varchar(50)" json:"tracking_no"`
	ShippedBy  string    `gorm:"type:varchar(50)" json:"shipped_by"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
