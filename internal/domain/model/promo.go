package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PromoType string

const (
	PromoTypeFullReduction PromoType = "FULL_REDUCTION"
	PromoTypeDiscount      PromoType = "DISCOUNT"
)

type PromoStatus string

const (
	PromoStatusDraft    PromoStatus = "DRAFT"
	PromoStatusEnabled  PromoStatus = "ENABLED"
	PromoStatusDisabled PromoStatus = "DISABLED"
)

type ScopeType string

const (
	ScopeTypeAll ScopeType = "ALL"
	ScopeTypeSku ScopeType = "SKU"
)

type ConditionType string

const (
	ConditionTypeAmount ConditionType = "AMOUNT"
	ConditionTypeQty    ConditionType = "QTY"
)

// Promoは促販活動。評価は(現在時刻, 注文内容)の純関数で、評価中に変更されない。
type Promo struct {
	ID             int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Code           string          `gorm:"type:varchar(50);not null;uniqueIndex" json:"code"`
	Name           string          `gorm:"type:varchar(255);not null" json:"name"`
	PromoType      PromoType       `gorm:"type:varchar(20);not null" json:"promo_type"`
	ScopeType      ScopeType       `gorm:"type:varchar(20);not null" json:"scope_type"`
	ScopeValue     string          `gorm:"type:text" json:"scope_value"` // SKUスコープのときJSON配列
	ConditionType  ConditionType   `gorm:"type:varchar(20);not null" json:"condition_type"`
	ConditionValue decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"condition_value"`
	BenefitValue   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"benefit_value"` // 満減=金額 / 折扣=割引率(%)
	MaxDiscount    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"max_discount"`
	Priority       int             `gorm:"not null;index" json:"priority"`
	Status         PromoStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	ValidFrom      time.Time       `gorm:"not null" json:"valid_from"`
	ValidTo        time.Time       `gorm:"not null" json:"valid_to"`
	CreatedBy      string          `gorm:"type:varchar(50)" json:"created_by"`
	CreatedAt      time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// PromoRecordは適用実績。
type PromoRecord struct {
	ID             int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	RecordNo       string          `gorm:"type:varchar(50);not null;uniqueIndex" json:"record_no"`
	PromoID        int64           `gorm:"not null;index" json:"promo_id"`
	OrderNo        string          `gorm:"type:varchar(50);not null;index" json:"order_no"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"discount_amount"`
	CreatedAt      time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}
