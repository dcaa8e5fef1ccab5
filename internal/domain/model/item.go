package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ItemStatus string

const (
	ItemStatusEnabled  ItemStatus = "ENABLED"
	ItemStatusDisabled ItemStatus = "DISABLED"
)

type Item struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	SkuID       string          `gorm:"type:varchar(50);not null;uniqueIndex" json:"sku_id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	CategoryID  *int64          `gorm:"index" json:"category_id"`
	Unit        string          `gorm:"type:varchar(20)" json:"unit"`
	Price       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"price"`
	Status      ItemStatus      `gorm:"type:varchar(20);not null;index" json:"status"`
	Description string          `gorm:"type:text" json:"description"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

type ItemCategory struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	ParentID  int64     `gorm:"not null;default:0" json:"parent_id"`
	Level     int       `gorm:"not null;default:1" json:"level"`
	SortOrder int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
