package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type MemberStatus string

const (
	MemberStatusActive   MemberStatus = "ACTIVE"
	MemberStatusDisabled MemberStatus = "DISABLED"
)

type PointChangeType string

const (
	PointChangeEarn   PointChangeType = "EARN"
	PointChangeRedeem PointChangeType = "REDEEM"
	PointChangeAdjust PointChangeType = "ADJUST"
)

type Member struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	MemberNo      string          `gorm:"type:varchar(50);not null;uniqueIndex" json:"member_no"`
	Phone         string          `gorm:"type:varchar(20);not null;uniqueIndex" json:"phone"`
	Name          string          `gorm:"type:varchar(255);not null" json:"name"`
	LevelID       int64           `gorm:"not null;index" json:"level_id"`
	Points        decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"points"`
	TotalConsumed decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_consumed"`
	Status        MemberStatus    `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt     time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

type MemberLevel struct {
	ID               int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Code             string          `gorm:"type:varchar(50);not null;uniqueIndex" json:"code"`
	Name             string          `gorm:"type:varchar(255);not null" json:"name"`
	PointsMultiplier decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"points_multiplier"`
	MinConsumed      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"min_consumed"`
	CreatedAt        time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}

// MemberPointLogは積分の増減履歴。before/afterを残して監査可能にする。
type MemberPointLog struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	MemberID      int64           `gorm:"not null;index" json:"member_id"`
	ChangeType    PointChangeType `gorm:"type:varchar(20);not null" json:"change_type"`
	ChangePoints  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"change_points"`
	BalanceBefore decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"balance_before"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"balance_after"`
	SourceType    string          `gorm:"type:varchar(20)" json:"source_type"`
	SourceNo      string          `gorm:"type:varchar(50);index" json:"source_no"`
	Operator      string          `gorm:"type:varchar(50)" json:"operator"`
	CreatedAt     time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}
