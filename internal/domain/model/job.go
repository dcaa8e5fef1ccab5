package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// JobReportは製造オーダーへの報工（実績報告）。工数は生産原価の労務費に入る。
type JobReport struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	JobNo     string          `gorm:"type:varchar(50);not null;uniqueIndex" json:"job_no"`
	MoNo      string          `gorm:"type:varchar(50);not null;index" json:"mo_no"`
	SkuID     string          `gorm:"type:varchar(50);not null" json:"sku_id"`
	QtyGood   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"qty_good"`
	QtyScrap  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"qty_scrap"`
	WorkHours decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"work_hours"`
	Operator  string          `gorm:"type:varchar(50);not null" json:"operator"`
	CreatedAt time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}
