package model

import "time"

type AuditAction string

const (
	AuditActionUpdateStock       AuditAction = "UPDATE_STOCK"
	AuditActionUpdateOrderStatus AuditAction = "UPDATE_ORDER_STATUS"
	AuditActionApprovePo         AuditAction = "APPROVE_PO"
	AuditActionUpdatePromo       AuditAction = "UPDATE_PROMO"
)

// 監査ログ（管理者操作ログ）。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID           int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorUserID  int64       `gorm:"not null;index" json:"actor_user_id"`
	Action       AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`
	ResourceType string      `gorm:"type:varchar(50);not null;index" json:"resource_type"`
	ResourceID   string      `gorm:"type:varchar(50);not null;index" json:"resource_id"`
	BeforeJSON   string      `gorm:"type:text" json:"before_json"`
	AfterJSON    string      `gorm:"type:text" json:"after_json"`
	CreatedAt    time.Time   `gorm:"not null;index" json:"created_at"`
}
