package model

import "time"

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleOperator Role = "OPERATOR"
	RoleViewer   Role = "VIEWER"
)

// Capabilityはロールから一度だけ導出される操作権限。
// エンドポイントごとに文字列リストを照合し直すのではなく、
// リクエスト冒頭でロール→集合に解決してブール判定だけ残す。
type Capability string

const (
	CapCatalogWrite Capability = "catalog:write"
	CapStockWrite   Capability = "stock:write"
	CapOrderWrite   Capability = "order:write"
	CapPromoWrite   Capability = "promo:write"
	CapAdminOps     Capability = "admin:ops"
	CapReportRead   Capability = "report:read"
)

var roleCapabilities = map[Role][]Capability{
	RoleAdmin:    {CapCatalogWrite, CapStockWrite, CapOrderWrite, CapPromoWrite, CapAdminOps, CapReportRead},
	RoleOperator: {CapCatalogWrite, CapStockWrite, CapOrderWrite, CapReportRead},
	RoleViewer:   {CapReportRead},
}

// CapabilitySetは1リクエスト分の権限集合。
type CapabilitySet map[Capability]bool

func CapabilitiesFor(role Role) CapabilitySet {
	set := make(CapabilitySet)
	for _, c := range roleCapabilities[role] {
		set[c] = true
	}
	return set
}

func (s CapabilitySet) Has(c Capability) bool { return s[c] }

type User struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string     `gorm:"type:varchar(50);not null;uniqueIndex" json:"username"`
	PasswordHash string     `gorm:"column:password_hash;not null" json:"-"`
	Name         string     `gorm:"type:varchar(255)" json:"name"`
	Role         Role       `gorm:"type:varchar(20);not null;default:'VIEWER'" json:"role"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
