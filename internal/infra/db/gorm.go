package db

import (
	"fmt"

	"erp/internal/config"
	"erp/internal/domain/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(cfg config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB,
	)
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

// Migrate はスキーマを自動適用する。
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Item{},
		&model.ItemCategory{},
		&model.Warehouse{},
		&model.Stock{},
		&model.StockMovement{},
		&model.StockLock{},
		&model.SalesOrder{},
		&model.SalesOrderItem{},
		&model.Payment{},
		&model.Shipment{},
		&model.Promo{},
		&model.PromoRecord{},
		&model.CostSheet{},
		&model.Member{},
		&model.MemberLevel{},
		&model.MemberPointLog{},
		&model.Supplier{},
		&model.PurchaseOrder{},
		&model.PurchaseOrderItem{},
		&model.BomTemplate{},
		&model.BomTemplateItem{},
		&model.ManufactureOrder{},
		&model.JobReport{},
		&model.OutboxMessage{},
		&model.ProcessedEvent{},
		&model.AuditLog{},
	)
}
