package repository

import (
	"context"

	"erp/internal/domain/model"
)

type OrderQuery struct {
	Status   model.OrderStatus
	MemberID *int64
	Page     int
	Limit    int
}

// OrderRepositoryは注文集約（ヘッダ・明細・支払・出荷）の唯一の変更入口。
type OrderRepository interface {
	Create(ctx context.Context, o model.SalesOrder) (int64, error)
	CreateItems(ctx context.Context, orderID int64, items []model.SalesOrderItem) error
	FindByID(ctx context.Context, id int64) (model.SalesOrder, error)
	FindByOrderNo(ctx context.Context, orderNo string) (model.SalesOrder, error)
	FindByOrderNoForUpdate(ctx context.Context, orderNo string) (model.SalesOrder, error)
	Save(ctx context.Context, o *model.SalesOrder) error
	ListItemsByOrderID(ctx context.Context, orderID int64) ([]model.SalesOrderItem, error)
	List(ctx context.Context, q OrderQuery) ([]model.SalesOrder, int64, error)

	CreatePayment(ctx context.Context, p model.Payment) error
	CreateShipment(ctx context.Context, s model.Shipment) error
}
