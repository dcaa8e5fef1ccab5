package repository

import (
	"context"

	"erp/internal/domain/model"
)

type PurchaseOrderQuery struct {
	SupplierID *int64
	Status     model.PurchaseOrderStatus
	Page       int
	Limit      int
}

type PurchaseRepository interface {
	CreateSupplier(ctx context.Context, s model.Supplier) (int64, error)
	FindSupplier(ctx context.Context, id int64) (model.Supplier, error)
	SaveSupplier(ctx context.Context, s *model.Supplier) error
	ListSuppliers(ctx context.Context, page, limit int) ([]model.Supplier, int64, error)

	CreateOrder(ctx context.Context, po model.PurchaseOrder) (int64, error)
	CreateOrderItems(ctx context.Context, poID int64, items []model.PurchaseOrderItem) error
	FindOrderByNo(ctx context.Context, poNo string) (model.PurchaseOrder, error)
	FindOrderByNoForUpdate(ctx context.Context, poNo string) (model.PurchaseOrder, error)
	SaveOrder(ctx context.Context, po *model.PurchaseOrder) error
	ListOrderItems(ctx context.Context, poID int64) ([]model.PurchaseOrderItem, error)
	ListOrders(ctx context.Context, q PurchaseOrderQuery) ([]model.PurchaseOrder, int64, error)
}
