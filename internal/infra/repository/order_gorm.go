package repository

import (
	"context"
	"errors"

	"erp/internal/domain/model"
	repo "erp/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderGormRepository struct {
	db *gorm.DB
}

// DI
func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) Create(ctx context.Context, o model.SalesOrder) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&o).Error; err != nil {
		return 0, err
	}
	return o.ID, nil
}

func (r *OrderGormRepository) CreateItems(ctx context.Context, orderID int64, items []model.SalesOrderItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].OrderID = orderID
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *OrderGormRepository) FindByID(ctx context.Context, id int64) (model.SalesOrder, error) {
	var o model.SalesOrder
	err := r.db.WithContext(ctx).First(&o, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.SalesOrder{}, repo.ErrNotFound
	}
	if err != nil {
		return model.SalesOrder{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) FindByOrderNo(ctx context.Context, orderNo string) (model.SalesOrder, error) {
	var o model.SalesOrder
	err := r.db.WithContext(ctx).Where("order_no = ?", orderNo).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.SalesOrder{}, repo.ErrNotFound
	}
	if err != nil {
		return model.SalesOrder{}, err
	}
	return o, nil
}

// 状態遷移の起点。ヘッダ行をロックして取る。
func (r *OrderGormRepository) FindByOrderNoForUpdate(ctx context.Context, orderNo string) (model.SalesOrder, error) {
	var o model.SalesOrder
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_no = ?", orderNo).
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.SalesOrder{}, repo.ErrNotFound
	}
	if err != nil {
		return model.SalesOrder{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) Save(ctx context.Context, o *model.SalesOrder) error {
	res := r.db.WithContext(ctx).
		Model(&model.SalesOrder{}).
		Where("id = ?", o.ID).
		Updates(map[string]interface{}{
			"status":          o.Status,
			"discount_amount": o.DiscountAmount,
			"total_amount":    o.TotalAmount,
			"paid_amount":     o.PaidAmount,
			"promo_id":        o.PromoID,
			"remark":          o.Remark,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderGormRepository) ListItemsByOrderID(ctx context.Context, orderID int64) ([]model.SalesOrderItem, error) {
	var items []model.SalesOrderItem
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("line_no asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *OrderGormRepository) List(ctx context.Context, q repo.OrderQuery) ([]model.SalesOrder, int64, error) {
	var orders []model.SalesOrder
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.SalesOrder{})
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	if q.MemberID != nil {
		tx = tx.Where("member_id = ?", *q.MemberID)
	}

	if err := tx.Count(&total).Error; err != nil {
		return []model.SalesOrder{}, 0, err
	}

	offset := (q.Page - 1) * q.Limit
	if err := tx.Order("created_at desc").Order("id desc").
		Offset(offset).Limit(q.Limit).Find(&orders).Error; err != nil {
		return []model.SalesOrder{}, 0, err
	}
	return orders, total, nil
}

func (r *OrderGormRepository) CreatePayment(ctx context.Context, p model.Payment) error {
	return r.db.WithContext(ctx).Create(&p).Error
}

func (r *OrderGormRepository) CreateShipment(ctx context.Context, s model.Shipment) error {
	return r.db.WithContext(ctx).Create(&s).Error
}
