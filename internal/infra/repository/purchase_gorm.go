package repository

import (
	"context"
	"errors"

	"erp/internal/domain/model"
	repo "erp/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PurchaseGormRepository struct {
	db *gorm.DB
}

// DI
func NewPurchaseGormRepository(db *gorm.DB) *PurchaseGormRepository {
	return &PurchaseGormRepository{db: db}
}

func (r *PurchaseGormRepository) CreateSupplier(ctx context.Context, s model.Supplier) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&s).Error; err != nil {
		return 0, err
	}
	return s.ID, nil
}

func (r *PurchaseGormRepository) FindSupplier(ctx context.Context, id int64) (model.Supplier, error) {
	var s model.Supplier
	err := r.db.WithContext(ctx).First(&s, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Supplier{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Supplier{}, err
	}
	return s, nil
}

func (r *PurchaseGormRepository) SaveSupplier(ctx context.Context, s *model.Supplier) error {
	res := r.db.WithContext(ctx).
		Model(&model.Supplier{}).
		Where("id = ?", s.ID).
		Updates(map[string]interface{}{
			"name":          s.Name,
			"contact_name":  s.ContactName,
			"contact_phone": s.ContactPhone,
			"address":       s.Address,
			"status":        s.Status,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *PurchaseGormRepository) ListSuppliers(ctx context.Context, page, limit int) ([]model.Supplier, int64, error) {
	var suppliers []model.Supplier
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Supplier{})
	if err := tx.Count(&total).Error; err != nil {
		return []model.Supplier{}, 0, err
	}

	offset := (page - 1) * limit
	if err := tx.Order("id asc").Offset(offset).Limit(limit).Find(&suppliers).Error; err != nil {
		return []model.Supplier{}, 0, err
	}
	return suppliers, total, nil
}

func (r *PurchaseGormRepository) CreateOrder(ctx context.Context, po model.PurchaseOrder) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&po).Error; err != nil {
		return 0, err
	}
	return po.ID, nil
}

func (r *PurchaseGormRepository) CreateOrderItems(ctx context.Context, poID int64, items []model.PurchaseOrderItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].PoID = poID
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *PurchaseGormRepository) FindOrderByNo(ctx context.Context, poNo string) (model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	err := r.db.WithContext(ctx).Where("po_no = ?", poNo).First(&po).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.PurchaseOrder{}, repo.ErrNotFound
	}
	if err != nil {
		return model.PurchaseOrder{}, err
	}
	return po, nil
}

// 承認/入庫の状態遷移はロック下で判定する
func (r *PurchaseGormRepository) FindOrderByNoForUpdate(ctx context.Context, poNo string) (model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("po_no = ?", poNo).
		First(&po).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.PurchaseOrder{}, repo.ErrNotFound
	}
	if err != nil {
		return model.PurchaseOrder{}, err
	}
	return po, nil
}

func (r *PurchaseGormRepository) SaveOrder(ctx context.Context, po *model.PurchaseOrder) error {
	res := r.db.WithContext(ctx).
		Model(&model.PurchaseOrder{}).
		Where("id = ?", po.ID).
		Updates(map[string]interface{}{
			"status":      po.Status,
			"approved_by": po.ApprovedBy,
			"approved_at": po.ApprovedAt,
			"received_at": po.ReceivedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *PurchaseGormRepository) ListOrderItems(ctx context.Context, poID int64) ([]model.PurchaseOrderItem, error) {
	var items []model.PurchaseOrderItem
	err := r.db.WithContext(ctx).
		Where("po_id = ?", poID).
		Order("line_no asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PurchaseGormRepository) ListOrders(ctx context.Context, q repo.PurchaseOrderQuery) ([]model.PurchaseOrder, int64, error) {
	var orders []model.PurchaseOrder
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.PurchaseOrder{})
	if q.SupplierID != nil {
		tx = tx.Where("supplier_id = ?", *q.SupplierID)
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}

	if err := tx.Count(&total).Error; err != nil {
		return []model.PurchaseOrder{}, 0, err
	}

	offset := (q.Page - 1) * q.Limit
	if err := tx.Order("created_at desc").Order("id desc").
		Offset(offset).Limit(q.Limit).Find(&orders).Error; err != nil {
		return []model.PurchaseOrder{}, 0, err
	}
	return orders, total, nil
}
