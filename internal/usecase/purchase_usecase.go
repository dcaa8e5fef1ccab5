package usecase

import (
	"context"
	"errors"
	"time"

	"erp/internal/apperr"
	"erp/internal/domain/model"
	"erp/internal/event"
	repo "erp/internal/repository"

	"github.com/shopspring/decimal"
)

type PurchaseUsecase struct {
	tx     repo.TransactionManager
	stocks *StockUsecase
}

func NewPurchaseUsecase(tx repo.TransactionManager, stocks *StockUsecase) *PurchaseUsecase {
	return &PurchaseUsecase{tx: tx, stocks: stocks}
}

type SupplierInput struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	ContactName  string `json:"contact_name"`
	ContactPhone string `json:"contact_phone"`
	Address      string `json:"address"`
}

func (u *PurchaseUsecase) CreateSupplier(ctx context.Context, in SupplierInput) (int64, error) {
	if in.Code == "" || in.Name == "" {
		return 0, apperr.Validation("code and name are required")
	}

	var id int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		id, err = r.Purchases().CreateSupplier(ctx, model.Supplier{
			Code:         in.Code,
			Name:         in.Name,
			ContactName:  in.ContactName,
			ContactPhone: in.ContactPhone,
			Address:      in.Address,
			Status:       "ACTIVE",
		})
		return err
	})
	return id, err
}

func (u *PurchaseUsecase) ListSuppliers(ctx context.Context, page, limit int) ([]model.Supplier, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var suppliers []model.Supplier
	var total int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		suppliers, total, err = r.Purchases().ListSuppliers(ctx, page, limit)
		return err
	})
	return suppliers, total, err
}

type PoLineInput struct {
	SkuID    string          `json:"sku_id"`
	Qty      decimal.Decimal `json:"qty"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

type CreatePoInput struct {
	SupplierID  int64         `json:"supplier_id"`
	WarehouseID int64         `json:"warehouse_id"`
	Lines       []PoLineInput `json:"lines"`
	Operator    string
}

func (u *PurchaseUsecase) CreateOrder(ctx context.Context, in CreatePoInput) (string, error) {
	if in.SupplierID <= 0 || in.WarehouseID <= 0 || len(in.Lines) == 0 {
		return "", apperr.Validation("supplier_id, warehouse_id and lines are required")
	}
	for _, l := range in.Lines {
		if l.SkuID == "" || !l.Qty.IsPositive() || l.UnitCost.IsNegative() {
			return "", apperr.Validation("each line needs sku_id, positive qty and non-negative unit_cost")
		}
	}

	poNo := newRefNo("PO")
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Purchases().FindSupplier(ctx, in.SupplierID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return apperr.NotFound("supplier")
			}
			return err
		}

		totalQty := decimal.Zero
		totalAmount := decimal.Zero
		items := make([]model.PurchaseOrderItem, 0, len(in.Lines))
		for i, l := range in.Lines {
			it, err := r.Items().FindBySkuID(ctx, l.SkuID)
			if errors.Is(err, repo.ErrNotFound) {
				return apperr.NotFound("item " + l.SkuID)
			}
			if err != nil {
				return err
			}

			amount := l.Qty.Mul(l.UnitCost)
			totalQty = totalQty.Add(l.Qty)
			totalAmount = totalAmount.Add(amount)
			items = append(items, model.PurchaseOrderItem{
				SkuID:    l.SkuID,
				SkuName:  it.Name,
				Qty:      l.Qty,
				UnitCost: l.UnitCost,
				Amount:   amount,
				LineNo:   i + 1,
			})
		}

		poID, err := r.Purchases().CreateOrder(ctx, model.PurchaseOrder{
			PoNo:        poNo,
			SupplierID:  in.SupplierID,
			WarehouseID: in.WarehouseID,
			TotalQty:    totalQty,
			TotalAmount: totalAmount,
			Status:      model.PoStatusDraft,
			CreatedBy:   in.Operator,
		})
		if err != nil {
			return err
		}
		return r.Purchases().CreateOrderItems(ctx, poID, items)
	})
	if err != nil {
		return "", err
	}
	return poNo, nil
}

// ApproveはDRAFT→APPROVED。PoApprovedファクトを同一Txで積む。
func (u *PurchaseUsecase) Approve(ctx context.Context, poNo, operator string, actorUserID int64) error {
	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		po, err := r.Purchases().FindOrderByNoForUpdate(ctx, poNo)
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("purchase order")
		}
		if err != nil {
			return err
		}
		if po.Status != model.PoStatusDraft {
			return apperr.Conflict("purchase order is not in DRAFT: " + poNo)
		}

		now := time.Now().UTC()
		po.Status = model.PoStatusApproved
		po.ApprovedBy = operator
		po.ApprovedAt = &now
		if err := r.Purchases().SaveOrder(ctx, &po); err != nil {
			return err
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorUserID,
			Action:       model.AuditActionApprovePo,
			ResourceType: "purchase_order",
			ResourceID:   poNo,
			BeforeJSON:   `{"status":"DRAFT"}`,
			AfterJSON:    `{"status":"APPROVED"}`,
		}); err != nil {
			return err
		}

		ev, err := event.New(event.TypePoApproved, "po", poNo, operator, event.PoApprovedPayload{
			PoNo:        poNo,
			SupplierID:  po.SupplierID,
			WarehouseID: po.WarehouseID,
			TotalAmount: po.TotalAmount,
		})
		if err != nil {
			return err
		}
		return appendFact(ctx, r, event.TopicPoEvents, ev)
	})
}

// ReceiveはAPPROVED→RECEIVED。全明細をPO行の単価で入庫する。
// 入庫済みPOの再入庫は409 ALREADY_STOCKED_IN。
func (u *PurchaseUsecase) Receive(ctx context.Context, poNo, operator string) error {
	var po model.PurchaseOrder
	var items []model.PurchaseOrderItem

	// 状態遷移とPoInStockファクトを先に確定する
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		po, err = r.Purchases().FindOrderByNoForUpdate(ctx, poNo)
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("purchase order")
		}
		if err != nil {
			return err
		}
		if po.Status == model.PoStatusReceived {
			return apperr.AlreadyStockedIn(poNo)
		}
		if po.Status != model.PoStatusApproved {
			return apperr.Conflict("purchase order is not APPROVED: " + poNo)
		}

		items, err = r.Purchases().ListOrderItems(ctx, po.ID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		po.Status = model.PoStatusReceived
		po.ReceivedAt = &now
		if err := r.Purchases().SaveOrder(ctx, &po); err != nil {
			return err
		}

		lines := make([]event.PoLineView, 0, len(items))
		for _, it := range items {
			lines = append(lines, event.PoLineView{SkuID: it.SkuID, Qty: it.Qty, UnitCost: it.UnitCost})
		}
		ev, err := event.New(event.TypePoInStock, "po", poNo, operator, event.PoInStockPayload{
			PoNo:        poNo,
			WarehouseID: po.WarehouseID,
			Lines:       lines,
		})
		if err != nil {
			return err
		}
		return appendFact(ctx, r, event.TopicPoEvents, ev)
	})
	if err != nil {
		return err
	}

	// 入庫は在庫台帳経由。明細ごとに移動と原価ファクトが出る。
	for _, it := range items {
		if _, err := u.stocks.MoveIn(ctx, MoveInput{
			SkuID:       it.SkuID,
			WarehouseID: po.WarehouseID,
			Qty:         it.Qty,
			UnitCost:    it.UnitCost,
			SourceType:  model.SourceTypePurchase,
			SourceNo:    poNo,
			Operator:    operator,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (u *PurchaseUsecase) Get(ctx context.Context, poNo string) (model.PurchaseOrder, []model.PurchaseOrderItem, error) {
	var po model.PurchaseOrder
	var items []model.PurchaseOrderItem
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		po, err = r.Purchases().FindOrderByNo(ctx, poNo)
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("purchase order")
		}
		if err != nil {
			return err
		}
		items, err = r.Purchases().ListOrderItems(ctx, po.ID)
		return err
	})
	return po, items, err
}

func (u *PurchaseUsecase) List(ctx context.Context, q repo.PurchaseOrderQuery) ([]model.PurchaseOrder, int64, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 200 {
		q.Limit = 50
	}

	var orders []model.PurchaseOrder
	var total int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		orders, total, err = r.Purchases().ListOrders(ctx, q)
		return err
	})
	return orders, total, err
}
