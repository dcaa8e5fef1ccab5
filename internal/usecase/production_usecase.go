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

type ProductionUsecase struct {
	tx     repo.TransactionManager
	stocks *StockUsecase
}

func NewProductionUsecase(tx repo.TransactionManager, stocks *StockUsecase) *ProductionUsecase {
	return &ProductionUsecase{tx: tx, stocks: stocks}
}

type BomItemInput struct {
	ComponentSkuID string          `json:"component_sku_id"`
	Qty            decimal.Decimal `json:"qty"`
}

type BomInput struct {
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	SkuID        string          `json:"sku_id"`
	StdLaborRate decimal.Decimal `json:"std_labor_rate"`
	Items        []BomItemInput  `json:"items"`
}

func (u *ProductionUsecase) CreateBom(ctx context.Context, in BomInput) (int64, error) {
	if in.Code == "" || in.SkuID == "" || len(in.Items) == 0 {
		return 0, apperr.Validation("code, sku_id and items are required")
	}
	for _, it := range in.Items {
		if it.ComponentSkuID == "" || !it.Qty.IsPositive() {
			return 0, apperr.Validation("each bom item needs component_sku_id and positive qty")
		}
	}

	var id int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		id, err = r.Productions().CreateBom(ctx, model.BomTemplate{
			Code:         in.Code,
			Name:         in.Name,
			SkuID:        in.SkuID,
			StdLaborRate: in.StdLaborRate,
			Status:       "ACTIVE",
		})
		if err != nil {
			return err
		}

		items := make([]model.BomTemplateItem, 0, len(in.Items))
		for _, it := range in.Items {
			items = append(items, model.BomTemplateItem{
				ComponentSkuID: it.ComponentSkuID,
				Qty:            it.Qty,
			})
		}
		return r.Productions().CreateBomItems(ctx, id, items)
	})
	return id, err
}

func (u *ProductionUsecase) ListBoms(ctx context.Context, page, limit int) ([]model.BomTemplate, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var boms []model.BomTemplate
	var total int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		boms, total, err = r.Productions().ListBoms(ctx, page, limit)
		return err
	})
	return boms, total, err
}

type CreateMoInput struct {
	BomID       int64           `json:"bom_id"`
	WarehouseID int64           `json:"warehouse_id"`
	PlannedQty  decimal.Decimal `json:"planned_qty"`
	Operator    string
}

func (u *ProductionUsecase) CreateMo(ctx context.Context, in CreateMoInput) (string, error) {
	if in.BomID <= 0 || in.WarehouseID <= 0 || !in.PlannedQty.IsPositive() {
		return "", apperr.Validation("bom_id, warehouse_id and positive planned_qty are required")
	}

	moNo := newRefNo("MO")
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		bom, err := r.Productions().FindBom(ctx, in.BomID)
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("bom template")
		}
		if err != nil {
			return err
		}

		_, err = r.Productions().CreateMo(ctx, model.ManufactureOrder{
			MoNo:         moNo,
			BomID:        bom.ID,
			SkuID:        bom.SkuID,
			WarehouseID:  in.WarehouseID,
			PlannedQty:   in.PlannedQty,
			CompletedQty: decimal.Zero,
			Status:       model.MoStatusPlanned,
			CreatedBy:    in.Operator,
		})
		return err
	})
	if err != nil {
		return "", err
	}
	return moNo, nil
}

// StartはPLANNED→IN_PROGRESS。MoStartedファクトを積む。
func (u *ProductionUsecase) Start(ctx context.Context, moNo, operator string) error {
	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		mo, err := r.Productions().FindMoByNoForUpdate(ctx, moNo)
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("manufacture order")
		}
		if err != nil {
			return err
		}
		if mo.Status != model.MoStatusPlanned {
			return apperr.Conflict("manufacture order is not PLANNED: " + moNo)
		}

		now := time.Now().UTC()
		mo.Status = model.MoStatusInProgress
		mo.StartedAt = &now
		if err := r.Productions().SaveMo(ctx, &mo); err != nil {
			return err
		}

		ev, err := event.New(event.TypeMoStarted, "mo", moNo, operator, event.MoStartedPayload{
			MoNo:       moNo,
			SkuID:      mo.SkuID,
			PlannedQty: mo.PlannedQty,
		})
		if err != nil {
			return err
		}
		return appendFact(ctx, r, event.TopicMoEvents, ev)
	})
}

type CompleteMoInput struct {
	MoNo         string          `json:"mo_no"`
	CompletedQty decimal.Decimal `json:"completed_qty"`
	Operator     string
}

// CompleteはIN_PROGRESS→COMPLETED。
// 部材を出庫し、完成品を入庫し、原価ロールアップに必要な全部入りの
// MoCompletedファクトを積む。部材不足なら状態遷移ごと失敗する。
func (u *ProductionUsecase) Complete(ctx context.Context, in CompleteMoInput) error {
	if in.MoNo == "" || !in.CompletedQty.IsPositive() {
		return apperr.Validation("mo_no and positive completed_qty are required")
	}

	var mo model.ManufactureOrder
	var components []event.ComponentUsage
	var laborRate, workHours decimal.Decimal

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		mo, err = r.Productions().FindMoByNoForUpdate(ctx, in.MoNo)
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("manufacture order")
		}
		if err != nil {
			return err
		}
		if mo.Status != model.MoStatusInProgress {
			return apperr.Conflict("manufacture order is not IN_PROGRESS: " + in.MoNo)
		}
		if in.CompletedQty.GreaterThan(mo.PlannedQty) {
			return apperr.Validation("completed_qty exceeds planned_qty")
		}

		bom, err := r.Productions().FindBom(ctx, mo.BomID)
		if err != nil {
			return err
		}
		laborRate = bom.StdLaborRate

		bomItems, err := r.Productions().ListBomItems(ctx, bom.ID)
		if err != nil {
			return err
		}

		// 完成数量に比例した部材使用。単価は在庫行の移動平均原価。
		// 可用在庫が足りなければここで落とし、状態遷移ごとロールバックする。
		for _, bi := range bomItems {
			need := bi.Qty.Mul(in.CompletedQty)
			line, err := r.Stocks().FindLine(ctx, bi.ComponentSkuID, mo.WarehouseID)
			unitCost := decimal.Zero
			if err == nil {
				unitCost = line.AvgCost
			} else if !errors.Is(err, repo.ErrNotFound) {
				return err
			}
			if need.IsPositive() && line.AvailableQty().LessThan(need) {
				return apperr.InsufficientStock(bi.ComponentSkuID, line.AvailableQty(), need)
			}
			components = append(components, event.ComponentUsage{
				SkuID:    bi.ComponentSkuID,
				Qty:      need,
				UnitCost: unitCost,
			})
		}

		workHours, err = r.Jobs().SumWorkHoursByMoNo(ctx, in.MoNo)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		mo.Status = model.MoStatusCompleted
		mo.CompletedQty = in.CompletedQty
		mo.CompletedAt = &now
		if err := r.Productions().SaveMo(ctx, &mo); err != nil {
			return err
		}

		ev, err := event.New(event.TypeMoCompleted, "mo", in.MoNo, in.Operator, event.MoCompletedPayload{
			MoNo:         in.MoNo,
			SkuID:        mo.SkuID,
			WarehouseID:  mo.WarehouseID,
			CompletedQty: in.CompletedQty,
			Components:   components,
			WorkHours:    workHours,
			LaborRate:    laborRate,
			Period:       now.Format("2006-01"),
		})
		if err != nil {
			return err
		}
		return appendFact(ctx, r, event.TopicMoEvents, ev)
	})
	if err != nil {
		return err
	}

	// 部材出庫（予約なしの直接減算）
	for _, c := range components {
		if !c.Qty.IsPositive() {
			continue
		}
		if _, err := u.stocks.MoveOut(ctx, MoveInput{
			SkuID:       c.SkuID,
			WarehouseID: mo.WarehouseID,
			Qty:         c.Qty,
			UnitCost:    c.UnitCost,
			SourceType:  model.SourceTypeProduction,
			SourceNo:    in.MoNo,
			Operator:    in.Operator,
		}); err != nil {
			return err
		}
	}

	// 完成品入庫。単価 = (部材計+労務)/完成数
	material := decimal.Zero
	for _, c := range components {
		material = material.Add(c.Qty.Mul(c.UnitCost))
	}
	unitCost := material.Add(workHours.Mul(laborRate)).DivRound(in.CompletedQty, 4)

	_, err = u.stocks.MoveIn(ctx, MoveInput{
		SkuID:       mo.SkuID,
		WarehouseID: mo.WarehouseID,
		Qty:         in.CompletedQty,
		UnitCost:    unitCost,
		SourceType:  model.SourceTypeProduction,
		SourceNo:    in.MoNo,
		Operator:    in.Operator,
	})
	return err
}

func (u *ProductionUsecase) GetMo(ctx context.Context, moNo string) (model.ManufactureOrder, error) {
	var mo model.ManufactureOrder
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		mo, err = r.Productions().FindMoByNo(ctx, moNo)
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("manufacture order")
		}
		return err
	})
	return mo, err
}

func (u *ProductionUsecase) ListMos(ctx context.Context, q repo.MoQuery) ([]model.ManufactureOrder, int64, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 200 {
		q.Limit = 50
	}

	var mos []model.ManufactureOrder
	var total int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		mos, total, err = r.Productions().ListMos(ctx, q)
		return err
	})
	return mos, total, err
}
