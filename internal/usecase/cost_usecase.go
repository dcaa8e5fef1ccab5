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

type CostUsecase struct {
	tx repo.TransactionManager
}

func NewCostUsecase(tx repo.TransactionManager) *CostUsecase {
	return &CostUsecase{tx: tx}
}

// ApplyStockChangedはStockChangedファクトから原価を更新する。
// 対象はPURCHASE由来のIN移動のみ。それ以外は黙って無視する。
// 同一(sku, period, PURCHASE)キーの行を丸ごと置き換える（last-write-wins）。
func (u *CostUsecase) ApplyStockChanged(ctx context.Context, ev event.Event) error {
	p, err := event.DecodePayload[event.StockChangedPayload](ev)
	if err != nil {
		return err
	}
	if p.SourceType != string(model.SourceTypePurchase) || p.MoveType != string(model.MoveTypeIn) {
		return nil
	}

	period := ev.OccurredAt.UTC().Format("2006-01")

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// コンシューマ冪等ガード。重複配信は処理済みとして捨てる。
		first, err := r.ProcessedEvents().MarkProcessed(ctx, ev.EventID, "cost-recalculator")
		if err != nil {
			return err
		}
		if !first {
			return nil
		}

		// 移動加重平均: 入庫前の数量・原価は移動自体が運んでくる
		priorQty := p.BeforeQty
		var priorCost decimal.Decimal
		sheet, err := r.Costs().FindByKey(ctx, p.SkuID, period, model.CostTypePurchase)
		if err == nil {
			priorCost = sheet.UnitCost
		} else if !errors.Is(err, repo.ErrNotFound) {
			return err
		}

		newQty := priorQty.Add(p.Qty)
		if !newQty.IsPositive() {
			return nil
		}
		unitCost := priorQty.Mul(priorCost).Add(p.Qty.Mul(p.UnitCost)).DivRound(newQty, 4)
		totalCost := unitCost.Mul(newQty)

		if err := r.Costs().Replace(ctx, model.CostSheet{
			SheetNo:      newRefNo("CS"),
			SkuID:        p.SkuID,
			Period:       period,
			CostType:     model.CostTypePurchase,
			Qty:          newQty,
			MaterialCost: totalCost,
			LaborCost:    decimal.Zero,
			UnitCost:     unitCost,
			TotalCost:    totalCost,
			SourceNo:     p.SourceNo,
		}); err != nil {
			return err
		}

		out, err := event.New(event.TypeCostCalculated, "cost", p.SkuID, "system:cost", event.CostCalculatedPayload{
			SkuID:     p.SkuID,
			Period:    period,
			CostType:  string(model.CostTypePurchase),
			UnitCost:  unitCost,
			TotalCost: totalCost,
		})
		if err != nil {
			return err
		}
		return appendFact(ctx, r, event.TopicCostEvents, out)
	})
}

// ApplyMoCompletedはMoCompletedファクトから生産原価を計算する。
// 原価 = Σ(構成部材数量×部材単価) + 工数×工賃。(sku, period, PRODUCE)で置き換え。
func (u *CostUsecase) ApplyMoCompleted(ctx context.Context, ev event.Event) error {
	p, err := event.DecodePayload[event.MoCompletedPayload](ev)
	if err != nil {
		return err
	}
	if !p.CompletedQty.IsPositive() {
		return nil
	}

	period := p.Period
	if period == "" {
		period = ev.OccurredAt.UTC().Format("2006-01")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		first, err := r.ProcessedEvents().MarkProcessed(ctx, ev.EventID, "cost-recalculator")
		if err != nil {
			return err
		}
		if !first {
			return nil
		}

		material := decimal.Zero
		for _, c := range p.Components {
			material = material.Add(c.Qty.Mul(c.UnitCost))
		}
		labor := p.WorkHours.Mul(p.LaborRate)
		total := material.Add(labor)
		unitCost := total.DivRound(p.CompletedQty, 4)

		if err := r.Costs().Replace(ctx, model.CostSheet{
			SheetNo:      newRefNo("CS"),
			SkuID:        p.SkuID,
			Period:       period,
			CostType:     model.CostTypeProduce,
			Qty:          p.CompletedQty,
			MaterialCost: material,
			LaborCost:    labor,
			UnitCost:     unitCost,
			TotalCost:    total,
			SourceNo:     p.MoNo,
		}); err != nil {
			return err
		}

		out, err := event.New(event.TypeCostCalculated, "cost", p.SkuID, "system:cost", event.CostCalculatedPayload{
			SkuID:     p.SkuID,
			Period:    period,
			CostType:  string(model.CostTypeProduce),
			UnitCost:  unitCost,
			TotalCost: total,
		})
		if err != nil {
			return err
		}
		return appendFact(ctx, r, event.TopicCostEvents, out)
	})
}

func (u *CostUsecase) Get(ctx context.Context, skuID, period, costType string) (model.CostSheet, error) {
	var sheet model.CostSheet
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		sheet, err = r.Costs().FindByKey(ctx, skuID, period, model.CostType(costType))
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("cost sheet")
		}
		return err
	})
	return sheet, err
}

func (u *CostUsecase) List(ctx context.Context, q repo.CostQuery) ([]model.CostSheet, int64, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 200 {
		q.Limit = 50
	}

	var sheets []model.CostSheet
	var total int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		sheets, total, err = r.Costs().List(ctx, q)
		return err
	})
	return sheets, total, err
}

// CurrentPeriodは"YYYY-MM"
func CurrentPeriod() string {
	return time.Now().UTC().Format("2006-01")
}
