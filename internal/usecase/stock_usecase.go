package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"erp/internal/apperr"
	"erp/internal/domain/model"
	"erp/internal/event"
	"erp/internal/infra/metrics"
	repo "erp/internal/repository"

	"github.com/shopspring/decimal"
)

type StockUsecase struct {
	tx repo.TransactionManager
}

func NewStockUsecase(tx repo.TransactionManager) *StockUsecase {
	return &StockUsecase{tx: tx}
}

type LockLine struct {
	SkuID       string          `json:"sku_id"`
	WarehouseID int64           `json:"warehouse_id"`
	Qty         decimal.Decimal `json:"quantity"`
}

type LockInput struct {
	OrderRef  string
	OrderType model.SourceType
	Lines     []LockLine
	Operator  string
}

// Lockは全明細の予約を1トランザクションで取る。1行でも不足なら全体が失敗し、
// 部分的なロックは残らない。行ロックは(sku, warehouse)昇順で取得する。
func (u *StockUsecase) Lock(ctx context.Context, in LockInput) error {
	if in.OrderRef == "" || len(in.Lines) == 0 {
		return apperr.Validation("order_ref and items are required")
	}
	for _, l := range in.Lines {
		if l.SkuID == "" || l.WarehouseID <= 0 || !l.Qty.IsPositive() {
			return apperr.Validation("each line needs sku_id, warehouse_id and positive quantity")
		}
	}

	lines := make([]LockLine, len(in.Lines))
	copy(lines, in.Lines)
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].SkuID != lines[j].SkuID {
			return lines[i].SkuID < lines[j].SkuID
		}
		return lines[i].WarehouseID < lines[j].WarehouseID
	})

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		for _, l := range lines {
			line, err := r.Stocks().FindLineForUpdate(ctx, l.SkuID, l.WarehouseID)
			if errors.Is(err, repo.ErrNotFound) {
				metrics.InsufficientStock.Inc()
				return apperr.InsufficientStock(l.SkuID, decimal.Zero, l.Qty)
			}
			if err != nil {
				return err
			}

			if line.AvailableQty().LessThan(l.Qty) {
				// トランザクションごと巻き戻るので先行明細の加算も消える
				metrics.InsufficientStock.Inc()
				return apperr.InsufficientStock(l.SkuID, line.AvailableQty(), l.Qty)
			}

			line.LockedQty = line.LockedQty.Add(l.Qty)
			if err := r.Stocks().SaveLine(ctx, &line); err != nil {
				return err
			}

			if err := r.Stocks().CreateLock(ctx, model.StockLock{
				LockNo:      newRefNo("LK"),
				SkuID:       l.SkuID,
				WarehouseID: l.WarehouseID,
				Qty:         l.Qty,
				Status:      model.LockStatusActive,
				SourceType:  in.OrderType,
				SourceNo:    in.OrderRef,
				Operator:    in.Operator,
			}); err != nil {
				return err
			}

			if err := r.Stocks().CreateMovement(ctx, model.StockMovement{
				MoveNo:      newRefNo("MV"),
				SkuID:       l.SkuID,
				WarehouseID: l.WarehouseID,
				MoveType:    model.MoveTypeLock,
				Qty:         l.Qty,
				BeforeQty:   line.Qty,
				AfterQty:    line.Qty,
				UnitCost:    line.AvgCost,
				SourceType:  in.OrderType,
				SourceNo:    in.OrderRef,
				Operator:    in.Operator,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	metrics.StockLocksCreated.Inc()
	return nil
}

// Unlockは参照に紐づくACTIVEロックを全て解放する。
// ACTIVEロックがなければ何もしない成功（冪等）。
func (u *StockUsecase) Unlock(ctx context.Context, orderRef, operator string) error {
	if orderRef == "" {
		return apperr.Validation("order_ref is required")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		locks, err := r.Stocks().FindActiveLocksByRef(ctx, orderRef)
		if err != nil {
			return err
		}
		for i := range locks {
			lk := locks[i]
			line, err := r.Stocks().FindLineForUpdate(ctx, lk.SkuID, lk.WarehouseID)
			if err != nil {
				return err
			}

			line.LockedQty = line.LockedQty.Sub(lk.Qty)
			if err := r.Stocks().SaveLine(ctx, &line); err != nil {
				return err
			}

			now := time.Now().UTC()
			lk.Status = model.LockStatusReleased
			lk.ReleasedAt = &now
			if err := r.Stocks().SaveLock(ctx, &lk); err != nil {
				return err
			}

			if err := r.Stocks().CreateMovement(ctx, model.StockMovement{
				MoveNo:      newRefNo("MV"),
				SkuID:       lk.SkuID,
				WarehouseID: lk.WarehouseID,
				MoveType:    model.MoveTypeUnlock,
				Qty:         lk.Qty,
				BeforeQty:   line.Qty,
				AfterQty:    line.Qty,
				UnitCost:    line.AvgCost,
				SourceType:  lk.SourceType,
				SourceNo:    orderRef,
				Operator:    operator,
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

type MoveInput struct {
	SkuID       string          `json:"sku_id"`
	WarehouseID int64           `json:"warehouse_id"`
	Qty         decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	SourceType  model.SourceType
	SourceNo    string
	MoveType    model.MoveType
	Operator    string
}

type MoveOutput struct {
	SkuID        string          `json:"sku_id"`
	WarehouseID  int64           `json:"warehouse_id"`
	OnHandQty    decimal.Decimal `json:"on_hand_qty"`
	LockedQty    decimal.Decimal `json:"locked_qty"`
	AvailableQty decimal.Decimal `json:"available_qty"`
}

// MoveInは入庫。在庫行の平均原価を移動加重平均で更新する。
func (u *StockUsecase) MoveIn(ctx context.Context, in MoveInput) (MoveOutput, error) {
	if in.SkuID == "" || in.WarehouseID <= 0 || !in.Qty.IsPositive() {
		return MoveOutput{}, apperr.Validation("sku_id, warehouse_id and positive quantity are required")
	}
	if in.UnitCost.IsNegative() {
		return MoveOutput{}, apperr.Validation("unit_cost must not be negative")
	}
	moveType := in.MoveType
	if moveType == "" {
		moveType = model.MoveTypeIn
	}

	var out MoveOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		line, err := r.Stocks().FindOrCreateLineForUpdate(ctx, in.SkuID, in.WarehouseID)
		if err != nil {
			return err
		}

		before := line.Qty
		after := before.Add(in.Qty)

		// 移動加重平均: (既存数量×既存原価 + 入庫数量×入庫原価) / 合計数量
		total := before.Mul(line.AvgCost).Add(in.Qty.Mul(in.UnitCost))
		line.AvgCost = total.DivRound(after, 4)
		line.Qty = after
		if err := r.Stocks().SaveLine(ctx, &line); err != nil {
			return err
		}

		if err := r.Stocks().CreateMovement(ctx, model.StockMovement{
			MoveNo:      newRefNo("MV"),
			SkuID:       in.SkuID,
			WarehouseID: in.WarehouseID,
			MoveType:    moveType,
			Qty:         in.Qty,
			BeforeQty:   before,
			AfterQty:    after,
			UnitCost:    in.UnitCost,
			SourceType:  in.SourceType,
			SourceNo:    in.SourceNo,
			Operator:    in.Operator,
		}); err != nil {
			return err
		}

		payload := event.StockChangedPayload{
			SkuID:       in.SkuID,
			WarehouseID: in.WarehouseID,
			MoveType:    string(moveType),
			Qty:         in.Qty,
			BeforeQty:   before,
			AfterQty:    after,
			UnitCost:    in.UnitCost,
			SourceType:  string(in.SourceType),
			SourceNo:    in.SourceNo,
		}
		for _, typ := range []string{event.TypeStockIn, event.TypeStockChanged} {
			ev, err := event.New(typ, "stock", in.SkuID, in.Operator, payload)
			if err != nil {
				return err
			}
			if err := appendFact(ctx, r, event.TopicStockEvents, ev); err != nil {
				return err
			}
		}

		out = MoveOutput{
			SkuID:        line.SkuID,
			WarehouseID:  line.WarehouseID,
			OnHandQty:    line.Qty,
			LockedQty:    line.LockedQty,
			AvailableQty: line.AvailableQty(),
		}
		return nil
	})
	if err != nil {
		return MoveOutput{}, err
	}
	return out, nil
}

// MoveOutは出庫。同一参照のACTIVEロックがあれば予約を消費し、
// なければ「この参照以外の予約を除いた利用可能量」を下回らない範囲で直接減算する。
func (u *StockUsecase) MoveOut(ctx context.Context, in MoveInput) (MoveOutput, error) {
	if in.SkuID == "" || in.WarehouseID <= 0 || !in.Qty.IsPositive() {
		return MoveOutput{}, apperr.Validation("sku_id, warehouse_id and positive quantity are required")
	}
	moveType := in.MoveType
	if moveType == "" {
		moveType = model.MoveTypeOut
	}

	var out MoveOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		line, err := r.Stocks().FindLineForUpdate(ctx, in.SkuID, in.WarehouseID)
		if errors.Is(err, repo.ErrNotFound) {
			metrics.InsufficientStock.Inc()
			return apperr.InsufficientStock(in.SkuID, decimal.Zero, in.Qty)
		}
		if err != nil {
			return err
		}

		// 同一参照のACTIVEロックを探す
		var matched *model.StockLock
		if in.SourceNo != "" {
			locks, err := r.Stocks().FindActiveLocksByRef(ctx, in.SourceNo)
			if err != nil {
				return err
			}
			for i := range locks {
				if locks[i].SkuID == in.SkuID && locks[i].WarehouseID == in.WarehouseID {
					matched = &locks[i]
					break
				}
			}
		}

		before := line.Qty

		if matched != nil {
			// 予約の消費。出せるのは「他参照の予約を除いた利用可能量」まで。
			// ロック数量を超える出庫を通すと他参照の予約を侵食する。
			avail := line.Qty.Sub(line.LockedQty.Sub(matched.Qty))
			if avail.LessThan(in.Qty) {
				metrics.InsufficientStock.Inc()
				return apperr.InsufficientStock(in.SkuID, avail, in.Qty)
			}
			line.Qty = line.Qty.Sub(in.Qty)
			line.LockedQty = line.LockedQty.Sub(matched.Qty)

			now := time.Now().UTC()
			matched.Status = model.LockStatusReleased
			matched.Consumed = true
			matched.ReleasedAt = &now
			if err := r.Stocks().SaveLock(ctx, matched); err != nil {
				return err
			}
		} else {
			// 直接減算。他参照の予約を侵食しないこと。
			avail := line.AvailableQty()
			if avail.LessThan(in.Qty) {
				metrics.InsufficientStock.Inc()
				return apperr.InsufficientStock(in.SkuID, avail, in.Qty)
			}
			line.Qty = line.Qty.Sub(in.Qty)
		}

		if err := r.Stocks().SaveLine(ctx, &line); err != nil {
			return err
		}

		unitCost := in.UnitCost
		if unitCost.IsZero() {
			unitCost = line.AvgCost
		}
		if err := r.Stocks().CreateMovement(ctx, model.StockMovement{
			MoveNo:      newRefNo("MV"),
			SkuID:       in.SkuID,
			WarehouseID: in.WarehouseID,
			MoveType:    moveType,
			Qty:         in.Qty,
			BeforeQty:   before,
			AfterQty:    line.Qty,
			UnitCost:    unitCost,
			SourceType:  in.SourceType,
			SourceNo:    in.SourceNo,
			Operator:    in.Operator,
		}); err != nil {
			return err
		}

		payload := event.StockChangedPayload{
			SkuID:       in.SkuID,
			WarehouseID: in.WarehouseID,
			MoveType:    string(moveType),
			Qty:         in.Qty,
			BeforeQty:   before,
			AfterQty:    line.Qty,
			UnitCost:    unitCost,
			SourceType:  string(in.SourceType),
			SourceNo:    in.SourceNo,
		}
		for _, typ := range []string{event.TypeStockOut, event.TypeStockChanged} {
			ev, err := event.New(typ, "stock", in.SkuID, in.Operator, payload)
			if err != nil {
				return err
			}
			if err := appendFact(ctx, r, event.TopicStockEvents, ev); err != nil {
				return err
			}
		}

		out = MoveOutput{
			SkuID:        line.SkuID,
			WarehouseID:  line.WarehouseID,
			OnHandQty:    line.Qty,
			LockedQty:    line.LockedQty,
			AvailableQty: line.AvailableQty(),
		}
		return nil
	})
	if err != nil {
		return MoveOutput{}, err
	}
	return out, nil
}

// ConsumeLockedはOrderPaid消費時の出庫。参照のACTIVEロックを全て
// OUT移動へ変換する。ACTIVEロックがなければ何もしない（冪等）。
func (u *StockUsecase) ConsumeLocked(ctx context.Context, orderRef, operator string) error {
	if orderRef == "" {
		return apperr.Validation("order_ref is required")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		locks, err := r.Stocks().FindActiveLocksByRef(ctx, orderRef)
		if err != nil {
			return err
		}
		for i := range locks {
			lk := locks[i]
			line, err := r.Stocks().FindLineForUpdate(ctx, lk.SkuID, lk.WarehouseID)
			if err != nil {
				return err
			}

			before := line.Qty
			line.Qty = line.Qty.Sub(lk.Qty)
			line.LockedQty = line.LockedQty.Sub(lk.Qty)
			if err := r.Stocks().SaveLine(ctx, &line); err != nil {
				return err
			}

			now := time.Now().UTC()
			lk.Status = model.LockStatusReleased
			lk.Consumed = true
			lk.ReleasedAt = &now
			if err := r.Stocks().SaveLock(ctx, &lk); err != nil {
				return err
			}

			if err := r.Stocks().CreateMovement(ctx, model.StockMovement{
				MoveNo:      newRefNo("MV"),
				SkuID:       lk.SkuID,
				WarehouseID: lk.WarehouseID,
				MoveType:    model.MoveTypeOut,
				Qty:         lk.Qty,
				BeforeQty:   before,
				AfterQty:    line.Qty,
				UnitCost:    line.AvgCost,
				SourceType:  lk.SourceType,
				SourceNo:    orderRef,
				Operator:    operator,
			}); err != nil {
				return err
			}

			payload := event.StockChangedPayload{
				SkuID:       lk.SkuID,
				WarehouseID: lk.WarehouseID,
				MoveType:    string(model.MoveTypeOut),
				Qty:         lk.Qty,
				BeforeQty:   before,
				AfterQty:    line.Qty,
				UnitCost:    line.AvgCost,
				SourceType:  string(lk.SourceType),
				SourceNo:    orderRef,
			}
			for _, typ := range []string{event.TypeStockOut, event.TypeStockChanged} {
				ev, err := event.New(typ, "stock", lk.SkuID, operator, payload)
				if err != nil {
					return err
				}
				if err := appendFact(ctx, r, event.TopicStockEvents, ev); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// ExpireLocksは期限切れACTIVEロックのうち、対応する注文がまだ未払いのものを解放する。
// 解放した参照数を返す。
func (u *StockUsecase) ExpireLocks(ctx context.Context, olderThan time.Duration, limit int) (int, error) {
	before := time.Now().UTC().Add(-olderThan)

	var refs []string
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		locks, err := r.Stocks().FindExpiredActiveLocks(ctx, before, limit)
		if err != nil {
			return err
		}
		seen := map[string]bool{}
		for _, lk := range locks {
			if lk.SourceType != model.SourceTypeSale || seen[lk.SourceNo] {
				continue
			}
			seen[lk.SourceNo] = true

			o, err := r.Orders().FindByOrderNo(ctx, lk.SourceNo)
			if err != nil && !errors.Is(err, repo.ErrNotFound) {
				return err
			}
			// 支払い済み以降の注文のロックは触らない
			if err == nil && o.Status != model.OrderStatusPendingPayment && o.Status != model.OrderStatusCancelled {
				continue
			}
			refs = append(refs, lk.SourceNo)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	released := 0
	for _, ref := range refs {
		if err := u.Unlock(ctx, ref, "system:lock-expiry"); err != nil {
			return released, err
		}
		released++
		metrics.LocksExpired.Inc()
	}
	return released, nil
}

func (u *StockUsecase) GetLine(ctx context.Context, skuID string, warehouseID int64) (MoveOutput, error) {
	var out MoveOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		line, err := r.Stocks().FindLine(ctx, skuID, warehouseID)
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("stock line")
		}
		if err != nil {
			return err
		}
		out = MoveOutput{
			SkuID:        line.SkuID,
			WarehouseID:  line.WarehouseID,
			OnHandQty:    line.Qty,
			LockedQty:    line.LockedQty,
			AvailableQty: line.AvailableQty(),
		}
		return nil
	})
	return out, err
}

func (u *StockUsecase) ListMovements(ctx context.Context, q repo.MovementQuery) ([]model.StockMovement, int64, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 200 {
		q.Limit = 50
	}

	var moves []model.StockMovement
	var total int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		moves, total, err = r.Stocks().ListMovements(ctx, q)
		return err
	})
	return moves, total, err
}

func (u *StockUsecase) ListLocksByRef(ctx context.Context, orderRef string) ([]model.StockLock, error) {
	var locks []model.StockLock
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		locks, err = r.Stocks().FindActiveLocksByRef(ctx, orderRef)
		return err
	})
	return locks, err
}

func (u *StockUsecase) ListWarehouses(ctx context.Context) ([]model.Warehouse, error) {
	var ws []model.Warehouse
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		ws, err = r.Stocks().ListWarehouses(ctx)
		return err
	})
	return ws, err
}

func (u *StockUsecase) CreateWarehouse(ctx context.Context, code, name, address string) (int64, error) {
	if code == "" || name == "" {
		return 0, apperr.Validation("code and name are required")
	}
	var id int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		id, err = r.Stocks().CreateWarehouse(ctx, model.Warehouse{Code: code, Name: name, Address: address})
		return err
	})
	return id, err
}
