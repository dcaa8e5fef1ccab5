package usecase

import (
	"context"
	"testing"
	"time"

	"erp/internal/apperr"
	"erp/internal/domain/model"
	"erp/internal/event"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func seedStock(tx *memTx, skuID string, warehouseID int64, qty, locked, avgCost string) {
	tx.store.stocks[stockKey(skuID, warehouseID)] = model.Stock{
		ID:          tx.store.nextID(),
		SkuID:       skuID,
		WarehouseID: warehouseID,
		Qty:         d(qty),
		LockedQty:   d(locked),
		AvgCost:     d(avgCost),
	}
}

func assertAppErrCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	ae, ok := apperr.As(err)
	require.True(t, ok, "expected business error, got %v", err)
	assert.Equal(t, code, ae.Code)
}

func TestStockLock_ReservesAllLines(t *testing.T) {
	tx := newMemTx()
	seedStock(tx, "SKU-A", 1, "100", "0", "10")
	seedStock(tx, "SKU-B", 1, "50", "0", "20")
	uc := NewStockUsecase(tx)

	err := uc.Lock(context.Background(), LockInput{
		OrderRef:  "SO-1",
		OrderType: model.SourceTypeSale,
		Lines: []LockLine{
			{SkuID: "SKU-A", WarehouseID: 1, Qty: d("30")},
			{SkuID: "SKU-B", WarehouseID: 1, Qty: d("5")},
		},
		Operator: "alice",
	})
	require.NoError(t, err)

	a := tx.store.stocks[stockKey("SKU-A", 1)]
	assert.True(t, a.LockedQty.Equal(d("30")))
	assert.True(t, a.Qty.Equal(d("100")), "on-hand must not change on lock")
	assert.True(t, a.AvailableQty().Equal(d("70")))

	b := tx.store.stocks[stockKey("SKU-B", 1)]
	assert.True(t, b.LockedQty.Equal(d("5")))

	assert.Len(t, tx.store.locks, 2)
	for _, lk := range tx.store.locks {
		assert.Equal(t, model.LockStatusActive, lk.Status)
		assert.Equal(t, "SO-1", lk.SourceNo)
	}
	assert.Len(t, tx.store.movements, 2)
	assert.Equal(t, model.MoveTypeLock, tx.store.movements[0].MoveType)
}

func TestStockLock_AllOrNothing(t *testing.T) {
	tx := newMemTx()
	seedStock(tx, "SKU-A", 1, "100", "0", "10")
	seedStock(tx, "SKU-B", 1, "3", "0", "20")
	uc := NewStockUsecase(tx)

	err := uc.Lock(context.Background(), LockInput{
		OrderRef:  "SO-2",
		OrderType: model.SourceTypeSale,
		Lines: []LockLine{
			{SkuID: "SKU-A", WarehouseID: 1, Qty: d("10")},
			{SkuID: "SKU-B", WarehouseID: 1, Qty: d("5")}, // 不足
		},
		Operator: "alice",
	})
	assertAppErrCode(t, err, apperr.CodeInsufficientStock)

	// 先行明細の予約も残らない
	a := tx.store.stocks[stockKey("SKU-A", 1)]
	assert.True(t, a.LockedQty.IsZero())
	assert.Empty(t, tx.store.locks)
	assert.Empty(t, tx.store.movements)
}

func TestStockLock_UnknownLineIsInsufficient(t *testing.T) {
	tx := newMemTx()
	uc := NewStockUsecase(tx)

	err := uc.Lock(context.Background(), LockInput{
		OrderRef:  "SO-3",
		OrderType: model.SourceTypeSale,
		Lines:     []LockLine{{SkuID: "SKU-X", WarehouseID: 1, Qty: d("1")}},
	})
	assertAppErrCode(t, err, apperr.CodeInsufficientStock)
}

func TestStockLock_LockedQtyIsNotAvailable(t *testing.T) {
	tx := newMemTx()
	seedStock(tx, "SKU-A", 1, "10", "8", "10")
	uc := NewStockUsecase(tx)

	err := uc.Lock(context.Background(), LockInput{
		OrderRef:  "SO-4",
		OrderType: model.SourceTypeSale,
		Lines:     []LockLine{{SkuID: "SKU-A", WarehouseID: 1, Qty: d("3")}},
	})
	assertAppErrCode(t, err, apperr.CodeInsufficientStock)
}

func TestStockUnlock_ReleasesAndIsIdempotent(t *testing.T) {
	tx := newMemTx()
	seedStock(tx, "SKU-A", 1, "100", "0", "10")
	uc := NewStockUsecase(tx)
	ctx := context.Background()

	require.NoError(t, uc.Lock(ctx, LockInput{
		OrderRef:  "SO-5",
		OrderType: model.SourceTypeSale,
		Lines:     []LockLine{{SkuID: "SKU-A", WarehouseID: 1, Qty: d("40")}},
	}))

	require.NoError(t, uc.Unlock(ctx, "SO-5", "alice"))
	line := tx.store.stocks[stockKey("SKU-A", 1)]
	assert.True(t, line.LockedQty.IsZero())
	assert.Equal(t, model.LockStatusReleased, tx.store.locks[0].Status)
	assert.False(t, tx.store.locks[0].Consumed)
	require.NotNil(t, tx.store.locks[0].ReleasedAt)

	// 再実行は何もしない成功
	moves := len(tx.store.movements)
	require.NoError(t, uc.Unlock(ctx, "SO-5", "alice"))
	assert.Len(t, tx.store.movements, moves)
	assert.True(t, tx.store.stocks[stockKey("SKU-A", 1)].LockedQty.IsZero())
}

func TestStockMoveIn_WeightedAverageCost(t *testing.T) {
	tx := newMemTx()
	uc := NewStockUsecase(tx)
	ctx := context.Background()

	out, err := uc.MoveIn(ctx, MoveInput{
		SkuID: "SKU-A", WarehouseID: 1, Qty: d("10"), UnitCost: d("10"),
		SourceType: model.SourceTypePurchase, SourceNo: "PO-1", Operator: "alice",
	})
	require.NoError(t, err)
	assert.True(t, out.OnHandQty.Equal(d("10")))

	out, err = uc.MoveIn(ctx, MoveInput{
		SkuID: "SKU-A", WarehouseID: 1, Qty: d("10"), UnitCost: d("20"),
		SourceType: model.SourceTypePurchase, SourceNo: "PO-2", Operator: "alice",
	})
	require.NoError(t, err)
	assert.True(t, out.OnHandQty.Equal(d("20")))

	line := tx.store.stocks[stockKey("SKU-A", 1)]
	assert.True(t, line.AvgCost.Equal(d("15")), "avg cost: got %s", line.AvgCost)

	// StockIn + StockChanged を2回ずつoutboxへ
	assert.Len(t, tx.store.outbox, 4)
	for _, msg := range tx.store.outbox {
		assert.Equal(t, event.TopicStockEvents, msg.Topic)
		assert.Equal(t, model.OutboxStatusPending, msg.Status)
	}
}

func TestStockMoveIn_FractionalAverageRounds(t *testing.T) {
	tx := newMemTx()
	uc := NewStockUsecase(tx)
	ctx := context.Background()

	_, err := uc.MoveIn(ctx, MoveInput{
		SkuID: "SKU-A", WarehouseID: 1, Qty: d("3"), UnitCost: d("10"),
		SourceType: model.SourceTypePurchase, SourceNo: "PO-1",
	})
	require.NoError(t, err)
	_, err = uc.MoveIn(ctx, MoveInput{
		SkuID: "SKU-A", WarehouseID: 1, Qty: d("3"), UnitCost: d("11"),
		SourceType: model.SourceTypePurchase, SourceNo: "PO-2",
	})
	require.NoError(t, err)

	// (3*10 + 3*11) / 6 = 10.5
	line := tx.store.stocks[stockKey("SKU-A", 1)]
	assert.True(t, line.AvgCost.Equal(d("10.5")), "got %s", line.AvgCost)
}

func TestStockMoveOut_ConsumesMatchingLock(t *testing.T) {
	tx := newMemTx()
	seedStock(tx, "SKU-A", 1, "100", "0", "10")
	uc := NewStockUsecase(tx)
	ctx := context.Background()

	require.NoError(t, uc.Lock(ctx, LockInput{
		OrderRef:  "SO-6",
		OrderType: model.SourceTypeSale,
		Lines:     []LockLine{{SkuID: "SKU-A", WarehouseID: 1, Qty: d("30")}},
	}))

	out, err := uc.MoveOut(ctx, MoveInput{
		SkuID: "SKU-A", WarehouseID: 1, Qty: d("30"),
		SourceType: model.SourceTypeSale, SourceNo: "SO-6", Operator: "alice",
	})
	require.NoError(t, err)
	assert.True(t, out.OnHandQty.Equal(d("70")))
	assert.True(t, out.LockedQty.IsZero())

	lk := tx.store.locks[0]
	assert.Equal(t, model.LockStatusReleased, lk.Status)
	assert.True(t, lk.Consumed)
}

func TestStockMoveOut_OverLockQtyCannotEatOtherReservations(t *testing.T) {
	tx := newMemTx()
	seedStock(tx, "SKU-A", 1, "10", "0", "10")
	uc := NewStockUsecase(tx)
	ctx := context.Background()

	require.NoError(t, uc.Lock(ctx, LockInput{
		OrderRef: "SO-A", OrderType: model.SourceTypeSale,
		Lines: []LockLine{{SkuID: "SKU-A", WarehouseID: 1, Qty: d("2")}},
	}))
	require.NoError(t, uc.Lock(ctx, LockInput{
		OrderRef: "SO-B", OrderType: model.SourceTypeSale,
		Lines: []LockLine{{SkuID: "SKU-A", WarehouseID: 1, Qty: d("8")}},
	}))

	// SO-Aの予約は2。5を出すとSO-Bの予約3を食って可用がマイナスになる。
	_, err := uc.MoveOut(ctx, MoveInput{
		SkuID: "SKU-A", WarehouseID: 1, Qty: d("5"),
		SourceType: model.SourceTypeSale, SourceNo: "SO-A", Operator: "alice",
	})
	assertAppErrCode(t, err, apperr.CodeInsufficientStock)

	// 在庫もロックも無傷
	line := tx.store.stocks[stockKey("SKU-A", 1)]
	assert.True(t, line.Qty.Equal(d("10")))
	assert.True(t, line.LockedQty.Equal(d("10")))
	for _, lk := range tx.store.locks {
		assert.Equal(t, model.LockStatusActive, lk.Status)
	}

	// ロック数量ちょうどの消費は通り、可用は非負のまま
	out, err := uc.MoveOut(ctx, MoveInput{
		SkuID: "SKU-A", WarehouseID: 1, Qty: d("2"),
		SourceType: model.SourceTypeSale, SourceNo: "SO-A", Operator: "alice",
	})
	require.NoError(t, err)
	assert.True(t, out.OnHandQty.Equal(d("8")))
	assert.True(t, out.LockedQty.Equal(d("8")))
	assert.True(t, out.AvailableQty.IsZero())
}

func TestStockMoveOut_WithoutLockRespectsReservations(t *testing.T) {
	tx := newMemTx()
	seedStock(tx, "SKU-A", 1, "10", "8", "10")
	uc := NewStockUsecase(tx)

	// 8は他参照の予約。出せるのは2まで。
	_, err := uc.MoveOut(context.Background(), MoveInput{
		SkuID: "SKU-A", WarehouseID: 1, Qty: d("5"),
		SourceType: model.SourceTypeAdjust, SourceNo: "ADJ-1",
	})
	assertAppErrCode(t, err, apperr.CodeInsufficientStock)

	out, err := uc.MoveOut(context.Background(), MoveInput{
		SkuID: "SKU-A", WarehouseID: 1, Qty: d("2"),
		SourceType: model.SourceTypeAdjust, SourceNo: "ADJ-2",
	})
	require.NoError(t, err)
	assert.True(t, out.OnHandQty.Equal(d("8")))
	assert.True(t, out.LockedQty.Equal(d("8")))
}

func TestStockConsumeLocked_IdempotentOnRedelivery(t *testing.T) {
	tx := newMemTx()
	seedStock(tx, "SKU-A", 1, "100", "0", "10")
	seedStock(tx, "SKU-B", 2, "50", "0", "20")
	uc := NewStockUsecase(tx)
	ctx := context.Background()

	require.NoError(t, uc.Lock(ctx, LockInput{
		OrderRef:  "SO-7",
		OrderType: model.SourceTypeSale,
		Lines: []LockLine{
			{SkuID: "SKU-A", WarehouseID: 1, Qty: d("10")},
			{SkuID: "SKU-B", WarehouseID: 2, Qty: d("5")},
		},
	}))

	require.NoError(t, uc.ConsumeLocked(ctx, "SO-7", "system"))
	a := tx.store.stocks[stockKey("SKU-A", 1)]
	b := tx.store.stocks[stockKey("SKU-B", 2)]
	assert.True(t, a.Qty.Equal(d("90")))
	assert.True(t, a.LockedQty.IsZero())
	assert.True(t, b.Qty.Equal(d("45")))

	// 再配信: ACTIVEロックがないので状態は変わらない
	require.NoError(t, uc.ConsumeLocked(ctx, "SO-7", "system"))
	assert.True(t, tx.store.stocks[stockKey("SKU-A", 1)].Qty.Equal(d("90")))
}

func TestStockExpireLocks_OnlyUnpaidSaleLocks(t *testing.T) {
	tx := newMemTx()
	seedStock(tx, "SKU-A", 1, "100", "0", "10")
	seedStock(tx, "SKU-B", 1, "100", "0", "10")
	uc := NewStockUsecase(tx)
	ctx := context.Background()

	require.NoError(t, uc.Lock(ctx, LockInput{
		OrderRef: "SO-OLD", OrderType: model.SourceTypeSale,
		Lines: []LockLine{{SkuID: "SKU-A", WarehouseID: 1, Qty: d("10")}},
	}))
	require.NoError(t, uc.Lock(ctx, LockInput{
		OrderRef: "SO-PAID", OrderType: model.SourceTypeSale,
		Lines: []LockLine{{SkuID: "SKU-B", WarehouseID: 1, Qty: d("10")}},
	}))

	// ロック時刻を過去に倒す
	old := time.Now().UTC().Add(-2 * time.Hour)
	for i := range tx.store.locks {
		tx.store.locks[i].LockedAt = old
	}

	tx.store.orders = append(tx.store.orders,
		model.SalesOrder{ID: tx.store.nextID(), OrderNo: "SO-OLD", Status: model.OrderStatusPendingPayment},
		model.SalesOrder{ID: tx.store.nextID(), OrderNo: "SO-PAID", Status: model.OrderStatusPaid},
	)

	n, err := uc.ExpireLocks(ctx, 30*time.Minute, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.True(t, tx.store.stocks[stockKey("SKU-A", 1)].LockedQty.IsZero())
	// 支払い済み注文の予約は残る
	assert.True(t, tx.store.stocks[stockKey("SKU-B", 1)].LockedQty.Equal(d("10")))
}
