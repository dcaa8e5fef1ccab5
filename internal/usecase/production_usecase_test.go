package usecase

import (
	"context"
	"testing"

	"erp/internal/apperr"
	"erp/internal/domain/model"
	"erp/internal/event"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SKU-FGをSKU-A×2 + SKU-B×1から作るBOMと、進行中のMOを用意する。
func newProductionFixture(t *testing.T) (*memTx, *ProductionUsecase, *JobUsecase, string) {
	t.Helper()
	tx := newMemTx()
	stocks := NewStockUsecase(tx)
	uc := NewProductionUsecase(tx, stocks)
	jobs := NewJobUsecase(tx)
	ctx := context.Background()

	seedStock(tx, "SKU-A", 1, "100", "0", "5")
	seedStock(tx, "SKU-B", 1, "100", "0", "12")

	bomID, err := uc.CreateBom(ctx, BomInput{
		Code: "BOM-FG", Name: "Finished Good", SkuID: "SKU-FG",
		StdLaborRate: d("25"),
		Items: []BomItemInput{
			{ComponentSkuID: "SKU-A", Qty: d("2")},
			{ComponentSkuID: "SKU-B", Qty: d("1")},
		},
	})
	require.NoError(t, err)

	moNo, err := uc.CreateMo(ctx, CreateMoInput{
		BomID: bomID, WarehouseID: 1, PlannedQty: d("10"), Operator: "bob",
	})
	require.NoError(t, err)
	require.NoError(t, uc.Start(ctx, moNo, "bob"))
	return tx, uc, jobs, moNo
}

func TestProductionCreateMo_SnapshotsBomSku(t *testing.T) {
	_, uc, _, moNo := newProductionFixture(t)

	mo, err := uc.GetMo(context.Background(), moNo)
	require.NoError(t, err)
	assert.Equal(t, "SKU-FG", mo.SkuID)
	assert.Equal(t, model.MoStatusInProgress, mo.Status)
	assert.True(t, mo.PlannedQty.Equal(d("10")))
}

func TestProductionStart_OnlyFromPlanned(t *testing.T) {
	_, uc, _, moNo := newProductionFixture(t)

	err := uc.Start(context.Background(), moNo, "bob")
	assertAppErrCode(t, err, apperr.CodeConflict)
}

func TestProductionComplete_ConsumesComponentsAndStocksFinishedGoods(t *testing.T) {
	tx, uc, jobs, moNo := newProductionFixture(t)
	ctx := context.Background()

	_, err := jobs.Report(ctx, JobReportInput{MoNo: moNo, QtyGood: d("10"), WorkHours: d("8"), Operator: "bob"})
	require.NoError(t, err)

	require.NoError(t, uc.Complete(ctx, CompleteMoInput{MoNo: moNo, CompletedQty: d("10"), Operator: "bob"}))

	mo, err := uc.GetMo(ctx, moNo)
	require.NoError(t, err)
	assert.Equal(t, model.MoStatusCompleted, mo.Status)
	assert.True(t, mo.CompletedQty.Equal(d("10")))

	// 部材: A 2×10=20 @5, B 1×10=10 @12
	assert.True(t, tx.store.stocks[stockKey("SKU-A", 1)].Qty.Equal(d("80")))
	assert.True(t, tx.store.stocks[stockKey("SKU-B", 1)].Qty.Equal(d("90")))

	// 完成品: (20×5 + 10×12 + 8×25) / 10 = 42
	fg := tx.store.stocks[stockKey("SKU-FG", 1)]
	assert.True(t, fg.Qty.Equal(d("10")))
	assert.True(t, fg.AvgCost.Equal(d("42")), "got %s", fg.AvgCost)
}

func TestProductionComplete_EmitsCostFact(t *testing.T) {
	tx, uc, jobs, moNo := newProductionFixture(t)
	ctx := context.Background()

	_, err := jobs.Report(ctx, JobReportInput{MoNo: moNo, WorkHours: d("4"), Operator: "bob"})
	require.NoError(t, err)
	require.NoError(t, uc.Complete(ctx, CompleteMoInput{MoNo: moNo, CompletedQty: d("10"), Operator: "bob"}))

	var payload event.MoCompletedPayload
	var found bool
	for _, msg := range tx.store.outbox {
		if msg.Topic != event.TopicMoEvents {
			continue
		}
		ev, err := event.Unmarshal([]byte(msg.Payload))
		require.NoError(t, err)
		if ev.EventType != event.TypeMoCompleted {
			continue
		}
		payload, err = event.DecodePayload[event.MoCompletedPayload](ev)
		require.NoError(t, err)
		found = true
	}
	require.True(t, found, "MoCompleted fact must be in the outbox")
	assert.Equal(t, moNo, payload.MoNo)
	assert.True(t, payload.WorkHours.Equal(d("4")))
	assert.True(t, payload.LaborRate.Equal(d("25")))
	require.Len(t, payload.Components, 2)
	assert.True(t, payload.Components[0].Qty.Equal(d("20")))
	assert.True(t, payload.Components[0].UnitCost.Equal(d("5")))
}

func TestProductionComplete_RejectsOverPlanned(t *testing.T) {
	_, uc, _, moNo := newProductionFixture(t)

	err := uc.Complete(context.Background(), CompleteMoInput{MoNo: moNo, CompletedQty: d("11"), Operator: "bob"})
	assertAppErrCode(t, err, apperr.CodeValidation)
}

func TestProductionComplete_RequiresInProgress(t *testing.T) {
	_, uc, _, moNo := newProductionFixture(t)
	ctx := context.Background()

	require.NoError(t, uc.Complete(ctx, CompleteMoInput{MoNo: moNo, CompletedQty: d("10"), Operator: "bob"}))

	err := uc.Complete(ctx, CompleteMoInput{MoNo: moNo, CompletedQty: d("10"), Operator: "bob"})
	assertAppErrCode(t, err, apperr.CodeConflict)
}

func TestProductionComplete_InsufficientComponentAbortsTransition(t *testing.T) {
	tx := newMemTx()
	stocks := NewStockUsecase(tx)
	uc := NewProductionUsecase(tx, stocks)
	ctx := context.Background()

	// 部材在庫が足りないまま完了を試みる
	seedStock(tx, "SKU-A", 1, "5", "0", "5")
	bomID, err := uc.CreateBom(ctx, BomInput{
		Code: "BOM-X", SkuID: "SKU-FG", StdLaborRate: d("10"),
		Items: []BomItemInput{{ComponentSkuID: "SKU-A", Qty: d("2")}},
	})
	require.NoError(t, err)
	moNo, err := uc.CreateMo(ctx, CreateMoInput{BomID: bomID, WarehouseID: 1, PlannedQty: d("10"), Operator: "bob"})
	require.NoError(t, err)
	require.NoError(t, uc.Start(ctx, moNo, "bob"))

	err = uc.Complete(ctx, CompleteMoInput{MoNo: moNo, CompletedQty: d("10"), Operator: "bob"})
	assertAppErrCode(t, err, apperr.CodeInsufficientStock)

	// 状態遷移ごとロールバック。出庫も完成品入庫も走っていない。
	mo, err := uc.GetMo(ctx, moNo)
	require.NoError(t, err)
	assert.Equal(t, model.MoStatusInProgress, mo.Status)
	assert.True(t, tx.store.stocks[stockKey("SKU-A", 1)].Qty.Equal(d("5")))
	_, ok := tx.store.stocks[stockKey("SKU-FG", 1)]
	assert.False(t, ok)
}

func TestJobReport_RequiresInProgressMo(t *testing.T) {
	tx := newMemTx()
	uc := NewProductionUsecase(tx, NewStockUsecase(tx))
	jobs := NewJobUsecase(tx)
	ctx := context.Background()

	bomID, err := uc.CreateBom(ctx, BomInput{
		Code: "BOM-Y", SkuID: "SKU-FG", StdLaborRate: d("10"),
		Items: []BomItemInput{{ComponentSkuID: "SKU-A", Qty: d("1")}},
	})
	require.NoError(t, err)
	moNo, err := uc.CreateMo(ctx, CreateMoInput{BomID: bomID, WarehouseID: 1, PlannedQty: d("1"), Operator: "bob"})
	require.NoError(t, err)

	_, err = jobs.Report(ctx, JobReportInput{MoNo: moNo, QtyGood: d("1"), Operator: "bob"})
	assertAppErrCode(t, err, apperr.CodeConflict)
}

func TestJobReport_AccumulatesWorkHours(t *testing.T) {
	tx, _, jobs, moNo := newProductionFixture(t)
	ctx := context.Background()

	_, err := jobs.Report(ctx, JobReportInput{MoNo: moNo, WorkHours: d("3"), Operator: "bob"})
	require.NoError(t, err)
	_, err = jobs.Report(ctx, JobReportInput{MoNo: moNo, QtyGood: d("5"), WorkHours: d("2.5"), Operator: "carol"})
	require.NoError(t, err)

	got, err := jobs.ListByMo(ctx, moNo)
	require.NoError(t, err)
	require.Len(t, got, 2)

	memTxRepos := &memRepos{s: tx.store}
	sum, err := memTxRepos.Jobs().SumWorkHoursByMoNo(ctx, moNo)
	require.NoError(t, err)
	assert.True(t, sum.Equal(d("5.5")))
}
