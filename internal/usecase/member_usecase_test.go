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

func newMemberFixture(t *testing.T) (*memTx, *MemberUsecase, int64) {
	t.Helper()
	tx := newMemTx()
	tx.store.levels = append(tx.store.levels,
		model.MemberLevel{ID: tx.store.nextID(), Code: "BRONZE", Name: "Bronze", PointsMultiplier: d("1"), MinConsumed: d("0")},
		model.MemberLevel{ID: tx.store.nextID(), Code: "GOLD", Name: "Gold", PointsMultiplier: d("2"), MinConsumed: d("1000")},
	)
	uc := NewMemberUsecase(tx)
	id, err := uc.Create(context.Background(), MemberInput{Phone: "13800000001", Name: "Chen"})
	require.NoError(t, err)
	return tx, uc, id
}

func orderPaidEvent(t *testing.T, memberID *int64, paid string) event.Event {
	t.Helper()
	ev, err := event.New(event.TypeOrderPaid, "order", "SO-1", "alice", event.OrderPaidPayload{
		OrderNo:     "SO-1",
		MemberID:    memberID,
		TotalAmount: d(paid),
		PaidAmount:  d(paid),
		Method:      "WECHAT",
	})
	require.NoError(t, err)
	return ev
}

func TestMemberAccruePoints_UsesLevelMultiplier(t *testing.T) {
	tx, uc, id := newMemberFixture(t)
	ctx := context.Background()

	require.NoError(t, uc.AccruePoints(ctx, orderPaidEvent(t, &id, "120.5")))

	m, err := uc.Get(ctx, id)
	require.NoError(t, err)
	// 1倍、端数切り捨て
	assert.True(t, m.Points.Equal(d("120")), "got %s", m.Points)
	assert.True(t, m.TotalConsumed.Equal(d("120.5")))

	require.Len(t, tx.store.pointLogs, 1)
	assert.Equal(t, model.PointChangeEarn, tx.store.pointLogs[0].ChangeType)
	assert.Equal(t, "SO-1", tx.store.pointLogs[0].SourceNo)
}

func TestMemberAccruePoints_DedupesByEventID(t *testing.T) {
	tx, uc, id := newMemberFixture(t)
	ctx := context.Background()

	ev := orderPaidEvent(t, &id, "100")
	require.NoError(t, uc.AccruePoints(ctx, ev))
	require.NoError(t, uc.AccruePoints(ctx, ev))

	m, err := uc.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, m.Points.Equal(d("100")), "redelivery must not double-accrue")
	assert.Len(t, tx.store.pointLogs, 1)
}

func TestMemberAccruePoints_PromotesLevel(t *testing.T) {
	_, uc, id := newMemberFixture(t)
	ctx := context.Background()

	require.NoError(t, uc.AccruePoints(ctx, orderPaidEvent(t, &id, "1200")))

	m, err := uc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(2), m.LevelID, "crossed min_consumed for GOLD")
}

func TestMemberAccruePoints_SkipsGuestOrders(t *testing.T) {
	tx, uc, _ := newMemberFixture(t)

	require.NoError(t, uc.AccruePoints(context.Background(), orderPaidEvent(t, nil, "100")))
	assert.Empty(t, tx.store.pointLogs)
}

func TestMemberAdjustPoints_BalanceNeverNegative(t *testing.T) {
	_, uc, id := newMemberFixture(t)
	ctx := context.Background()

	require.NoError(t, uc.AdjustPoints(ctx, AdjustPointsInput{
		MemberID: id, Points: d("50"), Reason: "campaign", Operator: "admin",
	}))

	err := uc.AdjustPoints(ctx, AdjustPointsInput{
		MemberID: id, Points: d("-80"), Reason: "revoke", Operator: "admin",
	})
	assertAppErrCode(t, err, apperr.CodeConflict)

	m, err := uc.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, m.Points.Equal(d("50")))
}

func TestMemberCreate_DefaultsToLowestLevel(t *testing.T) {
	_, uc, id := newMemberFixture(t)

	m, err := uc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), m.LevelID)
	assert.Equal(t, model.MemberStatusActive, m.Status)
}
