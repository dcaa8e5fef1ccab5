package usecase

import (
	"context"
	"testing"
	"time"

	"erp/internal/apperr"
	"erp/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enabledPromo(id int64, code string) model.Promo {
	now := time.Now().UTC()
	return model.Promo{
		ID:            id,
		Code:          code,
		Name:          code,
		Status:        model.PromoStatusEnabled,
		ScopeType:     model.ScopeTypeAll,
		ConditionType: model.ConditionTypeAmount,
		ValidFrom:     now.Add(-time.Hour),
		ValidTo:       now.Add(time.Hour),
	}
}

func TestPromoCalculate_PicksLargestDiscount(t *testing.T) {
	now := time.Now().UTC()
	lines := []DraftLine{{SkuID: "SKU-A", Qty: d("2"), UnitPrice: d("100")}} // 小計200

	// 満200減20 vs 8%オフ(=16)
	full := enabledPromo(1, "FULL200")
	full.PromoType = model.PromoTypeFullReduction
	full.ConditionValue = d("200")
	full.BenefitValue = d("20")

	pct := enabledPromo(2, "PCT8")
	pct.PromoType = model.PromoTypeDiscount
	pct.ConditionValue = d("100")
	pct.BenefitValue = d("8")

	res := Calculate(now, lines, []model.Promo{pct, full})
	require.NotNil(t, res.PromoID)
	assert.Equal(t, int64(1), *res.PromoID)
	assert.Equal(t, "FULL200", res.PromoCode)
	assert.True(t, res.DiscountAmount.Equal(d("20")))
}

func TestPromoCalculate_TieBreaksByPriorityThenID(t *testing.T) {
	now := time.Now().UTC()
	lines := []DraftLine{{SkuID: "SKU-A", Qty: d("1"), UnitPrice: d("100")}}

	a := enabledPromo(5, "A")
	a.PromoType = model.PromoTypeFullReduction
	a.ConditionValue = d("100")
	a.BenefitValue = d("10")
	a.Priority = 1

	b := enabledPromo(3, "B")
	b.PromoType = model.PromoTypeFullReduction
	b.ConditionValue = d("100")
	b.BenefitValue = d("10")
	b.Priority = 2

	res := Calculate(now, lines, []model.Promo{a, b})
	require.NotNil(t, res.PromoID)
	assert.Equal(t, "B", res.PromoCode, "higher priority wins the tie")

	// 優先度まで同じなら小さいid
	c := b
	c.ID = 1
	c.Code = "C"
	res = Calculate(now, lines, []model.Promo{b, c})
	assert.Equal(t, "C", res.PromoCode)
}

func TestPromoCalculate_DeterministicAcrossOrdering(t *testing.T) {
	now := time.Now().UTC()
	lines := []DraftLine{{SkuID: "SKU-A", Qty: d("1"), UnitPrice: d("500")}}

	var promos []model.Promo
	for i := int64(1); i <= 4; i++ {
		p := enabledPromo(i, "P")
		p.PromoType = model.PromoTypeFullReduction
		p.ConditionValue = d("100")
		p.BenefitValue = d("25")
		promos = append(promos, p)
	}

	first := Calculate(now, lines, promos)
	reversed := []model.Promo{promos[3], promos[2], promos[1], promos[0]}
	second := Calculate(now, lines, reversed)
	require.NotNil(t, first.PromoID)
	require.NotNil(t, second.PromoID)
	assert.Equal(t, *first.PromoID, *second.PromoID)
}

func TestPromoCalculate_SkuScopeAndThreshold(t *testing.T) {
	now := time.Now().UTC()
	lines := []DraftLine{
		{SkuID: "SKU-A", Qty: d("1"), UnitPrice: d("100")},
		{SkuID: "SKU-B", Qty: d("1"), UnitPrice: d("500")},
	}

	p := enabledPromo(1, "SKUONLY")
	p.PromoType = model.PromoTypeDiscount
	p.ScopeType = model.ScopeTypeSku
	p.ScopeValue = `["SKU-A"]`
	p.ConditionValue = d("50")
	p.BenefitValue = d("10")

	// 対象小計は100のみ → 10%で10
	res := Calculate(now, lines, []model.Promo{p})
	require.NotNil(t, res.PromoID)
	assert.True(t, res.DiscountAmount.Equal(d("10")))

	// しきい値未満なら適用なし
	p.ConditionValue = d("200")
	res = Calculate(now, lines, []model.Promo{p})
	assert.Nil(t, res.PromoID)
	assert.True(t, res.DiscountAmount.IsZero())
}

func TestPromoCalculate_CapsAtMaxDiscountAndSubtotal(t *testing.T) {
	now := time.Now().UTC()
	lines := []DraftLine{{SkuID: "SKU-A", Qty: d("1"), UnitPrice: d("1000")}}

	p := enabledPromo(1, "CAPPED")
	p.PromoType = model.PromoTypeDiscount
	p.ConditionValue = d("100")
	p.BenefitValue = d("50")
	p.MaxDiscount = d("100")

	res := Calculate(now, lines, []model.Promo{p})
	assert.True(t, res.DiscountAmount.Equal(d("100")))

	// 満減額が小計を超える場合は小計まで
	q := enabledPromo(2, "OVER")
	q.PromoType = model.PromoTypeFullReduction
	q.ConditionValue = d("10")
	q.BenefitValue = d("2000")
	res = Calculate(now, []DraftLine{{SkuID: "S", Qty: d("1"), UnitPrice: d("30")}}, []model.Promo{q})
	assert.True(t, res.DiscountAmount.Equal(d("30")))
}

func TestPromoCalculate_IgnoresExpiredAndDisabled(t *testing.T) {
	now := time.Now().UTC()
	lines := []DraftLine{{SkuID: "SKU-A", Qty: d("1"), UnitPrice: d("100")}}

	expired := enabledPromo(1, "EXPIRED")
	expired.PromoType = model.PromoTypeFullReduction
	expired.ConditionValue = d("10")
	expired.BenefitValue = d("5")
	expired.ValidTo = now.Add(-time.Minute)

	draft := enabledPromo(2, "DRAFT")
	draft.Status = model.PromoStatusDraft
	draft.PromoType = model.PromoTypeFullReduction
	draft.ConditionValue = d("10")
	draft.BenefitValue = d("5")

	res := Calculate(now, lines, []model.Promo{expired, draft})
	assert.Nil(t, res.PromoID)
}

func TestPromoUsecase_CreateRejectsDuplicateCode(t *testing.T) {
	tx := newMemTx()
	uc := NewPromoUsecase(tx)
	ctx := context.Background()

	in := PromoInput{
		Code:           "NEWYEAR",
		Name:           "New Year",
		PromoType:      string(model.PromoTypeFullReduction),
		ScopeType:      string(model.ScopeTypeAll),
		ConditionType:  string(model.ConditionTypeAmount),
		ConditionValue: d("100"),
		BenefitValue:   d("10"),
		ValidFrom:      time.Now().UTC(),
		ValidTo:        time.Now().UTC().Add(24 * time.Hour),
	}

	id, err := uc.Create(ctx, in, "alice")
	require.NoError(t, err)
	assert.Positive(t, id)

	_, err = uc.Create(ctx, in, "alice")
	assertAppErrCode(t, err, apperr.CodeConflict)
}

func TestPromoUsecase_UpdateStatusWritesAuditLog(t *testing.T) {
	tx := newMemTx()
	uc := NewPromoUsecase(tx)
	ctx := context.Background()

	id, err := uc.Create(ctx, PromoInput{
		Code:           "AUDITED",
		Name:           "Audited",
		PromoType:      string(model.PromoTypeDiscount),
		ScopeType:      string(model.ScopeTypeAll),
		ConditionType:  string(model.ConditionTypeAmount),
		ConditionValue: d("100"),
		BenefitValue:   d("5"),
		ValidFrom:      time.Now().UTC(),
		ValidTo:        time.Now().UTC().Add(time.Hour),
	}, "alice")
	require.NoError(t, err)

	require.NoError(t, uc.UpdateStatus(ctx, id, string(model.PromoStatusEnabled), 42))

	p, err := uc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.PromoStatusEnabled, p.Status)

	require.Len(t, tx.store.audits, 1)
	assert.Equal(t, int64(42), tx.store.audits[0].ActorUserID)
	assert.Equal(t, model.AuditActionUpdatePromo, tx.store.audits[0].Action)
}

func TestPromoUsecase_CalculateValidatesLines(t *testing.T) {
	uc := NewPromoUsecase(newMemTx())

	_, err := uc.Calculate(context.Background(), nil)
	assertAppErrCode(t, err, apperr.CodeValidation)

	_, err = uc.Calculate(context.Background(), []DraftLine{{SkuID: "", Qty: d("1"), UnitPrice: d("1")}})
	assertAppErrCode(t, err, apperr.CodeValidation)
}
