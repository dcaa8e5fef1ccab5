package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"erp/internal/apperr"
	"erp/internal/domain/model"
	repo "erp/internal/repository"

	"github.com/shopspring/decimal"
)

type PromoUsecase struct {
	tx repo.TransactionManager
}

func NewPromoUsecase(tx repo.TransactionManager) *PromoUsecase {
	return &PromoUsecase{tx: tx}
}

type DraftLine struct {
	SkuID     string          `json:"sku_id"`
	Qty       decimal.Decimal `json:"qty"`
	UnitPrice decimal.Decimal `json:"price"`
}

type PromoResult struct {
	PromoID        *int64          `json:"promo_id"`
	PromoCode      string          `json:"promo_code,omitempty"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

// Calculateは(現在時刻, 注文内容, 有効活動集合)の純関数。
// 最大割引を選び、同額なら優先度の高い方、それも同じなら小さいidで決める。
func Calculate(now time.Time, lines []DraftLine, promos []model.Promo) PromoResult {
	result := PromoResult{DiscountAmount: decimal.Zero}

	var best *model.Promo
	bestDiscount := decimal.Zero

	for i := range promos {
		p := promos[i]
		if p.Status != model.PromoStatusEnabled {
			continue
		}
		if now.Before(p.ValidFrom) || now.After(p.ValidTo) {
			continue
		}

		d := evaluate(p, lines)
		if !d.IsPositive() {
			continue
		}

		if best == nil ||
			d.GreaterThan(bestDiscount) ||
			(d.Equal(bestDiscount) && p.Priority > best.Priority) ||
			(d.Equal(bestDiscount) && p.Priority == best.Priority && p.ID < best.ID) {
			best = &promos[i]
			bestDiscount = d
		}
	}

	if best != nil {
		id := best.ID
		result.PromoID = &id
		result.PromoCode = best.Code
		result.DiscountAmount = bestDiscount
	}
	return result
}

// evaluateは1活動の割引額。適用不可なら0。
func evaluate(p model.Promo, lines []DraftLine) decimal.Decimal {
	scoped := scopedLines(p, lines)
	if len(scoped) == 0 {
		return decimal.Zero
	}

	subtotal := decimal.Zero
	qty := decimal.Zero
	for _, l := range scoped {
		subtotal = subtotal.Add(l.UnitPrice.Mul(l.Qty))
		qty = qty.Add(l.Qty)
	}

	// 条件判定（金額 or 数量のしきい値）
	switch p.ConditionType {
	case model.ConditionTypeAmount:
		if subtotal.LessThan(p.ConditionValue) {
			return decimal.Zero
		}
	case model.ConditionTypeQty:
		if qty.LessThan(p.ConditionValue) {
			return decimal.Zero
		}
	default:
		return decimal.Zero
	}

	var discount decimal.Decimal
	switch p.PromoType {
	case model.PromoTypeFullReduction:
		discount = p.BenefitValue
	case model.PromoTypeDiscount:
		// benefit_value=割引率(%)。8%オフなら8。
		discount = subtotal.Mul(p.BenefitValue).DivRound(decimal.NewFromInt(100), 4)
	default:
		return decimal.Zero
	}

	if p.MaxDiscount.IsPositive() && discount.GreaterThan(p.MaxDiscount) {
		discount = p.MaxDiscount
	}
	// 割引は対象小計を超えない
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	return discount
}

func scopedLines(p model.Promo, lines []DraftLine) []DraftLine {
	if p.ScopeType == model.ScopeTypeAll {
		return lines
	}

	var skus []string
	if err := json.Unmarshal([]byte(p.ScopeValue), &skus); err != nil {
		return nil
	}
	in := make(map[string]bool, len(skus))
	for _, s := range skus {
		in[s] = true
	}

	var out []DraftLine
	for _, l := range lines {
		if in[l.SkuID] {
			out = append(out, l)
		}
	}
	return out
}

// Calculateのサービス入口。有効活動をDBから読み、純関数に渡す。
func (u *PromoUsecase) Calculate(ctx context.Context, lines []DraftLine) (PromoResult, error) {
	if len(lines) == 0 {
		return PromoResult{}, apperr.Validation("lines are required")
	}
	for _, l := range lines {
		if l.SkuID == "" || !l.Qty.IsPositive() || l.UnitPrice.IsNegative() {
			return PromoResult{}, apperr.Validation("each line needs sku_id, positive qty and non-negative price")
		}
	}

	now := time.Now().UTC()
	var result PromoResult
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		promos, err := r.Promos().ListEnabledAt(ctx, now)
		if err != nil {
			return err
		}
		result = Calculate(now, lines, promos)
		return nil
	})
	if err != nil {
		return PromoResult{}, err
	}
	return result, nil
}

type PromoInput struct {
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	PromoType      string          `json:"promo_type"`
	ScopeType      string          `json:"scope_type"`
	ScopeValue     string          `json:"scope_value"`
	ConditionType  string          `json:"condition_type"`
	ConditionValue decimal.Decimal `json:"condition_value"`
	BenefitValue   decimal.Decimal `json:"benefit_value"`
	MaxDiscount    decimal.Decimal `json:"max_discount"`
	Priority       int             `json:"priority"`
	ValidFrom      time.Time       `json:"valid_from"`
	ValidTo        time.Time       `json:"valid_to"`
}

func (u *PromoUsecase) Create(ctx context.Context, in PromoInput, operator string) (int64, error) {
	if err := validatePromoInput(in); err != nil {
		return 0, err
	}

	var id int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		_, err := r.Promos().FindByCode(ctx, in.Code)
		if err == nil {
			return apperr.Conflict("promo code already exists: " + in.Code)
		}
		if !errors.Is(err, repo.ErrNotFound) {
			return err
		}

		id, err = r.Promos().Create(ctx, model.Promo{
			Code:           in.Code,
			Name:           in.Name,
			PromoType:      model.PromoType(in.PromoType),
			ScopeType:      model.ScopeType(in.ScopeType),
			ScopeValue:     in.ScopeValue,
			ConditionType:  model.ConditionType(in.ConditionType),
			ConditionValue: in.ConditionValue,
			BenefitValue:   in.BenefitValue,
			MaxDiscount:    in.MaxDiscount,
			Priority:       in.Priority,
			Status:         model.PromoStatusDraft,
			ValidFrom:      in.ValidFrom,
			ValidTo:        in.ValidTo,
			CreatedBy:      operator,
		})
		return err
	})
	return id, err
}

func validatePromoInput(in PromoInput) error {
	if in.Code == "" || in.Name == "" {
		return apperr.Validation("code and name are required")
	}
	switch model.PromoType(in.PromoType) {
	case model.PromoTypeFullReduction, model.PromoTypeDiscount:
	default:
		return apperr.Validation("promo_type must be FULL_REDUCTION or DISCOUNT")
	}
	switch model.ScopeType(in.ScopeType) {
	case model.ScopeTypeAll:
	case model.ScopeTypeSku:
		var skus []string
		if err := json.Unmarshal([]byte(in.ScopeValue), &skus); err != nil || len(skus) == 0 {
			return apperr.Validation("scope_value must be a non-empty JSON array of sku ids")
		}
	default:
		return apperr.Validation("scope_type must be ALL or SKU")
	}
	switch model.ConditionType(in.ConditionType) {
	case model.ConditionTypeAmount, model.ConditionTypeQty:
	default:
		return apperr.Validation("condition_type must be AMOUNT or QTY")
	}
	if !in.BenefitValue.IsPositive() {
		return apperr.Validation("benefit_value must be positive")
	}
	if !in.ValidTo.After(in.ValidFrom) {
		return apperr.Validation("valid_to must be after valid_from")
	}
	return nil
}

// UpdateStatusはDRAFT/ENABLED/DISABLEDの切り替え。監査ログを残す。
func (u *PromoUsecase) UpdateStatus(ctx context.Context, id int64, status string, actorUserID int64) error {
	var target model.PromoStatus
	switch model.PromoStatus(status) {
	case model.PromoStatusDraft, model.PromoStatusEnabled, model.PromoStatusDisabled:
		target = model.PromoStatus(status)
	default:
		return apperr.Validation("status must be DRAFT, ENABLED or DISABLED")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Promos().FindByID(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("promo")
		}
		if err != nil {
			return err
		}

		beforeJSON, _ := json.Marshal(map[string]any{"status": p.Status})
		p.Status = target
		if err := r.Promos().Save(ctx, &p); err != nil {
			return err
		}
		afterJSON, _ := json.Marshal(map[string]any{"status": target})

		return r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorUserID,
			Action:       model.AuditActionUpdatePromo,
			ResourceType: "promo",
			ResourceID:   p.Code,
			BeforeJSON:   string(beforeJSON),
			AfterJSON:    string(afterJSON),
		})
	})
}

func (u *PromoUsecase) Get(ctx context.Context, id int64) (model.Promo, error) {
	var p model.Promo
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		p, err = r.Promos().FindByID(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("promo")
		}
		return err
	})
	return p, err
}

func (u *PromoUsecase) List(ctx context.Context, q repo.PromoQuery) ([]model.Promo, int64, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 200 {
		q.Limit = 50
	}

	var promos []model.Promo
	var total int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		promos, total, err = r.Promos().List(ctx, q)
		return err
	})
	return promos, total, err
}
