package usecase

import (
	"context"
	"errors"

	"erp/internal/apperr"
	"erp/internal/domain/model"
	"erp/internal/event"
	repo "erp/internal/repository"

	"github.com/shopspring/decimal"
)

type MemberUsecase struct {
	tx repo.TransactionManager
}

func NewMemberUsecase(tx repo.TransactionManager) *MemberUsecase {
	return &MemberUsecase{tx: tx}
}

type MemberInput struct {
	Phone   string `json:"phone"`
	Name    string `json:"name"`
	LevelID int64  `json:"level_id"`
}

func (u *MemberUsecase) Create(ctx context.Context, in MemberInput) (int64, error) {
	if in.Phone == "" || in.Name == "" {
		return 0, apperr.Validation("phone and name are required")
	}

	var id int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		levelID := in.LevelID
		if levelID == 0 {
			levels, err := r.Members().ListLevels(ctx)
			if err != nil {
				return err
			}
			if len(levels) == 0 {
				return apperr.Validation("no member levels configured")
			}
			levelID = levels[0].ID
		} else {
			if _, err := r.Members().FindLevel(ctx, levelID); err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					return apperr.NotFound("member level")
				}
				return err
			}
		}

		var err error
		id, err = r.Members().Create(ctx, model.Member{
			MemberNo:      newRefNo("MB"),
			Phone:         in.Phone,
			Name:          in.Name,
			LevelID:       levelID,
			Points:        decimal.Zero,
			TotalConsumed: decimal.Zero,
			Status:        model.MemberStatusActive,
		})
		return err
	})
	return id, err
}

// AccruePointsはOrderPaid消費の積分加算。
// 1通貨単位=1ポイント×レベル倍率。冪等ガードは呼び出し側（コンシューマ）のTxで効く。
func (u *MemberUsecase) AccruePoints(ctx context.Context, ev event.Event) error {
	p, err := event.DecodePayload[event.OrderPaidPayload](ev)
	if err != nil {
		return err
	}
	if p.MemberID == nil {
		return nil
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		first, err := r.ProcessedEvents().MarkProcessed(ctx, ev.EventID, "member-points")
		if err != nil {
			return err
		}
		if !first {
			return nil
		}

		m, err := r.Members().FindByIDForUpdate(ctx, *p.MemberID)
		if errors.Is(err, repo.ErrNotFound) {
			return nil // 退会済みなどは黙って捨てる
		}
		if err != nil {
			return err
		}

		level, err := r.Members().FindLevel(ctx, m.LevelID)
		if err != nil {
			return err
		}

		points := p.PaidAmount.Mul(level.PointsMultiplier).Floor()
		if !points.IsPositive() {
			return nil
		}

		before := m.Points
		m.Points = m.Points.Add(points)
		m.TotalConsumed = m.TotalConsumed.Add(p.PaidAmount)
		if err := u.promoteLevel(ctx, r, &m); err != nil {
			return err
		}
		if err := r.Members().Save(ctx, &m); err != nil {
			return err
		}

		if err := r.Members().CreatePointLog(ctx, model.MemberPointLog{
			MemberID:      m.ID,
			ChangeType:    model.PointChangeEarn,
			ChangePoints:  points,
			BalanceBefore: before,
			BalanceAfter:  m.Points,
			SourceType:    string(model.SourceTypeSale),
			SourceNo:      p.OrderNo,
			Operator:      "system:member",
		}); err != nil {
			return err
		}

		out, err := event.New(event.TypeMemberPointChanged, "member", m.MemberNo, "system:member",
			event.MemberPointChangedPayload{
				MemberNo:     m.MemberNo,
				ChangePoints: points,
				BalanceAfter: m.Points,
				SourceNo:     p.OrderNo,
			})
		if err != nil {
			return err
		}
		return appendFact(ctx, r, event.TopicMemberEvents, out)
	})
}

// 累計消費額がレベルのmin_consumedを超えたら昇格
func (u *MemberUsecase) promoteLevel(ctx context.Context, r repo.TxRepos, m *model.Member) error {
	levels, err := r.Members().ListLevels(ctx)
	if err != nil {
		return err
	}
	for _, l := range levels {
		if m.TotalConsumed.GreaterThanOrEqual(l.MinConsumed) {
			m.LevelID = l.ID
		}
	}
	return nil
}

type AdjustPointsInput struct {
	MemberID int64           `json:"member_id"`
	Points   decimal.Decimal `json:"points"`
	Reason   string          `json:"reason"`
	Operator string
}

// AdjustPointsは手動の積分調整。残高は負にしない。
func (u *MemberUsecase) AdjustPoints(ctx context.Context, in AdjustPointsInput) error {
	if in.Points.IsZero() {
		return apperr.Validation("points must not be zero")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		m, err := r.Members().FindByIDForUpdate(ctx, in.MemberID)
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("member")
		}
		if err != nil {
			return err
		}

		before := m.Points
		after := before.Add(in.Points)
		if after.IsNegative() {
			return apperr.Conflict("points balance cannot go negative")
		}
		m.Points = after
		if err := r.Members().Save(ctx, &m); err != nil {
			return err
		}

		return r.Members().CreatePointLog(ctx, model.MemberPointLog{
			MemberID:      m.ID,
			ChangeType:    model.PointChangeAdjust,
			ChangePoints:  in.Points,
			BalanceBefore: before,
			BalanceAfter:  after,
			SourceType:    string(model.SourceTypeAdjust),
			SourceNo:      in.Reason,
			Operator:      in.Operator,
		})
	})
}

func (u *MemberUsecase) Get(ctx context.Context, id int64) (model.Member, error) {
	var m model.Member
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		m, err = r.Members().FindByID(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("member")
		}
		return err
	})
	return m, err
}

func (u *MemberUsecase) List(ctx context.Context, q repo.MemberQuery) ([]model.Member, int64, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 200 {
		q.Limit = 50
	}

	var members []model.Member
	var total int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		members, total, err = r.Members().List(ctx, q)
		return err
	})
	return members, total, err
}

func (u *MemberUsecase) ListPointLogs(ctx context.Context, memberID int64, page, limit int) ([]model.MemberPointLog, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var logs []model.MemberPointLog
	var total int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		logs, total, err = r.Members().ListPointLogs(ctx, memberID, page, limit)
		return err
	})
	return logs, total, err
}

func (u *MemberUsecase) CreateLevel(ctx context.Context, code, name string, multiplier, minConsumed decimal.Decimal) (int64, error) {
	if code == "" || name == "" {
		return 0, apperr.Validation("code and name are required")
	}
	if !multiplier.IsPositive() {
		return 0, apperr.Validation("points_multiplier must be positive")
	}

	var id int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		id, err = r.Members().CreateLevel(ctx, model.MemberLevel{
			Code:             code,
			Name:             name,
			PointsMultiplier: multiplier,
			MinConsumed:      minConsumed,
		})
		return err
	})
	return id, err
}

func (u *MemberUsecase) ListLevels(ctx context.Context) ([]model.MemberLevel, error) {
	var ls []model.MemberLevel
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		ls, err = r.Members().ListLevels(ctx)
		return err
	})
	return ls, err
}
