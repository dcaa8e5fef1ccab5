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

type JobUsecase struct {
	tx repo.TransactionManager
}

func NewJobUsecase(tx repo.TransactionManager) *JobUsecase {
	return &JobUsecase{tx: tx}
}

type JobReportInput struct {
	MoNo      string          `json:"mo_no"`
	QtyGood   decimal.Decimal `json:"qty_good"`
	QtyScrap  decimal.Decimal `json:"qty_scrap"`
	WorkHours decimal.Decimal `json:"work_hours"`
	Operator  string
}

// Reportは進行中MOへの報工。工数は完了時の労務費計算に入る。
func (u *JobUsecase) Report(ctx context.Context, in JobReportInput) (string, error) {
	if in.MoNo == "" {
		return "", apperr.Validation("mo_no is required")
	}
	if in.QtyGood.IsNegative() || in.QtyScrap.IsNegative() || in.WorkHours.IsNegative() {
		return "", apperr.Validation("quantities and work_hours must not be negative")
	}
	if in.QtyGood.IsZero() && in.QtyScrap.IsZero() && in.WorkHours.IsZero() {
		return "", apperr.Validation("report must carry some quantity or hours")
	}

	jobNo := newRefNo("JB")
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		mo, err := r.Productions().FindMoByNo(ctx, in.MoNo)
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("manufacture order")
		}
		if err != nil {
			return err
		}
		if mo.Status != model.MoStatusInProgress {
			return apperr.Conflict("manufacture order is not IN_PROGRESS: " + in.MoNo)
		}

		if _, err := r.Jobs().Create(ctx, model.JobReport{
			JobNo:     jobNo,
			MoNo:      in.MoNo,
			SkuID:     mo.SkuID,
			QtyGood:   in.QtyGood,
			QtyScrap:  in.QtyScrap,
			WorkHours: in.WorkHours,
			Operator:  in.Operator,
		}); err != nil {
			return err
		}

		ev, err := event.New(event.TypeJobReported, "job", jobNo, in.Operator, event.JobReportedPayload{
			JobNo:     jobNo,
			MoNo:      in.MoNo,
			QtyGood:   in.QtyGood,
			QtyScrap:  in.QtyScrap,
			WorkHours: in.WorkHours,
		})
		if err != nil {
			return err
		}
		return appendFact(ctx, r, event.TopicJobEvents, ev)
	})
	if err != nil {
		return "", err
	}
	return jobNo, nil
}

func (u *JobUsecase) ListByMo(ctx context.Context, moNo string) ([]model.JobReport, error) {
	var jobs []model.JobReport
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		jobs, err = r.Jobs().ListByMoNo(ctx, moNo)
		return err
	})
	return jobs, err
}
