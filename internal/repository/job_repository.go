package repository

import (
	"context"

	"erp/internal/domain/model"

	"github.com/shopspring/decimal"
)

type JobRepository interface {
	Create(ctx context.Context, j model.JobReport) (int64, error)
	ListByMoNo(ctx context.Context, moNo string) ([]model.JobReport, error)
	SumWorkHoursByMoNo(ctx context.Context, moNo string) (decimal.Decimal, error)
}
