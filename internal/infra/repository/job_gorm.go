package repository

import (
	"context"

	"erp/internal/domain/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type JobGormRepository struct {
	db *gorm.DB
}

// DI
func NewJobGormRepository(db *gorm.DB) *JobGormRepository {
	return &JobGormRepository{db: db}
}

func (r *JobGormRepository) Create(ctx context.Context, j model.JobReport) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&j).Error; err != nil {
		return 0, err
	}
	return j.ID, nil
}

func (r *JobGormRepository) ListByMoNo(ctx context.Context, moNo string) ([]model.JobReport, error) {
	var jobs []model.JobReport
	err := r.db.WithContext(ctx).
		Where("mo_no = ?", moNo).
		Order("created_at asc").
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// 生産原価の労務費に入る工数合計
func (r *JobGormRepository) SumWorkHoursByMoNo(ctx context.Context, moNo string) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&model.JobReport{}).
		Where("mo_no = ?", moNo).
		Select("SUM(work_hours)").
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}
