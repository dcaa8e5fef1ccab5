package repository

import (
	"context"
	"errors"
	"strings"

	"erp/internal/domain/model"
	repo "erp/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MemberGormRepository struct {
	db *gorm.DB
}

// DI
func NewMemberGormRepository(db *gorm.DB) *MemberGormRepository {
	return &MemberGormRepository{db: db}
}

func (r *MemberGormRepository) Create(ctx context.Context, m model.Member) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return 0, err
	}
	return m.ID, nil
}

func (r *MemberGormRepository) FindByID(ctx context.Context, id int64) (model.Member, error) {
	var m model.Member
	err := r.db.WithContext(ctx).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Member{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Member{}, err
	}
	return m, nil
}

// 積分の増減は行ロック下で行う
func (r *MemberGormRepository) FindByIDForUpdate(ctx context.Context, id int64) (model.Member, error) {
	var m model.Member
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Member{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Member{}, err
	}
	return m, nil
}

func (r *MemberGormRepository) FindByMemberNo(ctx context.Context, memberNo string) (model.Member, error) {
	var m model.Member
	err := r.db.WithContext(ctx).Where("member_no = ?", memberNo).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Member{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Member{}, err
	}
	return m, nil
}

func (r *MemberGormRepository) Save(ctx context.Context, m *model.Member) error {
	res := r.db.WithContext(ctx).
		Model(&model.Member{}).
		Where("id = ?", m.ID).
		Updates(map[string]interface{}{
			"name":           m.Name,
			"level_id":       m.LevelID,
			"points":         m.Points,
			"total_consumed": m.TotalConsumed,
			"status":         m.Status,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *MemberGormRepository) List(ctx context.Context, q repo.MemberQuery) ([]model.Member, int64, error) {
	var members []model.Member
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Member{})
	if strings.TrimSpace(q.Q) != "" {
		like := "%" + strings.TrimSpace(q.Q) + "%"
		tx = tx.Where("name ILIKE ? OR phone ILIKE ? OR member_no ILIKE ?", like, like, like)
	}

	if err := tx.Count(&total).Error; err != nil {
		return []model.Member{}, 0, err
	}

	offset := (q.Page - 1) * q.Limit
	if err := tx.Order("created_at desc").Order("id desc").
		Offset(offset).Limit(q.Limit).Find(&members).Error; err != nil {
		return []model.Member{}, 0, err
	}
	return members, total, nil
}

func (r *MemberGormRepository) FindLevel(ctx context.Context, id int64) (model.MemberLevel, error) {
	var l model.MemberLevel
	err := r.db.WithContext(ctx).First(&l, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.MemberLevel{}, repo.ErrNotFound
	}
	if err != nil {
		return model.MemberLevel{}, err
	}
	return l, nil
}

func (r *MemberGormRepository) ListLevels(ctx context.Context) ([]model.MemberLevel, error) {
	var ls []model.MemberLevel
	if err := r.db.WithContext(ctx).Order("min_consumed asc").Find(&ls).Error; err != nil {
		return nil, err
	}
	return ls, nil
}

func (r *MemberGormRepository) CreateLevel(ctx context.Context, l model.MemberLevel) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&l).Error; err != nil {
		return 0, err
	}
	return l.ID, nil
}

func (r *MemberGormRepository) CreatePointLog(ctx context.Context, log model.MemberPointLog) error {
	return r.db.WithContext(ctx).Create(&log).Error
}

func (r *MemberGormRepository) ListPointLogs(ctx context.Context, memberID int64, page, limit int) ([]model.MemberPointLog, int64, error) {
	var logs []model.MemberPointLog
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.MemberPointLog{}).Where("member_id = ?", memberID)
	if err := tx.Count(&total).Error; err != nil {
		return []model.MemberPointLog{}, 0, err
	}

	offset := (page - 1) * limit
	if err := tx.Order("created_at desc").Order("id desc").
		Offset(offset).Limit(limit).Find(&logs).Error; err != nil {
		return []model.MemberPointLog{}, 0, err
	}
	return logs, total, nil
}
