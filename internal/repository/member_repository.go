package repository

import (
	"context"

	"erp/internal/domain/model"
)

type MemberQuery struct {
	Q     string
	Page  int
	Limit int
}

type MemberRepository interface {
	Create(ctx context.Context, m model.Member) (int64, error)
	FindByID(ctx context.Context, id int64) (model.Member, error)
	FindByIDForUpdate(ctx context.Context, id int64) (model.Member, error)
	FindByMemberNo(ctx context.Context, memberNo string) (model.Member, error)
	Save(ctx context.Context, m *model.Member) error
	List(ctx context.Context, q MemberQuery) ([]model.Member, int64, error)

	FindLevel(ctx context.Context, id int64) (model.MemberLevel, error)
	ListLevels(ctx context.Context) ([]model.MemberLevel, error)
	CreateLevel(ctx context.Context, l model.MemberLevel) (int64, error)

	CreatePointLog(ctx context.Context, log model.MemberPointLog) error
	ListPointLogs(ctx context.Context, memberID int64, page, limit int) ([]model.MemberPointLog, int64, error)
}
