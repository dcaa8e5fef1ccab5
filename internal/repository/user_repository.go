package repository

import (
	"context"

	"erp/internal/domain/model"
)

type UserRepository interface {
	Create(ctx context.Context, u model.User) (int64, error)
	FindByID(ctx context.Context, id int64) (model.User, error)
	FindByUsername(ctx context.Context, username string) (model.User, error)
	Save(ctx context.Context, u *model.User) error
	List(ctx context.Context, page, limit int) ([]model.User, int64, error)
}
