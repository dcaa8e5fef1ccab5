package repository

import (
	"context"

	"erp/internal/domain/model"
)

type MoQuery struct {
	SkuID  string
	Status model.MoStatus
	Page   int
	Limit  int
}

type ProductionRepository interface {
	CreateBom(ctx context.Context, bom model.BomTemplate) (int64, error)
	CreateBomItems(ctx context.Context, bomID int64, items []model.BomTemplateItem) error
	FindBom(ctx context.Context, id int64) (model.BomTemplate, error)
	ListBomItems(ctx context.Context, bomID int64) ([]model.BomTemplateItem, error)
	ListBoms(ctx context.Context, page, limit int) ([]model.BomTemplate, int64, error)

	CreateMo(ctx context.Context, mo model.ManufactureOrder) (int64, error)
	FindMoByNo(ctx context.Context, moNo string) (model.ManufactureOrder, error)
	FindMoByNoForUpdate(ctx context.Context, moNo string) (model.ManufactureOrder, error)
	SaveMo(ctx context.Context, mo *model.ManufactureOrder) error
	ListMos(ctx context.Context, q MoQuery) ([]model.ManufactureOrder, int64, error)
}
