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

type ItemUsecase struct {
	tx repo.TransactionManager
}

func NewItemUsecase(tx repo.TransactionManager) *ItemUsecase {
	return &ItemUsecase{tx: tx}
}

type ItemInput struct {
	SkuID       string          `json:"sku_id"`
	Name        string          `json:"name"`
	CategoryID  *int64          `json:"category_id"`
	Unit        string          `json:"unit"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
}

func (u *ItemUsecase) Create(ctx context.Context, in ItemInput, operator string) (int64, error) {
	if in.SkuID == "" || in.Name == "" {
		return 0, apperr.Validation("sku_id and name are required")
	}
	if in.Price.IsNegative() {
		return 0, apperr.Validation("price must not be negative")
	}

	var id int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		_, err := r.Items().FindBySkuID(ctx, in.SkuID)
		if err == nil {
			return apperr.Conflict("sku already exists: " + in.SkuID)
		}
		if !errors.Is(err, repo.ErrNotFound) {
			return err
		}

		id, err = r.Items().Create(ctx, model.Item{
			SkuID:       in.SkuID,
			Name:        in.Name,
			CategoryID:  in.CategoryID,
			Unit:        in.Unit,
			Price:       in.Price,
			Status:      model.ItemStatusEnabled,
			Description: in.Description,
		})
		if err != nil {
			return err
		}

		ev, err := event.New(event.TypeItemCreated, "item", in.SkuID, operator, event.ItemPayload{
			SkuID:  in.SkuID,
			Name:   in.Name,
			Status: string(model.ItemStatusEnabled),
		})
		if err != nil {
			return err
		}
		return appendFact(ctx, r, event.TopicItemEvents, ev)
	})
	return id, err
}

func (u *ItemUsecase) Update(ctx context.Context, skuID string, in ItemInput, operator string) error {
	if in.Name == "" {
		return apperr.Validation("name is required")
	}
	if in.Price.IsNegative() {
		return apperr.Validation("price must not be negative")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		it, err := r.Items().FindBySkuID(ctx, skuID)
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("item")
		}
		if err != nil {
			return err
		}

		it.Name = in.Name
		it.CategoryID = in.CategoryID
		it.Unit = in.Unit
		it.Price = in.Price
		it.Description = in.Description
		if err := r.Items().Save(ctx, &it); err != nil {
			return err
		}

		ev, err := event.New(event.TypeItemUpdated, "item", skuID, operator, event.ItemPayload{
			SkuID:  skuID,
			Name:   it.Name,
			Status: string(it.Status),
		})
		if err != nil {
			return err
		}
		return appendFact(ctx, r, event.TopicItemEvents, ev)
	})
}

// SetStatusは有効/無効の切り替え。無効SKUは受注に乗せられない。
func (u *ItemUsecase) SetStatus(ctx context.Context, skuID, status, operator string) error {
	target := model.ItemStatus(status)
	if target != model.ItemStatusEnabled && target != model.ItemStatusDisabled {
		return apperr.Validation("status must be ENABLED or DISABLED")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		it, err := r.Items().FindBySkuID(ctx, skuID)
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("item")
		}
		if err != nil {
			return err
		}

		it.Status = target
		if err := r.Items().Save(ctx, &it); err != nil {
			return err
		}

		ev, err := event.New(event.TypeItemUpdated, "item", skuID, operator, event.ItemPayload{
			SkuID:  skuID,
			Name:   it.Name,
			Status: string(target),
		})
		if err != nil {
			return err
		}
		return appendFact(ctx, r, event.TopicItemEvents, ev)
	})
}

func (u *ItemUsecase) Get(ctx context.Context, skuID string) (model.Item, error) {
	var it model.Item
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		it, err = r.Items().FindBySkuID(ctx, skuID)
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("item")
		}
		return err
	})
	return it, err
}

func (u *ItemUsecase) List(ctx context.Context, q repo.ItemQuery) ([]model.Item, int64, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 200 {
		q.Limit = 50
	}

	var items []model.Item
	var total int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		items, total, err = r.Items().List(ctx, q)
		return err
	})
	return items, total, err
}

func (u *ItemUsecase) CreateCategory(ctx context.Context, name string, parentID int64, sortOrder int) (int64, error) {
	if name == "" {
		return 0, apperr.Validation("name is required")
	}
	level := 1
	if parentID > 0 {
		level = 2
	}

	var id int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		id, err = r.Items().CreateCategory(ctx, model.ItemCategory{
			Name:      name,
			ParentID:  parentID,
			Level:     level,
			SortOrder: sortOrder,
		})
		return err
	})
	return id, err
}

func (u *ItemUsecase) ListCategories(ctx context.Context) ([]model.ItemCategory, error) {
	var cs []model.ItemCategory
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		cs, err = r.Items().ListCategories(ctx)
		return err
	})
	return cs, err
}
