package handler

import (
	"strconv"

	"erp/internal/apperr"
	"erp/internal/domain/model"
	repo "erp/internal/repository"
	"erp/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ItemHandler struct {
	items *usecase.ItemUsecase
}

// DIコンストラクタ
func NewItemHandler(items *usecase.ItemUsecase) *ItemHandler {
	return &ItemHandler{items: items}
}

// POST /items
func (h *ItemHandler) Create(c echo.Context) error {
	var req usecase.ItemInput
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.Validation("invalid request body"))
	}

	id, err := h.items.Create(c.Request().Context(), req, operatorOf(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondCreated(c, map[string]any{"item_id": id})
}

// PUT /items/:sku
func (h *ItemHandler) Update(c echo.Context) error {
	var req usecase.ItemInput
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.Validation("invalid request body"))
	}

	if err := h.items.Update(c.Request().Context(), c.Param("sku"), req, operatorOf(c)); err != nil {
		return respondError(c, err)
	}
	return respondOK(c, nil)
}

// PUT /items/:sku/status
func (h *ItemHandler) SetStatus(c echo.Context) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.Validation("invalid request body"))
	}

	if err := h.items.SetStatus(c.Request().Context(), c.Param("sku"), req.Status, operatorOf(c)); err != nil {
		return respondError(c, err)
	}
	return respondOK(c, nil)
}

// GET /items/:sku
func (h *ItemHandler) Get(c echo.Context) error {
	it, err := h.items.Get(c.Request().Context(), c.Param("sku"))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, it)
}

// GET /items
func (h *ItemHandler) List(c echo.Context) error {
	q := repo.ItemQuery{
		Q:      c.QueryParam("q"),
		Status: model.ItemStatus(c.QueryParam("status")),
	}
	if v := c.QueryParam("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return respondError(c, apperr.Validation("invalid category_id"))
		}
		q.CategoryID = &id
	}
	q.Page, _ = strconv.Atoi(c.QueryParam("page"))
	q.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	items, total, err := h.items.List(c.Request().Context(), q)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, paged{List: items, Total: total, Page: q.Page, Limit: q.Limit})
}

// POST /categories
func (h *ItemHandler) CreateCategory(c echo.Context) error {
	var req struct {
		Name      string `json:"name"`
		ParentID  int64  `json:"parent_id"`
		SortOrder int    `json:"sort_order"`
	}
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.Validation("invalid request body"))
	}

	id, err := h.items.CreateCategory(c.Request().Context(), req.Name, req.ParentID, req.SortOrder)
	if err != nil {
		return respondError(c, err)
	}
	return respondCreated(c, map[string]any{"category_id": id})
}

// GET /categories
func (h *ItemHandler) ListCategories(c echo.Context) error {
	cs, err := h.items.ListCategories(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, cs)
}
