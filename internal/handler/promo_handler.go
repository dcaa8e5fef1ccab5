package handler

import (
	"strconv"

	"erp/internal/apperr"
	"erp/internal/domain/model"
	repo "erp/internal/repository"
	"erp/internal/usecase"

	"github.com/labstack/echo/v4"
)

type PromoHandler struct {
	promos *usecase.PromoUsecase
}

// DIコンストラクタ
func NewPromoHandler(promos *usecase.PromoUsecase) *PromoHandler {
	return &PromoHandler{promos: promos}
}

// POST /promo/calc
func (h *PromoHandler) Calculate(c echo.Context) error {
	var req struct {
		Lines []usecase.DraftLine `json:"lines"`
	}
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.Validation("invalid request body"))
	}

	out, err := h.promos.Calculate(c.Request().Context(), req.Lines)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, out)
}

// POST /promos
func (h *PromoHandler) Create(c echo.Context) error {
	var req usecase.PromoInput
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.Validation("invalid request body"))
	}

	id, err := h.promos.Create(c.Request().Context(), req, operatorOf(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondCreated(c, map[string]any{"promo_id": id})
}

// PUT /promos/:id/status
func (h *PromoHandler) UpdateStatus(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return respondError(c, apperr.Validation("invalid promo id"))
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.Validation("invalid request body"))
	}

	if err := h.promos.UpdateStatus(c.Request().Context(), id, req.Status, actorIDOf(c)); err != nil {
		return respondError(c, err)
	}
	return respondOK(c, nil)
}

// GET /promos/:id
func (h *PromoHandler) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return respondError(c, apperr.Validation("invalid promo id"))
	}

	p, err := h.promos.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, p)
}

// GET /promos
func (h *PromoHandler) List(c echo.Context) error {
	q := repo.PromoQuery{
		Code:   c.QueryParam("code"),
		Status: model.PromoStatus(c.QueryParam("status")),
	}
	q.Page, _ = strconv.Atoi(c.QueryParam("page"))
	q.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	promos, total, err := h.promos.List(c.Request().Context(), q)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, paged{List: promos, Total: total, Page: q.Page, Limit: q.Limit})
}
