package handler

import (
	"strconv"

	"erp/internal/domain/model"
	repo "erp/internal/repository"
	"erp/internal/usecase"

	"github.com/labstack/echo/v4"
)

type CostHandler struct {
	costs *usecase.CostUsecase
}

// DIコンストラクタ
func NewCostHandler(costs *usecase.CostUsecase) *CostHandler {
	return &CostHandler{costs: costs}
}

// GET /cost-sheets/:sku/:period/:type
func (h *CostHandler) Get(c echo.Context) error {
	sheet, err := h.costs.Get(c.Request().Context(), c.Param("sku"), c.Param("period"), c.Param("type"))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, sheet)
}

// GET /cost-sheets
func (h *CostHandler) List(c echo.Context) error {
	q := repo.CostQuery{
		SkuID:    c.QueryParam("sku_id"),
		Period:   c.QueryParam("period"),
		CostType: model.CostType(c.QueryParam("type")),
	}
	q.Page, _ = strconv.Atoi(c.QueryParam("page"))
	q.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	sheets, total, err := h.costs.List(c.Request().Context(), q)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, paged{List: sheets, Total: total, Page: q.Page, Limit: q.Limit})
}
