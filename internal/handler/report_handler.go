package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"erp/internal/apperr"
	"erp/internal/domain/model"
	repo "erp/internal/repository"
	"erp/internal/usecase"

	"github.com/labstack/echo/v4"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	reports *usecase.ReportUsecase
}

// DIコンストラクタ
func NewReportHandler(reports *usecase.ReportUsecase) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// GET /reports/movements.xlsx
func (h *ReportHandler) ExportMovements(c echo.Context) error {
	q := repo.MovementQuery{
		SkuID:      c.QueryParam("sku_id"),
		MoveType:   model.MoveType(c.QueryParam("move_type")),
		SourceType: model.SourceType(c.QueryParam("source_type")),
		SourceNo:   c.QueryParam("source_no"),
	}
	if v := c.QueryParam("warehouse_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return respondError(c, apperr.Validation("invalid warehouse_id"))
		}
		q.WarehouseID = &id
	}
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return respondError(c, apperr.Validation("from must be RFC3339"))
		}
		q.From = &t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return respondError(c, apperr.Validation("to must be RFC3339"))
		}
		q.To = &t
	}

	data, err := h.reports.ExportMovements(c.Request().Context(), q)
	if err != nil {
		return respondError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, usecase.ReportFilename("movements")))
	return c.Blob(http.StatusOK, xlsxMIME, data)
}

// GET /reports/cost-sheets.xlsx
func (h *ReportHandler) ExportCostSheets(c echo.Context) error {
	q := repo.CostQuery{
		SkuID:    c.QueryParam("sku_id"),
		Period:   c.QueryParam("period"),
		CostType: model.CostType(c.QueryParam("type")),
	}

	data, err := h.reports.ExportCostSheets(c.Request().Context(), q)
	if err != nil {
		return respondError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, usecase.ReportFilename("cost-sheets")))
	return c.Blob(http.StatusOK, xlsxMIME, data)
}
