package handler

import (
	"strconv"
	"time"

	"erp/internal/apperr"
	"erp/internal/domain/model"
	repo "erp/internal/repository"
	"erp/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type StockHandler struct {
	stocks *usecase.StockUsecase
}

// DIコンストラクタ
func NewStockHandler(stocks *usecase.StockUsecase) *StockHandler {
	return &StockHandler{stocks: stocks}
}

type lockRequest struct {
	OrderRef  string             `json:"order_ref"`
	OrderType string             `json:"order_type"`
	Items     []usecase.LockLine `json:"items"`
}

// POST /stock/lock
func (h *StockHandler) Lock(c echo.Context) error {
	var req lockRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.Validation("invalid request body"))
	}

	orderType := model.SourceType(req.OrderType)
	if orderType == "" {
		orderType = model.SourceTypeSale
	}

	err := h.stocks.Lock(c.Request().Context(), usecase.LockInput{
		OrderRef:  req.OrderRef,
		OrderType: orderType,
		Lines:     req.Items,
		Operator:  operatorOf(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, nil)
}

// POST /stock/unlock
func (h *StockHandler) Unlock(c echo.Context) error {
	var req struct {
		OrderRef string `json:"order_ref"`
	}
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.Validation("invalid request body"))
	}

	if err := h.stocks.Unlock(c.Request().Context(), req.OrderRef, operatorOf(c)); err != nil {
		return respondError(c, err)
	}
	return respondOK(c, nil)
}

type moveRequest struct {
	SkuID       string          `json:"sku_id"`
	WarehouseID int64           `json:"warehouse_id"`
	Qty         decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	SourceType  string          `json:"source_type"`
	SourceNo    string          `json:"source_no"`
	MoveType    string          `json:"move_type"`
}

// POST /stock/in
func (h *StockHandler) MoveIn(c echo.Context) error {
	var req moveRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.Validation("invalid request body"))
	}

	sourceType := model.SourceType(req.SourceType)
	if sourceType == "" {
		sourceType = model.SourceTypeAdjust
	}

	out, err := h.stocks.MoveIn(c.Request().Context(), usecase.MoveInput{
		SkuID:       req.SkuID,
		WarehouseID: req.WarehouseID,
		Qty:         req.Qty,
		UnitCost:    req.UnitCost,
		SourceType:  sourceType,
		SourceNo:    req.SourceNo,
		MoveType:    model.MoveType(req.MoveType),
		Operator:    operatorOf(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, out)
}

// POST /stock/out
func (h *StockHandler) MoveOut(c echo.Context) error {
	var req moveRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.Validation("invalid request body"))
	}

	sourceType := model.SourceType(req.SourceType)
	if sourceType == "" {
		sourceType = model.SourceTypeAdjust
	}

	out, err := h.stocks.MoveOut(c.Request().Context(), usecase.MoveInput{
		SkuID:       req.SkuID,
		WarehouseID: req.WarehouseID,
		Qty:         req.Qty,
		UnitCost:    req.UnitCost,
		SourceType:  sourceType,
		SourceNo:    req.SourceNo,
		MoveType:    model.MoveType(req.MoveType),
		Operator:    operatorOf(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, out)
}

// GET /stock/lines/:sku/:warehouse
func (h *StockHandler) GetLine(c echo.Context) error {
	warehouseID, err := strconv.ParseInt(c.Param("warehouse"), 10, 64)
	if err != nil {
		return respondError(c, apperr.Validation("invalid warehouse id"))
	}

	out, err := h.stocks.GetLine(c.Request().Context(), c.Param("sku"), warehouseID)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, out)
}

// GET /stock/movements
func (h *StockHandler) ListMovements(c echo.Context) error {
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
			return respondError(c, apperr.Validation("invalid from timestamp"))
		}
		q.From = &t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return respondError(c, apperr.Validation("invalid to timestamp"))
		}
		q.To = &t
	}
	q.Page, _ = strconv.Atoi(c.QueryParam("page"))
	q.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	moves, total, err := h.stocks.ListMovements(c.Request().Context(), q)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, paged{List: moves, Total: total, Page: q.Page, Limit: q.Limit})
}

// GET /stock/locks?order_ref=
func (h *StockHandler) ListLocks(c echo.Context) error {
	ref := c.QueryParam("order_ref")
	if ref == "" {
		return respondError(c, apperr.Validation("order_ref is required"))
	}

	locks, err := h.stocks.ListLocksByRef(c.Request().Context(), ref)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, locks)
}

// GET /warehouses
func (h *StockHandler) ListWarehouses(c echo.Context) error {
	ws, err := h.stocks.ListWarehouses(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, ws)
}

// POST /warehouses
func (h *StockHandler) CreateWarehouse(c echo.Context) error {
	var req struct {
		Code    string `json:"code"`
		Name    string `json:"name"`
		Address string `json:"address"`
	}
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.Validation("invalid request body"))
	}

	id, err := h.stocks.CreateWarehouse(c.Request().Context(), req.Code, req.Name, req.Address)
	if err != nil {
		return respondError(c, err)
	}
	return respondCreated(c, map[string]any{"warehouse_id": id})
}
