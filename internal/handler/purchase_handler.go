package handler

import (
	"strconv"

	"erp/internal/apperr"
	"erp/internal/domain/model"
	repo "erp/internal/repository"
	"erp/internal/usecase"

	"github.com/labstack/echo/v4"
)

type PurchaseHandler struct {
	purchases *usecase.PurchaseUsecase
}

// DIコンストラクタ
func NewPurchaseHandler(purchases *usecase.PurchaseUsecase) *PurchaseHandler {
	return &PurchaseHandler{purchases: purchases}
}

// POST /suppliers
func (h *PurchaseHandler) CreateSupplier(c echo.Context) error {
	var req usecase.SupplierInput
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.Validation("invalid request body"))
	}

	id, err := h.purchases.CreateSupplier(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return respondCreated(c, map[string]any{"supplier_id": id})
}

// GET /suppliers
func (h *PurchaseHandler) ListSuppliers(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	suppliers, total, err := h.purchases.ListSuppliers(c.Request().Context(), page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, paged{List: suppliers, Total: total, Page: page, Limit: limit})
}

// POST /purchase-orders
func (h *PurchaseHandler) CreateOrder(c echo.Context) error {
	var req usecase.CreatePoInput
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.Validation("invalid request body"))
	}
	req.Operator = operatorOf(c)

	poNo, err := h.purchases.CreateOrder(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return respondCreated(c, map[string]any{"po_no": poNo})
}

// POST /purchase-orders/:no/approve
func (h *PurchaseHandler) Approve(c echo.Context) error {
	if err := h.purchases.Approve(c.Request().Context(), c.Param("no"), operatorOf(c), actorIDOf(c)); err != nil {
		return respondError(c, err)
	}
	return respondOK(c, nil)
}

// POST /purchase-orders/:no/receive
func (h *PurchaseHandler) Receive(c echo.Context) error {
	if err := h.purchases.Receive(c.Request().Context(), c.Param("no"), operatorOf(c)); err != nil {
		return respondError(c, err)
	}
	return respondOK(c, nil)
}

// GET /purchase-orders/:no
func (h *PurchaseHandler) Get(c echo.Context) error {
	po, items, err := h.purchases.Get(c.Request().Context(), c.Param("no"))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, map[string]any{"order": po, "items": items})
}

// GET /purchase-orders
func (h *PurchaseHandler) List(c echo.Context) error {
	q := repo.PurchaseOrderQuery{
		Status: model.PurchaseOrderStatus(c.QueryParam("status")),
	}
	if v := c.QueryParam("supplier_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return respondError(c, apperr.Validation("invalid supplier_id"))
		}
		q.SupplierID = &id
	}
	q.Page, _ = strconv.Atoi(c.QueryParam("page"))
	q.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	orders, total, err := h.purchases.List(c.Request().Context(), q)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, paged{List: orders, Total: total, Page: q.Page, Limit: q.Limit})
}
