package handler

import (
	"strconv"

	"erp/internal/apperr"
	"erp/internal/domain/model"
	repo "erp/internal/repository"
	"erp/internal/usecase"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	orders *usecase.OrderUsecase
}

// DIコンストラクタ
func NewOrderHandler(orders *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// POST /orders
func (h *OrderHandler) Create(c echo.Context) error {
	var req usecase.CreateOrderInput
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.Validation("invalid request body"))
	}
	req.Operator = operatorOf(c)

	out, err := h.orders.Create(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return respondCreated(c, out)
}

// POST /orders/:no/pay
func (h *OrderHandler) Pay(c echo.Context) error {
	var req usecase.PayInput
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.Validation("invalid request body"))
	}
	req.OrderNo = c.Param("no")
	req.Operator = operatorOf(c)

	if err := h.orders.Pay(c.Request().Context(), req); err != nil {
		return respondError(c, err)
	}
	return respondOK(c, nil)
}

// POST /orders/:no/cancel
func (h *OrderHandler) Cancel(c echo.Context) error {
	if err := h.orders.Cancel(c.Request().Context(), c.Param("no"), operatorOf(c)); err != nil {
		return respondError(c, err)
	}
	return respondOK(c, nil)
}

// POST /orders/:no/ship
func (h *OrderHandler) Ship(c echo.Context) error {
	var req usecase.ShipInput
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.Validation("invalid request body"))
	}
	req.OrderNo = c.Param("no")
	req.Operator = operatorOf(c)

	if err := h.orders.Ship(c.Request().Context(), req); err != nil {
		return respondError(c, err)
	}
	return respondOK(c, nil)
}

// POST /orders/:no/complete
func (h *OrderHandler) Complete(c echo.Context) error {
	if err := h.orders.Complete(c.Request().Context(), c.Param("no")); err != nil {
		return respondError(c, err)
	}
	return respondOK(c, nil)
}

// POST /orders/:no/refund-request
func (h *OrderHandler) RequestRefund(c echo.Context) error {
	if err := h.orders.RequestRefund(c.Request().Context(), c.Param("no")); err != nil {
		return respondError(c, err)
	}
	return respondOK(c, nil)
}

// POST /orders/:no/refund
func (h *OrderHandler) Refund(c echo.Context) error {
	if err := h.orders.Refund(c.Request().Context(), c.Param("no")); err != nil {
		return respondError(c, err)
	}
	return respondOK(c, nil)
}

// GET /orders/:no
func (h *OrderHandler) Get(c echo.Context) error {
	out, err := h.orders.Get(c.Request().Context(), c.Param("no"))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, out)
}

// GET /orders
func (h *OrderHandler) List(c echo.Context) error {
	q := repo.OrderQuery{
		Status: model.OrderStatus(c.QueryParam("status")),
	}
	if v := c.QueryParam("member_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return respondError(c, apperr.Validation("invalid member_id"))
		}
		q.MemberID = &id
	}
	q.Page, _ = strconv.Atoi(c.QueryParam("page"))
	q.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	orders, total, err := h.orders.List(c.Request().Context(), q)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, paged{List: orders, Total: total, Page: q.Page, Limit: q.Limit})
}
