package handler

import (
	"strconv"

	"erp/internal/apperr"
	repo "erp/internal/repository"
	"erp/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type MemberHandler struct {
	members *usecase.MemberUsecase
}

// DIコンストラクタ
func NewMemberHandler(members *usecase.MemberUsecase) *MemberHandler {
	return &MemberHandler{members: members}
}

// POST /members
func (h *MemberHandler) Create(c echo.Context) error {
	var req usecase.MemberInput
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.Validation("invalid request body"))
	}

	id, err := h.members.Create(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return respondCreated(c, map[string]any{"member_id": id})
}

// GET /members/:id
func (h *MemberHandler) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return respondError(c, apperr.Validation("invalid member id"))
	}

	m, err := h.members.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, m)
}

// GET /members
func (h *MemberHandler) List(c echo.Context) error {
	q := repo.MemberQuery{Q: c.QueryParam("q")}
	q.Page, _ = strconv.Atoi(c.QueryParam("page"))
	q.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	members, total, err := h.members.List(c.Request().Context(), q)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, paged{List: members, Total: total, Page: q.Page, Limit: q.Limit})
}

// GET /members/:id/points
func (h *MemberHandler) ListPointLogs(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return respondError(c, apperr.Validation("invalid member id"))
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	logs, total, err := h.members.ListPointLogs(c.Request().Context(), id, page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, paged{List: logs, Total: total, Page: page, Limit: limit})
}

// POST /members/:id/points/adjust
func (h *MemberHandler) AdjustPoints(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return respondError(c, apperr.Validation("invalid member id"))
	}

	var req struct {
		Points decimal.Decimal `json:"points"`
		Reason string          `json:"reason"`
	}
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.Validation("invalid request body"))
	}

	if err := h.members.AdjustPoints(c.Request().Context(), usecase.AdjustPointsInput{
		MemberID: id,
		Points:   req.Points,
		Reason:   req.Reason,
		Operator: operatorOf(c),
	}); err != nil {
		return respondError(c, err)
	}
	return respondOK(c, nil)
}

// POST /member-levels
func (h *MemberHandler) CreateLevel(c echo.Context) error {
	var req struct {
		Code             string          `json:"code"`
		Name             string          `json:"name"`
		PointsMultiplier decimal.Decimal `json:"points_multiplier"`
		MinConsumed      decimal.Decimal `json:"min_consumed"`
	}
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.Validation("invalid request body"))
	}

	id, err := h.members.CreateLevel(c.Request().Context(), req.Code, req.Name, req.PointsMultiplier, req.MinConsumed)
	if err != nil {
		return respondError(c, err)
	}
	return respondCreated(c, map[string]any{"level_id": id})
}

// GET /member-levels
func (h *MemberHandler) ListLevels(c echo.Context) error {
	ls, err := h.members.ListLevels(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, ls)
}
