package handler

import (
	"strconv"

	"erp/internal/apperr"
	"erp/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	auth *usecase.AuthUsecase
}

// DIコンストラクタ
func NewAuthHandler(auth *usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// POST /auth/register
func (h *AuthHandler) Register(c echo.Context) error {
	var req usecase.RegisterInput
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.Validation("invalid request body"))
	}

	id, err := h.auth.Register(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return respondCreated(c, map[string]any{"user_id": id})
}

// POST /auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req usecase.LoginInput
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.Validation("invalid request body"))
	}

	out, err := h.auth.Login(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, out)
}

// GET /admin/users
func (h *AuthHandler) ListUsers(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	users, total, err := h.auth.ListUsers(c.Request().Context(), page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, paged{List: users, Total: total, Page: page, Limit: limit})
}

// PUT /admin/users/:id/active
func (h *AuthHandler) SetActive(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return respondError(c, apperr.Validation("invalid user id"))
	}

	var req struct {
		Active bool `json:"active"`
	}
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.Validation("invalid request body"))
	}

	if err := h.auth.SetActive(c.Request().Context(), id, req.Active); err != nil {
		return respondError(c, err)
	}
	return respondOK(c, nil)
}
