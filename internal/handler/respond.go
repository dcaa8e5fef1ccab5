package handler

import (
	"log/slog"
	"net/http"

	"erp/internal/apperr"
	"erp/internal/middleware"

	"github.com/labstack/echo/v4"
)

// 全レスポンス共通の封筒
type Envelope struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respondOK(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Code: "OK", Message: "ok", Data: data})
}

func respondCreated(c echo.Context, data any) error {
	return c.JSON(http.StatusCreated, Envelope{Success: true, Code: "OK", Message: "created", Data: data})
}

// respondErrorは業務エラーをそのまま封筒へ写し、想定外は500に落とす。
func respondError(c echo.Context, err error) error {
	if ae, ok := apperr.As(err); ok {
		body := Envelope{Success: false, Code: ae.Code, Message: ae.Message}
		if ae.Data != nil {
			body.Data = ae.Data
		}
		return c.JSON(ae.Status, body)
	}

	slog.Error("unhandled error", "path", c.Path(), "error", err)
	return c.JSON(http.StatusInternalServerError, Envelope{
		Success: false,
		Code:    apperr.CodeInternal,
		Message: "internal error",
	})
}

// pagedはページング付き一覧のdata形
type paged struct {
	List  any   `json:"list"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

func operatorOf(c echo.Context) string {
	if v, ok := c.Get(middleware.CtxUsernameKey).(string); ok {
		return v
	}
	return ""
}

func actorIDOf(c echo.Context) int64 {
	if v, ok := c.Get(middleware.CtxUserIDKey).(int64); ok {
		return v
	}
	return 0
}
