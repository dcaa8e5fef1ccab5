package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// 業務エラーコード。レスポンスのcodeにそのまま出す。
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeUnauthorized      = "AUTHENTICATION_ERROR"
	CodeTokenExpired      = "TOKEN_EXPIRED"
	CodeForbidden         = "PERMISSION_DENIED"
	CodeNotFound          = "NOT_FOUND"
	CodeConflict          = "CONFLICT"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeOrderAlreadyPaid  = "ORDER_ALREADY_PAID"
	CodeInvalidOrderState = "INVALID_ORDER_STATE"
	CodeAlreadyStockedIn  = "ALREADY_STOCKED_IN"
	CodeInternal          = "INTERNAL_ERROR"
)

// Errorは業務エラー。Status/Code/Messageをそのままレスポンス封筒へ写す。
type Error struct {
	Status  int
	Code    string
	Message string
	Data    map[string]any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

func As(err error) (*Error, bool) {
	var ae *Error
	ok := errors.As(err, &ae)
	return ae, ok
}

func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

func Validation(message string) *Error {
	return New(http.StatusBadRequest, CodeValidation, message)
}

func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, CodeUnauthorized, message)
}

func Forbidden(message string) *Error {
	return New(http.StatusForbidden, CodeForbidden, message)
}

func NotFound(resource string) *Error {
	return New(http.StatusNotFound, CodeNotFound, resource+" not found")
}

func Conflict(message string) *Error {
	return New(http.StatusConflict, CodeConflict, message)
}

func Internal(message string) *Error {
	return New(http.StatusInternalServerError, CodeInternal, message)
}

// InsufficientStockは不足明細を添えて返す（409）。
func InsufficientStock(skuID string, available, required decimal.Decimal) *Error {
	e := New(http.StatusConflict, CodeInsufficientStock,
		fmt.Sprintf("insufficient stock: sku=%s available=%s required=%s", skuID, available, required))
	e.Data = map[string]any{
		"sku_id":    skuID,
		"available": available.String(),
		"required":  required.String(),
	}
	return e
}

func OrderAlreadyPaid(orderNo string) *Error {
	return New(http.StatusConflict, CodeOrderAlreadyPaid, "order already paid: "+orderNo)
}

func InvalidOrderState(from, to string) *Error {
	return New(http.StatusConflict, CodeInvalidOrderState,
		fmt.Sprintf("transition not allowed: %s -> %s", from, to))
}

func AlreadyStockedIn(poNo string) *Error {
	return New(http.StatusConflict, CodeAlreadyStockedIn, "purchase order already received: "+poNo)
}
