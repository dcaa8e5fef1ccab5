package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"erp/internal/apperr"
	"erp/internal/config"
	"erp/internal/domain/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey       = "user_id"      // int64
	CtxUsernameKey     = "username"     // string
	CtxCapabilitiesKey = "capabilities" // model.CapabilitySet
)

// bearerAuth用のJWT検証ミドルウェア。
// ロールはここで一度だけ権限集合に解決し、以降はブール判定だけにする。
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//Authorizationヘッダを取得
			authz := c.Request().Header.Get("Authorization")
			if authz == "" {
				return unauthorizedJSON(c, apperr.CodeUnauthorized, "unauthorized")
			}

			//Bearer形式か確認してtokenを抜く
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return unauthorizedJSON(c, apperr.CodeUnauthorized, "unauthorized")
			}
			rawToken := strings.TrimSpace(parts[1])
			if rawToken == "" {
				return unauthorizedJSON(c, apperr.CodeUnauthorized, "unauthorized")
			}

			//JWTをパースして検証する
			token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
				if t.Method != jwt.SigningMethodHS256 {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(cfg.JWTSecret), nil
			})
			if err != nil {
				if errors.Is(err, jwt.ErrTokenExpired) {
					return unauthorizedJSON(c, apperr.CodeTokenExpired, "token expired")
				}
				return unauthorizedJSON(c, apperr.CodeUnauthorized, "unauthorized")
			}
			if token == nil || !token.Valid {
				return unauthorizedJSON(c, apperr.CodeUnauthorized, "unauthorized")
			}

			//claimsを取り出す
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return unauthorizedJSON(c, apperr.CodeUnauthorized, "unauthorized")
			}

			userID, err := parseUserID(claims["sub"])
			if err != nil || userID <= 0 {
				return unauthorizedJSON(c, apperr.CodeUnauthorized, "unauthorized")
			}

			username, _ := claims["username"].(string)

			role, ok := claims["role"].(string)
			if !ok || role == "" {
				return unauthorizedJSON(c, apperr.CodeUnauthorized, "unauthorized")
			}

			//contextへ保存
			c.Set(CtxUserIDKey, userID)
			c.Set(CtxUsernameKey, username)
			c.Set(CtxCapabilitiesKey, model.CapabilitiesFor(model.Role(role)))

			return next(c)
		}
	}
}

// RequireCapabilityは権限集合に指定操作が含まれるか確認する。
func RequireCapability(cap model.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caps, ok := c.Get(CtxCapabilitiesKey).(model.CapabilitySet)
			if !ok {
				return unauthorizedJSON(c, apperr.CodeUnauthorized, "unauthorized")
			}
			if !caps.Has(cap) {
				return c.JSON(http.StatusForbidden, envelope{
					Success: false,
					Code:    apperr.CodeForbidden,
					Message: "permission denied",
				})
			}
			return next(c)
		}
	}
}

type envelope struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func unauthorizedJSON(c echo.Context, code, msg string) error {
	return c.JSON(http.StatusUnauthorized, envelope{Success: false, Code: code, Message: msg})
}

// subをint64に変換する
func parseUserID(v interface{}) (int64, error) {
	switch t := v.(type) {
	case float64:
		return int64(t), nil
	case string:
		return strconv.ParseInt(t, 10, 64)
	default:
		return 0, errors.New("invalid sub")
	}
}
