package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// アカウント状態のゲート。
// 認証を通っていてもSUSPENDED/BANNEDなどは全操作を拒否する。
// optional-authのルートでは匿名（Identityなし）をそのまま通す。
func RequireActiveStatus(rec *SecurityRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity := IdentityFrom(c)
			if identity == nil {
				return next(c)
			}

			if code, msg := statusErrorCode(identity.Status); code != "" {
				return c.JSON(http.StatusForbidden, errorJSON(msg, code))
			}

			return next(c)
		}
	}
}
