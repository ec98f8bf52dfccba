package middleware

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"app/internal/domain/model"
)

// 許可するroleの一覧を宣言するゲート。
// Identityが無ければ401、roleが一覧に無ければ403。
func RequireRole(rec *SecurityRecorder, roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity := IdentityFrom(c)
			if identity == nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("authentication required", "AUTH_REQUIRED"))
			}

			if !allowed[identity.Role] {
				rec.Record(c, model.SecurityEventPermissionDenied, &identity.ID, "role "+string(identity.Role))
				return c.JSON(http.StatusForbidden, errorJSON("insufficient permissions", "INSUFFICIENT_PERMISSIONS"))
			}

			return next(c)
		}
	}
}

// 管理者だけ許可する省略形。
func RequireAdmin(rec *SecurityRecorder) echo.MiddlewareFunc {
	return RequireRole(rec, model.RoleAdmin)
}

// pathパラメータからint64のIDを取り出す共通処理。
func paramInt64(c echo.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
