package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"app/internal/domain/model"
	"app/internal/repository"
)

// リソースの所有者IDを引く約束。データモデル側が実装する。
// ゲートは比較だけ行い、検索の中身には関知しない。
type OwnerLookup interface {
	FindOwnerID(ctx context.Context, resourceID int64) (int64, error)
}

// 所有者チェックのゲート。
// 所有者本人か、bypassRolesのいずれか（管理者・モデレーター想定）なら通す。
func RequireOwnership(lookup OwnerLookup, param string, rec *SecurityRecorder, bypassRoles ...model.Role) echo.MiddlewareFunc {
	bypass := make(map[model.Role]bool, len(bypassRoles))
	for _, r := range bypassRoles {
		bypass[r] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity := IdentityFrom(c)
			if identity == nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("authentication required", "AUTH_REQUIRED"))
			}

			resourceID, ok := paramInt64(c, param)
			if !ok {
				return c.JSON(http.StatusBadRequest, errorJSON("invalid id", "VALIDATION_ERROR"))
			}

			//bypass roleは所有者検索を省略できる
			if bypass[identity.Role] {
				return next(c)
			}

			ownerID, err := lookup.FindOwnerID(c.Request().Context(), resourceID)
			if err != nil {
				if errors.Is(err, repository.ErrArticleNotFound) {
					return c.JSON(http.StatusNotFound, errorJSON("not found", "NOT_FOUND"))
				}
				return c.JSON(http.StatusInternalServerError, errorJSON("internal error", "INTERNAL"))
			}

			if ownerID != identity.ID {
				rec.Record(c, model.SecurityEventPermissionDenied, &identity.ID, "not resource owner")
				return c.JSON(http.StatusForbidden, errorJSON("not resource owner", "NOT_RESOURCE_OWNER"))
			}

			return next(c)
		}
	}
}
