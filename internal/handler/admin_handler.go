package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"app/internal/domain/model"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/usecase"
)

// 管理者用の運用エンドポイント。
// ルート登録側でRequireAdminを通す前提。
type AdminHandler struct {
	authUC *usecase.AuthUsecase
	events repository.SecurityEventRepository
	rec    *middleware.SecurityRecorder
}

func NewAdminHandler(authUC *usecase.AuthUsecase, events repository.SecurityEventRepository, rec *middleware.SecurityRecorder) *AdminHandler {
	return &AdminHandler{authUC: authUC, events: events, rec: rec}
}

// CleanupSessionsはPOST /admin/sessions/cleanupのハンドラ。
// 削除件数を返す。0件でもエラーにしない。
func (h *AdminHandler) CleanupSessions(c echo.Context) error {
	count, err := h.authUC.CleanupExpiredSessions(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "INTERNAL"})
	}

	return c.JSON(http.StatusOK, map[string]int64{"removed": count})
}

// ForceLogoutはPOST /admin/users/:id/force-logoutのハンドラ。
// 指定ユーザーの全セッションを失効させる。
func (h *AdminHandler) ForceLogout(c echo.Context) error {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || userID <= 0 {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid user id", Code: "VALIDATION_ERROR"})
	}

	count, err := h.authUC.InvalidateAllSessions(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "INTERNAL"})
	}

	h.rec.Record(c, model.SecurityEventForcedLogout, &userID, "admin action")

	return c.JSON(http.StatusOK, map[string]int64{
		"userId":      userID,
		"invalidated": count,
	})
}

// UserSessionsはGET /admin/users/:id/sessionsのハンドラ。
// 指定ユーザーの有効セッション数を返す。
func (h *AdminHandler) UserSessions(c echo.Context) error {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || userID <= 0 {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid user id", Code: "VALIDATION_ERROR"})
	}

	count, err := h.authUC.CountActiveSessions(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "INTERNAL"})
	}

	return c.JSON(http.StatusOK, map[string]int64{
		"userId":         userID,
		"activeSessions": count,
	})
}

// ListSecurityEventsはGET /admin/security-eventsのハンドラ。
func (h *AdminHandler) ListSecurityEvents(c echo.Context) error {
	var filter repository.SecurityEventFilter

	if v := c.QueryParam("type"); v != "" {
		t := model.SecurityEventType(v)
		filter.EventType = &t
	}
	if v := c.QueryParam("userId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid user id", Code: "VALIDATION_ERROR"})
		}
		filter.UserID = &id
	}
	if v := c.QueryParam("ip"); v != "" {
		filter.IPAddress = &v
	}
	if v := c.QueryParam("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid limit", Code: "VALIDATION_ERROR"})
		}
		filter.Limit = limit
	}
	if v := c.QueryParam("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid offset", Code: "VALIDATION_ERROR"})
		}
		filter.Offset = offset
	}

	events, err := h.events.List(c.Request().Context(), filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "INTERNAL"})
	}

	return c.JSON(http.StatusOK, events)
}
