package middleware

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"app/internal/domain/model"
	"app/internal/repository"
)

// セキュリティ関連の失敗をログとDBの両方に残す。
// DB保存はbest-effortで、失敗してもリクエスト処理は止めない。
type SecurityRecorder struct {
	logger *zap.Logger
	events repository.SecurityEventRepository
}

func NewSecurityRecorder(securityLogger *zap.Logger, events repository.SecurityEventRepository) *SecurityRecorder {
	return &SecurityRecorder{logger: securityLogger, events: events}
}

// Recordはイベントを記録する。userIDは不明ならnil。
func (r *SecurityRecorder) Record(c echo.Context, eventType model.SecurityEventType, userID *int64, detail string) {
	if r == nil {
		return
	}

	ip := c.RealIP()
	endpoint := c.Request().Method + " " + c.Path()

	if r.logger != nil {
		fields := []zap.Field{
			zap.String("event", string(eventType)),
			zap.String("ip", ip),
			zap.String("endpoint", endpoint),
		}
		if userID != nil {
			fields = append(fields, zap.Int64("user_id", *userID))
		}
		if detail != "" {
			fields = append(fields, zap.String("detail", detail))
		}
		r.logger.Warn("security event", fields...)
	}

	if r.events != nil {
		_ = r.events.Create(c.Request().Context(), model.SecurityEvent{
			EventType: eventType,
			UserID:    userID,
			IPAddress: ip,
			UserAgent: c.Request().UserAgent(),
			Endpoint:  endpoint,
			Detail:    detail,
		})
	}
}
