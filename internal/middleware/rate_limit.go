package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"app/internal/domain/model"
	"app/internal/ratelimit"
)

// ポリシーごとのレート制限ミドルウェア。
// キーは認証済みならユーザーID、未認証（またはByIPポリシー）ならクライアントIP。
// 超過したリクエストは本処理に入る前に429で落とす。
func RateLimit(limiter *ratelimit.Limiter, blocker *ratelimit.Blocker, p ratelimit.Policy, rec *SecurityRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()

			//段階的ブロック中のIPは通常カウンタより先に拒否する
			if blocked, retryAfter := blocker.Check(ip); blocked {
				return tooManyRequests(c, "ip temporarily blocked", "IP_TEMPORARILY_BLOCKED", retrySeconds(retryAfter))
			}

			key := ip
			var userID *int64
			if identity := IdentityFrom(c); identity != nil {
				userID = &identity.ID
				if !p.ByIP {
					key = "u:" + strconv.FormatInt(identity.ID, 10)
				}
			}

			ok, retryAfter := limiter.Allow(p, key)
			if !ok {
				rec.Record(c, model.SecurityEventRateLimited, userID, "policy "+p.Name)

				//違反を記録して、累積でブロックに至ったらそれも記録する
				if blockedFor, count := blocker.RecordViolation(ip); blockedFor > 0 {
					rec.Record(c, model.SecurityEventIPBlocked,
						userID, fmt.Sprintf("violations=%d blocked=%s", count, blockedFor))
				}

				return tooManyRequests(c, "rate limit exceeded", "RATE_LIMIT_EXCEEDED", retrySeconds(retryAfter))
			}

			return next(c)
		}
	}
}

func tooManyRequests(c echo.Context, msg, code string, retryAfter int) error {
	c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
	return c.JSON(http.StatusTooManyRequests, errorResponse{
		Error:      msg,
		Code:       code,
		RetryAfter: retryAfter,
	})
}

// 残り時間を秒に切り上げる（最低1秒）。
func retrySeconds(d time.Duration) int {
	s := int(d / time.Second)
	if d%time.Second > 0 || s <= 0 {
		s++
	}
	return s
}
