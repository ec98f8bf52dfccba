package middleware

import (
	"github.com/labstack/echo/v4"

	"app/internal/domain/model"
)

// echo contextに保存するキー
const CtxIdentityKey = "identity" // *model.Identity

// contextから認証済みIdentityを取り出す。未認証ならnil。
func IdentityFrom(c echo.Context) *model.Identity {
	raw := c.Get(CtxIdentityKey)
	identity, ok := raw.(*model.Identity)
	if !ok {
		return nil
	}
	return identity
}

// エラーレスポンスの共通形。codeは機械可読、errorは最小限のメッセージ。
// 内部の詳細はクライアントに返さない。
type errorResponse struct {
	Error      string `json:"error"`
	Code       string `json:"code"`
	RetryAfter int    `json:"retryAfter,omitempty"` // 429のときだけ（秒）
}

func errorJSON(msg string, code string) errorResponse {
	return errorResponse{Error: msg, Code: code}
}
