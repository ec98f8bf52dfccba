package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"app/internal/auth"
	"app/internal/domain/model"
	"app/internal/repository"
)

// bearerAuth用のJWT検証ミドルウェア。
// token検証だけでなく、毎リクエストDBの最新ユーザー状態を確認する。
// BANされたユーザーの未失効tokenをここで止める。
func AuthJWT(tokens *auth.TokenIssuer, resolver IdentityResolver, rec *SecurityRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawToken, ok := bearerToken(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("authentication required", "AUTH_REQUIRED"))
			}

			if err := authenticate(c, rawToken, tokens, resolver, rec); err != nil {
				return err
			}

			return next(c)
		}
	}
}

// 認証してもしなくてもよいルート用。
// ヘッダが無ければ匿名のまま通すが、無効なtokenは拒否する。
func OptionalAuthJWT(tokens *auth.TokenIssuer, resolver IdentityResolver, rec *SecurityRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawToken, ok := bearerToken(c)
			if !ok {
				return next(c)
			}

			if err := authenticate(c, rawToken, tokens, resolver, rec); err != nil {
				return err
			}

			return next(c)
		}
	}
}

// token検証→DBの最新状態確認→Identityをcontextに保存。
// 失敗時はレスポンスを書いて非nilを返す。
func authenticate(c echo.Context, rawToken string, tokens *auth.TokenIssuer, resolver IdentityResolver, rec *SecurityRecorder) error {
	claims, err := tokens.VerifyAccessToken(rawToken)
	if err != nil {
		//期限切れはrefreshフローへ誘導できるようcodeを分ける
		if errors.Is(err, auth.ErrTokenExpired) {
			return c.JSON(http.StatusUnauthorized, errorJSON("token expired", "TOKEN_EXPIRED"))
		}
		rec.Record(c, model.SecurityEventTokenRejected, nil, "invalid access token")
		return c.JSON(http.StatusUnauthorized, errorJSON("invalid token", "TOKEN_INVALID"))
	}

	userID, err := claims.UserID()
	if err != nil {
		rec.Record(c, model.SecurityEventTokenRejected, nil, "invalid subject claim")
		return c.JSON(http.StatusUnauthorized, errorJSON("invalid token", "TOKEN_INVALID"))
	}

	//tokenは有効でもユーザーが消えていれば拒否
	identity, err := resolver.Resolve(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			rec.Record(c, model.SecurityEventTokenRejected, &userID, "user not found")
			return c.JSON(http.StatusUnauthorized, errorJSON("user not found", "USER_NOT_FOUND"))
		}
		return c.JSON(http.StatusInternalServerError, errorJSON("internal error", "INTERNAL"))
	}

	//statusが変わっていればtokenの有効期限を待たずに即時反映
	if code, msg := statusErrorCode(identity.Status); code != "" {
		rec.Record(c, model.SecurityEventTokenRejected, &userID, "account status "+string(identity.Status))
		return c.JSON(http.StatusForbidden, errorJSON(msg, code))
	}

	c.Set(CtxIdentityKey, identity)
	return nil
}

// Authorizationヘッダからbearer tokenを抜く。
func bearerToken(c echo.Context) (string, bool) {
	authz := c.Request().Header.Get("Authorization")
	if authz == "" {
		return "", false
	}

	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	rawToken := strings.TrimSpace(parts[1])
	if rawToken == "" {
		return "", false
	}
	return rawToken, true
}

func statusErrorCode(s model.Status) (code string, msg string) {
	switch s {
	case model.StatusActive:
		return "", ""
	case model.StatusSuspended:
		return "ACCOUNT_SUSPENDED", "account suspended"
	case model.StatusBanned:
		return "ACCOUNT_BANNED", "account banned"
	default:
		return "ACCOUNT_INACTIVE", "account inactive"
	}
}
