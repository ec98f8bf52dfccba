package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"app/internal/domain/model"
	"app/internal/middleware"
	"app/internal/usecase"
	"app/internal/validator"
)

type AuthHandler struct {
	authUC *usecase.AuthUsecase
	rec    *middleware.SecurityRecorder
}

// DIコンストラクタ
func NewAuthHandler(authUC *usecase.AuthUsecase, rec *middleware.SecurityRecorder) *AuthHandler {
	return &AuthHandler{authUC: authUC, rec: rec}
}

// /auth/register /auth/login のリクエストボディ。
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// /auth/refresh /auth/logout のリクエストボディ。
type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// RegisterはPOST /auth/registerのハンドラ
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body", Code: "VALIDATION_ERROR"})
	}

	out, err := h.authUC.Register(c.Request().Context(), usecase.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	})
	if err != nil {
		switch {
		case errors.Is(err, validator.ErrInvalidInput), errors.Is(err, validator.ErrWeakPassword):
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid email or password format", Code: "VALIDATION_ERROR"})
		case errors.Is(err, validator.ErrEmailAlreadyUsed), errors.Is(err, usecase.ErrEmailTaken):
			return c.JSON(http.StatusConflict, errorResponse{Error: "email already used", Code: "CONFLICT"})
		default:
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "INTERNAL"})
		}
	}

	return c.JSON(http.StatusCreated, out)
}

// LoginはPOST /auth/loginのハンドラ。
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body", Code: "VALIDATION_ERROR"})
	}

	out, err := h.authUC.Login(c.Request().Context(), usecase.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	})
	if err != nil {
		switch {
		case errors.Is(err, validator.ErrInvalidInput):
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid email or password format", Code: "VALIDATION_ERROR"})
		case errors.Is(err, usecase.ErrInvalidCredentials):
			//email不明とパスワード不一致は同じレスポンス
			h.rec.Record(c, model.SecurityEventLoginFailed, nil, "invalid credentials")
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid email or password", Code: "INVALID_CREDENTIALS"})
		default:
			if status, code, msg := accountStatusResponse(err); code != "" {
				h.rec.Record(c, model.SecurityEventLoginFailed, nil, "account status")
				return c.JSON(status, errorResponse{Error: msg, Code: code})
			}
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "INTERNAL"})
		}
	}

	return c.JSON(http.StatusOK, out)
}

// RefreshはPOST /auth/refreshのハンドラ。bodyのrefreshTokenだけを見る。
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body", Code: "VALIDATION_ERROR"})
	}

	out, err := h.authUC.Refresh(c.Request().Context(), req.RefreshToken, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrRefreshTokenExpired):
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "refresh token expired", Code: "REFRESH_TOKEN_EXPIRED"})
		case errors.Is(err, usecase.ErrInvalidRefreshToken):
			h.rec.Record(c, model.SecurityEventTokenRejected, nil, "invalid refresh token")
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid refresh token", Code: "INVALID_REFRESH_TOKEN"})
		case errors.Is(err, usecase.ErrSessionNotFound):
			//tokenは構造的に有効でもセッションが失効していればここで拒否
			h.rec.Record(c, model.SecurityEventTokenRejected, nil, "session not found")
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "session not found", Code: "SESSION_NOT_FOUND"})
		case errors.Is(err, usecase.ErrUserNotFound):
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "user not found", Code: "USER_NOT_FOUND"})
		default:
			if status, code, msg := accountStatusResponse(err); code != "" {
				return c.JSON(status, errorResponse{Error: msg, Code: code})
			}
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "INTERNAL"})
		}
	}

	return c.JSON(http.StatusOK, out)
}

// LogoutはPOST /auth/logoutのハンドラ。
// tokenが既に無効でも常に成功を返す（セッションの有無を漏らさない）。
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusOK, messageResponse{Message: "logged out"})
	}

	h.authUC.Logout(c.Request().Context(), req.RefreshToken)

	return c.JSON(http.StatusOK, messageResponse{Message: "logged out"})
}

// MeはGET /auth/meのハンドラ。middlewareが解決したIdentityを返す。
func (h *AuthHandler) Me(c echo.Context) error {
	identity := middleware.IdentityFrom(c)
	if identity == nil {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "authentication required", Code: "AUTH_REQUIRED"})
	}

	return c.JSON(http.StatusOK, identity)
}

// LogoutAllはPOST /auth/logout-allのハンドラ。全端末からログアウトする。
func (h *AuthHandler) LogoutAll(c echo.Context) error {
	identity := middleware.IdentityFrom(c)
	if identity == nil {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "authentication required", Code: "AUTH_REQUIRED"})
	}

	count, err := h.authUC.InvalidateAllSessions(c.Request().Context(), identity.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "INTERNAL"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":     "logged out everywhere",
		"invalidated": count,
	})
}

// account statusエラーをHTTPレスポンスにする共通処理。
func accountStatusResponse(err error) (int, string, string) {
	switch {
	case errors.Is(err, usecase.ErrAccountSuspended):
		return http.StatusForbidden, "ACCOUNT_SUSPENDED", "account suspended"
	case errors.Is(err, usecase.ErrAccountBanned):
		return http.StatusForbidden, "ACCOUNT_BANNED", "account banned"
	case errors.Is(err, usecase.ErrAccountInactive):
		return http.StatusForbidden, "ACCOUNT_INACTIVE", "account inactive"
	default:
		return 0, "", ""
	}
}
