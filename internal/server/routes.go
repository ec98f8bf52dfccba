package server

import (
	"github.com/labstack/echo/v4"

	"app/internal/domain/model"
	"app/internal/middleware"
	"app/internal/ratelimit"
)

// ルートごとに認証・認可・レート制限のポリシーを宣言する。
func RegisterRoutes(e *echo.Echo, d Deps) {
	requireAuth := middleware.AuthJWT(d.Tokens, d.Resolver, d.Recorder)
	optionalAuth := middleware.OptionalAuthJWT(d.Tokens, d.Resolver, d.Recorder)

	rate := func(p ratelimit.Policy) echo.MiddlewareFunc {
		return middleware.RateLimit(d.Limiter, d.Blocker, p, d.Recorder)
	}

	// auth系は未認証で叩かれるので常にIPでカウントする
	authGroup := e.Group("/auth")
	authGroup.POST("/register", d.AuthHandler.Register, rate(ratelimit.PolicyAuth))
	authGroup.POST("/login", d.AuthHandler.Login, rate(ratelimit.PolicyAuth))
	authGroup.POST("/refresh", d.AuthHandler.Refresh, rate(ratelimit.PolicyAuth))

	authGroup.POST("/logout", d.AuthHandler.Logout, requireAuth)
	authGroup.POST("/logout-all", d.AuthHandler.LogoutAll, requireAuth)
	authGroup.GET("/me", d.AuthHandler.Me, requireAuth, rate(ratelimit.PolicyGeneral))

	// 閲覧は未認証でも可（tokenが付いていれば検証はする）
	e.GET("/articles/:id", d.ArticleHandler.Get, optionalAuth, rate(ratelimit.PolicyGeneral))

	// 記事：作成は認証＋contentポリシー、更新・削除は所有者または管理側role
	articles := e.Group("/articles", requireAuth, middleware.RequireActiveStatus(d.Recorder))
	articles.POST("", d.ArticleHandler.Create, rate(ratelimit.PolicyContent))
	articles.PUT("/:id", d.ArticleHandler.Update,
		middleware.RequireOwnership(d.ArticleOwner, "id", d.Recorder, model.RoleAdmin, model.RoleModerator))
	articles.DELETE("/:id", d.ArticleHandler.Delete,
		middleware.RequireOwnership(d.ArticleOwner, "id", d.Recorder, model.RoleAdmin, model.RoleModerator))

	// 管理者のみ
	admin := e.Group("/admin", requireAuth, middleware.RequireAdmin(d.Recorder), rate(ratelimit.PolicyAdmin))
	admin.POST("/sessions/cleanup", d.AdminHandler.CleanupSessions)
	admin.POST("/users/:id/force-logout", d.AdminHandler.ForceLogout)
	admin.GET("/users/:id/sessions", d.AdminHandler.UserSessions)
	admin.GET("/security-events", d.AdminHandler.ListSecurityEvents)
}
