package server

import (
	"github.com/labstack/echo/v4"

	"app/internal/auth"
	"app/internal/handler"
	"app/internal/middleware"
	"app/internal/ratelimit"
)

// ルート登録に必要な部品一式。main.goで組み立てて渡す。
type Deps struct {
	AuthHandler    *handler.AuthHandler
	AdminHandler   *handler.AdminHandler
	ArticleHandler *handler.ArticleHandler

	Tokens   *auth.TokenIssuer
	Resolver middleware.IdentityResolver
	Recorder *middleware.SecurityRecorder

	Limiter *ratelimit.Limiter
	Blocker *ratelimit.Blocker

	ArticleOwner middleware.OwnerLookup
}

// New はechoサーバーを組み立てて返す。
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	RegisterRoutes(e, d)

	return e
}

func Start(e *echo.Echo, port string) error {
	return e.Start(":" + port)
}
