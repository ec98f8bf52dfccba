package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"app/internal/auth"
	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/logging"
	"app/internal/middleware"
	"app/internal/ratelimit"
	"app/internal/server"
	"app/internal/usecase"
	"app/internal/validator"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

// limiterとblockerのPruneはシグネチャが同じ
type pruner interface {
	Prune(maxAge time.Duration) int
}

// 定期掃除の1回分。DB側の掃除が失敗しても
// インメモリのカウンタは必ず刈る。
func sweep(ctx context.Context, authUC *usecase.AuthUsecase, counters pruner, blocks pruner, logger *zap.Logger) {
	n, err := authUC.CleanupExpiredSessions(ctx)
	if err != nil {
		logger.Warn("session cleanup failed", zap.Error(err))
	} else if n > 0 {
		logger.Info("expired sessions removed", zap.Int64("count", n))
	}

	counters.Prune(24 * time.Hour)
	blocks.Prune(24 * time.Hour)
}

func main() {
	//.envは無くてもよい（環境変数が直接入っているケース）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := logging.New(cfg.GoEnv)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Session{},
		&model.SecurityEvent{},
		&model.Article{},
	); err != nil {
		logger.Fatal("migrate failed", zap.Error(err))
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	sessionRepo := infraRepo.NewSessionGormRepository(gormDB)
	eventRepo := infraRepo.NewSecurityEventGormRepository(gormDB)
	articleRepo := infraRepo.NewArticleGormRepository(gormDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	tokens := auth.NewTokenIssuer(
		cfg.JWTAccessSecret, cfg.JWTRefreshSecret,
		cfg.AccessTokenTTL, cfg.RefreshTokenTTL,
	)
	authValidator := validator.NewAuthValidator(userRepo)

	authUC := usecase.NewAuthUsecase(userRepo, sessionRepo, hasher, tokens, authValidator, clock, idGen)

	//セキュリティイベントの記録先（ログ＋DB）
	recorder := middleware.NewSecurityRecorder(logging.Security(logger), eventRepo)
	resolver := middleware.NewIdentityResolver(userRepo)

	limiter := ratelimit.New()
	blocker := ratelimit.NewBlocker(ratelimit.DefaultBlockerConfig())

	//期限切れセッションとカウンタの定期掃除
	go func() {
		ticker := time.NewTicker(cfg.CleanupInterval)
		defer ticker.Stop()
		for range ticker.C {
			sweep(context.Background(), authUC, limiter, blocker, logger)
		}
	}()

	//Handler生成
	authH := handler.NewAuthHandler(authUC, recorder)
	adminH := handler.NewAdminHandler(authUC, eventRepo, recorder)
	articleH := handler.NewArticleHandler(articleRepo)

	e := server.New(server.Deps{
		AuthHandler:    authH,
		AdminHandler:   adminH,
		ArticleHandler: articleH,
		Tokens:         tokens,
		Resolver:       resolver,
		Recorder:       recorder,
		Limiter:        limiter,
		Blocker:        blocker,
		ArticleOwner:   articleRepo,
	})

	logger.Info("server starting", zap.String("port", cfg.Port))
	if err := server.Start(e, cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
