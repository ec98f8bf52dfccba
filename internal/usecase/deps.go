package usecase

import (
	"context"
	"time"
)

// テストで時刻を差し替えるための約束
type Clock interface {
	Now() time.Time
}

// セッションIDの採番（本番はuuid）
type IDGenerator interface {
	NewID() string
}

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateRegister(ctx context.Context, email string, password string) error
	ValidateLogin(ctx context.Context, email string, password string) error
	ValidateRefresh(ctx context.Context, refreshToken string) error
}
