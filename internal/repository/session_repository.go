package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
)

// 有効なセッションが見つからない（失効済み・期限切れ・削除済みを含む）。
var ErrSessionNotFound = errors.New("session not found")

// セッション（refresh token 1本 = 1行）の保存・取得・失効・掃除
type SessionRepository interface {
	//新しいセッションを保存する。
	Create(ctx context.Context, session *model.Session) error

	// token_hashで有効なセッションを1件検索する。
	// active = true かつ expires_at > now のものだけ返す。
	FindActiveByTokenHash(ctx context.Context, tokenHash string, now time.Time) (*model.Session, error)

	// refresh成功時にクライアント情報を更新する（best-effort）。
	Touch(ctx context.Context, sessionID string, ip string, userAgent string) error

	// activeをfalseにする。既にfalseでもエラーにしない（冪等）。
	Invalidate(ctx context.Context, sessionID string) error

	//指定ユーザーの全セッションを失効させる。失効させた件数を返す。
	InvalidateAllByUserID(ctx context.Context, userID int64) (int64, error)

	//期限切れまたは失効済みの行を削除する。削除件数を返す。
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)

	//指定ユーザーの有効セッション数。
	CountActiveByUserID(ctx context.Context, userID int64, now time.Time) (int64, error)
}
