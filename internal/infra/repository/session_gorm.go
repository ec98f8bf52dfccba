package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"app/internal/domain/model"
	domainrepo "app/internal/repository"
)

type sessionGormRepository struct {
	db *gorm.DB //DB接続（GORM）
}

// GORM実装
func NewSessionGormRepository(db *gorm.DB) domainrepo.SessionRepository {
	return &sessionGormRepository{db: db}
}

// セッションを保存する。
func (r *sessionGormRepository) Create(ctx context.Context, session *model.Session) error {
	//タイムアウトやキャンセルをDB処理に伝える
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return err
	}
	return nil
}

// token_hashで有効なセッションを1件検索します。
// active=true かつ 期限内のものだけ。ここが
// 「暗号的に有効」と「運用上まだ有効」の合流点。
func (r *sessionGormRepository) FindActiveByTokenHash(ctx context.Context, tokenHash string, now time.Time) (*model.Session, error) {
	var session model.Session

	err := r.db.WithContext(ctx).
		Where("token_hash = ? AND active = ? AND expires_at > ?", tokenHash, true, now).
		First(&session).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainrepo.ErrSessionNotFound
		}
		return nil, err
	}

	return &session, nil
}

// refresh成功時にクライアント情報を更新します（best-effort）。
func (r *sessionGormRepository) Touch(ctx context.Context, sessionID string, ip string, userAgent string) error {
	res := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("id = ?", sessionID).
		Updates(map[string]interface{}{
			"ip_address": ip,
			"user_agent": userAgent,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainrepo.ErrSessionNotFound
	}
	return nil
}

// activeをfalseにします。既にfalseでも成功扱い（冪等）。
func (r *sessionGormRepository) Invalidate(ctx context.Context, sessionID string) error {
	res := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("id = ?", sessionID).
		Update("active", false)

	if res.Error != nil {
		return res.Error
	}
	return nil
}

// 指定ユーザーの有効なセッションを全て失効させます。
func (r *sessionGormRepository) InvalidateAllByUserID(ctx context.Context, userID int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("user_id = ? AND active = ?", userID, true).
		Update("active", false)

	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// 期限切れまたは失効済みの行を削除します。削除件数を返す。
// 並行するrefreshと同時に走っても行単位の操作なので安全
// （掃除とrefreshが同時になった場合は「ログアウト済み」として扱われる）。
func (r *sessionGormRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at <= ? OR active = ?", now, false).
		Delete(&model.Session{})

	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// 指定ユーザーの有効セッション数。
func (r *sessionGormRepository) CountActiveByUserID(ctx context.Context, userID int64, now time.Time) (int64, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("user_id = ? AND active = ? AND expires_at > ?", userID, true, now).
		Count(&count).Error

	if err != nil {
		return 0, err
	}
	return count, nil
}
