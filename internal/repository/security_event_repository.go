package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
)

//セキュリティイベントの絞り込み条件。

type SecurityEventFilter struct {
	EventType   *model.SecurityEventType
	UserID      *int64
	IPAddress   *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// セキュリティ監査ログの保存・一覧取得の約束。
// 保存はbest-effortで、失敗してもリクエスト処理は止めない。
type SecurityEventRepository interface {
	//イベントを1件保存
	Create(ctx context.Context, event model.SecurityEvent) error

	//イベントを条件で一覧取得。
	List(ctx context.Context, filter SecurityEventFilter) ([]model.SecurityEvent, error)
}
