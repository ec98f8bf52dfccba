package model

import "time"

// セキュリティイベントの種類。
type SecurityEventType string

const (
	//ログイン失敗（email不明・パスワード不一致は区別しない）。
	SecurityEventLoginFailed SecurityEventType = "LOGIN_FAILED"

	//無効・期限切れtokenでのアクセス。
	SecurityEventTokenRejected SecurityEventType = "TOKEN_REJECTED"

	//権限不足（role・所有者チェックの失敗）。
	SecurityEventPermissionDenied SecurityEventType = "PERMISSION_DENIED"

	//レート制限超過。
	SecurityEventRateLimited SecurityEventType = "RATE_LIMITED"

	//違反の累積によるIPブロック発動。
	SecurityEventIPBlocked SecurityEventType = "IP_BLOCKED"

	//管理者による強制ログアウト。
	SecurityEventForcedLogout SecurityEventType = "FORCED_LOGOUT"
)

// セキュリティ監査ログ。
// 「誰が」「どこから」「どのエンドポイントで」「何に失敗したか」を残す。
type SecurityEvent struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	EventType SecurityEventType `gorm:"type:varchar(50);not null;index" json:"event_type"`

	//判明していれば対象ユーザーID（匿名リクエストはnull）。
	UserID *int64 `gorm:"index" json:"user_id"`

	IPAddress string `gorm:"type:varchar(64);not null;index" json:"ip_address"`
	UserAgent string `gorm:"type:varchar(255)" json:"user_agent"`
	Endpoint  string `gorm:"type:varchar(255);not null" json:"endpoint"`

	//補足情報（違反回数など）。
	Detail string `gorm:"type:text" json:"detail"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
