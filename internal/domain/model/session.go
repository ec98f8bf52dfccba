package model

import "time"

// リフレッシュトークン1本につきセッション1行。
// tokenの署名が正しくても、このセッションが有効でなければrefreshできない
// （セッションが唯一の真実）。
type Session struct {
	ID string `json:"id" gorm:"type:uuid;primaryKey"`

	// 所有ユーザー。
	UserID int64 `json:"userId" gorm:"not null;index"`

	// refresh tokenのSHA-256ハッシュ。平文は保存しない。
	TokenHash string `json:"-" gorm:"not null;uniqueIndex"`

	// 最後に使ったクライアント情報（refresh成功のたびに更新）。
	UserAgent string `json:"userAgent" gorm:"not null"`
	IPAddress string `json:"ipAddress" gorm:"not null"`

	// logout・強制失効でfalseになる。
	Active bool `json:"active" gorm:"not null;default:true;index"`

	// 絶対期限。これを過ぎたらrefresh不可、掃除対象。
	ExpiresAt time.Time `json:"expiresAt" gorm:"not null;index"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
