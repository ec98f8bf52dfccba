package model

import "time"

// 記事。本文まわりのCRUDは外部コラボレータ扱いで、
// 認可（所有者チェック）に必要な最小限だけ持つ。
type Article struct {
	ID       int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	AuthorID int64  `json:"authorId" gorm:"not null;index"`
	Title    string `json:"title" gorm:"type:varchar(255);not null"`
	Body     string `json:"body" gorm:"type:text;not null"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
