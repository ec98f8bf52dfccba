package model

import "time"

// ユーザーの役割。閉じた列挙（これ以外は無効）。
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleModerator Role = "MODERATOR"
	RoleUser      Role = "USER"
	RoleGuest     Role = "GUEST"
)

// 役割として有効かどうか。
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleUser, RoleGuest:
		return true
	}
	return false
}

// アカウントの状態。
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusInactive  Status = "INACTIVE"
	StatusSuspended Status = "SUSPENDED"
	StatusBanned    Status = "BANNED"
)

type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"column:password_hash;not null"`
	Role         Role   `gorm:"type:varchar(20);not null;default:'USER'"`
	Status       Status `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// アクティブなアカウントだけがログイン・API利用できる。
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// リクエストに紐付く認証済みユーザー情報。
// tokenのclaimsではなく、毎リクエストDBの最新状態から作り直す。
type Identity struct {
	ID     int64
	Role   Role
	Status Status
}
