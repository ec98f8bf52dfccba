package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
)

// ユーザーが見つかりませんを統一
var ErrUserNotFound = errors.New("user not found")

// emailのunique制約違反（同時登録の競合）。
var ErrDuplicateEmail = errors.New("duplicate email")

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成
	Create(ctx context.Context, user *model.User) error

	// IDからユーザーを1件取得する。
	FindByID(ctx context.Context, userID int64) (*model.User, error)

	//メールからユーザーを一件取得する。emailは小文字化して照合する。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	//最終ログイン時刻だけを更新する。
	UpdateLastLogin(ctx context.Context, userID int64) error

	//管理側の操作。auth側からはstatus/roleを書き換えない。
	UpdateStatus(ctx context.Context, userID int64, status model.Status) error
}
