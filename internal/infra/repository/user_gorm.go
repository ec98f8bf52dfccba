package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"app/internal/domain/model"
	domainrepo "app/internal/repository"
)

type userGormRepository struct {
	db *gorm.DB
}

// DI
// main.goでこれをnewしてusecaseに注入します。
func NewUserGormRepository(db *gorm.DB) domainrepo.UserRepository {
	return &userGormRepository{db: db}
}

// Create はユーザーを新規作成
func (r *userGormRepository) Create(ctx context.Context, user *model.User) error {
	//emailは常に小文字で保存する
	user.Email = strings.ToLower(user.Email)

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		//unique制約違反はsentinelに変換（TranslateError前提）
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domainrepo.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// IDでユーザーを1件取得
func (r *userGormRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	var u model.User

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&u).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &u, nil
}

// emailでユーザーを1件取得（小文字化して照合）
func (r *userGormRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User

	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(email)).
		First(&u).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &u, nil
}

// last_login_atだけを更新する
func (r *userGormRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	now := time.Now()

	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", &now)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainrepo.ErrUserNotFound
	}
	return nil
}

// statusを更新する（管理側の操作）
func (r *userGormRepository) UpdateStatus(ctx context.Context, id int64, status model.Status) error {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("status", status)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainrepo.ErrUserNotFound
	}
	return nil
}
