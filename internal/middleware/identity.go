package middleware

import (
	"context"

	"app/internal/domain/model"
	"app/internal/repository"
)

// tokenのclaimsではなくDBの最新ユーザー状態からIdentityを組み立てる約束。
// role/statusの変更やBANを即時反映させるため、全ゲートがこれを使う。
type IdentityResolver interface {
	Resolve(ctx context.Context, userID int64) (*model.Identity, error)
}

type userIdentityResolver struct {
	users repository.UserRepository
}

func NewIdentityResolver(users repository.UserRepository) IdentityResolver {
	return &userIdentityResolver{users: users}
}

func (r *userIdentityResolver) Resolve(ctx context.Context, userID int64) (*model.Identity, error) {
	user, err := r.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, repository.ErrUserNotFound
	}

	return &model.Identity{
		ID:     user.ID,
		Role:   user.Role,
		Status: user.Status,
	}, nil
}
