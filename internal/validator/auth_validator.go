package validator

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode"

	"app/internal/repository"
	"app/internal/usecase"
)

var (
	// 入力が不正
	ErrInvalidInput = errors.New("invalid input")

	// パスワードがポリシーを満たさない
	ErrWeakPassword = errors.New("weak password")

	// emailが既に使用済み
	ErrEmailAlreadyUsed = errors.New("email already used")

	// refresh tokenが不正
	ErrInvalidRefresh = errors.New("invalid refresh")
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type authValidator struct {
	users repository.UserRepository
}

// Usecaseは interface を依存注入
func NewAuthValidator(users repository.UserRepository) usecase.AuthValidator {
	return &authValidator{users: users}
}

// サインアップの入力を検証
func (v *authValidator) ValidateRegister(ctx context.Context, email string, password string) error {
	email = strings.TrimSpace(email)

	// 必須チェック
	if email == "" || password == "" {
		return ErrInvalidInput
	}

	// email形式
	if !emailRe.MatchString(email) {
		return ErrInvalidInput
	}

	// パスワードポリシー（8文字以上、英字と数字を両方含む）
	if err := checkPasswordPolicy(password); err != nil {
		return err
	}

	// email重複チェック（DBが必要）。
	// ストア障害はそのまま返す（登録を進めない）。
	u, err := v.users.FindByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return err
	}
	if u != nil {
		return ErrEmailAlreadyUsed
	}

	return nil
}

// ログインの入力を検証
func (v *authValidator) ValidateLogin(ctx context.Context, email string, password string) error {
	email = strings.TrimSpace(email)

	// 必須チェック
	if email == "" || password == "" {
		return ErrInvalidInput
	}

	// email形式
	if !emailRe.MatchString(email) {
		return ErrInvalidInput
	}

	return nil
}

// refresh 入力を検証
func (v *authValidator) ValidateRefresh(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return ErrInvalidRefresh
	}

	return nil
}

func checkPasswordPolicy(password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasLetter || !hasDigit {
		return ErrWeakPassword
	}
	return nil
}
