package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ハッシュ処理自体の失敗（不正なハッシュ形式など）。
// パスワード不一致はエラーではなく false で返す。
var ErrHashing = errors.New("password hashing failed")

// 入力パスワードのハッシュ化と照合の約束。
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

type bcryptHasher struct {
	cost int
}

// bcrypt実装。costは範囲外なら12に丸める。
func NewBcryptHasher(cost int) PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = 12
	}
	return &bcryptHasher{cost: cost}
}

// パスワードは必ずハッシュ化して保存（平文保存しない）
func (h *bcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", ErrHashing
	}
	return string(b), nil
}

// 不一致は (false, nil)。エラーになるのはハッシュが壊れている時だけ。
func (h *bcryptHasher) Verify(password string, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, ErrHashing
}
