package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"app/internal/auth"
)

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	h := auth.NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("Password1")
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)

	//平文がそのまま入っていない
	assert.NotContains(t, hash, "Password1")

	ok, err := h.Verify("Password1", hash)
	assert.NoError(t, err)
	assert.True(t, ok)
}

// 不一致はエラーではなくfalse
func TestBcryptHasher_VerifyMismatch(t *testing.T) {
	h := auth.NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("Password1")
	assert.NoError(t, err)

	ok, err := h.Verify("WrongPW99", hash)
	assert.NoError(t, err)
	assert.False(t, ok)
}

// 壊れたハッシュはエラー扱い
func TestBcryptHasher_VerifyBrokenHash(t *testing.T) {
	h := auth.NewBcryptHasher(bcrypt.MinCost)

	ok, err := h.Verify("Password1", "not-a-bcrypt-hash")
	assert.False(t, ok)
	assert.ErrorIs(t, err, auth.ErrHashing)
}

// 同じパスワードでもハッシュは毎回違う（saltが効いている）
func TestBcryptHasher_HashIsSalted(t *testing.T) {
	h := auth.NewBcryptHasher(bcrypt.MinCost)

	h1, err := h.Hash("Password1")
	assert.NoError(t, err)
	h2, err := h.Hash("Password1")
	assert.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}
