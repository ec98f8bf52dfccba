package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"app/internal/auth"
	"app/internal/domain/model"
)

func newIssuer() *auth.TokenIssuer {
	return auth.NewTokenIssuer("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
}

func testUser() *model.User {
	return &model.User{
		ID:     42,
		Email:  "user@test.com",
		Role:   model.RoleModerator,
		Status: model.StatusActive,
	}
}

func TestTokenIssuer_AccessRoundTrip(t *testing.T) {
	ti := newIssuer()
	now := time.Now()

	token, expiresAt, err := ti.IssueAccessToken(testUser(), now)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, now.Add(15*time.Minute), expiresAt, time.Second)

	claims, err := ti.VerifyAccessToken(token)
	assert.NoError(t, err)

	id, err := claims.UserID()
	assert.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, model.RoleModerator, claims.Role)
	assert.Equal(t, model.StatusActive, claims.Status)
}

func TestTokenIssuer_RefreshRoundTrip(t *testing.T) {
	ti := newIssuer()

	token, expiresAt, err := ti.IssueRefreshToken(42, time.Now())
	assert.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), expiresAt, time.Second)

	id, err := ti.VerifyRefreshToken(token)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

// accessとrefreshは鍵もaudienceも別。取り違えは構造的に通らない。
func TestTokenIssuer_CrossUseRejected(t *testing.T) {
	ti := newIssuer()
	now := time.Now()

	access, _, err := ti.IssueAccessToken(testUser(), now)
	assert.NoError(t, err)
	refresh, _, err := ti.IssueRefreshToken(42, now)
	assert.NoError(t, err)

	_, err = ti.VerifyRefreshToken(access)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)

	_, err = ti.VerifyAccessToken(refresh)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}

// 別の鍵で署名されたtokenは拒否する
func TestTokenIssuer_WrongSecretRejected(t *testing.T) {
	other := auth.NewTokenIssuer("other-access", "other-refresh", 15*time.Minute, 7*24*time.Hour)
	token, _, err := other.IssueAccessToken(testUser(), time.Now())
	assert.NoError(t, err)

	_, err = newIssuer().VerifyAccessToken(token)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}

// 期限切れだけは区別したエラーになる（refreshフローへの誘導に使う）
func TestTokenIssuer_ExpiredToken(t *testing.T) {
	ti := newIssuer()
	past := time.Now().Add(-1 * time.Hour)

	token, _, err := ti.IssueAccessToken(testUser(), past)
	assert.NoError(t, err)

	_, err = ti.VerifyAccessToken(token)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
}

func TestTokenIssuer_GarbageRejected(t *testing.T) {
	ti := newIssuer()

	for _, s := range []string{"", "garbage", "a.b.c"} {
		_, err := ti.VerifyAccessToken(s)
		assert.ErrorIs(t, err, auth.ErrTokenInvalid)

		_, err = ti.VerifyRefreshToken(s)
		assert.ErrorIs(t, err, auth.ErrTokenInvalid)
	}
}

func TestHashToken(t *testing.T) {
	h1 := auth.HashToken("token-a")
	h2 := auth.HashToken("token-a")
	h3 := auth.HashToken("token-b")

	//同じ入力なら同じハッシュ（検索キーとして使えること）
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)

	//平文がそのまま入っていない
	assert.NotContains(t, h1, "token-a")
}
