package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"app/internal/domain/model"
)

var (
	// 期限切れ。クライアントはrefreshフローへ誘導する。
	ErrTokenExpired = errors.New("token expired")

	// 署名不正・書式不正・audience違いはすべてここに潰す
	// （どのチェックで落ちたかは外に漏らさない）。
	ErrTokenInvalid = errors.New("token invalid")
)

const (
	tokenIssuer     = "app"
	accessAudience  = "app:access"
	refreshAudience = "app:refresh"
)

// access tokenのclaims。roleとstatusは発行時点のスナップショット。
// 認可の最終判断はDBの最新状態で行う（middleware側）。
type AccessClaims struct {
	Role   model.Role   `json:"role"`
	Status model.Status `json:"status"`
	jwt.RegisteredClaims
}

// Subject（ユーザーID）をint64で返す。
func (c *AccessClaims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrTokenInvalid
	}
	return id, nil
}

// access/refreshそれぞれ別の鍵・別のaudienceで署名するJWT発行器。
// accessをrefreshとして使う（逆も）ことは構造的にできない。
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (ti *TokenIssuer) AccessTTL() time.Duration {
	return ti.accessTTL
}

func (ti *TokenIssuer) RefreshTTL() time.Duration {
	return ti.refreshTTL
}

// access tokenを発行する。
func (ti *TokenIssuer) IssueAccessToken(user *model.User, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(ti.accessTTL)

	claims := &AccessClaims{
		Role:   user.Role,
		Status: user.Status,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{accessAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(ti.accessSecret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// refresh tokenを発行する。claimsはsubjectと期限だけ。
func (ti *TokenIssuer) IssueRefreshToken(userID int64, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(ti.refreshTTL)

	claims := &jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		Issuer:    tokenIssuer,
		Audience:  jwt.ClaimStrings{refreshAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(ti.refreshSecret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// access tokenを検証してclaimsを返す。
func (ti *TokenIssuer) VerifyAccessToken(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := ti.verify(tokenStr, claims, ti.accessSecret, accessAudience); err != nil {
		return nil, err
	}
	return claims, nil
}

// refresh tokenを検証してユーザーIDを返す。
func (ti *TokenIssuer) VerifyRefreshToken(tokenStr string) (int64, error) {
	claims := &jwt.RegisteredClaims{}
	if err := ti.verify(tokenStr, claims, ti.refreshSecret, refreshAudience); err != nil {
		return 0, err
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrTokenInvalid
	}
	return id, nil
}

func (ti *TokenIssuer) verify(tokenStr string, claims jwt.Claims, secret []byte, audience string) error {
	tok, err := jwt.ParseWithClaims(
		tokenStr,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, ErrTokenInvalid
			}
			return secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		//期限切れだけは区別して返す
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrTokenInvalid
	}
	if tok == nil || !tok.Valid {
		return ErrTokenInvalid
	}
	return nil
}

// セッション検索キー用のSHA-256ハッシュ。DBにはtokenの平文を置かない。
func HashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
