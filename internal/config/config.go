package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5432）
	PostgresSSLMode  string // sslmode（disable）

	// access/refreshで署名鍵を分ける。片方の漏洩がもう片方に波及しない。
	JWTAccessSecret  string
	JWTRefreshSecret string

	// "15m" / "7d" 形式。単位は s,m,h,d,w。
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	BcryptCost int // パスワードハッシュのコスト

	CleanupInterval time.Duration // 期限切れセッション掃除の間隔

	GoEnv string // dev/prod
}

// Loadは環境変数
func Load() (Config, error) {
	pgPort, err := atoiDefault("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}

	accessTTL, err := ttlFromEnv("ACCESS_TOKEN_TTL", "15m")
	if err != nil {
		return Config{}, err
	}
	refreshTTL, err := ttlFromEnv("REFRESH_TOKEN_TTL", "7d")
	if err != nil {
		return Config{}, err
	}
	cleanupInterval, err := ttlFromEnv("SESSION_CLEANUP_INTERVAL", "1h")
	if err != nil {
		return Config{}, err
	}

	bcryptCost, err := atoiDefault("BCRYPT_COST", 12)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: getenv("PORT", "8080"),

		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "app"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		JWTAccessSecret:  os.Getenv("JWT_ACCESS_SECRET"),
		JWTRefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),

		AccessTokenTTL:  accessTTL,
		RefreshTokenTTL: refreshTTL,
		BcryptCost:      bcryptCost,
		CleanupInterval: cleanupInterval,

		GoEnv: getenv("GO_ENV", "dev"),
	}

	//必須チェック
	if cfg.JWTAccessSecret == "" {
		return Config{}, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.JWTRefreshSecret == "" {
		return Config{}, fmt.Errorf("JWT_REFRESH_SECRET is required")
	}
	//鍵の使い回しは禁止（audienceの分離が意味を失う）
	if cfg.JWTAccessSecret == cfg.JWTRefreshSecret {
		return Config{}, fmt.Errorf("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}

	return cfg, nil
}

// ParseTTLは "<整数><単位>" を time.Duration にする。
// 単位は s,m,h,d,w のみ。書式が不正なら起動時エラー（実行時ではなく）。
func ParseTTL(s string) (time.Duration, error) {
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid ttl %q", s)
	}

	num, unit := s[:len(s)-1], s[len(s)-1]

	n, err := strconv.Atoi(num)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid ttl %q", s)
	}

	switch unit {
	case 's':
		return time.Duration(n) * time.Second, nil
	case 'm':
		return time.Duration(n) * time.Minute, nil
	case 'h':
		return time.Duration(n) * time.Hour, nil
	case 'd':
		return time.Duration(n) * 24 * time.Hour, nil
	case 'w':
		return time.Duration(n) * 7 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("invalid ttl unit %q", s)
	}
}

func ttlFromEnv(key string, def string) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		v = def
	}

	d, err := ParseTTL(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiDefault(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}
