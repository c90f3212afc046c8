// Package token はセッションクッキー用の署名付きJWTの発行と検証を提供します。
package token

import (
	"os"
	"time"
)

// 環境変数のキー
const (
	EnvKeyJWTSecret = "JWT_SECRET"
)

// クッキー名
const (
	// SessionCookieName is the cookie carrying the signed session credential.
	SessionCookieName = "account_session"

	// PendingCookieName is the cookie carrying the browser session ID that
	// keys the pending verification state.
	PendingCookieName = "pending_verification"
)

// Config はセッション発行の設定を保持します。
type Config struct {
	Secret        string        // JWT署名用シークレット
	SessionTTL    time.Duration // 非永続セッションの有効期間
	PersistentTTL time.Duration // 「ログイン状態を保持」セッションの有効期間
	PendingTTL    time.Duration // 検証待ち状態の有効期間
	CookieSecure  bool          // SecureフラグをクッキーにつけるならTrue
}

// LoadConfig は環境変数からセッション設定を読み込みます。
func LoadConfig() Config {
	return Config{
		Secret:        os.Getenv(EnvKeyJWTSecret),
		SessionTTL:    durationEnv("SESSION_TTL", 2*time.Hour),
		PersistentTTL: durationEnv("PERSISTENT_SESSION_TTL", 14*24*time.Hour),
		PendingTTL:    durationEnv("PENDING_TTL", 30*time.Minute),
		CookieSecure:  os.Getenv("COOKIE_SECURE") == "true",
	}
}

// durationEnv は環境変数をtime.Durationとして読み込み、未設定または
// 解析不能な場合はデフォルト値を返します。
func durationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}
