// Package config はWorkNest APIのプロセス設定を提供する。
// .envファイル（存在する場合）と環境変数から設定を読み込む。
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config はWorkNest APIの設定を表す。
type Config struct {
	// Port はHTTPサーバーのリッスンポート。
	Port string
	// DBPath はSQLiteデータベースファイルのパス。
	DBPath string
	// JWTSecret はJWT署名用の秘密鍵。
	JWTSecret string
	// TokenTTL はJWTトークンの有効期限。
	TokenTTL time.Duration
	// FrontendURL はCORSで許可するフロントエンドのオリジン。
	FrontendURL string
	// PaymentAPIURL は決済プロバイダAPIのベースURL。
	PaymentAPIURL string
	// PaymentSecretKey は決済プロバイダのシークレットキー。
	PaymentSecretKey string
	// PaymentTimeout は決済プロバイダへのHTTPリクエストのタイムアウト。
	PaymentTimeout time.Duration
	// AdminEmail は起動時に作成するデフォルト管理者のメールアドレス。
	AdminEmail string
	// AdminPassword はデフォルト管理者の初期パスワード。
	AdminPassword string
}

// Load は.envファイルと環境変数から設定を読み込む。
// 未設定の項目は開発用のデフォルト値を使用する。
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:             getEnvOr("PORT", "5000"),
		DBPath:           getEnvOr("DB_PATH", "/data/worknest.db"),
		JWTSecret:        getEnvOr("JWT_SECRET", "dev-secret-key"),
		TokenTTL:         getDurationOr("TOKEN_TTL", time.Hour),
		FrontendURL:      getEnvOr("FRONTEND_URL", "http://localhost:3000"),
		PaymentAPIURL:    getEnvOr("PAYMENT_API_URL", "https://api.stripe.com"),
		PaymentSecretKey: os.Getenv("PAYMENT_SECRET_KEY"),
		PaymentTimeout:   getDurationOr("PAYMENT_TIMEOUT", 30*time.Second),
		AdminEmail:       getEnvOr("ADMIN_EMAIL", "admin@worknest.local"),
		AdminPassword:    getEnvOr("ADMIN_PASSWORD", "changeme"),
	}
}

// getEnvOr は環境変数を取得し、設定されていない場合はデフォルト値を返す。
func getEnvOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// getDurationOr は環境変数をtime.Durationとして取得する。
// 未設定またはパース不能な場合はデフォルト値を返す。
func getDurationOr(key string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultValue
	}
	return d
}
