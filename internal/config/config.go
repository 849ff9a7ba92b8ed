// Package config は環境変数からGatewayの設定を読み込む。
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Mode はデプロイモードを表す。起動時に一度だけ読み込まれ、以降変化しない。
type Mode string

const (
	// ModeDevelopment は開発モード。静的ファイル配信を行わない。
	ModeDevelopment Mode = "development"
	// ModeProduction は本番モード。ビルド済みクライアントを配信する。
	ModeProduction Mode = "production"
)

// StoreDriver はデータストアの種類を表す。
type StoreDriver string

const (
	// StoreDriverSQLite は組み込みSQLiteを使用する。
	StoreDriverSQLite StoreDriver = "sqlite"
	// StoreDriverMongoDB はMongoDBを使用する。
	StoreDriverMongoDB StoreDriver = "mongodb"
)

// DefaultCORSOrigin はクロスオリジンアクセスを許可するクライアントのオリジン。
const DefaultCORSOrigin = "https://budge-buddy.netlify.app"

// devJWTSecret は開発モードでJWT_SECRETが未設定の場合に使う秘密鍵。
const devJWTSecret = "dev-secret-key"

// ErrMissingJWTSecret は本番モードでJWT_SECRETが未設定であることを表す。
var ErrMissingJWTSecret = errors.New("本番モードではJWT_SECRETの設定が必要です")

// Config はGatewayプロセス全体の設定。
type Config struct {
	// Port はリッスンポート。
	Port string
	// Mode はデプロイモード。
	Mode Mode
	// CORSOrigin はCORSで許可する唯一のオリジン。
	CORSOrigin string
	// StaticDir はビルド済みクライアントのディレクトリ。本番モードのみ使用する。
	StaticDir string
	// JWTSecret はトークン署名用の秘密鍵。
	JWTSecret string
	// TokenTTL は発行するトークンの有効期間。
	TokenTTL time.Duration
	// BodyLimit はリクエストボディの最大バイト数。
	BodyLimit int64
	// GraphQLMaxDepth はクエリの最大ネスト深さ。
	GraphQLMaxDepth int
	// LogLevel はログレベル（debug, info, warn, error）。
	LogLevel string
	// ShutdownTimeout はグレースフルシャットダウンの待ち時間。
	ShutdownTimeout time.Duration
	// Store はデータストアの接続設定。
	Store StoreConfig
}

// StoreConfig はデータストアの接続設定。
type StoreConfig struct {
	// Driver は使用するバックエンド。
	Driver StoreDriver
	// SQLitePath はSQLiteのデータベースファイルパス。
	SQLitePath string
	// MongoURI はMongoDBの接続文字列。
	MongoURI string
	// MongoDatabase はMongoDBのデータベース名。
	MongoDatabase string
}

// Load は環境変数から設定を読み込む。
// 未設定の項目にはデフォルト値を使い、不正な値はエラーとする。
func Load() (*Config, error) {
	mode, err := parseMode(getEnvOr("APP_ENV", getEnvOr("NODE_ENV", string(ModeDevelopment))))
	if err != nil {
		return nil, err
	}

	driver := StoreDriver(strings.ToLower(getEnvOr("STORE_DRIVER", string(StoreDriverSQLite))))
	if driver != StoreDriverSQLite && driver != StoreDriverMongoDB {
		return nil, fmt.Errorf("STORE_DRIVERが不正です: %q", driver)
	}

	tokenTTL, err := getDurationOr("JWT_TTL", 2*time.Hour)
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := getDurationOr("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	bodyLimit, err := getIntOr("BODY_LIMIT", 1<<20)
	if err != nil {
		return nil, err
	}
	maxDepth, err := getIntOr("GRAPHQL_MAX_DEPTH", 10)
	if err != nil {
		return nil, err
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		if mode == ModeProduction {
			return nil, ErrMissingJWTSecret
		}
		jwtSecret = devJWTSecret
	}

	port := getEnvOr("PORT", "3001")
	if _, err := strconv.ParseUint(port, 10, 16); err != nil {
		return nil, fmt.Errorf("PORTが不正です: %q", port)
	}

	return &Config{
		Port:            port,
		Mode:            mode,
		CORSOrigin:      getEnvOr("CORS_ORIGIN", DefaultCORSOrigin),
		StaticDir:       getEnvOr("STATIC_DIR", "client/dist"),
		JWTSecret:       jwtSecret,
		TokenTTL:        tokenTTL,
		BodyLimit:       int64(bodyLimit),
		GraphQLMaxDepth: maxDepth,
		LogLevel:        getEnvOr("LOG_LEVEL", "info"),
		ShutdownTimeout: shutdownTimeout,
		Store: StoreConfig{
			Driver:        driver,
			SQLitePath:    getEnvOr("SQLITE_PATH", "budgebuddy.db"),
			MongoURI:      getEnvOr("MONGODB_URI", "mongodb://127.0.0.1:27017"),
			MongoDatabase: getEnvOr("MONGODB_DATABASE", "budgebuddy"),
		},
	}, nil
}

// IsProduction は本番モードかどうかを返す。
func (c *Config) IsProduction() bool {
	return c.Mode == ModeProduction
}

func parseMode(v string) (Mode, error) {
	switch Mode(strings.ToLower(v)) {
	case ModeDevelopment, "dev", "test":
		return ModeDevelopment, nil
	case ModeProduction, "prod":
		return ModeProduction, nil
	default:
		return "", fmt.Errorf("APP_ENVが不正です: %q", v)
	}
}

// getEnvOr は環境変数を取得し、設定されていない場合はデフォルト値を返す。
func getEnvOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getDurationOr(key string, defaultValue time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%sが不正です: %q", key, v)
	}
	return d, nil
}

func getIntOr(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%sが不正です: %q", key, v)
	}
	return n, nil
}
