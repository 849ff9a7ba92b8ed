package config

import (
	"errors"
	"testing"
	"time"
)

// TestLoad はLoad関数を検証する。t.Setenvを使うため並列実行しない。
func TestLoad(t *testing.T) {
	t.Run("未設定の場合はデフォルト値が使われること", func(t *testing.T) {
		for _, key := range []string{
			"APP_ENV", "NODE_ENV", "PORT", "CORS_ORIGIN", "STORE_DRIVER",
			"JWT_SECRET", "JWT_TTL", "BODY_LIMIT", "GRAPHQL_MAX_DEPTH", "SHUTDOWN_TIMEOUT",
		} {
			t.Setenv(key, "")
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load()でエラーが発生: %v", err)
		}
		if cfg.Port != "3001" {
			t.Errorf("Port = %q, want %q", cfg.Port, "3001")
		}
		if cfg.Mode != ModeDevelopment {
			t.Errorf("Mode = %q, want %q", cfg.Mode, ModeDevelopment)
		}
		if cfg.CORSOrigin != DefaultCORSOrigin {
			t.Errorf("CORSOrigin = %q, want %q", cfg.CORSOrigin, DefaultCORSOrigin)
		}
		if cfg.Store.Driver != StoreDriverSQLite {
			t.Errorf("Store.Driver = %q, want %q", cfg.Store.Driver, StoreDriverSQLite)
		}
		if cfg.TokenTTL != 2*time.Hour {
			t.Errorf("TokenTTL = %v, want %v", cfg.TokenTTL, 2*time.Hour)
		}
		if cfg.JWTSecret != devJWTSecret {
			t.Errorf("JWTSecret = %q, want %q", cfg.JWTSecret, devJWTSecret)
		}
		if cfg.BodyLimit != 1<<20 {
			t.Errorf("BodyLimit = %d, want %d", cfg.BodyLimit, 1<<20)
		}
	})

	t.Run("NODE_ENV=productionで本番モードになること", func(t *testing.T) {
		t.Setenv("APP_ENV", "")
		t.Setenv("NODE_ENV", "production")
		t.Setenv("JWT_SECRET", "production-secret")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load()でエラーが発生: %v", err)
		}
		if !cfg.IsProduction() {
			t.Errorf("IsProduction() = false, want true")
		}
		if cfg.JWTSecret != "production-secret" {
			t.Errorf("JWTSecret = %q, want %q", cfg.JWTSecret, "production-secret")
		}
	})

	t.Run("本番モードでJWT_SECRETが未設定の場合はエラーになること", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		t.Setenv("JWT_SECRET", "")

		if _, err := Load(); !errors.Is(err, ErrMissingJWTSecret) {
			t.Errorf("Load() error = %v, want %v", err, ErrMissingJWTSecret)
		}
	})

	t.Run("APP_ENVがNODE_ENVより優先されること", func(t *testing.T) {
		t.Setenv("APP_ENV", "development")
		t.Setenv("NODE_ENV", "production")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load()でエラーが発生: %v", err)
		}
		if cfg.IsProduction() {
			t.Errorf("IsProduction() = true, want false")
		}
	})

	t.Run("不正な値はエラーになること", func(t *testing.T) {
		cases := map[string]string{
			"APP_ENV":      "staging",
			"PORT":         "http",
			"STORE_DRIVER": "postgres",
			"JWT_TTL":      "2 hours",
			"BODY_LIMIT":   "-1",
		}
		for key, value := range cases {
			t.Run(key, func(t *testing.T) {
				t.Setenv(key, value)
				if _, err := Load(); err == nil {
					t.Errorf("%s=%q でエラーが返らなかった", key, value)
				}
			})
		}
	})

	t.Run("MongoDBの設定が読み込まれること", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "MongoDB")
		t.Setenv("MONGODB_URI", "mongodb://db:27017")
		t.Setenv("MONGODB_DATABASE", "budget")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load()でエラーが発生: %v", err)
		}
		if cfg.Store.Driver != StoreDriverMongoDB {
			t.Errorf("Store.Driver = %q, want %q", cfg.Store.Driver, StoreDriverMongoDB)
		}
		if cfg.Store.MongoURI != "mongodb://db:27017" {
			t.Errorf("Store.MongoURI = %q", cfg.Store.MongoURI)
		}
		if cfg.Store.MongoDatabase != "budget" {
			t.Errorf("Store.MongoDatabase = %q", cfg.Store.MongoDatabase)
		}
	})
}
