package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORSConfig はCORSミドルウェアの設定。
type CORSConfig struct {
	// AllowedOrigin はクロスオリジンアクセスを許可する唯一のオリジン。
	AllowedOrigin string
	// AllowCredentials はCookie等の資格情報付きリクエストを許可するかどうか。
	AllowCredentials bool
	// AllowedMethods は許可するHTTPメソッド。
	AllowedMethods []string
	// AllowedHeaders は許可するリクエストヘッダー。
	AllowedHeaders []string
}

// DefaultCORSConfig はフロントエンドからのGraphQLアクセス用の設定を返す。
func DefaultCORSConfig(origin string) CORSConfig {
	return CORSConfig{
		AllowedOrigin:    origin,
		AllowCredentials: false,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
	}
}

// Allowed はoriginが許可されたオリジンと完全一致するかどうかを返す。
func (c CORSConfig) Allowed(origin string) bool {
	return origin != "" && origin == c.AllowedOrigin
}

// CORS は設定されたオリジンからのクロスオリジンリクエストを許可するGinミドルウェアを返す。
// OPTIONSのプリフライトはオリジンに関わらず204で応答し、後続のハンドラーは実行しない。
func CORS(cfg CORSConfig) gin.HandlerFunc {
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")

	return func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); cfg.Allowed(origin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", methods)
			c.Header("Access-Control-Allow-Headers", headers)
			c.Header("Vary", "Origin")
			if cfg.AllowCredentials {
				c.Header("Access-Control-Allow-Credentials", "true")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
