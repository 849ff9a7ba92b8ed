package middleware

import "github.com/gin-gonic/gin"

// ReferrerPolicy は全てのレスポンスに Referrer-Policy: no-referrer を付与するGinミドルウェアを返す。
// ハンドラーより前にヘッダーを設定するため、404やプリフライトの応答にも付与される。
func ReferrerPolicy() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Referrer-Policy", "no-referrer")
		c.Next()
	}
}
