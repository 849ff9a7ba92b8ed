package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// BodyParser はリクエストボディのサイズをlimitバイトに制限し、
// urlencodedのフォームを事前に解析するGinミドルウェアを返す。
// JSONボディはハンドラー側でデコードする。limitが0以下の場合は制限しない。
func BodyParser(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil && limit > 0 {
			if c.Request.ContentLength > limit {
				abortTooLarge(c)
				return
			}
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}

		if c.ContentType() == gin.MIMEPOSTForm {
			if err := c.Request.ParseForm(); err != nil {
				var maxErr *http.MaxBytesError
				if errors.As(err, &maxErr) {
					abortTooLarge(c)
					return
				}
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
					"error": "フォームの解析に失敗しました",
				})
				return
			}
		}

		c.Next()
	}
}

func abortTooLarge(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
		"error": "リクエストボディが大きすぎます",
	})
}
