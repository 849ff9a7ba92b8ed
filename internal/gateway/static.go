package gateway

import (
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// indexFile はSPAのエントリドキュメント。
const indexFile = "index.html"

// staticAssets はビルド済みクライアントを配信するハンドラを返す。
// 存在するファイルはそのまま返し、それ以外のパスにはindex.htmlを200で返す。
func staticAssets(root fs.FS, logger *zap.Logger) gin.HandlerFunc {
	files := http.FileServer(http.FS(root))
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.JSON(http.StatusNotFound, gin.H{"error": "見つかりません"})
			return
		}

		name := strings.TrimPrefix(path.Clean("/"+c.Request.URL.Path), "/")
		if name != "" && name != indexFile {
			if info, err := fs.Stat(root, name); err == nil && info.Mode().IsRegular() {
				files.ServeHTTP(c.Writer, c.Request)
				return
			}
		}

		index, err := fs.ReadFile(root, indexFile)
		if err != nil {
			logger.Error("index.htmlの読み込みに失敗しました", zap.Error(err))
			c.JSON(http.StatusNotFound, gin.H{"error": "見つかりません"})
			return
		}
		c.Header("Cache-Control", "no-cache")
		c.Data(http.StatusOK, "text/html; charset=utf-8", index)
	}
}
