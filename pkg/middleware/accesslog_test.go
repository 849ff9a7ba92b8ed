package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestAccessLog はAccessLogミドルウェアを検証する。
func TestAccessLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		level  zapcore.Level
	}{
		{"2xxはInfoで記録されること", http.StatusOK, zapcore.InfoLevel},
		{"4xxはWarnで記録されること", http.StatusNotFound, zapcore.WarnLevel},
		{"5xxはErrorで記録されること", http.StatusServiceUnavailable, zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			core, logs := observer.New(zapcore.DebugLevel)
			router := gin.New()
			router.Use(AccessLog(zap.New(core)))
			router.GET("/status", func(c *gin.Context) {
				c.Status(tt.status)
			})

			req := httptest.NewRequest(http.MethodGet, "/status", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			entries := logs.All()
			if len(entries) != 1 {
				t.Fatalf("ログ件数 = %d, want 1", len(entries))
			}
			entry := entries[0]
			if entry.Level != tt.level {
				t.Errorf("ログレベル = %v, want %v", entry.Level, tt.level)
			}
			fields := entry.ContextMap()
			if fields["method"] != http.MethodGet {
				t.Errorf("method = %v, want %q", fields["method"], http.MethodGet)
			}
			if fields["path"] != "/status" {
				t.Errorf("path = %v, want %q", fields["path"], "/status")
			}
			if fields["status"] != int64(tt.status) {
				t.Errorf("status = %v, want %d", fields["status"], tt.status)
			}
		})
	}
}
