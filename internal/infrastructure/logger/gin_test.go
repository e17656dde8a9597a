package logger

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func findEntry(entries []observer.LoggedEntry, msg string) *observer.LoggedEntry {
	for i := range entries {
		if entries[i].Message == msg {
			return &entries[i]
		}
	}
	return nil
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		status int
		level  zapcore.Level
	}{
		{"success logs at info", http.StatusOK, zapcore.InfoLevel},
		{"client error logs at warn", http.StatusBadRequest, zapcore.WarnLevel},
		{"server error logs at error", http.StatusInternalServerError, zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, recorded := observer.New(zapcore.DebugLevel)

			router := gin.New()
			router.Use(func(c *gin.Context) {
				c.Set("request_id", "req-123")
				c.Next()
			})
			router.Use(GinMiddleware(zap.New(core)))
			router.GET("/api/v1/accounts", func(c *gin.Context) {
				assert.Equal(t, "req-123", GetRequestID(c.Request.Context()))
				c.Status(tt.status)
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts?limit=5", nil)
			router.ServeHTTP(w, req)

			entry := findEntry(recorded.All(), "HTTP Request")
			require.NotNil(t, entry)
			assert.Equal(t, tt.level, entry.Level)

			fields := entry.ContextMap()
			assert.Equal(t, "req-123", fields["request_id"])
			assert.Equal(t, "/api/v1/accounts", fields["path"])
			assert.Equal(t, "limit=5", fields["query"])
			assert.EqualValues(t, tt.status, fields["status"])
		})
	}
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.ErrorLevel)

	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/boom", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])

	require.NotNil(t, findEntry(recorded.All(), "Panic recovered"))
}

func TestGetGinLogger(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, GetGinLogger(c))

	l := zap.NewExample()
	c.Set("logger", l)
	assert.Same(t, l, GetGinLogger(c))
}
