package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("disk on fire"))
		c.AbortWithStatus(http.StatusInternalServerError)
	})
	return r
}

func TestCORS(t *testing.T) {
	r := newRouter(CORSMiddleware([]string{"https://play.example"}, zerolog.Nop()))

	tests := []struct {
		name, method, origin string
		wantStatus           int
		wantAllowOrigin      string
	}{
		{"no origin", http.MethodGet, "", http.StatusOK, ""},
		{"allowed", http.MethodGet, "https://play.example", http.StatusOK, "https://play.example"},
		{"rejected", http.MethodGet, "https://evil.example", http.StatusForbidden, ""},
		{"preflight", http.MethodOptions, "https://play.example", http.StatusNoContent, "https://play.example"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, "/ok", nil)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != tt.wantStatus {
			t.Errorf("%s: status = %d, want %d", tt.name, w.Code, tt.wantStatus)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllowOrigin {
			t.Errorf("%s: allow origin = %q, want %q", tt.name, got, tt.wantAllowOrigin)
		}
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	r := newRouter(RequestLogger(zerolog.New(&buf)))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("logged %d lines, want 2: %s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], `"level":"info"`) || !strings.Contains(lines[0], `"path":"/ok"`) {
		t.Errorf("ok line = %s", lines[0])
	}
	if !strings.Contains(lines[1], `"level":"error"`) || !strings.Contains(lines[1], "disk on fire") {
		t.Errorf("boom line = %s", lines[1])
	}
}
