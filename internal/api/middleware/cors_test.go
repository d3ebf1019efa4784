package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func corsRouter(origins ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORS(origins))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.OPTIONS("/test", func(c *gin.Context) { c.Status(http.StatusMethodNotAllowed) })
	return router
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name        string
		origins     []string
		origin      string
		method      string
		wantStatus  int
		wantAllowed string
	}{
		{"allowed origin", []string{"https://portal.example"}, "https://portal.example", http.MethodGet, http.StatusOK, "https://portal.example"},
		{"other origin", []string{"https://portal.example"}, "https://evil.example", http.MethodGet, http.StatusOK, ""},
		{"wildcard", []string{"*"}, "https://any.example", http.MethodGet, http.StatusOK, "*"},
		{"no origin header", []string{"*"}, "", http.MethodGet, http.StatusOK, ""},
		{"preflight", []string{"https://portal.example"}, "https://portal.example", http.MethodOptions, http.StatusNoContent, "https://portal.example"},
		{"preflight from other origin", []string{"https://portal.example"}, "https://evil.example", http.MethodOptions, http.StatusMethodNotAllowed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/test", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()

			corsRouter(tt.origins...).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllowed {
				t.Errorf("Expected Access-Control-Allow-Origin %q, got %q", tt.wantAllowed, got)
			}
		})
	}
}
