package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRequestIDKeepsValidHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	var seen string
	router.GET("/x", func(c *gin.Context) {
		seen = RequestIDFromContext(c)
		c.Status(http.StatusOK)
	})

	cases := map[string]bool{
		"req-123_abc.1":           true,
		"bad id\r\nX-Injected: 1": false,
		strings.Repeat("a", 129):  false,
		"":                        false,
	}
	for incoming, kept := range cases {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		if incoming != "" {
			req.Header.Set("X-Request-Id", incoming)
		}
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		if resp.Header().Get("X-Request-Id") != seen || seen == "" {
			t.Fatalf("response header %q does not match context %q", resp.Header().Get("X-Request-Id"), seen)
		}
		if (seen == incoming) != kept {
			t.Fatalf("incoming %q: kept=%v, got %q", incoming, kept, seen)
		}
	}
}
