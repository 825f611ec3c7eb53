package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func corsRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORS([]string{" http://localhost:5173/ ", ""}))
	router.POST("/api/v1/imports/:kind", func(c *gin.Context) {
		c.Header("X-Import-Progress-Id", "run-1")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/imports/trainings", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	resp := httptest.NewRecorder()
	corsRouter().ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("expected Allow-Origin http://localhost:5173, got %q", got)
	}
	if got := resp.Header().Get("Access-Control-Allow-Methods"); got != "GET,POST,OPTIONS" {
		t.Fatalf("unexpected Allow-Methods %q", got)
	}
	if got := resp.Header().Get("Access-Control-Max-Age"); got != "600" {
		t.Fatalf("expected Max-Age 600, got %q", got)
	}
}

func TestCORSExposesImportHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports/trainings", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	resp := httptest.NewRecorder()
	corsRouter().ServeHTTP(resp, req)

	exposed := resp.Header().Get("Access-Control-Expose-Headers")
	for _, h := range []string{"X-Import-Progress-Id", "Retry-After", "Content-Disposition"} {
		if !strings.Contains(exposed, h) {
			t.Fatalf("expected %s to be exposed, got %q", h, exposed)
		}
	}
}

func TestCORSIgnoresUnknownOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports/sanctions", nil)
	req.Header.Set("Origin", "http://evil.example")
	resp := httptest.NewRecorder()
	corsRouter().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no Allow-Origin, got %q", got)
	}
}
