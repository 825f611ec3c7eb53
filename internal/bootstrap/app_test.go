package bootstrap

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"hse-backend/internal/shared/auth"
	"hse-backend/internal/shared/config"
)

func testApp(t *testing.T) *App {
	t.Helper()
	t.Setenv("JWT_SECRET", "bootstrap-secret")
	app, err := Build(config.Config{
		Env:           "dev",
		LocalStoreDir: t.TempDir(),
		PublicBaseURL: "http://localhost:8080",
		Import:        config.ImportConfig{Timezone: "UTC"},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return app
}

func bearer(t *testing.T, subject, role string) string {
	t.Helper()
	token, err := auth.SignJWT(auth.Claims{Role: role, RegisteredClaims: jwt.RegisteredClaims{Subject: subject}})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}
	return "Bearer " + token
}

func TestBuildUsesMemoryReposWithoutDatabase(t *testing.T) {
	app := testApp(t)
	if app.DB != nil {
		t.Fatalf("expected no database")
	}
	if app.ImportService == nil || app.ImportHandler == nil || app.PPEHandler == nil || app.Router == nil {
		t.Fatalf("expected services and router to be wired")
	}
	if app.ImportService.Location.String() != "UTC" {
		t.Fatalf("unexpected import location %s", app.ImportService.Location)
	}
}

func TestBuildRequiresDatabaseOutsideDev(t *testing.T) {
	if _, err := Build(config.Config{Env: "production", LocalStoreDir: t.TempDir()}); err == nil {
		t.Fatalf("expected error without DATABASE_URL in production")
	}
}

func TestRouterPublicAndSecuredRoutes(t *testing.T) {
	app := testApp(t)

	for path, want := range map[string]int{
		"/api/v1/health":                 http.StatusOK,
		"/metrics":                       http.StatusOK,
		"/api/v1/me":                     http.StatusUnauthorized,
		"/api/v1/ppe/stock?project_id=1": http.StatusUnauthorized,
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		app.Router.ServeHTTP(w, req)
		if w.Code != want {
			t.Fatalf("%s: expected %d, got %d", path, want, w.Code)
		}
	}
}

func TestRouterMeReportsScope(t *testing.T) {
	app := testApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", bearer(t, "42", "HSE_Director"))
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["userId"] != "42" || body["role"] != "hse_director" || body["globalScope"] != true {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestRouterImportRejectsUnknownKind(t *testing.T) {
	app := testApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports/vehicles", strings.NewReader(""))
	req.Header.Set("Authorization", bearer(t, "42", "admin"))
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
