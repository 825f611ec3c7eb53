package massimport

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"hse-backend/internal/access"
	"hse-backend/internal/extract"
)

type formFile struct {
	field string
	name  string
	data  []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...formFile) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for _, f := range files {
		w, err := mw.CreateFormFile(f.field, f.name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := w.Write(f.data); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func newTestRouter(f *fixture, user access.User, maxUpload int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	rg := r.Group("/api/v1")
	rg.Use(func(c *gin.Context) {
		c.Set("userId", user.ID)
		c.Set("userRole", user.Role)
		c.Next()
	})
	NewHandler(f.svc, maxUpload).RegisterRoutes(rg)
	return r
}

func postImport(t *testing.T, r http.Handler, kind string, fields map[string]string, files ...formFile) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, fields, files...)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports/"+kind, body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandlerImportPPE(t *testing.T) {
	f := newFixture(t)
	f.ledger.Restock(7, "Casque", 4)
	r := newTestRouter(f, adminUser, 0)

	sheet := csvSheet("cin,ppe_name,quantity,issue_date", "AB1234,Casque,1,2026-02-10", "CD5678,Casque,9,2026-02-10")
	w := postImport(t, r, "ppe_issuances",
		map[string]string{"progress_id": "run-42", "locale": "en"},
		formFile{field: "file", name: "epi.csv", data: sheet},
	)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("X-Import-Progress-Id"); got != "run-42" {
		t.Fatalf("unexpected progress header %q", got)
	}

	var summary Summary
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if summary.RunID != "run-42" || summary.Imported != 1 || summary.FailedCount != 1 || summary.FailedRowsURL == nil {
		t.Fatalf("unexpected summary %+v", summary)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/imports/progress/run-42", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var p Progress
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode progress: %v", err)
	}
	if p.Status != StatusCompleted || p.Processed != 2 || p.Failed != 1 {
		t.Fatalf("unexpected progress %+v", p)
	}

	file := strings.TrimPrefix(*summary.FailedRowsURL, testBaseURL)
	req = httptest.NewRequest(http.MethodGet, file, nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected report download, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != extract.MimeXLSX {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.HasPrefix(w.Header().Get("Content-Disposition"), "attachment;") {
		t.Fatalf("expected attachment disposition")
	}
}

func TestHandlerImportValidation(t *testing.T) {
	f := newFixture(t)
	r := newTestRouter(f, adminUser, 0)
	sheet := formFile{field: "file", name: "t.csv", data: csvSheet("cin,type_formation,date_formation", "AB1234,secourisme,2026-02-01")}

	cases := []struct {
		name  string
		kind  string
		files []formFile
		want  int
	}{
		{name: "unknown kind", kind: "vehicles", files: []formFile{sheet}, want: http.StatusBadRequest},
		{name: "missing file", kind: "trainings", want: http.StatusBadRequest},
		{name: "missing zip", kind: "trainings", files: []formFile{sheet}, want: http.StatusBadRequest},
		{
			name: "header gate",
			kind: "trainings",
			files: []formFile{
				{field: "file", name: "t.csv", data: csvSheet("cin,foo", "AB1234,x")},
				{field: "zip", name: "docs.zip", data: buildZip(t, zipEntry{name: "AB1234.pdf", body: "%PDF"})},
			},
			want: http.StatusUnprocessableEntity,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postImport(t, r, tc.kind, nil, tc.files...)
			if w.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestHandlerImportTooLarge(t *testing.T) {
	f := newFixture(t)
	r := newTestRouter(f, adminUser, 128)
	w := postImport(t, r, "ppe_issuances", nil, formFile{field: "file", name: "big.csv", data: bytes.Repeat([]byte("a"), 4096)})
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", w.Code)
	}
}

func TestHandlerProgressAndReportNotFound(t *testing.T) {
	f := newFixture(t)
	r := newTestRouter(f, adminUser, 0)

	for path, want := range map[string]int{
		"/api/v1/imports/progress/unknown":     http.StatusNotFound,
		"/api/v1/imports/reports/missing.xlsx": http.StatusNotFound,
		"/api/v1/imports/reports/..secret.xlsx": http.StatusBadRequest,
		"/api/v1/imports/reports/report.pdf":   http.StatusBadRequest,
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != want {
			t.Fatalf("%s: expected %d, got %d", path, want, w.Code)
		}
	}
}
