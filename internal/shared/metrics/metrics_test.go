package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestImportCounters(t *testing.T) {
	before := testutil.ToFloat64(importRowsTotal.WithLabelValues("trainings", OutcomeImported))
	AddImportRows("trainings", OutcomeImported, 3)
	AddImportRows("trainings", OutcomeImported, 0)
	after := testutil.ToFloat64(importRowsTotal.WithLabelValues("trainings", OutcomeImported))
	if after-before != 3 {
		t.Fatalf("expected +3 rows, got %v", after-before)
	}

	runsBefore := testutil.ToFloat64(importRunsTotal.WithLabelValues("sanctions", StatusRejected))
	ObserveImportRun("sanctions", StatusRejected, 250*time.Millisecond)
	if got := testutil.ToFloat64(importRunsTotal.WithLabelValues("sanctions", StatusRejected)); got-runsBefore != 1 {
		t.Fatalf("expected one rejected run, got %v", got-runsBefore)
	}
}

func TestHandlerServesRegistry(t *testing.T) {
	gin.SetMode(gin.TestMode)
	AddPPEIssued("Casque", 2)

	r := gin.New()
	r.GET("/metrics", Handler())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "hse_ppe_issued_quantity_total") {
		t.Fatalf("expected ppe counter in output, got %s", w.Body.String())
	}
}

func TestRegisterDBTwice(t *testing.T) {
	sqlDB, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer sqlDB.Close()

	RegisterDB("test_pool", sqlDB)
	RegisterDB("test_pool", sqlDB)
	RegisterDB("nil_pool", nil)
}
