package massimport

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"hse-backend/internal/access"
	"hse-backend/internal/ppe"
	"hse-backend/internal/records"
	"hse-backend/internal/shared/metrics"
	"hse-backend/internal/shared/storage/object"
	"hse-backend/internal/shared/telemetry"
	"hse-backend/internal/workers"
)

// Request is one upload: a spreadsheet and, for document kinds, a ZIP of PDFs.
type Request struct {
	Kind       Kind
	SheetName  string
	Sheet      []byte
	Archive    []byte
	ProgressID string
	Locale     string
	User       access.User
}

// Service runs imports synchronously, one row at a time.
type Service struct {
	Workers       workers.Repo
	Access        access.Checker
	Records       records.Repo
	Ledger        ppe.Ledger
	Store         object.ObjectStore
	Progress      ProgressStore
	Reports       *ReportRenderer
	Now           func() time.Time
	Location      *time.Location
	DefaultLocale string
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Run executes one import. When a precondition fails (missing or invalid ZIP,
// unreadable sheet, unresolvable headers) no row is processed; the returned
// error wraps ErrPrecondition and the summary holds the single failure.
func (s *Service) Run(ctx context.Context, req Request) (Summary, error) {
	if s == nil || s.Workers == nil || s.Access == nil {
		return Summary{}, errors.New("import service not configured")
	}
	schema, err := SchemaFor(req.Kind)
	if err != nil {
		return Summary{}, err
	}
	// A started run always completes, even when the caller goes away.
	ctx = context.WithoutCancel(ctx)

	runID := strings.TrimSpace(req.ProgressID)
	if runID == "" {
		runID = uuid.NewString()
	}
	started := s.now()
	if s.Progress != nil {
		if err := s.Progress.Init(ctx, runID, Progress{Status: StatusRunning, StartedAt: started.UTC()}); err != nil {
			telemetry.Warn("import.progress.init_failed", map[string]any{"run_id": runID, "error": err})
		}
	}
	telemetry.Info("import.run.start", map[string]any{
		"run_id":  runID,
		"kind":    string(schema.Kind),
		"user_id": req.User.ID,
	})

	var archive *ArchiveIndex
	if schema.RequiresDocument {
		if len(req.Archive) == 0 {
			return s.reject(ctx, schema, runID, started, MsgMissingZip)
		}
		archive, err = IndexArchive(req.Archive)
		if err != nil {
			return s.reject(ctx, schema, runID, started, MsgInvalidZip)
		}
	}

	sheet, err := ReadSheet(req.SheetName, req.Sheet)
	if err != nil {
		return s.reject(ctx, schema, runID, started, MsgUnreadableSheet+": "+err.Error())
	}
	if sheetIsEmpty(sheet) {
		return s.reject(ctx, schema, runID, started, MsgEmptySheet)
	}
	rows, err := NormalizeRows(sheet, schema)
	if err != nil {
		return s.reject(ctx, schema, runID, started, err.Error())
	}

	total := rows.Len()
	s.progress(ctx, runID, func(p *Progress) { p.Total = total })

	reconciler := &Reconciler{
		Schema:   schema,
		Archive:  archive,
		Workers:  s.Workers,
		Access:   s.Access,
		Records:  s.Records,
		User:     req.User,
		Now:      s.Now,
		Location: s.Location,
	}
	agg := &Aggregator{
		Schema:   schema,
		Archive:  archive,
		Store:    s.Store,
		Records:  s.Records,
		Ledger:   s.Ledger,
		Progress: s.Progress,
		Reports:  s.Reports,
		RunID:    runID,
		User:     req.User,
		Locale:   s.locale(req.Locale),
	}
	agg.Consume(ctx, reconciler.Outcomes(ctx, rows.All()))
	summary := agg.Finalize(ctx)

	finished := s.now().UTC()
	s.progress(ctx, runID, func(p *Progress) {
		p.Status = StatusCompleted
		p.FinishedAt = &finished
	})
	elapsed := s.now().Sub(started)
	metrics.ObserveImportRun(string(schema.Kind), metrics.StatusCompleted, elapsed)
	telemetry.Info("import.run.complete", map[string]any{
		"run_id":       runID,
		"kind":         string(schema.Kind),
		"processed":    summary.Processed,
		"imported":     summary.Imported,
		"failed_count": summary.FailedCount,
		"duration_ms":  elapsed.Milliseconds(),
	})
	return summary, nil
}

func (s *Service) reject(ctx context.Context, schema Schema, runID string, started time.Time, msg string) (Summary, error) {
	failure := FailureRecord{Error: msg}
	finished := s.now().UTC()
	s.progress(ctx, runID, func(p *Progress) {
		p.Status = StatusFailed
		p.Error = msg
		p.FinishedAt = &finished
	})
	metrics.ObserveImportRun(string(schema.Kind), metrics.StatusRejected, s.now().Sub(started))
	telemetry.Warn("import.run.rejected", map[string]any{
		"run_id": runID,
		"kind":   string(schema.Kind),
		"reason": msg,
	})
	return Summary{
		RunID:       runID,
		Kind:        schema.Kind,
		FailedCount: 1,
		Errors:      []FailureRecord{failure},
	}, fmt.Errorf("%w: %s", ErrPrecondition, msg)
}

// progress writes are best-effort; a poller losing an update must not fail the run.
func (s *Service) progress(ctx context.Context, runID string, fn func(*Progress)) {
	if s.Progress == nil {
		return
	}
	if err := s.Progress.Update(ctx, runID, fn); err != nil {
		telemetry.Warn("import.progress.update_failed", map[string]any{"run_id": runID, "error": err})
	}
}

// GetProgress returns the progress of a run.
func (s *Service) GetProgress(ctx context.Context, runID string) (Progress, error) {
	if s.Progress == nil {
		return Progress{}, ErrProgressNotFound
	}
	return s.Progress.Get(ctx, runID)
}

func sheetIsEmpty(sheet *Sheet) bool {
	for _, cells := range sheet.Rows {
		if !isEmptyRow(cells) {
			return false
		}
	}
	return true
}

func (s *Service) locale(requested string) string {
	for _, l := range []string{requested, s.DefaultLocale} {
		l = strings.ToLower(strings.TrimSpace(l))
		if len(l) > 2 {
			l = l[:2]
		}
		if _, ok := reportText[l]; ok {
			return l
		}
	}
	return "fr"
}
