package massimport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/google/uuid"
	"github.com/hashicorp/go-set/v2"

	"hse-backend/internal/access"
	"hse-backend/internal/extract"
	"hse-backend/internal/ppe"
	"hse-backend/internal/records"
	"hse-backend/internal/shared/metrics"
	"hse-backend/internal/shared/storage/object"
	"hse-backend/internal/shared/telemetry"
	"hse-backend/internal/shared/util"
)

// UnusedPDF is an indexed document no persisted row consumed.
type UnusedPDF struct {
	CIN  *string `json:"cin"`
	File string  `json:"file"`
}

// Summary is the result of one run.
type Summary struct {
	RunID         string          `json:"run_id"`
	Kind          Kind            `json:"kind"`
	Processed     int             `json:"processed"`
	Imported      int             `json:"imported"`
	FailedCount   int             `json:"failed_count"`
	FailedRowsURL *string         `json:"failed_rows_url"`
	ZipErrors     []ZipError      `json:"zip_errors,omitempty"`
	UnusedPDFs    []UnusedPDF     `json:"unused_pdfs,omitempty"`
	Errors        []FailureRecord `json:"errors"`
}

// Aggregator persists validated rows and collects failures for one run.
type Aggregator struct {
	Schema   Schema
	Archive  *ArchiveIndex
	Store    object.ObjectStore
	Records  records.Repo
	Ledger   ppe.Ledger
	Progress ProgressStore
	Reports  *ReportRenderer
	RunID    string
	User     access.User
	Locale   string

	processed int
	imported  int
	// updated counts imported rows that changed existing state rather than
	// only inserting, i.e. PPE issuances decrementing a stock line.
	updated   int
	failures  []FailureRecord
	consumed  *set.Set[string]
	failedCIN *set.Set[string]
}

// Consume drains outcomes, persisting each validated row before pulling the
// next one. Progress is updated after every row.
func (a *Aggregator) Consume(ctx context.Context, outcomes iter.Seq[Outcome]) {
	if a.consumed == nil {
		a.consumed = set.New[string](0)
		a.failedCIN = set.New[string](0)
	}
	for out := range outcomes {
		a.processed++
		if out.OK() {
			if err := a.persist(ctx, out.Record); err != nil {
				a.fail(FailureRecord{
					Line:   out.Record.Line,
					CIN:    out.Record.CIN,
					Fields: out.Record.Fields,
					Error:  sideEffectMessage(err),
				})
			} else {
				a.imported++
			}
		} else {
			a.fail(*out.Failure)
		}

		if a.Progress == nil {
			continue
		}
		processed, imported, failed := a.Counts()
		updated := a.updated
		if err := a.Progress.Update(ctx, a.RunID, func(p *Progress) {
			p.Processed = processed
			p.Imported = imported
			p.Failed = failed
			p.Updated = updated
		}); err != nil {
			telemetry.Warn("import.progress.update_failed", map[string]any{"run_id": a.RunID, "error": err})
		}
	}
}

func (a *Aggregator) fail(f FailureRecord) {
	a.failures = append(a.failures, f)
	if f.CIN != "" {
		a.failedCIN.Insert(f.CIN)
	}
}

// sideEffectMessage keeps the underlying error text, with a stable wording
// for the stock shortage operators act on.
func sideEffectMessage(err error) string {
	if errors.Is(err, ppe.ErrNotEnoughStock) {
		return MsgNotEnoughStock
	}
	return err.Error()
}

// persist runs the row's side effects. A panic is confined to the row and
// any document already stored for it is removed.
func (a *Aggregator) persist(ctx context.Context, rec *ValidatedRecord) (err error) {
	var storedKey string
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%s%v", MsgUnexpectedPrefix, p)
			a.discard(ctx, storedKey)
		}
	}()

	if a.Schema.Kind == KindPPEIssuances {
		iss, err := a.Ledger.Issue(ctx, ppe.IssueRequest{
			WorkerID:  rec.Worker.ID,
			ProjectID: *rec.Worker.ProjectID,
			ItemName:  rec.PPEName,
			Quantity:  rec.Quantity,
			IssueDate: rec.EventDate,
			IssuedBy:  a.User.ID,
		})
		if err != nil {
			return err
		}
		metrics.AddPPEIssued(iss.ItemName, iss.Quantity)
		a.updated++
		return nil
	}

	record := toRecord(a.Schema, rec)
	record.CreatedBy = a.User.ID

	if rec.DocumentEntry != "" {
		data, err := a.Archive.Read(rec.CIN)
		if err != nil {
			return err
		}
		key := fmt.Sprintf("%s/%s_%s.pdf", a.Schema.Namespace, util.SanitizeKeySegment(rec.CIN), uuid.NewString())
		if _, err := a.Store.Put(ctx, key, extract.MimePDF, bytes.NewReader(data)); err != nil {
			return fmt.Errorf("store document: %w", err)
		}
		storedKey = key
		record.AttachmentKey = storedKey
		record.AttachmentPages = countPages(data, rec.DocumentEntry)
	}

	if _, err := a.Records.Create(ctx, record); err != nil {
		a.discard(ctx, storedKey)
		return err
	}
	if rec.DocumentEntry != "" {
		a.consumed.Insert(rec.CIN)
	}
	return nil
}

// discard deletes a stored document whose record was not written. Best-effort.
func (a *Aggregator) discard(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := a.Store.Delete(ctx, key); err != nil {
		telemetry.Warn("import.document.cleanup_failed", map[string]any{"key": key, "error": err})
	}
}

// countPages is best-effort: a document the parser cannot read is still stored.
func countPages(data []byte, entry string) int {
	n, err := extract.PageCount(data)
	if err != nil {
		telemetry.Warn("import.document.page_count_failed", map[string]any{"entry": entry, "error": err})
		return 0
	}
	return n
}

// Finalize appends archive anomalies and orphan documents, renders the report
// when anything failed and returns the summary.
func (a *Aggregator) Finalize(ctx context.Context) Summary {
	if a.consumed == nil {
		a.consumed = set.New[string](0)
		a.failedCIN = set.New[string](0)
	}
	summary := Summary{
		RunID:     a.RunID,
		Kind:      a.Schema.Kind,
		Processed: a.processed,
		Imported:  a.imported,
	}

	if a.Archive != nil {
		for _, ze := range a.Archive.Errors() {
			summary.ZipErrors = append(summary.ZipErrors, ze)
			a.failures = append(a.failures, FailureRecord{File: ze.File, Error: ze.Error})
		}
		for _, cin := range a.Archive.CINs() {
			if a.consumed.Contains(cin) {
				continue
			}
			entry, _ := a.Archive.Lookup(cin)
			msg := MsgPDFUnusedNoRow
			if a.failedCIN.Contains(cin) {
				msg = MsgPDFUnusedRowError
			}
			c := cin
			summary.UnusedPDFs = append(summary.UnusedPDFs, UnusedPDF{CIN: &c, File: entry})
			a.failures = append(a.failures, FailureRecord{CIN: cin, File: entry, Error: msg})
		}
	}

	summary.Errors = a.failures
	if summary.Errors == nil {
		summary.Errors = []FailureRecord{}
	}
	summary.FailedCount = len(a.failures)

	if len(a.failures) > 0 && a.Reports != nil {
		rendered, err := a.Reports.Render(ctx, a.Schema, a.failures, a.Locale)
		if err != nil {
			telemetry.Error("import.report.render_failed", map[string]any{"run_id": a.RunID, "kind": string(a.Schema.Kind), "error": err})
		} else {
			summary.FailedRowsURL = &rendered.URL
		}
	}

	metrics.AddImportRows(string(a.Schema.Kind), metrics.OutcomeImported, a.imported)
	metrics.AddImportRows(string(a.Schema.Kind), metrics.OutcomeFailed, a.processed-a.imported)
	return summary
}

// Counts reports the row-level tallies so far.
func (a *Aggregator) Counts() (processed, imported, failed int) {
	return a.processed, a.imported, a.processed - a.imported
}
