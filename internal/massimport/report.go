package massimport

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"hse-backend/internal/extract"
	"hse-backend/internal/shared/storage/object"
)

// ReportPrefix is the object-store folder holding failed-rows reports.
const ReportPrefix = "imports/failed_rows/"

// ReportRoute is the public path reports are downloaded from.
const ReportRoute = "/api/v1/imports/reports/"

var reportText = map[string]map[string]string{
	"fr": {"sheet": "Lignes en échec", "row": "Ligne", "file": "Fichier", "error": "Erreur"},
	"en": {"sheet": "Failed rows", "row": "Row", "file": "File", "error": "Error"},
}

// ReportRenderer writes failed rows to an xlsx workbook in the object store.
type ReportRenderer struct {
	Store         object.ObjectStore
	PublicBaseURL string
	Now           func() time.Time
}

// Rendered locates a stored report.
type Rendered struct {
	Key  string
	File string
	URL  string
}

// Render stores the report and returns where it can be downloaded. Columns are
// the sheet line, the CIN, the kind's echoed fields, the archive file when any
// failure carries one, and the error.
func (r *ReportRenderer) Render(ctx context.Context, schema Schema, failures []FailureRecord, locale string) (Rendered, error) {
	text, ok := reportText[locale]
	if !ok {
		locale = "fr"
		text = reportText[locale]
	}

	withFile := false
	for _, f := range failures {
		if f.File != "" {
			withFile = true
			break
		}
	}

	header := []any{text["row"]}
	for _, field := range schema.Fields {
		header = append(header, field.Label(locale))
	}
	if withFile {
		header = append(header, text["file"])
	}
	header = append(header, text["error"])

	wb := excelize.NewFile()
	defer wb.Close()
	sheet := text["sheet"]
	if err := wb.SetSheetName(wb.GetSheetName(0), sheet); err != nil {
		return Rendered{}, fmt.Errorf("name sheet: %w", err)
	}
	if err := wb.SetSheetRow(sheet, "A1", &header); err != nil {
		return Rendered{}, fmt.Errorf("write header: %w", err)
	}

	for i, f := range failures {
		row := make([]any, 0, len(header))
		if f.Line > 0 {
			row = append(row, f.Line)
		} else {
			row = append(row, "")
		}
		for _, field := range schema.Fields {
			if field.Key == fieldCIN {
				row = append(row, reportCIN(f))
				continue
			}
			row = append(row, f.Fields[field.Key])
		}
		if withFile {
			row = append(row, f.File)
		}
		row = append(row, f.Error)

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return Rendered{}, err
		}
		if err := wb.SetSheetRow(sheet, cell, &row); err != nil {
			return Rendered{}, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf, err := wb.WriteToBuffer()
	if err != nil {
		return Rendered{}, fmt.Errorf("encode report: %w", err)
	}

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	file := fmt.Sprintf("%s_%s_%s.xlsx", schema.Kind, now().Format("20060102_150405"), strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	key := ReportPrefix + file
	if _, err := r.Store.Put(ctx, key, extract.MimeXLSX, buf); err != nil {
		return Rendered{}, fmt.Errorf("store report: %w", err)
	}
	return Rendered{
		Key:  key,
		File: file,
		URL:  strings.TrimRight(r.PublicBaseURL, "/") + ReportRoute + file,
	}, nil
}

// reportCIN prefers the normalized CIN and falls back to what the operator typed.
func reportCIN(f FailureRecord) string {
	if f.CIN != "" {
		return f.CIN
	}
	return f.Fields[fieldCIN]
}
