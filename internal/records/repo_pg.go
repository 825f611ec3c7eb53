package records

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

type PGRepo struct {
	DB *sql.DB
}

// table describes how a Kind maps onto its worker_* table.
type table struct {
	name       string
	typeCol    string
	labelCol   string
	statusCol  string
	dateCol    string
	endCol     string
	pathCol    string
	pagesCol   string
	withReason bool
}

var tables = map[Kind]table{
	KindTraining: {
		name: "worker_trainings", typeCol: "training_type", labelCol: "training_label",
		dateCol: "training_date", endCol: "expiry_date",
		pathCol: "certificate_path", pagesCol: "certificate_pages",
	},
	KindAptitude: {
		name: "worker_medical_aptitudes", typeCol: "exam_nature", statusCol: "aptitude_status",
		dateCol: "exam_date", endCol: "next_exam_date",
		pathCol: "certificate_path", pagesCol: "certificate_pages",
	},
	KindSanction: {
		name: "worker_sanctions", typeCol: "sanction_type",
		dateCol: "sanction_date",
		pathCol: "document_path", pagesCol: "document_pages",
		withReason: true,
	},
	KindQualification: {
		name: "worker_qualifications", typeCol: "qualification_type", labelCol: "qualification_label",
		dateCol: "start_date", endCol: "expiry_date",
		pathCol: "certificate_path", pagesCol: "certificate_pages",
	},
}

func tableFor(kind Kind) (table, error) {
	t, ok := tables[kind]
	if !ok {
		return table{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return t, nil
}

func (r *PGRepo) Exists(ctx context.Context, key DuplicateKey) (bool, error) {
	t, err := tableFor(key.Kind)
	if err != nil {
		return false, err
	}
	query := fmt.Sprintf(`
SELECT EXISTS (
  SELECT 1 FROM %s WHERE worker_id = $1 AND %s = $2 AND %s = $3`, t.name, t.typeCol, t.dateCol)
	args := []any{key.WorkerID, key.Type, dateOnly(key.Date)}
	if t.withReason {
		query += ` AND reason = $4`
		args = append(args, key.Reason)
	}
	query += `
)`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PGRepo) Create(ctx context.Context, rec Record) (Record, error) {
	t, err := tableFor(rec.Kind)
	if err != nil {
		return Record{}, err
	}
	cols := []string{"worker_id", t.typeCol, t.dateCol, t.pathCol, t.pagesCol, "created_by"}
	args := []any{rec.WorkerID, rec.Type, dateOnly(rec.EventDate), nullableString(rec.AttachmentKey), nullableInt(rec.AttachmentPages), rec.CreatedBy}
	if t.labelCol != "" {
		cols = append(cols, t.labelCol)
		args = append(args, nullableString(rec.Label))
	}
	if t.statusCol != "" {
		cols = append(cols, t.statusCol)
		args = append(args, rec.Status)
	}
	if t.endCol != "" {
		cols = append(cols, t.endCol)
		args = append(args, nullableDate(rec.EndDate))
	}
	if t.withReason {
		cols = append(cols, "reason", "duration_days")
		var days any
		if rec.DurationDays != nil {
			days = *rec.DurationDays
		}
		args = append(args, rec.Reason, days)
	}

	query := "INSERT INTO " + t.name + " (" + strings.Join(cols, ", ") + ") VALUES (" + placeholders(len(cols)) + ") RETURNING id, created_at"
	if err := r.DB.QueryRowContext(ctx, query, args...).Scan(&rec.ID, &rec.CreatedAt); err != nil {
		return Record{}, fmt.Errorf("insert %s: %w", t.name, err)
	}
	return rec, nil
}

func placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(parts, ", ")
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt(value int) any {
	if value <= 0 {
		return nil
	}
	return value
}

func nullableDate(value *time.Time) any {
	if value == nil {
		return nil
	}
	return dateOnly(*value)
}
