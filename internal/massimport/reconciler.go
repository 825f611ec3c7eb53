package massimport

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"maps"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-set/v2"

	"hse-backend/internal/access"
	"hse-backend/internal/records"
	"hse-backend/internal/workers"
)

// ValidatedRecord is a row that passed every check and is ready to persist.
type ValidatedRecord struct {
	Line         int
	CIN          string
	Worker       workers.Worker
	Type         string
	Label        string
	Status       string
	Reason       string
	EventDate    time.Time
	EndDate      *time.Time
	DurationDays *int
	PPEName      string
	Quantity     int
	// DocumentEntry is the archive entry holding the row's PDF, "" for kinds without documents.
	DocumentEntry string
	Fields        map[string]string
}

// FailureRecord is the uniform shape of every rejected row or archive anomaly.
type FailureRecord struct {
	Line   int               `json:"row,omitempty"`
	CIN    string            `json:"cin"`
	File   string            `json:"file,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
	Error  string            `json:"error"`
}

// Outcome holds exactly one of Record or Failure.
type Outcome struct {
	Record  *ValidatedRecord
	Failure *FailureRecord
}

func (o Outcome) OK() bool {
	return o.Record != nil
}

// Reconciler validates rows and matches them against workers, access rules,
// existing records and the archive.
type Reconciler struct {
	Schema   Schema
	Archive  *ArchiveIndex
	Workers  workers.Repo
	Access   access.Checker
	Records  records.Repo
	User     access.User
	Now      func() time.Time
	Location *time.Location
}

// Outcomes yields one outcome per row, in order. Rows are checked one at a
// time; the first failing check decides the row's failure message.
func (r *Reconciler) Outcomes(ctx context.Context, rows iter.Seq[Row]) iter.Seq[Outcome] {
	return func(yield func(Outcome) bool) {
		seen := set.New[string](0)
		now := time.Now
		if r.Now != nil {
			now = r.Now
		}
		day := today(now(), r.Location)
		for row := range rows {
			if !yield(r.reconcile(ctx, row, seen, day)) {
				return
			}
		}
	}
}

func (r *Reconciler) reconcile(ctx context.Context, row Row, seen *set.Set[string], day time.Time) (out Outcome) {
	echo := maps.Clone(row.Values)
	cin := NormalizeIdentifier(row.Get(fieldCIN))
	fail := func(msg string) Outcome {
		return Outcome{Failure: &FailureRecord{Line: row.Line, CIN: cin, Fields: echo, Error: msg}}
	}
	defer func() {
		if p := recover(); p != nil {
			out = fail(MsgUnexpectedPrefix + fmt.Sprint(p))
		}
	}()

	if cin == "" {
		return fail(MsgMissingCIN)
	}
	if !seen.Insert(cin) {
		return fail(MsgDuplicateInSheet)
	}

	rec, msg := r.validate(row, day)
	if msg != "" {
		return fail(msg)
	}
	rec.Line = row.Line
	rec.CIN = cin
	rec.Fields = echo

	worker, err := r.Workers.FindByCIN(ctx, cin)
	if err != nil {
		if errors.Is(err, workers.ErrNotFound) {
			return fail(MsgWorkerNotFound)
		}
		return fail(MsgUnexpectedPrefix + err.Error())
	}
	rec.Worker = worker

	allowed, err := r.canAct(ctx, worker)
	if err != nil {
		return fail(MsgUnexpectedPrefix + err.Error())
	}
	if !allowed {
		return fail(MsgAccessDenied)
	}

	if r.Schema.Kind == KindPPEIssuances {
		if worker.ProjectID == nil {
			return fail(MsgWorkerNoProject)
		}
		return Outcome{Record: rec}
	}

	exists, err := r.Records.Exists(ctx, records.KeyOf(toRecord(r.Schema, rec)))
	if err != nil {
		return fail(MsgUnexpectedPrefix + err.Error())
	}
	if exists {
		return fail(MsgDuplicateRecord)
	}

	if r.Schema.RequiresDocument {
		entry, ok := r.Archive.Lookup(cin)
		if !ok {
			return fail(MsgMissingPDF)
		}
		rec.DocumentEntry = entry
	}
	return Outcome{Record: rec}
}

// canAct applies the project scope rule: workers in a project need project
// access, unassigned workers need global scope.
func (r *Reconciler) canAct(ctx context.Context, w workers.Worker) (bool, error) {
	if w.ProjectID == nil {
		return r.Access.HasGlobalScope(r.User), nil
	}
	return r.Access.CanAccess(ctx, r.User, *w.ProjectID)
}

// validate runs the field-level checks: presence, enum membership, date and
// integer parsing, temporal rules, then conditional requirements.
func (r *Reconciler) validate(row Row, day time.Time) (*ValidatedRecord, string) {
	s := r.Schema
	fields := s.Fields[1:]

	for _, f := range fields {
		if f.Required && row.Get(f.Key) == "" {
			return nil, "Missing " + f.Key
		}
	}

	enums := make(map[string]string)
	for _, f := range fields {
		raw := row.Get(f.Key)
		if f.Type != FieldEnum || raw == "" {
			continue
		}
		v := NormalizeKey(raw)
		if !f.allows(v) {
			return nil, fmt.Sprintf("Invalid %s: %s", f.Key, raw)
		}
		enums[f.Key] = v
	}

	dates := make(map[string]time.Time)
	ints := make(map[string]int)
	for _, f := range fields {
		raw := row.Get(f.Key)
		if raw == "" {
			continue
		}
		switch f.Type {
		case FieldDate:
			d, ok := ParseDate(raw, r.Location)
			if !ok {
				return nil, "Invalid date: " + f.Key
			}
			dates[f.Key] = d
		case FieldInt:
			n, ok := parseInt(raw)
			if !ok {
				return nil, "Invalid " + f.Key
			}
			ints[f.Key] = n
		}
	}

	event := dates[s.EventField]
	if event.After(day) {
		return nil, MsgFutureDatePrefix + s.EventField
	}
	rec := &ValidatedRecord{EventDate: event}
	if s.EndField != "" {
		if end, ok := dates[s.EndField]; ok {
			if end.Before(event) {
				return nil, fmt.Sprintf("%s must be on or after %s", s.EndField, s.EventField)
			}
			rec.EndDate = &end
		}
	}

	rec.Type = enums[s.TypeField]
	rec.Status = enums[s.StatusField]
	if s.LabelField != "" {
		rec.Label = row.Get(s.LabelField)
		if rec.Type == typeOther && rec.Label == "" {
			return nil, "Missing " + s.LabelField
		}
	}

	switch s.Kind {
	case KindSanctions:
		rec.Reason = row.Get("reason")
		if days, ok := ints["duration_days"]; ok {
			rec.DurationDays = &days
		}
		if rec.Type == sanctionSuspend {
			if rec.DurationDays == nil {
				return nil, "Missing duration_days"
			}
			if *rec.DurationDays < 1 || *rec.DurationDays > maxSuspendDays {
				return nil, fmt.Sprintf("Invalid duration_days: must be between 1 and %d", maxSuspendDays)
			}
		}
	case KindPPEIssuances:
		rec.PPEName = row.Get("ppe_name")
		rec.Quantity = ints["quantity"]
		if rec.Quantity < 1 {
			return nil, "Invalid quantity: must be at least 1"
		}
	}
	return rec, ""
}

// parseInt accepts "3" and spreadsheet float artifacts such as "3.0".
func parseInt(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

// toRecord maps a validated row onto the worker record it persists as.
func toRecord(s Schema, v *ValidatedRecord) records.Record {
	return records.Record{
		Kind:         s.RecordKind,
		WorkerID:     v.Worker.ID,
		Type:         v.Type,
		Label:        v.Label,
		Status:       v.Status,
		EventDate:    v.EventDate,
		EndDate:      v.EndDate,
		Reason:       v.Reason,
		DurationDays: v.DurationDays,
	}
}
