package records

import "time"

// Kind names a worker record table.
type Kind string

const (
	KindTraining      Kind = "training"
	KindAptitude      Kind = "aptitude"
	KindSanction      Kind = "sanction"
	KindQualification Kind = "qualification"
)

// Record is one persisted worker record. Type holds the kind's discriminating
// enum (training type, exam nature, sanction type, qualification type).
type Record struct {
	ID              int64      `json:"id"`
	Kind            Kind       `json:"kind"`
	WorkerID        int64      `json:"workerId"`
	Type            string     `json:"type"`
	Label           string     `json:"label,omitempty"`
	Status          string     `json:"status,omitempty"`
	EventDate       time.Time  `json:"eventDate"`
	EndDate         *time.Time `json:"endDate,omitempty"`
	Reason          string     `json:"reason,omitempty"`
	DurationDays    *int       `json:"durationDays,omitempty"`
	AttachmentKey   string     `json:"attachmentKey,omitempty"`
	AttachmentPages int        `json:"attachmentPages,omitempty"`
	CreatedBy       string     `json:"createdBy"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// DuplicateKey is the business key checked before inserting a record.
// Reason only takes part for sanctions.
type DuplicateKey struct {
	Kind     Kind
	WorkerID int64
	Type     string
	Date     time.Time
	Reason   string
}

// KeyOf derives the duplicate key of r.
func KeyOf(r Record) DuplicateKey {
	key := DuplicateKey{
		Kind:     r.Kind,
		WorkerID: r.WorkerID,
		Type:     r.Type,
		Date:     dateOnly(r.EventDate),
	}
	if r.Kind == KindSanction {
		key.Reason = r.Reason
	}
	return key
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
