package records

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestKeyOfIncludesReasonOnlyForSanctions(t *testing.T) {
	training := KeyOf(Record{Kind: KindTraining, WorkerID: 1, Type: "secourisme", EventDate: day(2026, 1, 15), Reason: "ignored"})
	if training.Reason != "" {
		t.Fatalf("expected no reason for trainings, got %q", training.Reason)
	}
	sanction := KeyOf(Record{Kind: KindSanction, WorkerID: 1, Type: "blame", EventDate: day(2026, 1, 15), Reason: "Retard"})
	if sanction.Reason != "Retard" {
		t.Fatalf("expected reason in sanction key, got %q", sanction.Reason)
	}
}

func TestMemoryRepoExists(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	_, err := repo.Create(ctx, Record{Kind: KindSanction, WorkerID: 2, Type: "blame", EventDate: day(2026, 2, 1), Reason: "Absence"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	same := DuplicateKey{Kind: KindSanction, WorkerID: 2, Type: "blame", Date: day(2026, 2, 1), Reason: "Absence"}
	if ok, _ := repo.Exists(ctx, same); !ok {
		t.Fatalf("expected duplicate to be detected")
	}
	other := same
	other.Reason = "Retard"
	if ok, _ := repo.Exists(ctx, other); ok {
		t.Fatalf("expected a different reason to be a distinct sanction")
	}
	if _, err := repo.Create(ctx, Record{Kind: "permit"}); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestPGRepoExistsSanctionUsesReason(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery(`SELECT 1 FROM worker_sanctions WHERE worker_id = \$1 AND sanction_type = \$2 AND sanction_date = \$3 AND reason = \$4`).
		WithArgs(int64(5), "avertissement", day(2026, 3, 2), "Retard").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := (&PGRepo{DB: db}).Exists(context.Background(), DuplicateKey{
		Kind: KindSanction, WorkerID: 5, Type: "avertissement", Date: day(2026, 3, 2), Reason: "Retard",
	})
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if ok {
		t.Fatalf("expected no duplicate")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCreateTraining(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	expiry := day(2027, 1, 15)
	rec := Record{
		Kind:            KindTraining,
		WorkerID:        9,
		Type:            "formation_epi",
		EventDate:       day(2026, 1, 15),
		EndDate:         &expiry,
		AttachmentKey:   "worker_certificates/mass_trainings/AB1234_x.pdf",
		AttachmentPages: 2,
		CreatedBy:       "user-1",
	}
	created := time.Now().UTC()
	mock.ExpectQuery("INSERT INTO worker_trainings").
		WithArgs(
			int64(9),
			"formation_epi",
			day(2026, 1, 15),
			rec.AttachmentKey,
			2,
			"user-1",
			nil, // training_label
			expiry,
		).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(41), created))

	got, err := (&PGRepo{DB: db}).Create(context.Background(), rec)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got.ID != 41 {
		t.Fatalf("expected id 41, got %d", got.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
