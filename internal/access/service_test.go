package access

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestServiceCanAccess(t *testing.T) {
	repo := NewMemoryRepo()
	repo.Grant(1, "u-1")
	svc := NewService(repo)
	ctx := context.Background()

	cases := []struct {
		name    string
		user    User
		project int64
		want    bool
	}{
		{name: "member", user: User{ID: "u-1", Role: "supervisor"}, project: 1, want: true},
		{name: "other project", user: User{ID: "u-1", Role: "supervisor"}, project: 2, want: false},
		{name: "admin", user: User{ID: "root", Role: "Admin"}, project: 2, want: true},
		{name: "director", user: User{ID: "d", Role: RoleHSEDirector}, project: 9, want: true},
		{name: "anonymous", user: User{}, project: 1, want: false},
	}
	for _, tc := range cases {
		got, err := svc.CanAccess(ctx, tc.user, tc.project)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestServiceHasGlobalScope(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	if !svc.HasGlobalScope(User{Role: " hse_director "}) {
		t.Fatalf("expected hse_director to have global scope")
	}
	if svc.HasGlobalScope(User{Role: "supervisor"}) {
		t.Fatalf("expected supervisor to be project scoped")
	}
}

func TestPGRepoIsMember(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(4), "u-9").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := (&PGRepo{DB: db}).IsMember(context.Background(), 4, "u-9")
	if err != nil {
		t.Fatalf("IsMember: %v", err)
	}
	if !ok {
		t.Fatalf("expected membership")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
