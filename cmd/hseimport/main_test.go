package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hse-backend/internal/massimport"
)

func TestKindsListsEveryKind(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd(nil)
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"kinds"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	got := strings.Fields(out.String())
	if len(got) != len(massimport.Kinds()) || got[0] != "trainings" {
		t.Fatalf("unexpected kinds %v", got)
	}
}

func TestRunPrintsSummary(t *testing.T) {
	dir := t.TempDir()
	sheet := filepath.Join(dir, "epi.csv")
	if err := os.WriteFile(sheet, []byte("cin,ppe_name,quantity,issue_date\nAB1234,Casque,1,2026-01-10\n"), 0o600); err != nil {
		t.Fatalf("write sheet: %v", err)
	}

	var got massimport.Request
	runner := func(ctx context.Context, req massimport.Request) (massimport.Summary, error) {
		got = req
		return massimport.Summary{RunID: "run-1", Kind: req.Kind, Processed: 1, Imported: 1, Errors: []massimport.FailureRecord{}}, nil
	}

	var out bytes.Buffer
	cmd := newRootCmd(runner)
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"run", "--kind", "PPE_Issuances", "--sheet", sheet, "--user", "9", "--locale", "en"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if got.Kind != massimport.KindPPEIssuances || got.SheetName != "epi.csv" || got.User.ID != "9" || got.User.Role != "admin" || got.Locale != "en" {
		t.Fatalf("unexpected request %+v", got)
	}
	var summary massimport.Summary
	if err := json.Unmarshal(out.Bytes(), &summary); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if summary.RunID != "run-1" || summary.Imported != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestRunPreconditionStillPrintsSummary(t *testing.T) {
	dir := t.TempDir()
	sheet := filepath.Join(dir, "t.csv")
	if err := os.WriteFile(sheet, []byte("cin\n"), 0o600); err != nil {
		t.Fatalf("write sheet: %v", err)
	}
	runner := func(ctx context.Context, req massimport.Request) (massimport.Summary, error) {
		return massimport.Summary{FailedCount: 1, Errors: []massimport.FailureRecord{{Error: massimport.MsgMissingZip}}},
			fmt.Errorf("%w: %s", massimport.ErrPrecondition, massimport.MsgMissingZip)
	}

	var out bytes.Buffer
	cmd := newRootCmd(runner)
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"run", "--kind", "trainings", "--sheet", sheet, "--user", "9"})
	err := cmd.Execute()
	if !errors.Is(err, massimport.ErrPrecondition) {
		t.Fatalf("expected precondition error, got %v", err)
	}
	if !strings.Contains(out.String(), massimport.MsgMissingZip) {
		t.Fatalf("summary not printed: %s", out.String())
	}
}

func TestRunRejectsUnknownKind(t *testing.T) {
	cmd := newRootCmd(func(context.Context, massimport.Request) (massimport.Summary, error) {
		t.Fatalf("runner must not be called")
		return massimport.Summary{}, nil
	})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"run", "--kind", "vehicles", "--sheet", "x.csv", "--user", "9"})
	if err := cmd.Execute(); !errors.Is(err, massimport.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}
