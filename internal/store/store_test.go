package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// journal_mode stays "memory" for in-memory databases; see
		// TestOpenFileDatabase for WAL.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		if err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got); err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestOpenFileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "critree.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	var mode string
	if err := s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	for _, table := range []string{"llm_request_events", "diagnosis_runs", "diagnosis_events", "global_sequence"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// A second sequencer on the same database must not reseed the counter.
	sc, err := newSequencer(ctx, s.DB())
	if err != nil {
		t.Fatalf("new sequencer: %v", err)
	}

	for i := 0; i < 5; i++ {
		seq, err := sc.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		if want := int64(i + 1); seq != want {
			t.Errorf("seq[%d] = %d, want %d", i, seq, want)
		}
	}
}

func TestLLMEvents_AppendQueryGet(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for i, purpose := range []string{"criteria-diagnosis", "criteria-diagnosis", "other"} {
		errMsg := ""
		if i == 1 {
			errMsg = "boom"
		}
		err := repo.AppendLLMRequest(ctx, LLMRequestEventData{
			Provider:     "openai",
			Model:        "gpt-4o-mini",
			Purpose:      purpose,
			InputTokens:  100 + i,
			OutputTokens: 10,
			LatencyMs:    250,
			Success:      i != 1,
			ErrorMessage: errMsg,
			RequestBody:  "[user]\nprompt",
			ResponseBody: "[GRADE] good",
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	all, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	if all[0].Sequence <= all[1].Sequence {
		t.Errorf("expected newest first, got sequences %d, %d", all[0].Sequence, all[1].Sequence)
	}
	if all[0].Timestamp.IsZero() {
		t.Error("timestamp not round-tripped")
	}

	filtered, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "criteria-diagnosis", Limit: 1})
	if err != nil {
		t.Fatalf("query filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Success {
		t.Fatalf("unexpected filtered result: %+v", filtered)
	}

	got, err := repo.GetLLMEvent(ctx, filtered[0].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ErrorMessage != "boom" || got.RequestBody != "[user]\nprompt" || got.ResponseBody != "[GRADE] good" {
		t.Errorf("unexpected event: %+v", got.LLMRequestEventData)
	}

	if _, err := repo.GetLLMEvent(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLLMUsage(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	add := func(model, purpose string, ok bool) {
		t.Helper()
		err := repo.AppendLLMRequest(ctx, LLMRequestEventData{
			Provider: "p", Model: model, Purpose: purpose,
			InputTokens: 10, OutputTokens: 5, LatencyMs: 100, Success: ok,
		})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	add("m1", "criteria-diagnosis", true)
	add("m1", "criteria-diagnosis", false)
	add("m2", "criteria-diagnosis", true)

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("usage by model: %v", err)
	}
	want := []LLMUsage{
		{Key: "m1", Calls: 2, Failures: 1, InputTokens: 20, OutputTokens: 10, LatencyMs: 200},
		{Key: "m2", Calls: 1, Failures: 0, InputTokens: 10, OutputTokens: 5, LatencyMs: 100},
	}
	if diff := cmp.Diff(want, byModel); diff != "" {
		t.Errorf("usage by model mismatch (-want +got):\n%s", diff)
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage by purpose: %v", err)
	}
	if len(byPurpose) != 1 || byPurpose[0].Calls != 3 {
		t.Errorf("unexpected usage by purpose: %+v", byPurpose)
	}
}

func TestDiagnosisRunsAndEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for _, id := range []string{"run-1", "run-2"} {
		err := repo.AppendRun(ctx, DiagnosisRunData{
			RunID: id, Goal: "Adopt", Format: "tags", Model: "mock", Targets: 2,
			Structure: `{"name":"Adopt"}`,
		})
		if err != nil {
			t.Fatalf("append run: %v", err)
		}
	}

	events := []DiagnosisEventData{
		{RunID: "run-1", Position: 0, Node: "Adopt", Path: []string{"Adopt"}, Children: []string{"A", "B"}, Grade: "warn", Summary: "thin", Advisory: "few"},
		{RunID: "run-1", Position: 1, Node: "A", Path: []string{"Adopt", "A"}, Children: []string{"A1"}, Grade: "good"},
		{RunID: "run-2", Position: 0, Node: "Adopt", Path: []string{"Adopt"}, Children: []string{"A"}, Grade: "error", ErrorMessage: "down"},
	}
	for _, e := range events {
		if err := repo.AppendDiagnosis(ctx, e); err != nil {
			t.Fatalf("append diagnosis: %v", err)
		}
	}

	runs, err := repo.QueryDiagnosisRuns(ctx, 0)
	if err != nil {
		t.Fatalf("query runs: %v", err)
	}
	if len(runs) != 2 || runs[0].RunID != "run-2" {
		t.Fatalf("expected newest run first, got %+v", runs)
	}
	if runs[1].Completed != 2 || runs[1].Grades["warn"] != 1 || runs[1].Grades["good"] != 1 {
		t.Errorf("unexpected tally for run-1: %+v", runs[1])
	}

	limited, err := repo.QueryDiagnosisRuns(ctx, 1)
	if err != nil {
		t.Fatalf("query limited: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limit ignored: %d runs", len(limited))
	}

	run, err := repo.GetDiagnosisRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if run.Structure != `{"name":"Adopt"}` || run.Targets != 2 {
		t.Errorf("unexpected run: %+v", run)
	}
	if _, err := repo.GetDiagnosisRun(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	got, err := repo.QueryDiagnoses(ctx, "run-1")
	if err != nil {
		t.Fatalf("query diagnoses: %v", err)
	}
	var gotData []DiagnosisEventData
	for _, e := range got {
		gotData = append(gotData, e.DiagnosisEventData)
	}
	if diff := cmp.Diff(events[:2], gotData, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("diagnoses mismatch (-want +got):\n%s", diff)
	}
}
