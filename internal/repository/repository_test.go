package repository

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/credit-audit/constants"
	"github.com/joseph-ayodele/credit-audit/internal/common"
	"github.com/joseph-ayodele/credit-audit/internal/entity"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "audit.db")
	s, err := OpenSQLite(ctx, dsn, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(s.Close)
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return s
}

func sampleResult(hash string, created time.Time, violations int) entity.ReportResult {
	return entity.ReportResult{
		ReportID:    uuid.NewSHA1(uuid.NameSpaceOID, []byte(hash)),
		Source:      "reports/" + hash + ".pdf",
		ContentHash: hash,
		Method:      "direct",
		Pages:       2,
		Report: entity.StructuredReport{
			Bureau: constants.Equifax,
			Format: "Equifax_Standard",
		},
		Analysis: entity.Analysis{
			TotalViolations: violations,
			TotalImpact:     violations * 10,
		},
		CreatedAt: created,
	}
}

func TestWithForeignKeys(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"file:a.db", "file:a.db?_pragma=foreign_keys(1)"},
		{"file:a.db?mode=rwc", "file:a.db?mode=rwc&_pragma=foreign_keys(1)"},
		{"file:a.db?_pragma=busy_timeout(500)", "file:a.db?_pragma=busy_timeout(500)"},
	}
	for _, tt := range tests {
		if got := withForeignKeys(tt.in); got != tt.want {
			t.Errorf("withForeignKeys(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStatementTimeout(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{time.Minute, "60000"},
		{1500 * time.Millisecond, "1500"},
		{30 * time.Second, "30000"},
	}
	for _, tt := range tests {
		if got := statementTimeout(tt.in); got != tt.want {
			t.Errorf("statementTimeout(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), common.DatabaseConfig{Driver: "oracle"}, nil)
	if !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestMigrateIdempotent(t *testing.T) {
	s := openTestStore(t)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
	if err := s.HealthCheck(context.Background(), time.Second); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}

func TestResults(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	older := sampleResult("aaa", base, 2)
	newer := sampleResult("bbb", base.Add(time.Hour), 5)
	for _, r := range []entity.ReportResult{older, newer} {
		if err := s.SaveResult(ctx, r); err != nil {
			t.Fatalf("SaveResult: %v", err)
		}
	}

	got, err := s.GetResult(ctx, older.ReportID)
	if err != nil {
		t.Fatalf("GetResult: %v", err)
	}
	if got.ContentHash != "aaa" || got.Analysis.TotalViolations != 2 || got.Report.Bureau != constants.Equifax {
		t.Errorf("GetResult = %+v", got)
	}

	// Reprocessing the same content replaces the row.
	older.Analysis.TotalViolations = 7
	if err := s.SaveResult(ctx, older); err != nil {
		t.Fatalf("SaveResult upsert: %v", err)
	}
	list, err := s.ListResults(ctx, 10)
	if err != nil {
		t.Fatalf("ListResults: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("ListResults len = %d, want 2", len(list))
	}
	if list[0].ContentHash != "bbb" || list[1].Analysis.TotalViolations != 7 {
		t.Errorf("ListResults order/content wrong: %s then %+v", list[0].ContentHash, list[1].Analysis)
	}

	limited, err := s.ListResults(ctx, 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("ListResults(1) = %d, %v", len(limited), err)
	}

	found, ok, err := s.FindByHash(ctx, "bbb")
	if err != nil || !ok || found.ReportID != newer.ReportID {
		t.Errorf("FindByHash(bbb) = %v, %v, %v", found.ReportID, ok, err)
	}
	if _, ok, err := s.FindByHash(ctx, "zzz"); ok || err != nil {
		t.Errorf("FindByHash(zzz) = %v, %v", ok, err)
	}

	if _, err := s.GetResult(ctx, uuid.New()); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("GetResult(missing) err = %v, want ErrNotFound", err)
	}
}

func TestJobs(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	started := time.Date(2026, 10, 2, 9, 0, 0, 0, time.UTC)

	ok := entity.ReportJob{ID: uuid.New(), Source: "a.pdf", ContentHash: "h1", Status: constants.JobStatusRunning, StartedAt: started}
	bad := entity.ReportJob{ID: uuid.New(), Source: "b.pdf", ContentHash: "h2", Status: constants.JobStatusRunning, StartedAt: started}
	for _, j := range []entity.ReportJob{ok, bad} {
		if err := s.StartJob(ctx, j); err != nil {
			t.Fatalf("StartJob: %v", err)
		}
	}

	finished := started.Add(time.Minute)
	ok.Status = constants.JobStatusAnalyzed
	ok.FinishedAt = &finished
	if err := s.FinishJob(ctx, ok); err != nil {
		t.Fatalf("FinishJob: %v", err)
	}
	msg := "no text"
	bad.Status = constants.JobStatusFailed
	bad.FinishedAt = &finished
	bad.ErrorMessage = &msg
	if err := s.FinishJob(ctx, bad); err != nil {
		t.Fatalf("FinishJob failed job: %v", err)
	}

	got, err := s.GetJob(ctx, ok.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Status != constants.JobStatusAnalyzed || got.ErrorMessage != nil || got.FinishedAt == nil {
		t.Errorf("GetJob(ok) = %+v", got)
	}
	if !got.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, started)
	}

	got, err = s.GetJob(ctx, bad.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Status != constants.JobStatusFailed || got.ErrorMessage == nil || *got.ErrorMessage != msg {
		t.Errorf("GetJob(bad) = %+v", got)
	}

	missing := entity.ReportJob{ID: uuid.New(), Status: constants.JobStatusFailed}
	if err := s.FinishJob(ctx, missing); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("FinishJob(missing) err = %v, want ErrNotFound", err)
	}
	if _, err := s.GetJob(ctx, missing.ID); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("GetJob(missing) err = %v, want ErrNotFound", err)
	}
}
