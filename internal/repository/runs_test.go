package repository

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"entgo.io/ent/dialect"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/telkom-contracts/constants"
	"github.com/joseph-ayodele/telkom-contracts/internal/common"
	"github.com/joseph-ayodele/telkom-contracts/internal/entity"
	"github.com/joseph-ayodele/telkom-contracts/internal/utils"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := Open(context.Background(), Config{DSN: filepath.Join(t.TempDir(), "runs.db")}, logger)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(store.Close)
	return store
}

func testRun(t *testing.T, source string, method constants.PaymentMethod, status constants.RunStatus, at time.Time) *entity.ExtractionRun {
	t.Helper()
	rec := entity.NewContractRecord()
	rec.Contract.ContractNumber = utils.Ptr("K.TEL.001/HK.810/TR5-R500/2025")
	rec.Payment.Method = method
	rec.ConfidenceScore = 0.5
	rec.ProcessingTimeSeconds = 0.25
	run, err := RunFromRecord(source, ContentHash([]byte(source)), rec, status)
	if err != nil {
		t.Fatal(err)
	}
	run.CreatedAt = at
	return run
}

func TestParseDSN(t *testing.T) {
	tests := []struct {
		dsn         string
		wantDialect string
		wantDSN     string
		wantErr     bool
	}{
		{dsn: "postgres://u:p@localhost:5432/contracts", wantDialect: dialect.Postgres, wantDSN: "postgres://u:p@localhost:5432/contracts"},
		{dsn: "postgresql://localhost/contracts", wantDialect: dialect.Postgres, wantDSN: "postgresql://localhost/contracts"},
		{dsn: "sqlite:///var/lib/runs.db", wantDialect: dialect.SQLite, wantDSN: "/var/lib/runs.db"},
		{dsn: "sqlite:runs.db", wantDialect: dialect.SQLite, wantDSN: "runs.db"},
		{dsn: "file:runs.db?cache=shared", wantDialect: dialect.SQLite, wantDSN: "file:runs.db?cache=shared"},
		{dsn: " ./data/runs.sqlite ", wantDialect: dialect.SQLite, wantDSN: "./data/runs.sqlite"},
		{dsn: "", wantErr: true},
		{dsn: "mysql://localhost/contracts", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			d, dsn, err := ParseDSN(tt.dsn)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDSN() error = %v, wantErr %v", err, tt.wantErr)
			}
			if d != tt.wantDialect || dsn != tt.wantDSN {
				t.Errorf("ParseDSN() = (%q, %q), want (%q, %q)", d, dsn, tt.wantDialect, tt.wantDSN)
			}
		})
	}
}

func TestRunRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	repo := NewRunRepository(store)

	if err := store.HealthCheck(ctx, time.Second); err != nil {
		t.Fatalf("HealthCheck() error = %v", err)
	}

	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	run := testRun(t, "smk_page_1_results", constants.PaymentTermin, constants.RunStatusOK, at)
	if err := repo.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}

	got, err := repo.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if diff := cmp.Diff(run, got); diff != "" {
		t.Errorf("run mismatch (-want +got):\n%s", diff)
	}

	byHash, err := repo.FindByHash(ctx, run.ContentHash)
	if err != nil {
		t.Fatalf("FindByHash() error = %v", err)
	}
	if byHash.ID != run.ID {
		t.Errorf("FindByHash() id = %s, want %s", byHash.ID, run.ID)
	}
}

func TestRunRepositoryNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewRunRepository(openTestStore(t))

	if _, err := repo.GetRun(ctx, uuid.New()); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("GetRun() error = %v, want ErrNotFound", err)
	}
	if _, err := repo.FindByHash(ctx, "deadbeef"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("FindByHash() error = %v, want ErrNotFound", err)
	}
}

func TestListRuns(t *testing.T) {
	ctx := context.Background()
	repo := NewRunRepository(openTestStore(t))

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	runs := []*entity.ExtractionRun{
		testRun(t, "a", constants.PaymentTermin, constants.RunStatusOK, base),
		testRun(t, "b", constants.PaymentRecurring, constants.RunStatusPartial, base.Add(time.Minute)),
		testRun(t, "c", constants.PaymentTermin, constants.RunStatusPartial, base.Add(2*time.Minute)),
	}
	for _, r := range runs {
		if err := repo.SaveRun(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	n, err := repo.CountRuns(ctx)
	if err != nil || n != 3 {
		t.Fatalf("CountRuns() = %d, %v", n, err)
	}

	sources := func(rs []*entity.ExtractionRun) []string {
		out := make([]string, 0, len(rs))
		for _, r := range rs {
			out = append(out, r.Source)
		}
		return out
	}

	tests := []struct {
		name   string
		filter RunFilter
		want   []string
	}{
		{name: "newest first", filter: RunFilter{}, want: []string{"c", "b", "a"}},
		{name: "limit", filter: RunFilter{Limit: 1}, want: []string{"c"}},
		{name: "payment method", filter: RunFilter{PaymentMethod: "termin"}, want: []string{"c", "a"}},
		{name: "status", filter: RunFilter{Status: constants.RunStatusPartial}, want: []string{"c", "b"}},
		{name: "both", filter: RunFilter{PaymentMethod: "termin", Status: constants.RunStatusOK}, want: []string{"a"}},
		{name: "no match", filter: RunFilter{Status: constants.RunStatusFailed}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.ListRuns(ctx, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, sources(got)); diff != "" {
				t.Errorf("ListRuns() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestContentHash(t *testing.T) {
	if ContentHash([]byte("ab"), []byte("c")) != ContentHash([]byte("abc")) {
		t.Error("hash should cover the concatenation")
	}
	if ContentHash([]byte("a")) == ContentHash([]byte("b")) {
		t.Error("different inputs should hash differently")
	}
}
