package progress_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/campus-ai/tutor-core/internal/progress"
)

// startPostgres spins up a disposable PostgreSQL container and returns
// a migrated pool.
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("tutor"),
		tcpostgres.WithUsername("tutor"),
		tcpostgres.WithPassword("tutor"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("starting postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(ctr); err != nil {
			t.Logf("terminating container: %v", err)
		}
	})

	url, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("connecting: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := progress.Migrate(ctx, pool); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return pool
}

func TestPostgresStore_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	pool := startPostgres(t)
	store, err := progress.NewPostgresStore(pool)
	if err != nil {
		t.Fatalf("NewPostgresStore() error = %v", err)
	}

	// Unknown student reads as empty.
	p, err := store.Get("alice")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(p.Completed) != 0 {
		t.Errorf("Completed = %v, want empty", p.Completed)
	}

	updated, err := store.Update("alice", func(p *progress.StudentProgress) {
		p.Completed = append(p.Completed, "ch1", "ch2")
		p.Notes = append(p.Notes, "first week done")
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if len(updated.Completed) != 2 {
		t.Errorf("Completed len = %d, want 2", len(updated.Completed))
	}

	got, err := store.Get("alice")
	if err != nil {
		t.Fatalf("Get() after update error = %v", err)
	}
	if len(got.Completed) != 2 || got.Completed[0] != "ch1" {
		t.Errorf("Completed = %v, want [ch1 ch2]", got.Completed)
	}
	if len(got.Notes) != 1 || got.Notes[0] != "first week done" {
		t.Errorf("Notes = %v, want the recorded note", got.Notes)
	}

	ids, err := store.Students()
	if err != nil {
		t.Fatalf("Students() error = %v", err)
	}
	if len(ids) != 1 || ids[0] != "alice" {
		t.Errorf("Students() = %v, want [alice]", ids)
	}
}

func TestPostgresEventLogger_Insert(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	pool := startPostgres(t)
	logger := progress.NewPostgresEventLogger(pool)

	err := logger.LogEvent(progress.Event{
		StudentID: "alice",
		EventType: progress.EventChaptersRecorded,
		Data:      map[string]any{"added": []string{"ch1"}},
	})
	if err != nil {
		t.Fatalf("LogEvent() error = %v", err)
	}

	var count int
	if err := pool.QueryRow(context.Background(),
		`SELECT count(*) FROM progress_events WHERE student_id = 'alice'`,
	).Scan(&count); err != nil {
		t.Fatalf("counting events: %v", err)
	}
	if count != 1 {
		t.Errorf("events count = %d, want 1", count)
	}
}
