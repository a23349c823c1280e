package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// PostgresStore is a PostgreSQL-backed ProgressStore for deployments
// that want progress to survive restarts.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed progress store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

// Migrate creates the tables the progress store and event logger need.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS student_progress (
			student_id text PRIMARY KEY,
			completed  jsonb NOT NULL DEFAULT '[]',
			notes      jsonb NOT NULL DEFAULT '[]',
			updated_at timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS progress_events (
			id         bigserial PRIMARY KEY,
			student_id text NOT NULL,
			event_type text NOT NULL,
			data       jsonb NOT NULL DEFAULT '{}',
			created_at timestamptz NOT NULL DEFAULT now()
		)`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrating progress schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) Get(studentID string) (StudentProgress, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	var completed, notes []byte
	err := s.pool.QueryRow(ctx,
		`SELECT completed, notes FROM student_progress WHERE student_id = $1`,
		studentID,
	).Scan(&completed, &notes)
	if errors.Is(err, pgx.ErrNoRows) {
		return emptyProgress(studentID), nil
	}
	if err != nil {
		return StudentProgress{}, fmt.Errorf("get progress: %w", err)
	}

	return decodeProgress(studentID, completed, notes)
}

// Update applies fn inside a transaction holding a row lock on the
// student, so concurrent updates for the same student serialize.
func (s *PostgresStore) Update(studentID string, fn func(*StudentProgress)) (StudentProgress, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return StudentProgress{}, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO student_progress (student_id) VALUES ($1)
		 ON CONFLICT (student_id) DO NOTHING`,
		studentID,
	); err != nil {
		return StudentProgress{}, fmt.Errorf("ensure progress row: %w", err)
	}

	var completed, notes []byte
	if err := tx.QueryRow(ctx,
		`SELECT completed, notes FROM student_progress WHERE student_id = $1 FOR UPDATE`,
		studentID,
	).Scan(&completed, &notes); err != nil {
		return StudentProgress{}, fmt.Errorf("lock progress row: %w", err)
	}

	p, err := decodeProgress(studentID, completed, notes)
	if err != nil {
		return StudentProgress{}, err
	}
	fn(&p)

	completedJSON, err := json.Marshal(p.Completed)
	if err != nil {
		return StudentProgress{}, fmt.Errorf("encode completed: %w", err)
	}
	notesJSON, err := json.Marshal(notesOrEmpty(p.Notes))
	if err != nil {
		return StudentProgress{}, fmt.Errorf("encode notes: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE student_progress
		 SET completed = $2::jsonb, notes = $3::jsonb, updated_at = now()
		 WHERE student_id = $1`,
		studentID, string(completedJSON), string(notesJSON),
	); err != nil {
		return StudentProgress{}, fmt.Errorf("save progress: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return StudentProgress{}, fmt.Errorf("commit update: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) Students() ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT student_id FROM student_progress ORDER BY student_id`)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func decodeProgress(studentID string, completed, notes []byte) (StudentProgress, error) {
	p := emptyProgress(studentID)
	if len(completed) > 0 {
		if err := json.Unmarshal(completed, &p.Completed); err != nil {
			return StudentProgress{}, fmt.Errorf("decode completed: %w", err)
		}
	}
	if len(notes) > 0 {
		if err := json.Unmarshal(notes, &p.Notes); err != nil {
			return StudentProgress{}, fmt.Errorf("decode notes: %w", err)
		}
	}
	return p, nil
}

func notesOrEmpty(notes []string) []string {
	if notes == nil {
		return []string{}
	}
	return notes
}
