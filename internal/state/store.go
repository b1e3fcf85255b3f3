// Package state persists validation pass history in SQLite. The engine
// itself is stateless; this store sits beside it so the CLI and the
// HTTP service can show what ran, when, and how it went.
package state

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/cooksheet/cooksheet/internal/validate"
)

// PassStatus is the lifecycle state of a recorded pass.
type PassStatus string

// Pass statuses.
const (
	PassStatusRunning   PassStatus = "running"
	PassStatusCompleted PassStatus = "completed"
	PassStatusFailed    PassStatus = "failed"
)

// Trigger records what started a pass.
type Trigger string

// Pass triggers.
const (
	TriggerCLI   Trigger = "cli"
	TriggerWatch Trigger = "watch"
	TriggerHTTP  Trigger = "http"
)

// Pass is one recorded validation pass.
type Pass struct {
	ID            string     `json:"id"`
	Trigger       Trigger    `json:"trigger"`
	Status        PassStatus `json:"status"`
	StartedAt     time.Time  `json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	TotalErrors   int        `json:"total_errors"`
	TotalWarnings int        `json:"total_warnings"`
	IsValid       bool       `json:"is_valid"`
	Error         string     `json:"error,omitempty"`
}

// ErrPassNotFound is returned when a pass ID does not exist.
var ErrPassNotFound = errors.New("state: pass not found")

// Store is a SQLite-backed pass history.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore creates an unopened store. A nil logger disables logging.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{logger: logger}
}

// Open opens the database at path and runs pending migrations. Use
// ":memory:" for an in-memory store.
func (s *Store) Open(path string) error {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open pass history database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping pass history database: %w", err)
	}

	s.db = db
	if err := s.Migrate(); err != nil {
		db.Close()
		s.db = nil
		return err
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CreatePass records the start of a validation pass.
func (s *Store) CreatePass(trigger Trigger) (*Pass, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	pass := &Pass{
		ID:        uuid.New().String(),
		Trigger:   trigger,
		Status:    PassStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	s.logger.Debug("recording pass", "id", pass.ID, "trigger", trigger)

	_, err := s.db.Exec(
		`INSERT INTO passes (id, trigger_source, status, started_at) VALUES (?, ?, ?, ?)`,
		pass.ID, string(pass.Trigger), string(pass.Status), pass.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record pass: %w", err)
	}
	return pass, nil
}

// CompletePass records a finished pass and its report totals.
func (s *Store) CompletePass(id string, report *validate.Report) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	now := time.Now().UTC()
	res, err := s.db.Exec(
		`UPDATE passes SET status = ?, completed_at = ?, total_errors = ?, total_warnings = ?, is_valid = ? WHERE id = ?`,
		string(PassStatusCompleted), now, report.TotalErrors, report.TotalWarnings, report.IsValid, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete pass: %w", err)
	}
	return requireRow(res, id)
}

// FailPass records a pass that aborted before producing a report.
func (s *Store) FailPass(id string, cause string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	now := time.Now().UTC()
	res, err := s.db.Exec(
		`UPDATE passes SET status = ?, completed_at = ?, error = ? WHERE id = ?`,
		string(PassStatusFailed), now, cause, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark pass failed: %w", err)
	}
	return requireRow(res, id)
}

// GetPass retrieves one pass by ID.
func (s *Store) GetPass(id string) (*Pass, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRow(
		`SELECT id, trigger_source, status, started_at, completed_at, total_errors, total_warnings, is_valid, error
		 FROM passes WHERE id = ?`, id)
	pass, err := scanPass(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrPassNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pass: %w", err)
	}
	return pass, nil
}

// GetLatestPass retrieves the most recently started pass, or nil when
// the history is empty.
func (s *Store) GetLatestPass() (*Pass, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRow(
		`SELECT id, trigger_source, status, started_at, completed_at, total_errors, total_warnings, is_valid, error
		 FROM passes ORDER BY started_at DESC, id DESC LIMIT 1`)
	pass, err := scanPass(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest pass: %w", err)
	}
	return pass, nil
}

// ListPasses retrieves the most recent passes, newest first.
func (s *Store) ListPasses(limit int) ([]*Pass, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT id, trigger_source, status, started_at, completed_at, total_errors, total_warnings, is_valid, error
		 FROM passes ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list passes: %w", err)
	}
	defer rows.Close()

	var passes []*Pass
	for rows.Next() {
		pass, err := scanPass(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pass: %w", err)
		}
		passes = append(passes, pass)
	}
	return passes, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPass(row rowScanner) (*Pass, error) {
	var (
		pass        Pass
		trigger     string
		status      string
		completedAt sql.NullTime
		errMsg      sql.NullString
	)
	err := row.Scan(&pass.ID, &trigger, &status, &pass.StartedAt, &completedAt,
		&pass.TotalErrors, &pass.TotalWarnings, &pass.IsValid, &errMsg)
	if err != nil {
		return nil, err
	}
	pass.Trigger = Trigger(trigger)
	pass.Status = PassStatus(status)
	if completedAt.Valid {
		t := completedAt.Time
		pass.CompletedAt = &t
	}
	if errMsg.Valid {
		pass.Error = errMsg.String
	}
	return &pass, nil
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrPassNotFound, id)
	}
	return nil
}
