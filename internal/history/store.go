package history

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id       TEXT PRIMARY KEY,
	shift1       INTEGER NOT NULL,
	shift2       INTEGER NOT NULL,
	source_len   INTEGER NOT NULL,
	mode         TEXT,
	ambiguities  INTEGER NOT NULL DEFAULT 0,
	unreachable  INTEGER NOT NULL DEFAULT 0,
	verified     INTEGER,
	warning      TEXT,
	created_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS run_events (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id       TEXT NOT NULL,
	stage        TEXT NOT NULL,
	outcome      TEXT NOT NULL,
	detail_json  TEXT,
	created_at   TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
`
// #endregion schema

// #region store-struct
// Store keeps the run history in SQLite.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}
// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}
// #endregion db-accessor

// #region begin-run
// BeginRun inserts a new run for the given shifts and returns it.
func (s *Store) BeginRun(shift1, shift2, sourceLen int) (RunRecord, error) {
	rec := RunRecord{
		RunID:     uuid.New().String(),
		Shift1:    shift1,
		Shift2:    shift2,
		SourceLen: sourceLen,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.RecordRun(rec); err != nil {
		return RunRecord{}, err
	}
	return rec, nil
}
// #endregion begin-run

// #region record-run
// RecordRun inserts or replaces a run row.
func (s *Store) RecordRun(rec RunRecord) error {
	if rec.RunID == "" {
		rec.RunID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO runs (run_id, shift1, shift2, source_len, mode, ambiguities, unreachable, verified, warning, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(run_id) DO UPDATE SET
			mode = excluded.mode,
			ambiguities = excluded.ambiguities,
			unreachable = excluded.unreachable,
			verified = excluded.verified,
			warning = excluded.warning`,
		rec.RunID, rec.Shift1, rec.Shift2, rec.SourceLen,
		nullIfEmpty(rec.Mode), rec.Ambiguities, rec.Unreachable,
		nullBool(rec.Verified), nullIfEmpty(rec.Warning),
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}
// #endregion record-run

// #region finish-decrypt
// FinishDecrypt stores the decrypt stage outcome of a run.
func (s *Store) FinishDecrypt(runID, mode string, ties, unreachable int, warning string) error {
	res, err := s.db.Exec(
		`UPDATE runs SET mode = ?, ambiguities = ?, unreachable = ?, warning = ? WHERE run_id = ?`,
		mode, ties, unreachable, nullIfEmpty(warning), runID,
	)
	if err != nil {
		return fmt.Errorf("finish decrypt: %w", err)
	}
	return expectOne(res, runID)
}
// #endregion finish-decrypt

// #region finish-verify
// FinishVerify stores the verify stage outcome of a run.
func (s *Store) FinishVerify(runID string, verified bool) error {
	res, err := s.db.Exec(`UPDATE runs SET verified = ? WHERE run_id = ?`, verified, runID)
	if err != nil {
		return fmt.Errorf("finish verify: %w", err)
	}
	return expectOne(res, runID)
}
// #endregion finish-verify

// #region get-run
// GetRun retrieves a run by ID.
func (s *Store) GetRun(id string) (RunRecord, error) {
	row := s.db.QueryRow(
		`SELECT run_id, shift1, shift2, source_len, mode, ambiguities, unreachable, verified, warning, created_at
		 FROM runs WHERE run_id = ?`, id,
	)
	rec, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("get run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return rec, nil
}
// #endregion get-run

// #region list-runs
// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	rows, err := s.db.Query(
		`SELECT run_id, shift1, shift2, source_len, mode, ambiguities, unreachable, verified, warning, created_at
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
// #endregion list-runs

// #region helpers
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (RunRecord, error) {
	var rec RunRecord
	var mode, warning sql.NullString
	var verified sql.NullBool
	var createdStr string
	if err := sc.Scan(&rec.RunID, &rec.Shift1, &rec.Shift2, &rec.SourceLen, &mode,
		&rec.Ambiguities, &rec.Unreachable, &verified, &warning, &createdStr); err != nil {
		return RunRecord{}, err
	}
	rec.Mode = mode.String
	rec.Warning = warning.String
	if verified.Valid {
		v := verified.Bool
		rec.Verified = &v
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return rec, nil
}

func expectOne(res sql.Result, runID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run %s: %w", runID, ErrRunNotFound)
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullBool(b *bool) interface{} {
	if b == nil {
		return nil
	}
	return *b
}
// #endregion helpers
