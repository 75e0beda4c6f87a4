package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS analyses (
	id            TEXT PRIMARY KEY,
	source        TEXT NOT NULL,
	status        TEXT NOT NULL DEFAULT 'running',
	parsed_text   TEXT,
	analysis_text TEXT,
	record        TEXT,
	error         TEXT,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_analyses_status ON analyses(status);
CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateAnalysis(ctx context.Context, source string) (*Analysis, error) {
	a := &Analysis{
		ID:        uuid.New().String(),
		Source:    source,
		Status:    StatusRunning,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, source, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.Source, a.Status, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: create analysis")
	}
	return a, nil
}

func (s *SQLiteStore) CompleteAnalysis(ctx context.Context, id, parsedText, analysisText string, record json.RawMessage) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE analyses SET status = ?, parsed_text = ?, analysis_text = ?, record = ?, updated_at = ? WHERE id = ?`,
		StatusCompleted, parsedText, analysisText, string(record), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: complete analysis")
	}
	return requireRow(res, id)
}

func (s *SQLiteStore) FailAnalysis(ctx context.Context, id, stage string, cause error) error {
	detail := stage
	if cause != nil {
		detail = fmt.Sprintf("%s: %s", stage, cause.Error())
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE analyses SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		StatusFailed, detail, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: fail analysis")
	}
	return requireRow(res, id)
}

func (s *SQLiteStore) GetAnalysis(ctx context.Context, id string) (*Analysis, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, status, COALESCE(parsed_text, ''), COALESCE(analysis_text, ''),
		        COALESCE(record, ''), COALESCE(error, ''), created_at, updated_at
		 FROM analyses WHERE id = ?`, id,
	)
	return scanAnalysis(row)
}

func (s *SQLiteStore) ListAnalyses(ctx context.Context, limit int) ([]Analysis, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, status, COALESCE(parsed_text, ''), COALESCE(analysis_text, ''),
		        COALESCE(record, ''), COALESCE(error, ''), created_at, updated_at
		 FROM analyses ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list analyses")
	}
	defer rows.Close()

	var out []Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate analyses")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (*Analysis, error) {
	var a Analysis
	var record string
	err := row.Scan(&a.ID, &a.Source, &a.Status, &a.ParsedText, &a.AnalysisText,
		&record, &a.Error, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Wrap(err, "sqlite: analysis not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan analysis")
	}
	if record != "" {
		a.Record = json.RawMessage(record)
	}
	return &a, nil
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("sqlite: analysis %s not found", id)
	}
	return nil
}
