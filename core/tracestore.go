package plic

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// TraceStore persists traces in a SQLite database so they survive daemon
// restarts.
type TraceStore struct {
	db   *sql.DB
	path string
}

const traceSchema = `CREATE TABLE IF NOT EXISTS traces (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	line      TEXT NOT NULL,
	result    TEXT NOT NULL DEFAULT '',
	kind      TEXT NOT NULL DEFAULT '',
	error     TEXT NOT NULL DEFAULT '',
	detail    TEXT NOT NULL DEFAULT '',
	timestamp TEXT NOT NULL
)`

func OpenTraceStore(path string) (*TraceStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open trace db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open trace db: %w", err)
	}
	if _, err := db.Exec(traceSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create traces table: %w", err)
	}
	return &TraceStore{db: db, path: path}, nil
}

func (s *TraceStore) Path() string {
	return s.path
}

func (s *TraceStore) Append(t Trace) error {
	_, err := s.db.Exec(
		`INSERT INTO traces (line, result, kind, error, detail, timestamp) VALUES (?, ?, ?, ?, ?, ?)`,
		t.Line, t.Result, t.Kind, t.Error, t.Detail, t.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append trace: %w", err)
	}
	return nil
}

// Recent returns up to n of the newest traces, oldest first.
func (s *TraceStore) Recent(n int) ([]Trace, error) {
	rows, err := s.db.Query(
		`SELECT line, result, kind, error, detail, timestamp FROM traces ORDER BY id DESC LIMIT ?`, n,
	)
	if err != nil {
		return nil, fmt.Errorf("query traces: %w", err)
	}
	defer rows.Close()

	var traces []Trace
	for rows.Next() {
		var t Trace
		if err := rows.Scan(&t.Line, &t.Result, &t.Kind, &t.Error, &t.Detail, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("scan trace: %w", err)
		}
		traces = append(traces, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query traces: %w", err)
	}
	for i, j := 0, len(traces)-1; i < j; i, j = i+1, j-1 {
		traces[i], traces[j] = traces[j], traces[i]
	}
	return traces, nil
}

func (s *TraceStore) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM traces`); err != nil {
		return fmt.Errorf("clear traces: %w", err)
	}
	return nil
}

func (s *TraceStore) Close() error {
	return s.db.Close()
}
