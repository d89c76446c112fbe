// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index maintains the SQLite full-text search index over a
// project's task board. Build (and test) with -tags sqlite_fts5;
// go-sqlite3 omits the FTS5 module without it.
package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/taskdeck/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "tasks.db"
)

// Store manages the search index database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// NewStore opens or creates the index database at
// <projectDir>/.taskdeck/index/tasks.db, creating the schema if needed.
func NewStore(cfg types.IndexConfig, projectDir string) (*Store, error) {
	dbDir := filepath.Join(projectDir, ".taskdeck", indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			description TEXT,
			status TEXT NOT NULL,
			priority TEXT,
			labels TEXT,
			updated_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			board_path TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='tasks_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE tasks_fts USING fts5(title, description, labels, content=tasks, content_rowid=rowid)`,
			`CREATE TRIGGER tasks_ai AFTER INSERT ON tasks BEGIN
				INSERT INTO tasks_fts(rowid, title, description, labels)
				VALUES (new.rowid, new.title, new.description, new.labels);
			END`,
			`CREATE TRIGGER tasks_ad AFTER DELETE ON tasks BEGIN
				INSERT INTO tasks_fts(tasks_fts, rowid, title, description, labels)
				VALUES('delete', old.rowid, old.title, old.description, old.labels);
			END`,
			`CREATE TRIGGER tasks_au AFTER UPDATE ON tasks BEGIN
				INSERT INTO tasks_fts(tasks_fts, rowid, title, description, labels)
				VALUES('delete', old.rowid, old.title, old.description, old.labels);
				INSERT INTO tasks_fts(rowid, title, description, labels)
				VALUES (new.rowid, new.title, new.description, new.labels);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Sync ingests the board file into the index when its mtime changed
// since the last run. It reports whether anything was re-indexed.
func (s *Store) Sync(ctx context.Context, boardPath string, w io.Writer) (bool, error) {
	info, err := os.Stat(boardPath)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintf(w, "no board file at %s, index left empty\n", boardPath)
			return false, nil
		}
		return false, fmt.Errorf("checking board %s: %w", boardPath, err)
	}
	modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

	var storedModTime string
	err = s.db.QueryRowContext(ctx,
		`SELECT file_mod_time FROM indexing_status WHERE board_path = ?`, boardPath,
	).Scan(&storedModTime)
	if err == nil && storedModTime == modTime {
		return false, nil
	}

	data, err := os.ReadFile(boardPath)
	if err != nil {
		return false, fmt.Errorf("reading board %s: %w", boardPath, err)
	}
	var tasks []types.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return false, fmt.Errorf("parsing board %s: %w", boardPath, err)
	}

	if err := s.ingest(ctx, boardPath, tasks, modTime); err != nil {
		return false, err
	}
	fmt.Fprintf(w, "indexed %d task(s)\n", len(tasks))
	return true, nil
}

// ingest replaces the board's rows in a single transaction.
func (s *Store) ingest(ctx context.Context, boardPath string, tasks []types.Task, modTime string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		return fmt.Errorf("clearing old rows: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO tasks (id, title, description, status, priority, labels, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range tasks {
		labelsJSON, _ := json.Marshal(t.Labels)
		_, err := stmt.ExecContext(ctx,
			t.ID, t.Title, t.Description, string(t.Status), string(t.Priority),
			string(labelsJSON), t.UpdatedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("inserting task %s: %w", t.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (board_path, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(board_path) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		boardPath, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}

// QueryOptions holds search parameters.
type QueryOptions struct {
	// Query is the FTS5 full-text search string.
	Query string

	// Status filters by board column.
	Status types.TaskStatus

	// Label filters by one label.
	Label string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Status == "" && q.Label == ""
}

// Result is one search hit.
type Result struct {
	ID          string           `json:"id" yaml:"id"`
	Title       string           `json:"title" yaml:"title"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`
	Status      types.TaskStatus `json:"status" yaml:"status"`
	Priority    string           `json:"priority,omitempty" yaml:"priority,omitempty"`
	Labels      []string         `json:"labels,omitempty" yaml:"labels,omitempty"`
}

// Search queries the index with optional full-text search and filters.
// Full-text hits arrive relevance-ranked; filter-only queries sort by
// status then title.
func (s *Store) Search(ctx context.Context, opts QueryOptions) ([]Result, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT t.id, t.title, t.description, t.status, t.priority, t.labels
			FROM tasks_fts
			JOIN tasks t ON t.rowid = tasks_fts.rowid
			WHERE tasks_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT t.id, t.title, t.description, t.status, t.priority, t.labels
			FROM tasks t
			WHERE 1=1`)
	}

	if opts.Status != "" {
		qb.WriteString(` AND t.status = ?`)
		args = append(args, string(opts.Status))
	}
	if opts.Label != "" {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM json_each(t.labels) WHERE value = ?)`)
		args = append(args, opts.Label)
	}

	if useFTS {
		qb.WriteString(` ORDER BY tasks_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY t.status, t.title`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var (
			r          Result
			desc       sql.NullString
			priority   sql.NullString
			labelsJSON sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Title, &desc, &r.Status, &priority, &labelsJSON); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if desc.Valid {
			r.Description = desc.String
		}
		if priority.Valid {
			r.Priority = priority.String
		}
		if labelsJSON.Valid {
			json.Unmarshal([]byte(labelsJSON.String), &r.Labels)
		}
		results = append(results, r)
	}

	return results, rows.Err()
}
