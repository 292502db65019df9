// Package sqldb persists audit records through database/sql. The default
// driver is embedded sqlite3; pgx is supported when the dashboard store
// must live on a shared server.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/kirillkom/content-alchemist/internal/core/domain"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

type Store struct {
	db     *sql.DB
	driver string
}

func Open(driver, dsn string) (*sql.DB, error) {
	switch driver {
	case DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		db, err := sql.Open(DriverSQLite, dsn+"?_journal_mode=WAL&_busy_timeout=5000")
		if err != nil {
			return nil, fmt.Errorf("sql open: %w", err)
		}
		// The sqlite driver serializes writes; a single connection avoids
		// SQLITE_BUSY churn between workers.
		db.SetMaxOpenConns(1)
		return db, nil
	case DriverPostgres:
		db, err := sql.Open(DriverPostgres, dsn)
		if err != nil {
			return nil, fmt.Errorf("sql open: %w", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
		if err := db.Ping(); err != nil {
			return nil, fmt.Errorf("db ping: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported audit driver %q", driver)
	}
}

func NewStore(db *sql.DB, driver string) *Store {
	return &Store{db: db, driver: driver}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	idColumn := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.driver == DriverPostgres {
		idColumn = "id BIGSERIAL PRIMARY KEY"
	}

	query := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS files (
	%s,
	original_filename TEXT NOT NULL,
	new_filename TEXT NOT NULL,
	category TEXT NOT NULL,
	summary TEXT NOT NULL,
	final_path TEXT NOT NULL,
	processed_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_files_processed_at ON files (processed_at);
CREATE INDEX IF NOT EXISTS idx_files_category ON files (category);
`, idColumn)

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ensure audit schema: %w", err)
	}
	return nil
}

// Append inserts one record per terminal job and fills in the assigned id.
func (s *Store) Append(ctx context.Context, record *domain.FileRecord) error {
	if record.ProcessedAt.IsZero() {
		record.ProcessedAt = time.Now().UTC()
	}

	query := s.rebind(`
INSERT INTO files (original_filename, new_filename, category, summary, final_path, processed_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id`)

	err := s.db.QueryRowContext(ctx, query,
		record.OriginalFilename,
		record.NewFilename,
		record.Category,
		record.Summary,
		record.FinalPath,
		record.ProcessedAt,
	).Scan(&record.ID)
	if err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}
	return nil
}

// Recent returns the newest records first.
func (s *Store) Recent(ctx context.Context, limit int) ([]domain.FileRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := s.rebind(`
SELECT id, original_filename, new_filename, category, summary, final_path, processed_at
FROM files
ORDER BY processed_at DESC, id DESC
LIMIT ?`)

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// SearchSummary keyword-searches the summary column: the query is split
// into words and a row must contain all of them.
func (s *Store) SearchSummary(ctx context.Context, query string) ([]domain.FileRecord, error) {
	words := strings.Fields(query)
	if len(words) == 0 {
		return nil, nil
	}

	conditions := make([]string, len(words))
	args := make([]any, len(words))
	for i, word := range words {
		conditions[i] = "summary LIKE ?"
		args[i] = "%" + word + "%"
	}

	stmt := s.rebind(fmt.Sprintf(`
SELECT id, original_filename, new_filename, category, summary, final_path, processed_at
FROM files
WHERE %s
ORDER BY processed_at DESC, id DESC`, strings.Join(conditions, " AND ")))

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("search summaries: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Categories lists distinct category names for registry hydration.
func (s *Store) Categories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT category FROM files ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func scanRecords(rows *sql.Rows) ([]domain.FileRecord, error) {
	var out []domain.FileRecord
	for rows.Next() {
		var rec domain.FileRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.OriginalFilename,
			&rec.NewFilename,
			&rec.Category,
			&rec.Summary,
			&rec.FinalPath,
			&rec.ProcessedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// rebind rewrites ? placeholders to $N for the postgres driver.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
