package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// sqlStore backs the counter with a database/sql handle. Postgres and SQLite
// share the queries; only placeholders and pool sizing differ.
type sqlStore struct {
	db      *sql.DB
	table   string
	dollars bool
}

func openPostgresStore(ctx context.Context, dbURL string, table string) (*sqlStore, error) {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	store := &sqlStore{db: db, table: table, dollars: true}
	if err := store.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := store.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func openSQLiteStore(ctx context.Context, path string, table string) (*sqlStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	db, err := sql.Open("sqlite", filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection serializes writers; the increment itself stays a single statement.
	db.SetMaxOpenConns(1)

	store := &sqlStore{db: db, table: table}
	if err := store.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}
	if err := store.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *sqlStore) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY,
			count BIGINT NOT NULL DEFAULT 0
		)
	`, s.table))
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// rebind turns ? placeholders into $n for postgres.
func (s *sqlStore) rebind(query string) string {
	if !s.dollars {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *sqlStore) Total(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, s.rebind(fmt.Sprintf(`
		SELECT count
		FROM %s
		WHERE id = ?
	`, s.table)), counterRowID).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrCounterMissing
	}
	if err != nil {
		return 0, fmt.Errorf("read total: %w", err)
	}
	return count, nil
}

func (s *sqlStore) Increment(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, s.rebind(fmt.Sprintf(`
		UPDATE %s
		SET count = count + 1
		WHERE id = ?
		RETURNING count
	`, s.table)), counterRowID).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrCounterMissing
	}
	if err != nil {
		return 0, fmt.Errorf("increment total: %w", err)
	}
	return count, nil
}

func (s *sqlStore) EnsureCounter(ctx context.Context) (bool, error) {
	result, err := s.db.ExecContext(ctx, s.rebind(fmt.Sprintf(`
		INSERT INTO %s (id, count)
		VALUES (?, 0)
		ON CONFLICT (id) DO NOTHING
	`, s.table)), counterRowID)
	if err != nil {
		return false, fmt.Errorf("create counter row: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, nil
	}
	return rows > 0, nil
}

func (s *sqlStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
