package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	_ "github.com/glebarez/go-sqlite" // Register sqlite as database/sql driver
	_ "github.com/jackc/pgx/v5/stdlib" // Register pgx as database/sql driver
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"curia-backend/internal/config"
)

var ErrNotFound = errors.New("not found")
var ErrUniqueViolation = errors.New("unique constraint violation")

// Querier is implemented by both *sql.DB and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Store wraps a database connection, its dialect and a gorm session over the
// same pool.
type Store struct {
	DB      *sql.DB
	ORM     *gorm.DB
	Dialect Dialect
	driver  string
}

// New creates a Store from config.
func New(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = "postgres"
	}

	dialect := NewDialect(driver)
	db, err := sql.Open(dialect.DriverName(), cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if driver == "sqlite" {
		// SQLite: single writer, WAL mode for concurrent reads
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL: %w", err)
		}
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	} else if cfg.PoolSize > 0 {
		db.SetMaxOpenConns(cfg.PoolSize)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	orm, err := gorm.Open(dialect.Gorm(db), &gorm.Config{
		Logger: gormlogger.New(log.Default(), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open gorm: %w", err)
	}

	return &Store{
		DB:      db,
		ORM:     orm,
		Dialect: dialect,
		driver:  driver,
	}, nil
}

// Driver returns the configured driver name.
func (s *Store) Driver() string {
	return s.driver
}

// Close closes the database connection.
func (s *Store) Close() {
	s.DB.Close()
}

// QueryRows executes a query and returns results as []map[string]any.
func QueryRows(ctx context.Context, q Querier, sqlStr string, args ...any) ([]map[string]any, error) {
	rows, err := q.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("get columns: %w", err)
	}

	var results []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = normalizeValue(values[i])
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return results, nil
}

// QueryRow executes a query and returns a single row as map[string]any.
func QueryRow(ctx context.Context, q Querier, sqlStr string, args ...any) (map[string]any, error) {
	rows, err := QueryRows(ctx, q, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0], nil
}

// Exec executes a statement and returns the number of rows affected.
func Exec(ctx context.Context, q Querier, sqlStr string, args ...any) (int64, error) {
	result, err := q.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, fmt.Errorf("exec: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// timestampLayouts are the text encodings SQLite hands back for TEXT columns.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	time.RFC3339,
}

// normalizeValue converts database-specific types to JSON-serializable Go types.
func normalizeValue(v any) any {
	if v == nil {
		return nil
	}
	switch val := v.(type) {
	case []byte:
		// database/sql often returns []byte for TEXT columns
		return parseTimestamp(string(val))
	case string:
		return parseTimestamp(val)
	default:
		return val
	}
}

func parseTimestamp(s string) any {
	// Only strings shaped like a timestamp are worth trying
	if len(s) < 19 || s[4] != '-' || s[7] != '-' {
		return s
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return s
}

func init() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
