package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// SQLiteDialect implements Dialect for SQLite via the pure-Go glebarez driver.
type SQLiteDialect struct{}

func (d *SQLiteDialect) Name() string       { return "sqlite" }
func (d *SQLiteDialect) DriverName() string { return "sqlite" }

func (d *SQLiteDialect) Placeholder(index int) string {
	return fmt.Sprintf("?%d", index)
}

func (d *SQLiteDialect) NewParamBuilder() ParamBuilder {
	return &sqliteParamBuilder{}
}

func (d *SQLiteDialect) NowExpr() string { return "datetime('now')" }

func (d *SQLiteDialect) SystemTablesSQL() string {
	return sqliteSystemTablesSQL
}

func (d *SQLiteDialect) ArrayParam(values []string) any {
	if values == nil {
		return "[]"
	}
	b, _ := json.Marshal(values)
	return string(b)
}

func (d *SQLiteDialect) ScanArray(src any) ([]string, error) {
	if src == nil {
		return []string{}, nil
	}
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return []string{}, nil
	}
	s = strings.TrimSpace(s)
	if s == "" || s == "[]" {
		return []string{}, nil
	}
	var result []string
	if err := json.Unmarshal([]byte(s), &result); err != nil {
		return []string{}, fmt.Errorf("scan array: %w", err)
	}
	return result, nil
}

func (d *SQLiteDialect) Gorm(db *sql.DB) gorm.Dialector {
	return &sqlite.Dialector{Conn: db}
}

func (d *SQLiteDialect) MapError(err error) error {
	if err == nil {
		return nil
	}
	errStr := err.Error()
	if strings.Contains(errStr, "UNIQUE constraint failed") || strings.Contains(errStr, "constraint failed: UNIQUE") {
		return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
	}
	return err
}

// --- SQLite DDL ---

const sqliteSystemTablesSQL = `
CREATE TABLE IF NOT EXISTS _users (
    id            TEXT PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    roles         TEXT DEFAULT '[]',
    active        INTEGER DEFAULT 1,
    created_at    TEXT DEFAULT (datetime('now')),
    updated_at    TEXT DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS _refresh_tokens (
    id         TEXT PRIMARY KEY,
    user_id    TEXT NOT NULL REFERENCES _users(id) ON DELETE CASCADE,
    token      TEXT NOT NULL UNIQUE,
    expires_at TEXT NOT NULL,
    created_at TEXT DEFAULT (datetime('now'))
);
CREATE INDEX IF NOT EXISTS idx_refresh_tokens_token ON _refresh_tokens(token);
CREATE INDEX IF NOT EXISTS idx_refresh_tokens_expires ON _refresh_tokens(expires_at);

CREATE TABLE IF NOT EXISTS _code_sequences (
    prefix     TEXT PRIMARY KEY,
    last_value INTEGER NOT NULL DEFAULT 0,
    updated_at TEXT DEFAULT (datetime('now'))
);
`
