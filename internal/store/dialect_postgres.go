package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// PostgresDialect implements Dialect for PostgreSQL via pgx/stdlib.
type PostgresDialect struct{}

func (d *PostgresDialect) Name() string       { return "postgres" }
func (d *PostgresDialect) DriverName() string { return "pgx" }

func (d *PostgresDialect) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index)
}

func (d *PostgresDialect) NewParamBuilder() ParamBuilder {
	return &pgParamBuilder{}
}

func (d *PostgresDialect) NowExpr() string { return "NOW()" }

func (d *PostgresDialect) SystemTablesSQL() string {
	return pgSystemTablesSQL
}

func (d *PostgresDialect) ArrayParam(values []string) any {
	return values
}

func (d *PostgresDialect) ScanArray(src any) ([]string, error) {
	if src == nil {
		return []string{}, nil
	}
	switch v := src.(type) {
	case []string:
		return v, nil
	case []any:
		result := make([]string, len(v))
		for i, item := range v {
			result[i] = fmt.Sprintf("%v", item)
		}
		return result, nil
	case []byte:
		// pgx/stdlib may return TEXT[] as a string like {admin,editor}
		return parsePgArray(string(v))
	case string:
		return parsePgArray(v)
	default:
		return []string{}, nil
	}
}

// parsePgArray parses a PostgreSQL array literal like {admin,editor} into []string.
func parsePgArray(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "{}" {
		return []string{}, nil
	}
	if strings.HasPrefix(s, "[") {
		var result []string
		if err := json.Unmarshal([]byte(s), &result); err == nil {
			return result, nil
		}
	}
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		inner := s[1 : len(s)-1]
		if inner == "" {
			return []string{}, nil
		}
		parts := strings.Split(inner, ",")
		result := make([]string, len(parts))
		for i, p := range parts {
			result[i] = strings.Trim(strings.TrimSpace(p), `"`)
		}
		return result, nil
	}
	return []string{s}, nil
}

func (d *PostgresDialect) Gorm(db *sql.DB) gorm.Dialector {
	return postgres.New(postgres.Config{Conn: db})
}

func (d *PostgresDialect) MapError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
	}
	// Fall back to the message: gorm and pgx/stdlib sometimes flatten the error
	errStr := err.Error()
	if strings.Contains(errStr, "23505") || strings.Contains(errStr, "duplicate key") {
		return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
	}
	return err
}

// --- PostgreSQL DDL ---

const pgSystemTablesSQL = `
CREATE TABLE IF NOT EXISTS _users (
    id            UUID PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    roles         TEXT[] DEFAULT '{}',
    active        BOOLEAN DEFAULT true,
    created_at    TIMESTAMPTZ DEFAULT NOW(),
    updated_at    TIMESTAMPTZ DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS _refresh_tokens (
    id         UUID PRIMARY KEY,
    user_id    UUID NOT NULL REFERENCES _users(id) ON DELETE CASCADE,
    token      TEXT NOT NULL UNIQUE,
    expires_at TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_refresh_tokens_token ON _refresh_tokens(token);
CREATE INDEX IF NOT EXISTS idx_refresh_tokens_expires ON _refresh_tokens(expires_at);

CREATE TABLE IF NOT EXISTS _code_sequences (
    prefix     TEXT PRIMARY KEY,
    last_value BIGINT NOT NULL DEFAULT 0,
    updated_at TIMESTAMPTZ DEFAULT NOW()
);
`
