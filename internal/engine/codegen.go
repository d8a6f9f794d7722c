package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"curia-backend/internal/metadata"
	"curia-backend/internal/store"
)

// MalformedCodeError reports a stored code whose suffix is not a number.
type MalformedCodeError struct {
	Prefix string
	Code   string
}

func (e *MalformedCodeError) Error() string {
	return fmt.Sprintf("code %q does not match %s<number>", e.Code, e.Prefix)
}

// FormatCode renders prefix followed by n zero-padded to three digits.
func FormatCode(prefix string, n int64) string {
	return fmt.Sprintf("%s%03d", prefix, n)
}

// ParseCode returns the numeric suffix of a code carrying prefix.
func ParseCode(prefix, code string) (int64, error) {
	suffix, ok := strings.CutPrefix(code, prefix)
	if !ok || suffix == "" {
		return 0, &MalformedCodeError{Prefix: prefix, Code: code}
	}
	n, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil || n < 0 {
		return 0, &MalformedCodeError{Prefix: prefix, Code: code}
	}
	return n, nil
}

// NextCode returns the code following last, or prefix+001 when last is empty.
func NextCode(prefix, last string) (string, error) {
	if last == "" {
		return FormatCode(prefix, 1), nil
	}
	n, err := ParseCode(prefix, last)
	if err != nil {
		return "", err
	}
	return FormatCode(prefix, n+1), nil
}

// CodeGenerator hands out sequential codes backed by the _code_sequences
// counter. The highest code already stored only raises the counter, so rows
// loaded outside the API never collide with generated ones.
type CodeGenerator struct {
	store   *store.Store
	metrics *Metrics
}

func NewCodeGenerator(s *store.Store, m *Metrics) *CodeGenerator {
	return &CodeGenerator{store: s, metrics: m}
}

// Next returns the next code for the entity's generated key.
func (g *CodeGenerator) Next(ctx context.Context, entity *metadata.Entity) (string, error) {
	if entity.Code == nil {
		return "", fmt.Errorf("%s has no generated code", entity.Name)
	}
	prefix := entity.Code.Prefix

	floor, err := g.highest(ctx, entity)
	if err != nil {
		return "", err
	}

	n, err := g.store.NextSequence(ctx, prefix, floor)
	if err != nil {
		return "", err
	}
	g.metrics.codeGenerated(prefix)
	return FormatCode(prefix, n), nil
}

// Sync raises the counter to the highest stored code. Called after bulk loads.
func (g *CodeGenerator) Sync(ctx context.Context, entity *metadata.Entity) error {
	floor, err := g.highest(ctx, entity)
	if err != nil {
		return err
	}
	return g.store.SyncSequence(ctx, entity.Code.Prefix, floor)
}

// highest reads the largest stored code number. Longer codes sort first so
// SCH1000 outranks SCH999.
func (g *CodeGenerator) highest(ctx context.Context, entity *metadata.Entity) (int64, error) {
	field := entity.Code.Field
	prefix := entity.Code.Prefix
	pb := g.store.Dialect.NewParamBuilder()
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE %s LIKE %s ORDER BY LENGTH(%s) DESC, %s DESC LIMIT 1",
		field, entity.Table, field, pb.Add(prefix+"%"), field, field)

	row, err := store.QueryRow(ctx, g.store.DB, sql, pb.Params()...)
	if errors.Is(err, store.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read highest %s: %w", field, err)
	}
	last, _ := row[field].(string)
	return ParseCode(prefix, last)
}
