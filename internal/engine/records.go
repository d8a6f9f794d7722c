package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"curia-backend/internal/metadata"
	"curia-backend/internal/store"
)

var ErrStaleRecord = errors.New("stale record")

// RecordStore runs the entity SQL built in query.go against the store.
type RecordStore struct {
	store *store.Store
}

func NewRecordStore(s *store.Store) *RecordStore {
	return &RecordStore{store: s}
}

// List returns the rows selected by plan.
func (r *RecordStore) List(ctx context.Context, plan *QueryPlan) ([]map[string]any, error) {
	q := BuildSelectSQL(r.store.Dialect, plan)
	rows, err := store.QueryRows(ctx, r.store.DB, q.SQL, q.Params...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", plan.Entity.Name, err)
	}
	return rows, nil
}

// Fetch returns the first row matching match, or store.ErrNotFound.
func (r *RecordStore) Fetch(ctx context.Context, entity *metadata.Entity, match map[string]any) (map[string]any, error) {
	q := BuildFetchSQL(r.store.Dialect, entity, match)
	return store.QueryRow(ctx, r.store.DB, q.SQL, q.Params...)
}

// Insert writes a new row. Duplicate keys surface as store.ErrUniqueViolation.
func (r *RecordStore) Insert(ctx context.Context, entity *metadata.Entity, row map[string]any) error {
	q := BuildInsertSQL(r.store.Dialect, entity, row)
	if _, err := store.Exec(ctx, r.store.DB, q.SQL, q.Params...); err != nil {
		return fmt.Errorf("insert %s: %w", entity.Table, r.store.Dialect.MapError(err))
	}
	return nil
}

// Update replaces the row at key if its concurrency token still equals token.
// A row that moved on returns ErrStaleRecord.
func (r *RecordStore) Update(ctx context.Context, entity *metadata.Entity, key, row map[string]any, token any) error {
	q := BuildUpdateSQL(r.store.Dialect, entity, key, row, token)
	n, err := store.Exec(ctx, r.store.DB, q.SQL, q.Params...)
	if err != nil {
		return fmt.Errorf("update %s: %w", entity.Table, r.store.Dialect.MapError(err))
	}
	if n == 0 {
		return ErrStaleRecord
	}
	return nil
}

// UpdateWhere applies fields to every row matching match and returns the
// number of rows changed.
func (r *RecordStore) UpdateWhere(ctx context.Context, entity *metadata.Entity, match, fields map[string]any) (int64, error) {
	q := BuildBulkUpdateSQL(r.store.Dialect, entity, match, fields)
	n, err := store.Exec(ctx, r.store.DB, q.SQL, q.Params...)
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", entity.Table, r.store.Dialect.MapError(err))
	}
	return n, nil
}

// Delete removes every row matching match and returns how many went.
func (r *RecordStore) Delete(ctx context.Context, entity *metadata.Entity, match map[string]any) (int64, error) {
	q := BuildDeleteSQL(r.store.Dialect, entity, match)
	n, err := store.Exec(ctx, r.store.DB, q.SQL, q.Params...)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", entity.Table, err)
	}
	return n, nil
}

// keyOf extracts the named columns from row.
func keyOf(row map[string]any, names []string) map[string]any {
	key := make(map[string]any, len(names))
	for _, n := range names {
		key[n] = row[n]
	}
	return key
}

// describeKey renders key values for messages, in the given column order.
func describeKey(key map[string]any, names []string) string {
	parts := make([]string, 0, len(names))
	for _, n := range names {
		parts = append(parts, fmt.Sprint(key[n]))
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
