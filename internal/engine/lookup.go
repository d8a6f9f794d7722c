package engine

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"curia-backend/internal/schema"
)

var ErrReferenceNotFound = errors.New("reference not found")

// Resolver answers lookups against the shared reference table and the
// related master tables.
type Resolver struct {
	db *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// Resolve returns the label stored for (category, code).
func (r *Resolver) Resolve(ctx context.Context, category, code string) (string, error) {
	var rc schema.ReferenceCode
	err := r.db.WithContext(ctx).
		Where("quick_code_type = ? AND quick_code = ?", category, code).
		Take(&rc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrReferenceNotFound
	}
	if err != nil {
		return "", fmt.Errorf("resolve %s/%s: %w", category, code, err)
	}
	return rc.Label, nil
}

// Exists probes a master table for a row whose column equals code.
func (r *Resolver) Exists(ctx context.Context, table, column, code string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Table(table).Where(column+" = ?", code).Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("probe %s.%s: %w", table, column, err)
	}
	return n > 0, nil
}

// Labels returns the current label of every code in category that exists.
func (r *Resolver) Labels(ctx context.Context, category string, codes []string) (map[string]string, error) {
	labels := make(map[string]string, len(codes))
	if len(codes) == 0 {
		return labels, nil
	}
	var rows []schema.ReferenceCode
	err := r.db.WithContext(ctx).
		Where("quick_code_type = ? AND quick_code IN ?", category, codes).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("labels %s: %w", category, err)
	}
	for _, rc := range rows {
		labels[rc.Code] = rc.Label
	}
	return labels, nil
}

// List returns every code of a category ordered by code.
func (r *Resolver) List(ctx context.Context, category string) ([]schema.ReferenceCode, error) {
	rows := []schema.ReferenceCode{}
	err := r.db.WithContext(ctx).
		Where("quick_code_type = ?", category).
		Order("quick_code").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", category, err)
	}
	return rows, nil
}
