package store

import (
	"context"
	"fmt"
)

// NextSequence atomically advances the counter for prefix and returns the new
// value. floor is the highest number already observed in the data; the
// counter never hands out a value at or below it, so rows written outside the
// counter (imports, seeds) cannot collide with generated codes.
func (s *Store) NextSequence(ctx context.Context, prefix string, floor int64) (int64, error) {
	if err := s.ensureSequence(ctx, prefix); err != nil {
		return 0, err
	}

	pb := s.Dialect.NewParamBuilder()
	floorPh := pb.Add(floor)
	sql := fmt.Sprintf(`UPDATE _code_sequences
		SET last_value = (CASE WHEN last_value < %s THEN %s ELSE last_value END) + 1,
		    updated_at = %s
		WHERE prefix = %s
		RETURNING last_value`,
		floorPh, floorPh, s.Dialect.NowExpr(), pb.Add(prefix))

	var next int64
	if err := s.DB.QueryRowContext(ctx, sql, pb.Params()...).Scan(&next); err != nil {
		return 0, fmt.Errorf("advance sequence %s: %w", prefix, err)
	}
	return next, nil
}

// SyncSequence raises the counter for prefix to at least floor without
// handing out a value. Used after bulk loads.
func (s *Store) SyncSequence(ctx context.Context, prefix string, floor int64) error {
	if err := s.ensureSequence(ctx, prefix); err != nil {
		return err
	}

	pb := s.Dialect.NewParamBuilder()
	floorPh := pb.Add(floor)
	sql := fmt.Sprintf(`UPDATE _code_sequences
		SET last_value = CASE WHEN last_value < %s THEN %s ELSE last_value END
		WHERE prefix = %s`, floorPh, floorPh, pb.Add(prefix))
	if _, err := Exec(ctx, s.DB, sql, pb.Params()...); err != nil {
		return fmt.Errorf("sync sequence %s: %w", prefix, err)
	}
	return nil
}

// CurrentSequence returns the last value handed out for prefix, or 0.
func (s *Store) CurrentSequence(ctx context.Context, prefix string) (int64, error) {
	row, err := QueryRow(ctx, s.DB,
		fmt.Sprintf("SELECT last_value FROM _code_sequences WHERE prefix = %s", s.Dialect.Placeholder(1)), prefix)
	if err == ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	v, _ := row["last_value"].(int64)
	return v, nil
}

func (s *Store) ensureSequence(ctx context.Context, prefix string) error {
	sql := fmt.Sprintf(
		"INSERT INTO _code_sequences (prefix, last_value) VALUES (%s, 0) ON CONFLICT (prefix) DO NOTHING",
		s.Dialect.Placeholder(1))
	if _, err := s.DB.ExecContext(ctx, sql, prefix); err != nil {
		return fmt.Errorf("init sequence %s: %w", prefix, err)
	}
	return nil
}
