package engine

import (
	"context"
	"errors"
	"testing"

	"curia-backend/internal/config"
	"curia-backend/internal/metadata"
	"curia-backend/internal/schema"
	"curia-backend/internal/store"
)

func TestNextCode(t *testing.T) {
	tests := []struct {
		last string
		want string
	}{
		{"", "SCH001"},
		{"SCH001", "SCH002"},
		{"SCH009", "SCH010"},
		{"SCH099", "SCH100"},
		{"SCH999", "SCH1000"},
		{"SCH1000", "SCH1001"},
	}
	for _, tt := range tests {
		got, err := NextCode("SCH", tt.last)
		if err != nil {
			t.Fatalf("NextCode(%q): %v", tt.last, err)
		}
		if got != tt.want {
			t.Fatalf("NextCode(%q) = %s, want %s", tt.last, got, tt.want)
		}
	}
}

func TestParseCode_Malformed(t *testing.T) {
	for _, code := range []string{"CUR001", "SCH", "SCHabc", "SCH-1", ""} {
		_, err := ParseCode("SCH", code)
		var mce *MalformedCodeError
		if !errors.As(err, &mce) {
			t.Fatalf("ParseCode(%q): expected MalformedCodeError, got %v", code, err)
		}
	}
}

func newCodeStore(t *testing.T) *store.Store {
	t.Helper()
	ctx := context.Background()
	s, err := store.New(ctx, config.DatabaseConfig{Driver: "sqlite", Name: ":memory:"})
	must(t, err)
	t.Cleanup(s.Close)
	must(t, s.Bootstrap(ctx))
	must(t, schema.Migrate(s.ORM))
	return s
}

func TestCodeGenerator_FollowsHighestStoredCode(t *testing.T) {
	ctx := context.Background()
	s := newCodeStore(t)
	entity := metadata.Catalog(metadata.CodePrefixes{})[2]

	for _, code := range []string{"SCH001", "SCH002", "SCH003", "SCH004", "SCH005", "SCH006", "SCH007", "SCH008", "SCH009"} {
		_, err := s.DB.Exec(`INSERT INTO scholastics_dtl (scholastic_code, province_code, first_name, last_name, birth_date, personal_mailid1)
			VALUES (?, 'INM', 'A', 'B', '2000-01-01 00:00:00', 'a@x.org')`, code)
		must(t, err)
	}

	gen := NewCodeGenerator(s, nil)
	got, err := gen.Next(ctx, entity)
	must(t, err)
	if got != "SCH010" {
		t.Fatalf("expected SCH010, got %s", got)
	}
	got, err = gen.Next(ctx, entity)
	must(t, err)
	if got != "SCH011" {
		t.Fatalf("expected SCH011, got %s", got)
	}
}

func TestCodeGenerator_EmptyTableStartsAtOne(t *testing.T) {
	s := newCodeStore(t)
	entity := metadata.Catalog(metadata.CodePrefixes{Curia: "CA"})[1]

	got, err := NewCodeGenerator(s, nil).Next(context.Background(), entity)
	must(t, err)
	if got != "CA001" {
		t.Fatalf("expected CA001, got %s", got)
	}
}

func TestCodeGenerator_SyncRaisesCounter(t *testing.T) {
	ctx := context.Background()
	s := newCodeStore(t)
	entity := metadata.Catalog(metadata.CodePrefixes{})[1]

	_, err := s.DB.Exec(`INSERT INTO curia_advisors_dtl (curia_code, confrer_code, province_code) VALUES ('CUR041', 'CF001', 'INM')`)
	must(t, err)

	gen := NewCodeGenerator(s, nil)
	must(t, gen.Sync(ctx, entity))
	n, err := s.CurrentSequence(ctx, "CUR")
	must(t, err)
	if n != 41 {
		t.Fatalf("expected counter at 41, got %d", n)
	}
	got, err := gen.Next(ctx, entity)
	must(t, err)
	if got != "CUR042" {
		t.Fatalf("expected CUR042, got %s", got)
	}
}

func TestCodeGenerator_MalformedStoredCode(t *testing.T) {
	s := newCodeStore(t)
	entity := metadata.Catalog(metadata.CodePrefixes{})[1]

	_, err := s.DB.Exec(`INSERT INTO curia_advisors_dtl (curia_code, confrer_code, province_code) VALUES ('CURX', 'CF001', 'INM')`)
	must(t, err)

	_, err = NewCodeGenerator(s, nil).Next(context.Background(), entity)
	var mce *MalformedCodeError
	if !errors.As(err, &mce) {
		t.Fatalf("expected MalformedCodeError, got %v", err)
	}
}
