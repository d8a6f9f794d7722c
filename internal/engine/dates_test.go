package engine

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2021, 3, 7, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"07.03.2021", false},
		{"7.3.2021", false},
		{" 2021-03-07 ", false},
		{"2021-03-07T00:00:00Z", false},
		{"2021-03-07 00:00:00", false},
		{"2021-03-07T00:00:00", false},
		{"03/07/2021", true},
		{"31.02.2021", true},
		{"", true},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseDate(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if !tt.wantErr && !got.Equal(want) {
			t.Fatalf("ParseDate(%q) = %v, want %v", tt.in, got, want)
		}
	}
}

func TestDateValue(t *testing.T) {
	d := time.Date(2021, 3, 7, 0, 0, 0, 0, time.UTC)
	for _, v := range []any{d, &d, "2021-03-07"} {
		got, err := dateValue(v)
		if err != nil || !got.Equal(d) {
			t.Fatalf("dateValue(%v) = %v, %v", v, got, err)
		}
	}
	var nilTime *time.Time
	for _, v := range []any{nil, nilTime, 20210307} {
		if _, err := dateValue(v); err == nil {
			t.Fatalf("dateValue(%v): expected error", v)
		}
	}
}
