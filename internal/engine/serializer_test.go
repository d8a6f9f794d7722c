package engine

import (
	"encoding/json"
	"math/big"
	"testing"

	"curia-backend/internal/metadata"
)

func TestSerializeRow(t *testing.T) {
	entity := metadata.Catalog(metadata.CodePrefixes{})[1]
	row := map[string]any{
		"curia_code":         "CUR001",
		"office1_contact_no": int64(919876543210),
		"office2_contact_no": int64(9007199254740993),
		"office3_contact_no": nil,
		"concurrency_val":    int64(2),
		"unlisted_big":       int64(1 << 60),
		"unlisted_small":     int64(12),
		"raw":                []byte("bytes"),
		"huge":               new(big.Int).Lsh(big.NewInt(1), 70),
	}

	out := SerializeRow(entity, row)
	tests := map[string]any{
		"curia_code":         "CUR001",
		"office1_contact_no": "919876543210",
		"office2_contact_no": "9007199254740993",
		"office3_contact_no": nil,
		"concurrency_val":    int64(2),
		"unlisted_big":       "1152921504606846976",
		"unlisted_small":     int64(12),
		"raw":                "bytes",
		"huge":               "1180591620717411303424",
	}
	for k, want := range tests {
		if out[k] != want {
			t.Errorf("%s = %#v, want %#v", k, out[k], want)
		}
	}
	if row["office1_contact_no"] != int64(919876543210) {
		t.Fatal("input row must not be modified")
	}

	b, err := json.Marshal(out)
	must(t, err)
	var decoded map[string]any
	must(t, json.Unmarshal(b, &decoded))
	if decoded["office2_contact_no"] != "9007199254740993" {
		t.Fatalf("expected exact digits through JSON, got %v", decoded["office2_contact_no"])
	}
}

func TestSerializeRows_NeverNil(t *testing.T) {
	out := SerializeRows(nil, nil)
	if out == nil || len(out) != 0 {
		t.Fatalf("expected empty slice, got %#v", out)
	}
	b, err := json.Marshal(out)
	must(t, err)
	if string(b) != "[]" {
		t.Fatalf("expected [], got %s", b)
	}
}
