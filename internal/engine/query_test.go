package engine

import (
	"strings"
	"testing"

	"curia-backend/internal/metadata"
	"curia-backend/internal/store"
)

func TestBuildUpdateSQL_GuardsToken(t *testing.T) {
	entity := metadata.Catalog(metadata.CodePrefixes{})[0]
	q := BuildUpdateSQL(store.NewDialect("sqlite"), entity,
		map[string]any{"apostolate_code": "EDU", "centre_type_code": "PAR"},
		map[string]any{"apostolate_code": "EDU", "centre_type_code": "PAR", "academic_year": "2024", "concurrency_val": 1},
		int64(1))

	want := "UPDATE apostolates_mst SET academic_year = ?1, concurrency_val = concurrency_val + 1 " +
		"WHERE apostolate_code = ?2 AND centre_type_code = ?3 AND concurrency_val = ?4"
	if q.SQL != want {
		t.Fatalf("unexpected SQL:\n got %s\nwant %s", q.SQL, want)
	}
	if len(q.Params) != 4 || q.Params[0] != "2024" || q.Params[3] != int64(1) {
		t.Fatalf("unexpected params %v", q.Params)
	}
}

func TestBuildBulkUpdateSQL_Postgres(t *testing.T) {
	entity := metadata.Catalog(metadata.CodePrefixes{})[0]
	q := BuildBulkUpdateSQL(store.NewDialect("postgres"), entity,
		map[string]any{"apostolate_code": "EDU"},
		map[string]any{"centre_type_code": "SCHL", "centre_type_name": "Schoo"})

	want := "UPDATE apostolates_mst SET centre_type_code = $1, centre_type_name = $2, " +
		"concurrency_val = concurrency_val + 1 WHERE apostolate_code = $3"
	if q.SQL != want {
		t.Fatalf("unexpected SQL:\n got %s\nwant %s", q.SQL, want)
	}
}

func TestBuildSelectSQL_DefaultOrderAndPaging(t *testing.T) {
	entity := metadata.Catalog(metadata.CodePrefixes{})[1]
	plan := &QueryPlan{
		Entity:  entity,
		Filters: []WhereClause{{Field: "province_code", Operator: "eq", Value: "INM"}},
		Limit:   10,
		Offset:  20,
	}
	q := BuildSelectSQL(store.NewDialect("sqlite"), plan)
	if !strings.HasSuffix(q.SQL, "FROM curia_advisors_dtl WHERE province_code = ?1 ORDER BY curia_code LIMIT ?2 OFFSET ?3") {
		t.Fatalf("unexpected SQL %s", q.SQL)
	}
	if len(q.Params) != 3 || q.Params[1] != 10 || q.Params[2] != 20 {
		t.Fatalf("unexpected params %v", q.Params)
	}
}

func TestBuildDeleteSQL_SortsMatchColumns(t *testing.T) {
	entity := metadata.Catalog(metadata.CodePrefixes{})[0]
	q := BuildDeleteSQL(store.NewDialect("postgres"), entity,
		map[string]any{"centre_type_code": "PAR", "apostolate_code": "EDU"})
	if q.SQL != "DELETE FROM apostolates_mst WHERE apostolate_code = $1 AND centre_type_code = $2" {
		t.Fatalf("unexpected SQL %s", q.SQL)
	}
	if q.Params[0] != "EDU" || q.Params[1] != "PAR" {
		t.Fatalf("unexpected params %v", q.Params)
	}
}
