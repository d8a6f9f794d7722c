package engine

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"curia-backend/internal/metadata"
	"curia-backend/internal/store"
)

type QueryPlan struct {
	Entity  *metadata.Entity
	Filters []WhereClause
	Sorts   []OrderClause
	Limit   int
	Offset  int
}

type WhereClause struct {
	Field    string
	Operator string
	Value    any
}

type OrderClause struct {
	Field string
	Dir   string // ASC or DESC
}

type QueryResult struct {
	SQL    string
	Params []any
}

// ParseQueryParams parses list query parameters into a QueryPlan.
// Plain ?field=value pairs filter by exact match on key and reference columns;
// sort=-field orders; page/per_page paginate when given.
func ParseQueryParams(c *fiber.Ctx, entity *metadata.Entity) (*QueryPlan, error) {
	plan := &QueryPlan{Entity: entity}

	queries := c.Queries()
	keys := make([]string, 0, len(queries))
	for k := range queries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		val := queries[key]
		switch key {
		case "sort", "page", "per_page":
			continue
		}
		f := entity.GetField(key)
		if f == nil || !(entity.IsKey(key) || f.Lookup != nil) {
			return nil, &AppError{
				Code:    "MALFORMED_INPUT",
				Status:  400,
				Message: fmt.Sprintf("Unknown filter field: %s", key),
			}
		}
		plan.Filters = append(plan.Filters, WhereClause{Field: key, Operator: "eq", Value: val})
	}

	if sortParam := c.Query("sort"); sortParam != "" {
		for _, part := range strings.Split(sortParam, ",") {
			part = strings.TrimSpace(part)
			dir := "ASC"
			field := part
			if strings.HasPrefix(part, "-") {
				dir = "DESC"
				field = part[1:]
			}
			if !entity.HasField(field) {
				return nil, &AppError{
					Code:    "MALFORMED_INPUT",
					Status:  400,
					Message: fmt.Sprintf("Unknown sort field: %s", field),
				}
			}
			plan.Sorts = append(plan.Sorts, OrderClause{Field: field, Dir: dir})
		}
	}

	if pp := c.Query("per_page"); pp != "" {
		if v, err := strconv.Atoi(pp); err == nil && v > 0 {
			plan.Limit = min(v, 500)
			page := 1
			if p, err := strconv.Atoi(c.Query("page")); err == nil && p > 0 {
				page = p
			}
			plan.Offset = (page - 1) * plan.Limit
		}
	}

	return plan, nil
}

// BuildSelectSQL builds a parameterized SELECT statement from the query plan.
func BuildSelectSQL(d store.Dialect, plan *QueryPlan) QueryResult {
	pb := d.NewParamBuilder()
	entity := plan.Entity

	var where []string
	for _, f := range plan.Filters {
		where = append(where, buildWhereClause(f, pb))
	}

	sql := fmt.Sprintf("SELECT %s FROM %s", strings.Join(entity.FieldNames(), ", "), entity.Table)
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}

	if len(plan.Sorts) > 0 {
		var orderParts []string
		for _, s := range plan.Sorts {
			orderParts = append(orderParts, fmt.Sprintf("%s %s", s.Field, s.Dir))
		}
		sql += " ORDER BY " + strings.Join(orderParts, ", ")
	} else if entity.OrderBy != "" {
		sql += " ORDER BY " + entity.OrderBy
	}

	if plan.Limit > 0 {
		limit := pb.Add(plan.Limit)
		offset := pb.Add(plan.Offset)
		sql += fmt.Sprintf(" LIMIT %s OFFSET %s", limit, offset)
	}

	return QueryResult{SQL: sql, Params: pb.Params()}
}

// BuildFetchSQL selects the row matching every column in match.
func BuildFetchSQL(d store.Dialect, entity *metadata.Entity, match map[string]any) QueryResult {
	pb := d.NewParamBuilder()
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE %s",
		strings.Join(entity.FieldNames(), ", "), entity.Table, matchClause(match, pb))
	return QueryResult{SQL: sql, Params: pb.Params()}
}

// BuildInsertSQL inserts the entity's columns present in fields.
func BuildInsertSQL(d store.Dialect, entity *metadata.Entity, fields map[string]any) QueryResult {
	pb := d.NewParamBuilder()
	var cols, vals []string
	for _, name := range entity.FieldNames() {
		v, ok := fields[name]
		if !ok {
			continue
		}
		cols = append(cols, name)
		vals = append(vals, pb.Add(v))
	}
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		entity.Table, strings.Join(cols, ", "), strings.Join(vals, ", "))
	return QueryResult{SQL: sql, Params: pb.Params()}
}

// BuildUpdateSQL replaces every non-key column present in fields on the row
// matching key, guarded by the stored concurrency token. The token is
// incremented by the same statement.
func BuildUpdateSQL(d store.Dialect, entity *metadata.Entity, key map[string]any, fields map[string]any, token any) QueryResult {
	pb := d.NewParamBuilder()
	var sets []string
	for _, name := range entity.FieldNames() {
		if name == metadata.FieldConcurrency {
			continue
		}
		v, ok := fields[name]
		if !ok {
			continue
		}
		if kv, isKey := key[name]; isKey && kv == v {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = %s", name, pb.Add(v)))
	}
	sets = append(sets, fmt.Sprintf("%s = %s + 1", metadata.FieldConcurrency, metadata.FieldConcurrency))

	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s AND %s = %s",
		entity.Table, strings.Join(sets, ", "), matchClause(key, pb),
		metadata.FieldConcurrency, pb.Add(token))
	return QueryResult{SQL: sql, Params: pb.Params()}
}

// BuildBulkUpdateSQL sets fields on every row matching match and bumps each
// row's concurrency token. No token guard applies.
func BuildBulkUpdateSQL(d store.Dialect, entity *metadata.Entity, match map[string]any, fields map[string]any) QueryResult {
	pb := d.NewParamBuilder()
	var sets []string
	for _, name := range entity.FieldNames() {
		v, ok := fields[name]
		if !ok || name == metadata.FieldConcurrency {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = %s", name, pb.Add(v)))
	}
	sets = append(sets, fmt.Sprintf("%s = %s + 1", metadata.FieldConcurrency, metadata.FieldConcurrency))

	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s",
		entity.Table, strings.Join(sets, ", "), matchClause(match, pb))
	return QueryResult{SQL: sql, Params: pb.Params()}
}

// BuildDeleteSQL deletes every row matching all columns in match.
func BuildDeleteSQL(d store.Dialect, entity *metadata.Entity, match map[string]any) QueryResult {
	pb := d.NewParamBuilder()
	sql := fmt.Sprintf("DELETE FROM %s WHERE %s", entity.Table, matchClause(match, pb))
	return QueryResult{SQL: sql, Params: pb.Params()}
}

func matchClause(match map[string]any, pb store.ParamBuilder) string {
	cols := make([]string, 0, len(match))
	for k := range match {
		cols = append(cols, k)
	}
	sort.Strings(cols)

	parts := make([]string, len(cols))
	for i, col := range cols {
		parts[i] = buildWhereClause(WhereClause{Field: col, Operator: "eq", Value: match[col]}, pb)
	}
	return strings.Join(parts, " AND ")
}

func buildWhereClause(f WhereClause, pb store.ParamBuilder) string {
	switch f.Operator {
	case "neq":
		return fmt.Sprintf("%s != %s", f.Field, pb.Add(f.Value))
	default:
		return fmt.Sprintf("%s = %s", f.Field, pb.Add(f.Value))
	}
}
