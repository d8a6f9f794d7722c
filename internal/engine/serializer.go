package engine

import (
	"math/big"
	"strconv"

	"curia-backend/internal/metadata"
)

// maxSafeInteger is the largest integer a JSON number carries exactly in a
// double-precision client.
const maxSafeInteger = 1<<53 - 1

// SerializeRow returns a copy of row that is safe to encode as JSON: bigint
// columns, and any other integer beyond the exact double range, become
// decimal strings.
func SerializeRow(entity *metadata.Entity, row map[string]any) map[string]any {
	if row == nil {
		return nil
	}
	bigints := make(map[string]bool)
	if entity != nil {
		for _, name := range entity.BigintFields() {
			bigints[name] = true
		}
	}

	out := make(map[string]any, len(row))
	for k, v := range row {
		out[k] = serializeValue(v, bigints[k])
	}
	return out
}

// SerializeRows serializes every row. The result is never nil.
func SerializeRows(entity *metadata.Entity, rows []map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		out = append(out, SerializeRow(entity, row))
	}
	return out
}

func serializeValue(v any, bigint bool) any {
	switch n := v.(type) {
	case int64:
		if bigint || n > maxSafeInteger || n < -maxSafeInteger {
			return strconv.FormatInt(n, 10)
		}
	case int:
		if bigint || n > maxSafeInteger || n < -maxSafeInteger {
			return strconv.Itoa(n)
		}
	case uint64:
		if bigint || n > maxSafeInteger {
			return strconv.FormatUint(n, 10)
		}
	case *big.Int:
		if n == nil {
			return nil
		}
		return n.String()
	case []byte:
		return string(n)
	}
	return v
}
