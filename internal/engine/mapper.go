package engine

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"curia-backend/internal/metadata"
)

// CoercionError reports a value that could not be converted to a column type.
type CoercionError struct {
	Field string
	Value any
	Err   error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("%s: cannot use %v: %v", e.Field, e.Value, e.Err)
}

func (e *CoercionError) Unwrap() error { return e.Err }

// Mapper turns request payloads into rows ready for persistence.
type Mapper struct {
	now func() time.Time
}

func NewMapper() *Mapper {
	return &Mapper{now: time.Now}
}

// MappedRow is the mapper's output.
type MappedRow struct {
	Values    map[string]any
	Truncated []string
}

// NormalizePayload trims surrounding whitespace from payload keys.
func NormalizePayload(body map[string]any) map[string]any {
	out := make(map[string]any, len(body))
	for k, v := range body {
		out[strings.TrimSpace(k)] = v
	}
	return out
}

// ToRow maps payload onto the entity's columns. existing is nil on create;
// on update every absent or empty field keeps its stored value. labels holds
// resolved reference labels keyed by the label field.
func (m *Mapper) ToRow(entity *metadata.Entity, payload, existing map[string]any, labels map[string]string, user *metadata.UserContext) (*MappedRow, error) {
	out := &MappedRow{Values: make(map[string]any, len(entity.Fields))}
	isCreate := existing == nil

	fields := entity.Fields
	if !isCreate {
		fields = entity.UpdatableFields()
		for k, v := range existing {
			out.Values[k] = v
		}
	}

	for _, f := range fields {
		if f.Name == metadata.FieldConcurrency || entity.IsAttachmentField(f.Name) {
			continue
		}
		if _, isLabel := labels[f.Name]; isLabel {
			continue
		}

		raw := payload[f.Name]
		if isEmpty(raw) {
			if isCreate {
				out.Values[f.Name] = nil
			}
			continue
		}

		switch f.Type {
		case metadata.TypeBigint, metadata.TypeInt:
			n, err := coerceInt(raw)
			if err != nil {
				return nil, &CoercionError{Field: f.Name, Value: raw, Err: err}
			}
			out.Values[f.Name] = n

		case metadata.TypeDate:
			t, err := dateValue(raw)
			if err != nil {
				if f.Required {
					return nil, MalformedInputError(f.Name, fmt.Sprintf("Invalid %s format: %v", f.Name, err))
				}
				log.Printf("WARN: %s.%s: ignoring invalid date %v", entity.Name, f.Name, raw)
				if isCreate {
					out.Values[f.Name] = nil
				}
				continue
			}
			out.Values[f.Name] = t

		default:
			s := stringValue(raw)
			if f.MaxLength > 0 && utf8.RuneCountInString(s) > f.MaxLength {
				if entity.IsKey(f.Name) || !f.Truncatable() {
					return nil, MalformedInputError(f.Name,
						fmt.Sprintf("%s exceeds %d characters", f.Name, f.MaxLength))
				}
				s = truncateRunes(s, f.MaxLength)
				out.Truncated = append(out.Truncated, f.Name)
			}
			out.Values[f.Name] = s
		}
	}

	for _, f := range entity.Fields {
		label, ok := labels[f.Name]
		if !ok {
			continue
		}
		if f.MaxLength > 0 && utf8.RuneCountInString(label) > f.MaxLength {
			label = truncateRunes(label, f.MaxLength)
			out.Truncated = append(out.Truncated, f.Name)
		}
		out.Values[f.Name] = label
	}

	m.applyDefaults(entity, payload, out.Values, isCreate, user)
	return out, nil
}

func (m *Mapper) applyDefaults(entity *metadata.Entity, payload, row map[string]any, isCreate bool, user *metadata.UserContext) {
	now := m.now().UTC()
	by := operator(user)

	if entity.HasField(metadata.FieldLanguage) && row[metadata.FieldLanguage] == nil {
		row[metadata.FieldLanguage] = metadata.DefaultLanguage
	}
	if t, err := dateValue(payload[metadata.FieldUpdatedDate]); err == nil {
		row[metadata.FieldUpdatedDate] = t
	} else {
		row[metadata.FieldUpdatedDate] = now
	}
	if isEmpty(payload[metadata.FieldUpdatedBy]) && by != "" {
		row[metadata.FieldUpdatedBy] = by
	}

	if !isCreate {
		return
	}
	row[metadata.FieldConcurrency] = 1
	if row[metadata.FieldCreatedDate] == nil {
		row[metadata.FieldCreatedDate] = now
	}
	if row[metadata.FieldCreatedBy] == nil && by != "" {
		row[metadata.FieldCreatedBy] = by
	}
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case json.Number:
		return s.String()
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}

// coerceInt accepts digit strings and JSON numbers. Floats are only accepted
// when integral and within the exactly representable range.
func coerceInt(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case json.Number:
		return strconv.ParseInt(n.String(), 10, 64)
	case float64:
		if n != math.Trunc(n) || math.Abs(n) > 1<<53 {
			return 0, fmt.Errorf("not an exact integer")
		}
		return int64(n), nil
	case string:
		s := strings.TrimSpace(n)
		s = strings.TrimPrefix(s, "+")
		if s == "" {
			return 0, fmt.Errorf("empty number")
		}
		return strconv.ParseInt(s, 10, 64)
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
