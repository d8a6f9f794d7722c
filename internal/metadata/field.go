package metadata

// Field types understood by the mapper and serializer.
const (
	TypeString = "string"
	TypeBigint = "bigint"
	TypeInt    = "int"
	TypeDate   = "date"
)

type Field struct {
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	MaxLength int     `json:"max_length,omitempty"`
	Required  bool    `json:"required,omitempty"` // required on create
	Lookup    *Lookup `json:"lookup,omitempty"`
	Auto      string  `json:"auto,omitempty"` // "create" or "update"
	Default   any     `json:"default,omitempty"`
}

// Lookup describes how a field's value is checked against reference data.
// Exactly one of Category (quickcode_mst) or Table is set.
type Lookup struct {
	Category string `json:"category,omitempty"`
	Table    string `json:"table,omitempty"`
	Column   string `json:"column,omitempty"`
	Label    string `json:"label,omitempty"` // field that receives the resolved label
	Status   int    `json:"status"`          // HTTP status when the code is unknown
	Soft     bool   `json:"soft,omitempty"`  // unknown codes are only logged
}

// Source names the reference data a lookup probes, for messages and metrics.
func (l *Lookup) Source() string {
	if l.Category != "" {
		return l.Category
	}
	return l.Table
}

// Truncatable reports whether an oversize value may be cut to MaxLength.
// Codes that identify or reference other rows never are.
func (f Field) Truncatable() bool {
	return f.MaxLength > 0 && f.Lookup == nil
}
