package metadata

// Rule is a cross-field expression evaluated against the mapped record.
// The expression reports a violation when it evaluates to true.
type Rule struct {
	Name       string   `json:"name"`
	Expression string   `json:"expression"`
	Message    string   `json:"message"`
	Fields     []string `json:"fields,omitempty"` // the rule is skipped unless all are set

	// Compiled holds the compiled expression program (set on first use, not serialized).
	Compiled any `json:"-"`
}
