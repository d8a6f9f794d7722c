package metadata

// CodeConfig marks a key field whose value is generated as prefix + counter.
type CodeConfig struct {
	Field  string `json:"field"`
	Prefix string `json:"prefix"`
}

// AttachmentConfig names the fields that hold an uploaded file's name and path.
type AttachmentConfig struct {
	FormField string `json:"form_field"`
	NameField string `json:"name_field"`
	PathField string `json:"path_field"`
}

type Entity struct {
	Name       string            `json:"name"`
	Label      string            `json:"label"`
	Table      string            `json:"table"`
	Key        []string          `json:"key"`
	RouteKey   []string          `json:"route_key,omitempty"` // subset of Key that addresses a row in URLs
	Code       *CodeConfig       `json:"code,omitempty"`
	Attachment *AttachmentConfig `json:"attachment,omitempty"`
	Fields     []Field           `json:"fields"`
	Rules      []*Rule           `json:"rules,omitempty"`
	OrderBy    string            `json:"order_by,omitempty"`
}

// GetField returns a pointer to the field with the given name, or nil.
func (e *Entity) GetField(name string) *Field {
	for i := range e.Fields {
		if e.Fields[i].Name == name {
			return &e.Fields[i]
		}
	}
	return nil
}

// HasField returns true if the entity has a field with the given name.
func (e *Entity) HasField(name string) bool {
	return e.GetField(name) != nil
}

// FieldNames returns all field names.
func (e *Entity) FieldNames() []string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Name
	}
	return names
}

// IsKey reports whether name is part of the natural key.
func (e *Entity) IsKey(name string) bool {
	for _, k := range e.Key {
		if k == name {
			return true
		}
	}
	return false
}

// Locator returns the fields that identify a single row in a request.
func (e *Entity) Locator() []string {
	if len(e.RouteKey) > 0 {
		return e.RouteKey
	}
	return e.Key
}

func (e *Entity) isLocator(name string) bool {
	for _, k := range e.Locator() {
		if k == name {
			return true
		}
	}
	return false
}

// IsAttachmentField reports whether name holds a stored file's name or path.
func (e *Entity) IsAttachmentField(name string) bool {
	return e.Attachment != nil && (name == e.Attachment.NameField || name == e.Attachment.PathField)
}

// RequiredFields returns the names of fields that must be present on create.
// A generated code is never required from the client.
func (e *Entity) RequiredFields() []string {
	var names []string
	for _, f := range e.Fields {
		if !f.Required {
			continue
		}
		if e.Code != nil && e.Code.Field == f.Name {
			continue
		}
		names = append(names, f.Name)
	}
	return names
}

// LookupFields returns fields with a reference lookup, in declaration order.
func (e *Entity) LookupFields() []Field {
	var fields []Field
	for _, f := range e.Fields {
		if f.Lookup != nil {
			fields = append(fields, f)
		}
	}
	return fields
}

// UpdatableFields returns fields that can be set on UPDATE.
// Excludes the row locator and fields stamped on create.
func (e *Entity) UpdatableFields() []Field {
	var fields []Field
	for _, f := range e.Fields {
		if e.isLocator(f.Name) {
			continue
		}
		if f.Auto == "create" {
			continue
		}
		fields = append(fields, f)
	}
	return fields
}

// BigintFields returns the names of fields serialized as decimal strings.
func (e *Entity) BigintFields() []string {
	var names []string
	for _, f := range e.Fields {
		if f.Type == TypeBigint {
			names = append(names, f.Name)
		}
	}
	return names
}
