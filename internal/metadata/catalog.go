package metadata

import "net/http"

// Entity names.
const (
	EntityApostolate   = "apostolate"
	EntityCuriaAdvisor = "curia_advisor"
	EntityScholastic   = "scholastic"
)

// Engine-managed columns shared by every entity table.
const (
	FieldLanguage    = "language_code"
	FieldConcurrency = "concurrency_val"
	FieldCreatedBy   = "created_by"
	FieldCreatedDate = "created_date"
	FieldUpdatedBy   = "updated_by"
	FieldUpdatedDate = "updated_date"
)

// DefaultLanguage is stored when a payload carries no language_code.
const DefaultLanguage = "en"

// CodePrefixes configures the generated key prefixes.
type CodePrefixes struct {
	Curia      string
	Scholastic string
}

// Catalog returns the entity definitions served by the API.
func Catalog(prefixes CodePrefixes) []*Entity {
	if prefixes.Curia == "" {
		prefixes.Curia = "CUR"
	}
	if prefixes.Scholastic == "" {
		prefixes.Scholastic = "SCH"
	}
	return []*Entity{
		apostolateEntity(),
		curiaAdvisorEntity(prefixes.Curia),
		scholasticEntity(prefixes.Scholastic),
	}
}

func auditFields() []Field {
	return []Field{
		{Name: FieldLanguage, Type: TypeString, MaxLength: 5, Default: DefaultLanguage},
		{Name: FieldConcurrency, Type: TypeInt},
		{Name: FieldCreatedBy, Type: TypeString, MaxLength: 50, Auto: "create"},
		{Name: FieldCreatedDate, Type: TypeDate, Auto: "create"},
		{Name: FieldUpdatedBy, Type: TypeString, MaxLength: 50, Auto: "update"},
		{Name: FieldUpdatedDate, Type: TypeDate, Auto: "update"},
	}
}

func quickCode(category, label string, status int) *Lookup {
	return &Lookup{Category: category, Label: label, Status: status}
}

func softCode(category string) *Lookup {
	return &Lookup{Category: category, Status: http.StatusBadRequest, Soft: true}
}

func tableProbe(table, column string, status int) *Lookup {
	return &Lookup{Table: table, Column: column, Status: status}
}

func apostolateEntity() *Entity {
	fields := []Field{
		{Name: "apostolate_code", Type: TypeString, MaxLength: 10, Required: true,
			Lookup: quickCode("apostl", "apostolate_name", http.StatusNotFound)},
		{Name: "centre_type_code", Type: TypeString, MaxLength: 10, Required: true,
			Lookup: quickCode("ctrtyp", "centre_type_name", http.StatusNotFound)},
		{Name: "apostolate_name", Type: TypeString, MaxLength: 100},
		{Name: "centre_type_name", Type: TypeString, MaxLength: 5},
		{Name: "date_format", Type: TypeString, MaxLength: 20},
		{Name: "academic_year", Type: TypeString, MaxLength: 20},
	}
	return &Entity{
		Name:    EntityApostolate,
		Label:   "Apostolate",
		Table:   "apostolates_mst",
		Key:     []string{"apostolate_code", "centre_type_code"},
		Fields:  append(fields, auditFields()...),
		OrderBy: "apostolate_code, centre_type_code",
	}
}

func curiaAdvisorEntity(prefix string) *Entity {
	fields := []Field{
		{Name: "curia_code", Type: TypeString, MaxLength: 10},
		{Name: "confrer_code", Type: TypeString, MaxLength: 10, Required: true,
			Lookup: tableProbe("confreres_dtl", "confrer_code", http.StatusNotFound)},
		{Name: "province_code", Type: TypeString, MaxLength: 10, Required: true,
			Lookup: tableProbe("province_mst", "province_code", http.StatusNotFound)},
		{Name: "division_code", Type: TypeString, MaxLength: 10,
			Lookup: tableProbe("division_setup_mst", "division_code", http.StatusNotFound)},
		{Name: "division_type_code", Type: TypeString, MaxLength: 10,
			Lookup: quickCode("divtyp", "", http.StatusBadRequest)},
		{Name: "pcic_off_code", Type: TypeString, MaxLength: 10,
			Lookup: quickCode("pcicof", "", http.StatusBadRequest)},
		{Name: "mandate_code", Type: TypeString, MaxLength: 10,
			Lookup: quickCode("mandat", "", http.StatusBadRequest)},
		{Name: "designation_code", Type: TypeString, MaxLength: 10,
			Lookup: quickCode("destyp", "", http.StatusBadRequest)},
		{Name: "appointment_date", Type: TypeDate},
		{Name: "installation_date", Type: TypeDate},
		{Name: "mandate_end_date", Type: TypeDate},
	}
	for _, n := range []string{"1", "2", "3"} {
		fields = append(fields,
			Field{Name: "office" + n + "_isd", Type: TypeString, MaxLength: 5},
			Field{Name: "office" + n + "_contact_no", Type: TypeBigint},
		)
	}
	for _, n := range []string{"1", "2", "3"} {
		fields = append(fields, Field{Name: "office_mailid" + n, Type: TypeString, MaxLength: 255})
	}
	return &Entity{
		Name:   EntityCuriaAdvisor,
		Label:  "Curia advisor",
		Table:  "curia_advisors_dtl",
		Key:    []string{"curia_code"},
		Code:   &CodeConfig{Field: "curia_code", Prefix: prefix},
		Fields: append(fields, auditFields()...),
		Rules: []*Rule{
			{
				Name:       "mandate_end_after_installation",
				Expression: "before(record.mandate_end_date, record.installation_date)",
				Message:    "mandate_end_date must not be before installation_date",
				Fields:     []string{"mandate_end_date", "installation_date"},
			},
			{
				Name:       "installation_after_appointment",
				Expression: "before(record.installation_date, record.appointment_date)",
				Message:    "installation_date must not be before appointment_date",
				Fields:     []string{"installation_date", "appointment_date"},
			},
		},
		OrderBy: "curia_code",
	}
}

func scholasticEntity(prefix string) *Entity {
	fields := []Field{
		{Name: "scholastic_code", Type: TypeString, MaxLength: 10},
		{Name: "province_code", Type: TypeString, MaxLength: 10, Required: true,
			Lookup: tableProbe("province_mst", "province_code", http.StatusBadRequest)},
		{Name: "first_name", Type: TypeString, MaxLength: 50, Required: true},
		{Name: "middle_name", Type: TypeString, MaxLength: 50},
		{Name: "last_name", Type: TypeString, MaxLength: 50, Required: true},
		{Name: "image_file_name", Type: TypeString, MaxLength: 100},
		{Name: "image_file_path", Type: TypeString, MaxLength: 255},
		{Name: "birth_date", Type: TypeDate, Required: true},
		{Name: "baptism_date", Type: TypeDate},
		{Name: "confirmation_date", Type: TypeDate},
		{Name: "first_profession_date", Type: TypeDate},
		{Name: "final_profession_date", Type: TypeDate},
		{Name: "ordination_date", Type: TypeDate},
	}
	for _, n := range []string{"1", "2", "3"} {
		fields = append(fields,
			Field{Name: "personal" + n + "_isd", Type: TypeString, MaxLength: 5},
			Field{Name: "personal" + n + "_contact_no", Type: TypeBigint},
		)
	}
	for _, n := range []string{"1", "2", "3"} {
		fields = append(fields,
			Field{Name: "watsup" + n + "_isd", Type: TypeString, MaxLength: 5},
			Field{Name: "watsup" + n + "_no", Type: TypeBigint},
		)
	}
	fields = append(fields,
		Field{Name: "emergency_isd", Type: TypeString, MaxLength: 5},
		Field{Name: "emergency_contact_no", Type: TypeBigint},
		Field{Name: "personal_mailid1", Type: TypeString, MaxLength: 255, Required: true},
		Field{Name: "blood_group_code", Type: TypeString, MaxLength: 10, Lookup: softCode("bldgrp")},
		Field{Name: "nationality_code", Type: TypeString, MaxLength: 10, Lookup: softCode("nation")},
	)
	return &Entity{
		Name:     EntityScholastic,
		Label:    "Scholastic",
		Table:    "scholastics_dtl",
		Key:      []string{"scholastic_code", "province_code"},
		RouteKey: []string{"scholastic_code"},
		Code:     &CodeConfig{Field: "scholastic_code", Prefix: prefix},
		Attachment: &AttachmentConfig{
			FormField: "image_file",
			NameField: "image_file_name",
			PathField: "image_file_path",
		},
		Fields: append(fields, auditFields()...),
		Rules: []*Rule{
			{
				Name:       "final_profession_after_first",
				Expression: "before(record.final_profession_date, record.first_profession_date)",
				Message:    "final_profession_date must not be before first_profession_date",
				Fields:     []string{"final_profession_date", "first_profession_date"},
			},
			{
				Name:       "birth_date_not_in_future",
				Expression: "before(today, record.birth_date)",
				Message:    "birth_date must not be in the future",
				Fields:     []string{"birth_date"},
			},
		},
		OrderBy: "scholastic_code",
	}
}
