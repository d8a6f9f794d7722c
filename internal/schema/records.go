package schema

import "time"

// Audit is embedded by every entity table.
type Audit struct {
	LanguageCode   string     `gorm:"column:language_code;size:5;default:en"`
	ConcurrencyVal int        `gorm:"column:concurrency_val;not null;default:1"`
	CreatedBy      *string    `gorm:"column:created_by;size:50"`
	CreatedDate    *time.Time `gorm:"column:created_date"`
	UpdatedBy      *string    `gorm:"column:updated_by;size:50"`
	UpdatedDate    *time.Time `gorm:"column:updated_date"`
}

type Apostolate struct {
	ApostolateCode string  `gorm:"column:apostolate_code;primaryKey;size:10"`
	CentreTypeCode string  `gorm:"column:centre_type_code;primaryKey;size:10;index"`
	ApostolateName *string `gorm:"column:apostolate_name;size:100"`
	CentreTypeName *string `gorm:"column:centre_type_name;size:5"`
	DateFormat     *string `gorm:"column:date_format;size:20"`
	AcademicYear   *string `gorm:"column:academic_year;size:20"`
	Audit          `gorm:"embedded"`
}

func (Apostolate) TableName() string { return "apostolates_mst" }

type CuriaAdvisor struct {
	CuriaCode        string     `gorm:"column:curia_code;primaryKey;size:10"`
	ConfrerCode      string     `gorm:"column:confrer_code;size:10;index"`
	ProvinceCode     string     `gorm:"column:province_code;size:10;index"`
	DivisionTypeCode string     `gorm:"column:division_type_code;size:10"`
	DivisionCode     string     `gorm:"column:division_code;size:10"`
	DesignationCode  string     `gorm:"column:designation_code;size:10"`
	PCICOffCode      string     `gorm:"column:pcic_off_code;size:10"`
	MandateCode      string     `gorm:"column:mandate_code;size:10"`
	AppointmentDate  *time.Time `gorm:"column:appointment_date"`
	InstallationDate *time.Time `gorm:"column:installation_date"`
	MandateEndDate   *time.Time `gorm:"column:mandate_end_date"`
	Office1ISD       *string    `gorm:"column:office1_isd;size:5"`
	Office1ContactNo *int64     `gorm:"column:office1_contact_no"`
	Office2ISD       *string    `gorm:"column:office2_isd;size:5"`
	Office2ContactNo *int64     `gorm:"column:office2_contact_no"`
	Office3ISD       *string    `gorm:"column:office3_isd;size:5"`
	Office3ContactNo *int64     `gorm:"column:office3_contact_no"`
	OfficeMailID1    *string    `gorm:"column:office_mailid1;size:255"`
	OfficeMailID2    *string    `gorm:"column:office_mailid2;size:255"`
	OfficeMailID3    *string    `gorm:"column:office_mailid3;size:255"`
	Audit            `gorm:"embedded"`
}

func (CuriaAdvisor) TableName() string { return "curia_advisors_dtl" }

type Scholastic struct {
	ScholasticCode      string     `gorm:"column:scholastic_code;primaryKey;size:10"`
	ProvinceCode        string     `gorm:"column:province_code;primaryKey;size:10"`
	FirstName           string     `gorm:"column:first_name;size:50;not null"`
	MiddleName          *string    `gorm:"column:middle_name;size:50"`
	LastName            string     `gorm:"column:last_name;size:50;not null"`
	ImageFileName       *string    `gorm:"column:image_file_name;size:100"`
	ImageFilePath       *string    `gorm:"column:image_file_path;size:255"`
	BirthDate           time.Time  `gorm:"column:birth_date;not null"`
	BaptismDate         *time.Time `gorm:"column:baptism_date"`
	ConfirmationDate    *time.Time `gorm:"column:confirmation_date"`
	FirstProfessionDate *time.Time `gorm:"column:first_profession_date"`
	FinalProfessionDate *time.Time `gorm:"column:final_profession_date"`
	OrdinationDate      *time.Time `gorm:"column:ordination_date"`
	Personal1ISD        *string    `gorm:"column:personal1_isd;size:5"`
	Personal1ContactNo  *int64     `gorm:"column:personal1_contact_no"`
	Personal2ISD        *string    `gorm:"column:personal2_isd;size:5"`
	Personal2ContactNo  *int64     `gorm:"column:personal2_contact_no"`
	Personal3ISD        *string    `gorm:"column:personal3_isd;size:5"`
	Personal3ContactNo  *int64     `gorm:"column:personal3_contact_no"`
	Watsup1ISD          *string    `gorm:"column:watsup1_isd;size:5"`
	Watsup1No           *int64     `gorm:"column:watsup1_no"`
	Watsup2ISD          *string    `gorm:"column:watsup2_isd;size:5"`
	Watsup2No           *int64     `gorm:"column:watsup2_no"`
	Watsup3ISD          *string    `gorm:"column:watsup3_isd;size:5"`
	Watsup3No           *int64     `gorm:"column:watsup3_no"`
	EmergencyISD        *string    `gorm:"column:emergency_isd;size:5"`
	EmergencyContactNo  *int64     `gorm:"column:emergency_contact_no"`
	PersonalMailID1     string     `gorm:"column:personal_mailid1;size:255;not null"`
	BloodGroupCode      *string    `gorm:"column:blood_group_code;size:10"`
	NationalityCode     *string    `gorm:"column:nationality_code;size:10"`
	Audit               `gorm:"embedded"`
}

func (Scholastic) TableName() string { return "scholastics_dtl" }
