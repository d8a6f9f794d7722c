package schema

// ReferenceCode is one row of the shared lookup table, keyed by category tag
// and code.
type ReferenceCode struct {
	Type  string `gorm:"column:quick_code_type;primaryKey;size:10" json:"quick_code_type" yaml:"type"`
	Code  string `gorm:"column:quick_code;primaryKey;size:10" json:"quick_code" yaml:"code"`
	Label string `gorm:"column:quickcode_name;size:255;not null" json:"quickcode_name" yaml:"name"`
}

func (ReferenceCode) TableName() string { return "quickcode_mst" }

type Province struct {
	Code        string `gorm:"column:province_code;primaryKey;size:10" json:"province_code" yaml:"code"`
	Name        string `gorm:"column:province_name;size:100" json:"province_name" yaml:"name"`
	CountryCode string `gorm:"column:country_code;size:10" json:"country_code" yaml:"country_code"`
}

func (Province) TableName() string { return "province_mst" }

type Division struct {
	Code         string `gorm:"column:division_code;primaryKey;size:10" json:"division_code" yaml:"code"`
	Name         string `gorm:"column:division_name;size:100" json:"division_name" yaml:"name"`
	ProvinceCode string `gorm:"column:province_code;size:10;index" json:"province_code" yaml:"province_code"`
}

func (Division) TableName() string { return "division_setup_mst" }

type Confrere struct {
	Code         string `gorm:"column:confrer_code;primaryKey;size:10" json:"confrer_code" yaml:"code"`
	FirstName    string `gorm:"column:first_name;size:50" json:"first_name" yaml:"first_name"`
	LastName     string `gorm:"column:last_name;size:50" json:"last_name" yaml:"last_name"`
	ProvinceCode string `gorm:"column:province_code;size:10;index" json:"province_code" yaml:"province_code"`
}

func (Confrere) TableName() string { return "confreres_dtl" }

// Reference categories used by the entity handlers.
const (
	CategoryApostolate   = "apostl"
	CategoryCentreType   = "ctrtyp"
	CategoryDivisionType = "divtyp"
	CategoryPCICOffice   = "pcicof"
	CategoryMandate      = "mandat"
	CategoryDesignation  = "destyp"
	CategoryBloodGroup   = "bldgrp"
	CategoryNationality  = "nation"
)
