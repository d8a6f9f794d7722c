package schema

import (
	"gorm.io/gorm"
)

// AllModels returns all schema models for GORM AutoMigrate.
func AllModels() []any {
	return []any{
		&ReferenceCode{},
		&Province{},
		&Division{},
		&Confrere{},
		&Apostolate{},
		&CuriaAdvisor{},
		&Scholastic{},
	}
}

// Migrate runs GORM AutoMigrate to create or update the domain tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
