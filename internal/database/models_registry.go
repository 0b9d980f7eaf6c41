package database

import (
	"devhub/internal/models"

	"gorm.io/gorm"
)

// PersistentModels lists the GORM models backed by SQL tables.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Profile{},
		&models.Post{},
	}
}

// AutoMigrate creates or updates tables for every persistent model.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(PersistentModels()...)
}
