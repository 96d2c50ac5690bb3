package models

import "gorm.io/gorm"

// AutoMigrate creates or updates the entity store tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Equipment{},
		&Request{},
		&Event{},
		&EventRequest{},
	)
}
