package config

import (
	"fmt"

	"github.com/Govind-619/DomainDesk/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ConnectDatabase opens the postgres connection and migrates the schema
func ConnectDatabase(cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the tables used by the service
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Project{},
		&models.RenewalRecord{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %v", err)
	}
	return nil
}
