package db

import (
	"github.com/drift-desk/driftdesk/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDatabase(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})

	if err != nil {
		return err
	}

	return nil
}

// MigrateDatabase creates any missing tables. Called exactly once from main;
// nothing else touches the schema at runtime.
func MigrateDatabase() error {
	models := []interface{}{
		&models.User{},
		&models.Drift{},
		&models.Comment{},
		&models.Event{},
		&models.Notification{},
	}

	migrator := DB.Migrator()

	for _, model := range models {
		if !migrator.HasTable(model) {
			if err := DB.AutoMigrate(model); err != nil {
				return err
			}
		}
	}

	return nil
}
