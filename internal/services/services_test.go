package services_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/drift-desk/driftdesk/internal/models"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, gdb.AutoMigrate(
		&models.User{},
		&models.Drift{},
		&models.Comment{},
		&models.Event{},
		&models.Notification{},
	))

	return gdb
}

func seedUser(t *testing.T, gdb *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         models.RoleUser,
		IsActive:     true,
	}
	require.NoError(t, gdb.Create(user).Error)

	return user
}

func seedDrift(t *testing.T, gdb *gorm.DB, creatorID uint, assigneeID *uint) *models.Drift {
	t.Helper()

	drift := &models.Drift{
		Title:        "Seeded drift",
		Status:       models.StatusOpen,
		Priority:     models.PriorityMedium,
		CreatedByID:  creatorID,
		AssignedToID: assigneeID,
	}
	require.NoError(t, gdb.Create(drift).Error)

	return drift
}
