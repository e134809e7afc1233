package services

import (
	"testing"

	"todo-tracker/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Task{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func newTestUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()

	user, err := NewRegisterService().RegisterUser(db, RegistrationRequest{
		Name:     "Test User",
		Email:    email,
		Password: "correct-horse-battery",
	})
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return *user
}
