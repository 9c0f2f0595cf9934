package testutil

import (
	"time"

	"agora/internal/models"
	"agora/internal/utils"

	"github.com/google/uuid"
)

// CreateTestUser creates a test user with a hashed password
func CreateTestUser(username, email, password string, role models.Role) (*models.User, error) {
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	return &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         role,
	}, nil
}

// DefaultTestUser returns a default test user (regular user)
func DefaultTestUser() (*models.User, error) {
	return CreateTestUser("testuser", "test@example.com", "Test123456", models.RoleUser)
}

// DefaultAdminUser returns a default admin user
func DefaultAdminUser() (*models.User, error) {
	return CreateTestUser("admin", "admin@example.com", "Admin123456", models.RoleAdmin)
}

// CreateTestArea creates a test area
func CreateTestArea(name string) *models.Area {
	return &models.Area{Name: name}
}

// CreateTestThread creates a test thread in an area
func CreateTestThread(areaID int64, title string) *models.Thread {
	return &models.Thread{
		Title:  title,
		AreaID: areaID,
	}
}

// CreateTestMessage creates a test message with an explicit timestamp so
// ordering-sensitive tests can control it. userID may be nil for anonymous.
func CreateTestMessage(threadID int64, userID *uuid.UUID, content string, createdAt time.Time) *models.Message {
	return &models.Message{
		Content:   content,
		ThreadID:  threadID,
		UserID:    userID,
		CreatedAt: createdAt,
	}
}
