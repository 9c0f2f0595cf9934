package main

import (
	"log"
	"os"
	"strings"

	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/models"
	"agora/internal/utils"

	"github.com/google/uuid"
)

// Seeds the admin account and the default areas. Areas are never created by
// the forum service itself, only here.
func main() {
	cfg := config.Load()
	database.Connect(cfg)
	database.Migrate()

	seedAdmin()
	seedAreas()
}

func seedAdmin() {
	adminUsername := os.Getenv("ADMIN_USERNAME")
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminUsername == "" || adminEmail == "" || adminPassword == "" {
		log.Fatal("Missing enviroment variables: ADMIN_USERNAME, ADMIN_EMAIL, ADMIN_PASSWORD")
	}

	// Check if admin with this email already exists
	var admin models.User
	result := database.DB.Where("email = ?", adminEmail).First(&admin)

	if result.Error == nil {
		log.Println("✅ Admin user already exists:", admin.Username)
		return
	}

	passwordHash, err := utils.HashPassword(adminPassword)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	admin = models.User{
		ID:           uuid.New(),
		Username:     adminUsername,
		Email:        adminEmail,
		PasswordHash: passwordHash,
		Role:         models.RoleAdmin,
	}

	if err := database.DB.Create(&admin).Error; err != nil {
		log.Fatal("Failed to create admin:", err)
	}

	log.Println("✅ Admin user created successfully:", admin.Username)
}

func seedAreas() {
	// AREAS is a comma separated list of area names
	names := os.Getenv("AREAS")
	if names == "" {
		names = "General,Off-topic,Support"
	}

	for _, name := range strings.Split(names, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		var area models.Area
		result := database.DB.Where("name = ?", name).First(&area)
		if result.Error == nil {
			log.Println("✅ Area already exists:", area.Name)
			continue
		}

		area = models.Area{Name: name}
		if err := database.DB.Create(&area).Error; err != nil {
			log.Fatal("Failed to create area:", err)
		}

		log.Println("✅ Area created:", area.Name)
	}
}
