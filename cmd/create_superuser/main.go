package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/gabekutner/roommatefinder-backend/models"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: go run ./cmd/create_superuser <identifier>")
		os.Exit(2)
	}
	identifier := strings.ToLower(strings.TrimSpace(os.Args[1]))

	dsn := os.Getenv("DB_DSN")
	if strings.TrimSpace(dsn) == "" {
		log.Fatal("DB_DSN not set in environment")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}

	// check existing
	var existing models.Profile
	if err := db.Where("identifier = ?", identifier).First(&existing).Error; err == nil {
		if !existing.IsStaff {
			db.Model(&existing).Update("is_staff", true)
			fmt.Printf("promoted %s to staff (id=%s)\n", identifier, existing.ID)
			return
		}
		fmt.Printf("profile %s already exists (id=%s)\n", identifier, existing.ID)
		os.Exit(0)
	}

	profile := models.Profile{
		Identifier:  identifier,
		IsStaff:     true,
		OtpVerified: true,
	}
	if err := db.Create(&profile).Error; err != nil {
		log.Fatalf("failed to create profile: %v", err)
	}
	fmt.Printf("created staff profile %s id=%s\n", identifier, profile.ID)
}
