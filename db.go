package main

import (
	"log"
	"os"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/gabekutner/roommatefinder-backend/models"
)

var db *gorm.DB

func initDB() {
	var err error
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN.")
	}
	db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect postgres database:", err)
	}
	// Control schema migrations with env DB_AUTO_MIGRATE (default true). Any permission errors will be logged and ignored.
	shouldMigrate := true
	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		lv := strings.ToLower(v)
		if lv == "false" || lv == "0" || lv == "no" {
			shouldMigrate = false
		}
	}
	if !shouldMigrate {
		return
	}
	// Migrate models individually so a failure on one doesn't block others.
	// Profiles first: connections, messages and photos all FK into it.
	if err := db.AutoMigrate(&models.Profile{}); err != nil {
		log.Printf("migration warning (profiles): %v", err)
	}
	if err := db.AutoMigrate(&models.Connection{}); err != nil {
		log.Printf("migration warning (connections): %v", err)
	}
	if err := db.AutoMigrate(&models.Message{}); err != nil {
		log.Printf("migration warning (messages): %v", err)
	}
	if err := db.AutoMigrate(&models.Photo{}); err != nil {
		log.Printf("migration warning (photos): %v", err)
	}
	if err := db.AutoMigrate(&models.OTP{}); err != nil {
		log.Printf("migration warning (otps): %v", err)
	}
	if err := db.AutoMigrate(&models.RefreshToken{}); err != nil {
		log.Printf("migration warning (refresh_tokens): %v", err)
	}
}
