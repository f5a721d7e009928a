package onboarding

import (
	"log"

	"github.com/storesight/console/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "console"); err != nil {
		log.Fatal("Failed to ensure schema console: ", err)
	}
	if err := db.DB.AutoMigrate(&Progress{}); err != nil {
		log.Fatal("Failed to auto-migrate onboarding: ", err)
	}
	log.Println("[onboarding] module initialized")
}
