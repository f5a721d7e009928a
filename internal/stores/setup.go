package stores

import (
	"log"

	"github.com/storesight/console/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "console"); err != nil {
		log.Fatal("Failed to ensure schema console: ", err)
	}
	if err := db.EnsureExtensions(db.DB); err != nil {
		log.Fatal("Failed to enable uuid-ossp extension: ", err)
	}
	if err := db.DB.AutoMigrate(&Store{}); err != nil {
		log.Fatal("Failed to auto-migrate stores: ", err)
	}
	log.Println("[stores] module initialized")
}
