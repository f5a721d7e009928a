package cameras

import (
	"log"

	"github.com/storesight/console/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "console"); err != nil {
		log.Fatal("Failed to ensure schema console: ", err)
	}
	if err := db.DB.AutoMigrate(&Camera{}, &ROIRecord{}); err != nil {
		log.Fatal("Failed to auto-migrate cameras: ", err)
	}
	log.Println("[cameras] module initialized")
}
