package auth

import (
	"log"

	"github.com/storesight/console/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "console_auth"); err != nil {
		log.Fatal("Failed to ensure schema console_auth: ", err)
	}

	if err := db.DB.AutoMigrate(&Account{}, &User{}, &Session{}); err != nil {
		log.Fatal("Failed to auto-migrate auth tables: ", err)
	}

	log.Println("[auth] module initialized")
}

// DefaultStore is the database-backed Store.
func DefaultStore() Store {
	return gormStore{}
}
