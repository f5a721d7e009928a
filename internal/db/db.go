package db

import (
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Open dials Postgres with the console's pool and SQL logging settings.
func Open(dsn string) (*gorm.DB, error) {
	level := logger.Warn
	if os.Getenv("SQL_DEBUG") == "1" {
		level = logger.Info
	}

	lg := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             100 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  os.Getenv("LOG_FORMAT") == "console",
		},
	)

	d, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: lg})
	if err != nil {
		return nil, err
	}

	sqlDB, err := d.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return d, nil
}

// Connect opens DATABASE_URL into the package-level DB or exits.
func Connect() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is empty")
	}

	d, err := Open(dsn)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	DB = d
	log.Println("[db] connected")
}
