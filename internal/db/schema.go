package db

import "gorm.io/gorm"

func EnsureSchema(d *gorm.DB, schema string) error {
	return d.Exec(`CREATE SCHEMA IF NOT EXISTS "` + schema + `"`).Error
}

// EnsureExtensions enables the Postgres extensions every module relies on.
func EnsureExtensions(d *gorm.DB) error {
	return d.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error
}
