// Package db opens the application database connection.
package db

import (
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"stockapp_backend/internal/feature/stocks/adapters/eodstore"
)

// OpenDB opens the EOD store database. A DATABASE_URL selects Postgres;
// otherwise a local SQLite file is used (SQLITE_PATH, default "stockapp.db").
func OpenDB() *gorm.DB {
	dsn := os.Getenv("DATABASE_URL")
	path := os.Getenv("SQLITE_PATH")
	if path == "" {
		path = "stockapp.db"
	}

	var (
		db  *gorm.DB
		err error
	)

	deadline := time.Now().Add(60 * time.Second)
	for {
		if dsn != "" {
			db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		} else {
			db, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
		}
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			log.Fatalf("DB connect failed after 60s: %v", err)
		}
		log.Printf("DB connect failed, retrying...: %v", err)
		time.Sleep(3 * time.Second)
	}

	if os.Getenv("RUN_MIGRATIONS") == "true" {
		if err := db.AutoMigrate(&eodstore.EodModel{}); err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}
	}

	return db
}
