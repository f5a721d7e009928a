// Command prune deletes expired sessions and aged-out webhook deliveries and
// journey events.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/storesight/console/internal/db"
	"gorm.io/gorm"
)

type target struct {
	label string
	table string
	where string
	arg   time.Time
}

func main() {
	godotenv.Load(".env.local")

	deliveryDays := flag.Int("deliveries", 7, "Keep edge webhook deliveries for this many days")
	journeyDays := flag.Int("journey", 180, "Keep journey events for this many days")
	dryRun := flag.Bool("dry-run", false, "Count only; delete nothing")
	flag.Parse()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	conn, err := db.Open(dbURL)
	if err != nil {
		log.Fatalf("DB connection error: %v", err)
	}

	now := time.Now()
	targets := []target{
		{"expired sessions", "console_auth.sessions", "expires_at < ?", now},
		{"edge deliveries", "console.edge_deliveries", "received_at < ?", now.AddDate(0, 0, -*deliveryDays)},
		{"journey events", "console.journey_events", "received_at < ?", now.AddDate(0, 0, -*journeyDays)},
	}

	for _, t := range targets {
		n, err := prune(conn, t, *dryRun)
		if err != nil {
			log.Fatalf("%s: %v", t.label, err)
		}
		verb := "Deleted"
		if *dryRun {
			verb = "Would delete"
		}
		fmt.Printf("%s %d %s\n", verb, n, t.label)
	}
}

func prune(conn *gorm.DB, t target, dryRun bool) (int64, error) {
	if dryRun {
		var n int64
		err := conn.Table(t.table).Where(t.where, t.arg).Count(&n).Error
		return n, err
	}
	res := conn.Exec("DELETE FROM "+t.table+" WHERE "+t.where, t.arg)
	return res.RowsAffected, res.Error
}
