// Command seed loads a demo account (stores, cameras with published zones,
// employees and open camera alerts) into a migrated console database.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

var (
	dsn         = flag.String("dsn", "", "Postgres DSN (default: env DATABASE_URL)")
	dryRun      = flag.Bool("dry-run", false, "Build and print the plan only; no DB writes")
	confirm     = flag.Bool("confirm", false, "Required to replace an existing demo account")
	advisoryKey = flag.Int64("advisory-lock", 0, "Optional Postgres advisory lock key (e.g., 424242). 0 = disabled")
	seed        = flag.Int64("seed", 1, "Random seed; the same seed gives the same layout")

	email       = flag.String("email", "demo@storesight.example", "Owner login")
	password    = flag.String("password", "demo-password", "Owner password")
	accountName = flag.String("account", "Demo Retail Co", "Account name")
	plan        = flag.String("plan", "growth", "Plan code: starter, growth, enterprise")
	storeCount  = flag.Int("stores", 3, "Number of stores")
	camerasPer  = flag.Int("cameras", 4, "Cameras per store")
	staffPer    = flag.Int("employees", 6, "Employees per store")
	offline     = flag.Float64("offline", 0.15, "Fraction of cameras seeded offline with an open alert")
)

func main() {
	_ = godotenv.Load(".env.local")
	flag.Parse()
	if *dsn == "" {
		*dsn = os.Getenv("DATABASE_URL")
	}
	if len(*password) < 8 {
		fatalf("--password must be at least 8 characters")
	}

	p, err := buildPlan(Options{
		Email:           *email,
		Password:        *password,
		AccountName:     *accountName,
		Plan:            *plan,
		Stores:          *storeCount,
		CamerasPerStore: *camerasPer,
		EmployeesPer:    *staffPer,
		OfflineRatio:    *offline,
	}, rand.New(rand.NewSource(*seed)), time.Now().UTC())
	if err != nil {
		fatalf("plan: %v", err)
	}
	printPlan(p)

	if *dryRun {
		fmt.Println("Dry run complete. No changes made.")
		return
	}
	if *dsn == "" {
		fatalf("--dsn not provided and DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	conn, err := sql.Open("pgx", *dsn)
	if err != nil {
		fatalf("connect: %v", err)
	}
	defer conn.Close()

	if err := conn.PingContext(ctx); err != nil {
		fatalf("ping: %v", err)
	}

	tx, err := conn.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		fatalf("begin tx: %v", err)
	}
	defer func() {
		_ = tx.Rollback() // no-op if already committed
	}()

	if *advisoryKey != 0 {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, *advisoryKey); err != nil {
			fatalf("advisory lock: %v", err)
		}
	}
	if err := checkSchema(ctx, tx); err != nil {
		fatalf("%v", err)
	}

	before, err := countAll(ctx, tx)
	if err != nil {
		fatalf("pre-count: %v", err)
	}
	fmt.Printf("Before: accounts=%d stores=%d cameras=%d employees=%d alerts=%d\n",
		before.Accounts, before.Stores, before.Cameras, before.Employees, before.Alerts)

	existing, err := existingAccount(ctx, tx, p.Owner.Email)
	if err != nil {
		fatalf("lookup owner: %v", err)
	}
	if existing != "" {
		if !*confirm {
			fatalf("%s already owns account %s. Re-run with --confirm to replace it.", p.Owner.Email, existing)
		}
		if err := wipeAccount(ctx, tx, existing); err != nil {
			fatalf("wipe: %v", err)
		}
		fmt.Printf("Removed previous demo account %s\n", existing)
	}

	if err := insertPlan(ctx, tx, p); err != nil {
		fatalf("insert: %v", err)
	}

	after, err := countAll(ctx, tx)
	if err != nil {
		fatalf("post-count: %v", err)
	}
	fmt.Printf("After:  accounts=%d stores=%d cameras=%d employees=%d alerts=%d\n",
		after.Accounts, after.Stores, after.Cameras, after.Employees, after.Alerts)

	if err := tx.Commit(); err != nil {
		fatalf("commit: %v", err)
	}
	fmt.Printf("Seed complete. Log in as %s\n", p.Owner.Email)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "seed: "+format+"\n", args...)
	os.Exit(1)
}
