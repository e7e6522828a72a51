// Command migrate applies or rolls back the ledger schema using
// golang-migrate, pointed at internal/store/postgres/migrations.
package main

import (
	"errors"
	"flag"
	"log"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"txledger/internal/config"
)

func main() {
	direction := flag.String("direction", "up", "migration direction: up or down")
	steps := flag.Int("steps", 0, "number of steps to apply (0 means all)")
	sourcePath := flag.String("source", "file://internal/store/postgres/migrations", "migration source URL")
	flag.Parse()

	cfg := config.Load()

	m, err := migrate.New(*sourcePath, "postgres://"+cfg.Database.User+":"+cfg.Database.Password+
		"@"+cfg.Database.Host+":"+strconv.Itoa(cfg.Database.Port)+"/"+cfg.Database.Database+
		"?sslmode="+cfg.Database.SSLMode)
	if err != nil {
		log.Fatalf("failed to initialize migrator: %v", err)
	}
	defer m.Close()

	switch *direction {
	case "up":
		if *steps == 0 {
			err = m.Up()
		} else {
			err = m.Steps(*steps)
		}
	case "down":
		if *steps == 0 {
			err = m.Down()
		} else {
			err = m.Steps(-*steps)
		}
	default:
		log.Fatalf("unknown direction %q, expected up or down", *direction)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("migration failed: %v", err)
	}
	log.Println("migration complete")
}
