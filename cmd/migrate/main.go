package main

import (
	"fmt"
	"os"
	"strconv"

	"afl-api/config"
	"afl-api/logger"
	"afl-api/migrations"
)

func main() {
	log := logger.New()

	cfg, err := config.Load(log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	log = logger.WithLevel(log, cfg.LogLevel)

	db, err := config.ConnectDatabase(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	migrator, err := migrations.NewMigrator(db, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create migrator")
	}
	migrator.AddMigrations(migrations.GetCoreMigrations()...)

	if len(os.Args) < 2 {
		printUsage()
		return
	}

	command := os.Args[1]

	switch command {
	case "migrate":
		if err := migrator.Migrate(); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
	case "rollback":
		steps := 1
		if len(os.Args) > 2 {
			if s, err := strconv.Atoi(os.Args[2]); err == nil {
				steps = s
			}
		}
		if err := migrator.Rollback(steps); err != nil {
			log.Fatal().Err(err).Msg("rollback failed")
		}
	case "status":
		showStatus(migrator)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/migrate migrate          - Run pending migrations")
	fmt.Println("  go run ./cmd/migrate rollback [steps] - Rollback migrations (default: 1)")
	fmt.Println("  go run ./cmd/migrate status           - Show migration status")
}

func showStatus(migrator *migrations.Migrator) {
	statuses, err := migrator.Status()
	if err != nil {
		fmt.Printf("Failed to read migration status: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Migration Status:")
	fmt.Println("Ran | Batch | Name")
	fmt.Println("----|-------|-----")

	for _, status := range statuses {
		ran := "no"
		if status.Ran {
			ran = "yes"
		}
		fmt.Printf("%-3s | %-5d | %s\n", ran, status.Batch, status.Name)
	}
}
