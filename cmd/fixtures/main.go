package main

import (
	"fmt"
	"os"
	"time"

	"afl-api/config"
	"afl-api/fixtures"
	"afl-api/logger"
	"afl-api/migrations"
	"afl-api/packages/core"
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

	if err := migrations.Run(db, log); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	module := core.NewModule(db, core.Options{
		Rules:        cfg.Rules(),
		DefaultPhoto: cfg.DefaultPhoto,
	}, log)
	fixtureManager := fixtures.NewFixtures(db, module, time.Now().UnixNano(), log)

	if len(os.Args) < 2 {
		printUsage()
		return
	}

	command := os.Args[1]

	switch command {
	case "generate":
		if err := fixtureManager.GenerateTestData(); err != nil {
			log.Fatal().Err(err).Msg("failed to generate fixtures")
		}
		fmt.Println("Fixtures generated successfully!")
	case "clear":
		if err := fixtureManager.ClearAllData(); err != nil {
			log.Fatal().Err(err).Msg("failed to clear fixtures")
		}
		fmt.Println("All fixture data cleared!")
	case "regenerate":
		fmt.Println("Clearing existing data...")
		if err := fixtureManager.ClearAllData(); err != nil {
			log.Fatal().Err(err).Msg("failed to clear fixtures")
		}
		fmt.Println("Generating new fixtures...")
		if err := fixtureManager.GenerateTestData(); err != nil {
			log.Fatal().Err(err).Msg("failed to generate fixtures")
		}
		fmt.Println("Fixtures regenerated successfully!")
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/fixtures generate    - Generate test data (10 players, 11 teams, 50 games)")
	fmt.Println("  go run ./cmd/fixtures clear       - Clear all fixture data")
	fmt.Println("  go run ./cmd/fixtures regenerate  - Clear and regenerate all data")
}
