package migrations

import (
	"afl-api/packages/core/models"

	"gorm.io/gorm"
)

func GetCoreMigrations() []MigrationDefinition {
	return []MigrationDefinition{
		{
			Name: "2024_01_01_000000_create_players_table",
			Up: func(db *gorm.DB) error {
				return db.Migrator().CreateTable(&models.Player{})
			},
			Down: func(db *gorm.DB) error {
				return db.Migrator().DropTable(&models.Player{})
			},
		},
		{
			Name: "2024_01_02_000000_create_teams_table",
			Up: func(db *gorm.DB) error {
				return db.Migrator().CreateTable(&models.Team{})
			},
			Down: func(db *gorm.DB) error {
				return db.Migrator().DropTable(&models.Team{})
			},
		},
		{
			Name: "2024_01_03_000000_create_games_table",
			Up: func(db *gorm.DB) error {
				return db.Migrator().CreateTable(&models.Game{})
			},
			Down: func(db *gorm.DB) error {
				return db.Migrator().DropTable(&models.Game{})
			},
		},
		{
			Name: "2024_01_04_000000_create_stats_tables",
			Up: func(db *gorm.DB) error {
				// Create stats table
				if err := db.Migrator().CreateTable(&models.Stats{}); err != nil {
					return err
				}

				// Create stats_pointers table
				if err := db.Migrator().CreateTable(&models.StatsPointer{}); err != nil {
					return err
				}

				return db.Exec("CREATE INDEX IF NOT EXISTS idx_stats_pointers_stats_id ON stats_pointers(stats_id)").Error
			},
			Down: func(db *gorm.DB) error {
				if err := db.Migrator().DropTable(&models.StatsPointer{}); err != nil {
					return err
				}
				return db.Migrator().DropTable(&models.Stats{})
			},
		},
	}
}
