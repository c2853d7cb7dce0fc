package migrations

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type Migration struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"unique;not null"`
	Batch     int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

type MigrationFunc func(*gorm.DB) error

type MigrationDefinition struct {
	Name string
	Up   MigrationFunc
	Down MigrationFunc
}

// MigrationStatus reports whether a known migration has been applied
type MigrationStatus struct {
	Name  string
	Ran   bool
	Batch int
}

type Migrator struct {
	db         *gorm.DB
	migrations []MigrationDefinition
	logger     zerolog.Logger
}

func NewMigrator(db *gorm.DB, logger zerolog.Logger) (*Migrator, error) {
	if err := db.AutoMigrate(&Migration{}); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}
	return &Migrator{
		db:         db,
		migrations: []MigrationDefinition{},
		logger:     logger.With().Str("component", "migrator").Logger(),
	}, nil
}

func (m *Migrator) AddMigration(migration MigrationDefinition) {
	m.migrations = append(m.migrations, migration)
}

func (m *Migrator) AddMigrations(migrations ...MigrationDefinition) {
	m.migrations = append(m.migrations, migrations...)
}

func (m *Migrator) Migrate() error {
	m.logger.Info().Msg("running database migrations")

	batch := m.getNextBatch()

	for _, migration := range m.migrations {
		if m.hasRun(migration.Name) {
			continue
		}

		m.logger.Info().Str("migration", migration.Name).Msg("migrating")

		tx := m.db.Begin()

		if err := migration.Up(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %s failed: %w", migration.Name, err)
		}

		migrationRecord := Migration{
			Name:  migration.Name,
			Batch: batch,
		}

		if err := tx.Create(&migrationRecord).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %s: %w", migration.Name, err)
		}

		if err := tx.Commit().Error; err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", migration.Name, err)
		}
		m.logger.Info().Str("migration", migration.Name).Int("batch", batch).Msg("migrated")
	}

	m.logger.Info().Msg("migration completed successfully")
	return nil
}

func (m *Migrator) Rollback(steps int) error {
	if steps <= 0 {
		steps = 1
	}

	m.logger.Info().Int("steps", steps).Msg("rolling back migrations")

	batch := m.getLatestBatch()

	for i := 0; i < steps && batch > 0; i++ {
		var migrationsToRollback []Migration
		if err := m.db.Where("batch = ?", batch).Order("id DESC").Find(&migrationsToRollback).Error; err != nil {
			return err
		}

		for _, migrationRecord := range migrationsToRollback {
			migration := m.findMigration(migrationRecord.Name)
			if migration == nil {
				return fmt.Errorf("migration definition not found: %s", migrationRecord.Name)
			}

			if migration.Down == nil {
				return fmt.Errorf("rollback not defined for migration: %s", migrationRecord.Name)
			}

			m.logger.Info().Str("migration", migrationRecord.Name).Msg("rolling back")

			tx := m.db.Begin()

			if err := migration.Down(tx); err != nil {
				tx.Rollback()
				return fmt.Errorf("rollback failed for %s: %w", migrationRecord.Name, err)
			}

			if err := tx.Delete(&migrationRecord).Error; err != nil {
				tx.Rollback()
				return fmt.Errorf("failed to remove migration record %s: %w", migrationRecord.Name, err)
			}

			if err := tx.Commit().Error; err != nil {
				return fmt.Errorf("failed to commit rollback of %s: %w", migrationRecord.Name, err)
			}
			m.logger.Info().Str("migration", migrationRecord.Name).Msg("rolled back")
		}

		batch--
	}

	m.logger.Info().Msg("rollback completed successfully")
	return nil
}

// Status lists every registered migration in order
func (m *Migrator) Status() ([]MigrationStatus, error) {
	var records []Migration
	if err := m.db.Find(&records).Error; err != nil {
		return nil, err
	}

	ran := make(map[string]int, len(records))
	for _, record := range records {
		ran[record.Name] = record.Batch
	}

	statuses := make([]MigrationStatus, 0, len(m.migrations))
	for _, migration := range m.migrations {
		batch, ok := ran[migration.Name]
		statuses = append(statuses, MigrationStatus{
			Name:  migration.Name,
			Ran:   ok,
			Batch: batch,
		})
	}
	return statuses, nil
}

func (m *Migrator) hasRun(name string) bool {
	var count int64
	m.db.Model(&Migration{}).Where("name = ?", name).Count(&count)
	return count > 0
}

func (m *Migrator) getNextBatch() int {
	return m.getLatestBatch() + 1
}

func (m *Migrator) getLatestBatch() int {
	var migration Migration
	m.db.Order("batch DESC").Limit(1).Find(&migration)
	return migration.Batch
}

func (m *Migrator) findMigration(name string) *MigrationDefinition {
	for i := range m.migrations {
		if m.migrations[i].Name == name {
			return &m.migrations[i]
		}
	}
	return nil
}

// Run applies every migration of the application
func Run(db *gorm.DB, logger zerolog.Logger) error {
	migrator, err := NewMigrator(db, logger)
	if err != nil {
		return err
	}
	migrator.AddMigrations(GetCoreMigrations()...)
	return migrator.Migrate()
}
