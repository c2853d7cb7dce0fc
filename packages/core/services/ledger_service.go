package services

import (
	"fmt"
	"time"

	"afl-api/packages/core/models"
	"afl-api/packages/core/utils"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerService keeps the append-only stats history. The latest row of each
// subject is found through stats_pointers, which moves in the same
// transaction as the insert. Rows of one subject are stamped in
// non-decreasing timestamp order.
type LedgerService struct {
	db     *gorm.DB
	logger zerolog.Logger
	now    func() time.Time
}

func NewLedgerService(db *gorm.DB, logger zerolog.Logger) *LedgerService {
	return &LedgerService{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// CurrentStats returns the latest entry of subject, or an unsaved zero entry
// at the initial rating when the subject has none.
func (s *LedgerService) CurrentStats(subject models.Subject) (*models.Stats, error) {
	return s.currentStats(s.db, subject)
}

func (s *LedgerService) AppendStats(subject models.Subject, delta models.StatsDelta, timestamp string) (*models.Stats, error) {
	var stats *models.Stats
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		stats, err = s.appendStats(tx, subject, delta, timestamp)
		return err
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// InitializeSubject writes the first, zero-delta entry of a new subject
func (s *LedgerService) InitializeSubject(subject models.Subject, timestamp string) (*models.Stats, error) {
	return s.AppendStats(subject, models.StatsDelta{}, timestamp)
}

// History returns the latest limit entries of subject, newest first. A limit
// of zero or less returns all of them.
func (s *LedgerService) History(subject models.Subject, limit int) ([]models.Stats, error) {
	if limit <= 0 {
		limit = -1
	}

	var history []models.Stats
	result := s.db.Where(subject.Column()+" = ?", subject.ID).
		Order("timestamp DESC").
		Order("id DESC").
		Limit(limit).
		Find(&history)

	if result.Error != nil {
		return nil, result.Error
	}

	return history, nil
}

// Reset drops every entry and pointer
func (s *LedgerService) Reset() error {
	return s.db.Transaction(s.reset)
}

func (s *LedgerService) currentStats(tx *gorm.DB, subject models.Subject) (*models.Stats, error) {
	var pointer models.StatsPointer
	result := tx.Where("subject_kind = ? AND subject_id = ?", subject.Kind, subject.ID).Limit(1).Find(&pointer)
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		stats := models.NewStats(subject, utils.FormatTimestamp(s.now()))
		return &stats, nil
	}

	var stats models.Stats
	if err := tx.First(&stats, pointer.StatsID).Error; err != nil {
		return nil, fmt.Errorf("load stats %d of %s: %w", pointer.StatsID, subject, err)
	}
	return &stats, nil
}

func (s *LedgerService) appendStats(tx *gorm.DB, subject models.Subject, delta models.StatsDelta, timestamp string) (*models.Stats, error) {
	current, err := s.currentStats(tx, subject)
	if err != nil {
		return nil, err
	}

	// A subject's entries never go back in time, so the pointer and the
	// timestamp order agree on the latest one. Backfilled games land here.
	if current.ID != 0 && timestamp < current.Timestamp {
		timestamp = current.Timestamp
	}

	next := current.Apply(delta, timestamp)
	if err := tx.Create(&next).Error; err != nil {
		return nil, err
	}

	pointer := models.StatsPointer{
		SubjectKind: subject.Kind,
		SubjectID:   subject.ID,
		StatsID:     next.ID,
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "subject_kind"}, {Name: "subject_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"stats_id"}),
	}).Create(&pointer).Error; err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("subject", subject.String()).
		Uint("stats_id", next.ID).
		Float64("elo_rating", next.EloRating).
		Msg("stats appended")

	return &next, nil
}

func (s *LedgerService) reset(tx *gorm.DB) error {
	if err := tx.Where("1 = 1").Delete(&models.StatsPointer{}).Error; err != nil {
		return err
	}
	return tx.Where("1 = 1").Delete(&models.Stats{}).Error
}
