package services

import (
	"fmt"

	"afl-api/packages/core/models"
	"afl-api/packages/core/utils"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// SettlementService turns finished games into ledger entries
type SettlementService struct {
	db     *gorm.DB
	ledger *LedgerService
	logger zerolog.Logger
}

func NewSettlementService(db *gorm.DB, ledger *LedgerService, logger zerolog.Logger) *SettlementService {
	return &SettlementService{
		db:     db,
		ledger: ledger,
		logger: logger,
	}
}

// sideRatings is the pre-game snapshot of every rating on one side
type sideRatings struct {
	team          float64
	attacker      float64
	defender      float64
	attackPlayer  float64
	defensePlayer float64
}

func (r sideRatings) positional() float64 {
	return r.attacker + r.defender
}

func (r sideRatings) individual() float64 {
	return r.attackPlayer + r.defensePlayer
}

// sideDeltas are the rating increments of one side
type sideDeltas struct {
	team       float64
	positional float64
	individual float64
}

// Settle applies an ended game to the ledger. Settling a game twice is a
// no-op.
func (s *SettlementService) Settle(gameID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var game models.Game
		if err := tx.First(&game, gameID).Error; err != nil {
			return fmt.Errorf("load game %d: %w", gameID, err)
		}
		return s.settle(tx, &game)
	})
}

func (s *SettlementService) settle(tx *gorm.DB, game *models.Game) error {
	if !game.Ended {
		return fmt.Errorf("%w: %s", ErrGameNotEnded, game.Timestamp)
	}

	result := tx.Model(&models.Game{}).
		Where("id = ? AND settled = ?", game.ID, false).
		Update("settled", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		s.logger.Warn().Str("game", game.Timestamp).Msg("game already settled, skipping")
		return nil
	}
	game.Settled = true

	if err := s.loadTeams(tx, game); err != nil {
		return err
	}

	left, err := s.snapshot(tx, game.LeftTeam)
	if err != nil {
		return err
	}
	right, err := s.snapshot(tx, game.RightTeam)
	if err != nil {
		return err
	}

	fractionLeft, fractionRight := utils.ScoreFractions(game.LeftScore, game.RightScore)

	leftDeltas := sideDeltas{
		team:       utils.RatingDelta(fractionLeft, left.team-right.team),
		positional: utils.RatingDelta(fractionLeft, left.positional()-right.positional()),
		individual: utils.RatingDelta(fractionLeft, left.individual()-right.individual()),
	}
	rightDeltas := sideDeltas{
		team:       utils.RatingDelta(fractionRight, right.team-left.team),
		positional: utils.RatingDelta(fractionRight, right.positional()-left.positional()),
		individual: utils.RatingDelta(fractionRight, right.individual()-left.individual()),
	}

	if err := s.applySide(tx, game.LeftTeam, game.OutcomeFor(models.SideLeft), leftDeltas, game.Timestamp); err != nil {
		return err
	}
	if err := s.applySide(tx, game.RightTeam, game.OutcomeFor(models.SideRight), rightDeltas, game.Timestamp); err != nil {
		return err
	}

	s.logger.Info().
		Str("game", game.Timestamp).
		Int("left_score", game.LeftScore).
		Int("right_score", game.RightScore).
		Float64("left_team_delta", leftDeltas.team).
		Float64("right_team_delta", rightDeltas.team).
		Msg("game settled")

	return nil
}

func (s *SettlementService) loadTeams(tx *gorm.DB, game *models.Game) error {
	if game.LeftTeam.ID != game.LeftTeamID {
		if err := tx.First(&game.LeftTeam, game.LeftTeamID).Error; err != nil {
			return fmt.Errorf("load left team %d: %w", game.LeftTeamID, err)
		}
	}
	if game.RightTeam.ID != game.RightTeamID {
		if err := tx.First(&game.RightTeam, game.RightTeamID).Error; err != nil {
			return fmt.Errorf("load right team %d: %w", game.RightTeamID, err)
		}
	}
	return nil
}

func (s *SettlementService) snapshot(tx *gorm.DB, team models.Team) (sideRatings, error) {
	subjects := []models.Subject{
		models.TeamSubject(team.ID),
		models.AttackerSubject(team.AttackPlayerID),
		models.DefenderSubject(team.DefensePlayerID),
		models.PlayerSubject(team.AttackPlayerID),
		models.PlayerSubject(team.DefensePlayerID),
	}

	ratings := make([]float64, len(subjects))
	for i, subject := range subjects {
		stats, err := s.ledger.currentStats(tx, subject)
		if err != nil {
			return sideRatings{}, err
		}
		ratings[i] = stats.EloRating
	}

	return sideRatings{
		team:          ratings[0],
		attacker:      ratings[1],
		defender:      ratings[2],
		attackPlayer:  ratings[3],
		defensePlayer: ratings[4],
	}, nil
}

// applySide appends one entry per subject on a side. A solo team's player
// gets a single overall entry.
func (s *SettlementService) applySide(tx *gorm.DB, team models.Team, outcome models.StatsDelta, deltas sideDeltas, timestamp string) error {
	entries := []struct {
		subject models.Subject
		rating  float64
	}{
		{models.TeamSubject(team.ID), deltas.team},
		{models.AttackerSubject(team.AttackPlayerID), deltas.positional},
		{models.DefenderSubject(team.DefensePlayerID), deltas.positional},
		{models.PlayerSubject(team.AttackPlayerID), deltas.individual},
	}
	if !team.IsSolo() {
		entries = append(entries, struct {
			subject models.Subject
			rating  float64
		}{models.PlayerSubject(team.DefensePlayerID), deltas.individual})
	}

	for _, entry := range entries {
		if _, err := s.ledger.appendStats(tx, entry.subject, outcome.WithRating(entry.rating), timestamp); err != nil {
			return fmt.Errorf("append stats for %s: %w", entry.subject, err)
		}
	}
	return nil
}

// recalculate rebuilds the whole ledger from the ended games in tx. Callers
// go through GameService so it never races a settlement.
func (s *SettlementService) recalculate(tx *gorm.DB) (int, error) {
	if err := s.ledger.reset(tx); err != nil {
		return 0, err
	}

	if err := tx.Model(&models.Game{}).Where("settled = ?", true).Update("settled", false).Error; err != nil {
		return 0, err
	}

	var players []models.Player
	if err := tx.Order("id ASC").Find(&players).Error; err != nil {
		return 0, err
	}
	for _, player := range players {
		for _, subject := range []models.Subject{
			models.PlayerSubject(player.ID),
			models.AttackerSubject(player.ID),
			models.DefenderSubject(player.ID),
		} {
			if _, err := s.ledger.appendStats(tx, subject, models.StatsDelta{}, utils.FirstTimestamp); err != nil {
				return 0, err
			}
		}
	}

	var teams []models.Team
	if err := tx.Order("id ASC").Find(&teams).Error; err != nil {
		return 0, err
	}
	for _, team := range teams {
		if _, err := s.ledger.appendStats(tx, models.TeamSubject(team.ID), models.StatsDelta{}, utils.FirstTimestamp); err != nil {
			return 0, err
		}
	}

	var games []models.Game
	if err := tx.Preload("LeftTeam").Preload("RightTeam").
		Where("ended = ?", true).
		Order("timestamp ASC").
		Order("id ASC").
		Find(&games).Error; err != nil {
		return 0, err
	}
	for i := range games {
		games[i].Settled = false
		if err := s.settle(tx, &games[i]); err != nil {
			return 0, err
		}
	}

	return len(games), nil
}
