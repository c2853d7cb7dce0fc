package services

import (
	"time"

	"afl-api/packages/core/models"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// ExpiryService closes open games that outlived their limits without a
// reader noticing
type ExpiryService struct {
	db          *gorm.DB
	gameService *GameService
	logger      zerolog.Logger
}

func NewExpiryService(db *gorm.DB, gameService *GameService, logger zerolog.Logger) *ExpiryService {
	return &ExpiryService{
		db:          db,
		gameService: gameService,
		logger:      logger,
	}
}

// ExpireOpenGames ends and settles every open game past a limit
func (s *ExpiryService) ExpireOpenGames() (int, error) {
	start := time.Now()

	ended, err := s.gameService.ExpireOpenGames()
	if err != nil {
		s.logger.Error().Err(err).Msg("error expiring open games")
		return 0, err
	}

	if ended == 0 {
		s.logger.Debug().Msg("no expired games found")
		return 0, nil
	}

	s.logger.Info().
		Int("ended", ended).
		Dur("duration", time.Since(start)).
		Msg("expired games ended")
	return ended, nil
}

// GetOpenGamesCount returns the number of games not yet ended
func (s *ExpiryService) GetOpenGamesCount() (int64, error) {
	var count int64
	result := s.db.Model(&models.Game{}).Where("ended = ?", false).Count(&count)

	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}
