package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"afl-api/packages/core/models"
	"afl-api/packages/core/utils"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// GameService owns the game lifecycle. Every method that may end a game runs
// under mu inside a single transaction; reads of an open game are reads that
// may write, because an expired game is ended and settled on the spot.
type GameService struct {
	mu         sync.Mutex
	db         *gorm.DB
	ledger     *LedgerService
	settlement *SettlementService
	teams      *TeamService
	feed       *LiveFeed
	rules      models.GameRules
	logger     zerolog.Logger
	now        func() time.Time
}

// gameChange is an event waiting for its transaction to commit
type gameChange struct {
	event models.GameEventType
	game  models.Game
}

func NewGameService(db *gorm.DB, ledger *LedgerService, settlement *SettlementService, teams *TeamService, feed *LiveFeed, rules models.GameRules, logger zerolog.Logger) *GameService {
	return &GameService{
		db:         db,
		ledger:     ledger,
		settlement: settlement,
		teams:      teams,
		feed:       feed,
		rules:      rules,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *GameService) Rules() models.GameRules {
	return s.rules
}

// CreateOrUpdateGame upserts a game by timestamp. A new timestamp ends and
// settles every open game before the insert. An existing open game gets its
// teams and scores replaced; an ended game cannot be changed.
//
// A past timestamp older than the time limit is ended and settled right away,
// which is how finished games are backfilled. Updating an open game that has
// already expired ends it on its stored score and reports ErrGameEnded.
func (s *GameService) CreateOrUpdateGame(req models.CreateGameRequest) (*models.Game, error) {
	timestamp := req.Timestamp
	if timestamp == "" {
		timestamp = utils.FormatTimestamp(s.now())
	} else if _, err := utils.ParseTimestamp(timestamp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTimestamp, err)
	}

	if req.LeftTeamID == req.RightTeamID {
		return nil, ErrSameTeam
	}
	if (req.LeftScore != nil && *req.LeftScore < 0) || (req.RightScore != nil && *req.RightScore < 0) {
		return nil, ErrInvalidScore
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var game models.Game
	var changes []gameChange
	var expired bool
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.requireTeams(tx, req.LeftTeamID, req.RightTeamID); err != nil {
			return err
		}

		var existing models.Game
		result := tx.Where("timestamp = ?", timestamp).Limit(1).Find(&existing)
		if result.Error != nil {
			return result.Error
		}

		event := models.EventGameCreated
		if result.RowsAffected == 0 {
			ended, err := s.endOpenGames(tx, false)
			if err != nil {
				return err
			}
			changes = append(changes, ended...)

			existing = models.Game{
				Timestamp:   timestamp,
				LeftTeamID:  req.LeftTeamID,
				RightTeamID: req.RightTeamID,
			}
			if req.LeftScore != nil {
				existing.LeftScore = *req.LeftScore
			}
			if req.RightScore != nil {
				existing.RightScore = *req.RightScore
			}
			if err := tx.Create(&existing).Error; err != nil {
				return err
			}
		} else {
			if existing.Ended {
				return fmt.Errorf("%w: %s", models.ErrGameEnded, timestamp)
			}

			// An expired game settles on the score it reached before this update
			var err error
			expired, err = s.checkExpiry(tx, &existing)
			if err != nil {
				return err
			}
			if expired {
				game, err = s.reload(tx, existing.ID)
				if err != nil {
					return err
				}
				changes = append(changes, gameChange{event: models.EventGameEnded, game: game})
				return nil
			}

			updates := map[string]interface{}{
				"left_team_id":  req.LeftTeamID,
				"right_team_id": req.RightTeamID,
			}
			if req.LeftScore != nil {
				updates["left_score"] = *req.LeftScore
			}
			if req.RightScore != nil {
				updates["right_score"] = *req.RightScore
			}
			if err := tx.Model(&models.Game{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
				return err
			}
			event = models.EventGoal
		}

		var err error
		game, err = s.reload(tx, existing.ID)
		if err != nil {
			return err
		}
		changes = append(changes, gameChange{event: event, game: game})

		ended, err := s.checkExpiry(tx, &game)
		if err != nil {
			return err
		}
		if ended {
			changes = append(changes, gameChange{event: models.EventGameEnded, game: game})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(changes)
	if expired {
		return nil, fmt.Errorf("%w: %s", models.ErrGameEnded, timestamp)
	}
	return &game, nil
}

// StartGame builds both teams from their players and opens a game now
func (s *GameService) StartGame(req models.StartGameRequest) (*models.Game, error) {
	left, err := s.teams.CreateTeam(models.CreateTeamRequest{
		DefensePlayerID: req.LeftDefensePlayerID,
		AttackPlayerID:  req.LeftAttackPlayerID,
	})
	if err != nil {
		return nil, err
	}

	right, err := s.teams.CreateTeam(models.CreateTeamRequest{
		DefensePlayerID: req.RightDefensePlayerID,
		AttackPlayerID:  req.RightAttackPlayerID,
	})
	if err != nil {
		return nil, err
	}

	return s.CreateOrUpdateGame(models.CreateGameRequest{
		LeftTeamID:  left.ID,
		RightTeamID: right.ID,
	})
}

// RecordGoal adds value goals to side in the open game. The game is ended and
// settled once a side reaches the goal limit.
func (s *GameService) RecordGoal(side models.Side, value int) (*models.Game, error) {
	if _, err := models.ParseSide(string(side)); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var game models.Game
	var changes []gameChange
	var expired bool
	err := s.db.Transaction(func(tx *gorm.DB) error {
		found, err := s.findOpen(tx)
		if err != nil {
			return err
		}
		if found == nil {
			return ErrNoOpenGame
		}
		game = *found

		expired, err = s.checkExpiry(tx, &game)
		if err != nil {
			return err
		}
		if expired {
			changes = append(changes, gameChange{event: models.EventGameEnded, game: game})
			return nil
		}

		if err := game.RecordGoal(side, value); err != nil {
			return err
		}
		if err := tx.Model(&models.Game{}).Where("id = ?", game.ID).Updates(map[string]interface{}{
			"left_score":  game.LeftScore,
			"right_score": game.RightScore,
		}).Error; err != nil {
			return err
		}
		changes = append(changes, gameChange{event: models.EventGoal, game: game})

		ended, err := s.checkExpiry(tx, &game)
		if err != nil {
			return err
		}
		if ended {
			changes = append(changes, gameChange{event: models.EventGameEnded, game: game})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(changes)
	if expired {
		return nil, ErrNoOpenGame
	}

	s.logger.Info().
		Str("game", game.Timestamp).
		Str("side", string(side)).
		Int("value", value).
		Int("left_score", game.LeftScore).
		Int("right_score", game.RightScore).
		Msg("goal recorded")

	return &game, nil
}

// GetOpenGame returns the open game, ending it first when it has expired
func (s *GameService) GetOpenGame() (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var game *models.Game
	var changes []gameChange
	err := s.db.Transaction(func(tx *gorm.DB) error {
		found, err := s.findOpen(tx)
		if err != nil || found == nil {
			return err
		}

		ended, err := s.checkExpiry(tx, found)
		if err != nil {
			return err
		}
		if ended {
			changes = append(changes, gameChange{event: models.EventGameEnded, game: *found})
			return nil
		}
		game = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(changes)
	if game == nil {
		return nil, ErrNoOpenGame
	}
	return game, nil
}

func (s *GameService) IsGameOn() (bool, error) {
	_, err := s.GetOpenGame()
	if errors.Is(err, ErrNoOpenGame) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *GameService) GetGameByTimestamp(timestamp string) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var game models.Game
	var changes []gameChange
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		game, err = s.findByTimestamp(tx, timestamp)
		if err != nil {
			return err
		}

		ended, err := s.checkExpiry(tx, &game)
		if err != nil {
			return err
		}
		if ended {
			changes = append(changes, gameChange{event: models.EventGameEnded, game: game})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(changes)
	return &game, nil
}

// GetAllGames returns games newest first. Expired games are ended before the
// listing is read. A limit of zero or less returns every game.
func (s *GameService) GetAllGames(limit int) ([]models.Game, error) {
	if limit <= 0 {
		limit = -1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var games []models.Game
	var changes []gameChange
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		changes, err = s.endOpenGames(tx, true)
		if err != nil {
			return err
		}

		return preloadTeams(tx).
			Order("timestamp DESC").
			Limit(limit).
			Find(&games).Error
	})
	if err != nil {
		return nil, err
	}

	s.publish(changes)
	return games, nil
}

// EndGame ends and settles one open game
func (s *GameService) EndGame(timestamp string) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var game models.Game
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		game, err = s.findByTimestamp(tx, timestamp)
		if err != nil {
			return err
		}
		if game.Ended {
			return fmt.Errorf("%w: %s", models.ErrGameEnded, timestamp)
		}
		return s.endGame(tx, &game)
	})
	if err != nil {
		return nil, err
	}

	s.publish([]gameChange{{event: models.EventGameEnded, game: game}})
	return &game, nil
}

// EndAllOpenGames ends and settles every open game, returning how many ended
func (s *GameService) EndAllOpenGames() (int, error) {
	return s.closeOpenGames(false)
}

// ExpireOpenGames ends only the open games that reached a limit
func (s *GameService) ExpireOpenGames() (int, error) {
	return s.closeOpenGames(true)
}

// DeleteGameByTimestamp removes a game and rebuilds the ledger without it
func (s *GameService) DeleteGameByTimestamp(timestamp string) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var game models.Game
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		game, err = s.findByTimestamp(tx, timestamp)
		if err != nil {
			return err
		}

		if err := tx.Delete(&models.Game{}, game.ID).Error; err != nil {
			return err
		}

		replayed, err := s.settlement.recalculate(tx)
		if err != nil {
			return err
		}

		s.logger.Info().
			Str("game", timestamp).
			Int("replayed", replayed).
			Msg("game deleted")
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish([]gameChange{{event: models.EventGameDeleted, game: game}})
	return &game, nil
}

// RecalculateStats rebuilds every rating from the ended games, serialized
// with every other game mutation
func (s *GameService) RecalculateStats() error {
	start := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	var replayed int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		replayed, err = s.settlement.recalculate(tx)
		return err
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("stats recalculation failed")
		return err
	}

	s.logger.Info().
		Int("games", replayed).
		Dur("duration", s.now().Sub(start)).
		Msg("stats recalculated")
	return nil
}

// View renders a game for observers. It reads the ledger, so it must not be
// called from inside a transaction.
func (s *GameService) View(game *models.Game) (models.GameView, error) {
	view := models.GameView{
		Game:    *game,
		State:   game.State(),
		Summary: game.Summary(),
	}

	left, err := s.ledger.CurrentStats(models.TeamSubject(game.LeftTeamID))
	if err != nil {
		return models.GameView{}, err
	}
	right, err := s.ledger.CurrentStats(models.TeamSubject(game.RightTeamID))
	if err != nil {
		return models.GameView{}, err
	}
	view.PredictedLeft, view.PredictedRight = utils.PredictedScore(left.EloRating-right.EloRating, s.rules.GoalLimit)

	timeLeft := s.timeLeft(game)
	view.TimeLeft = utils.FormatDuration(timeLeft)
	view.TimeLeftSeconds = int64(timeLeft.Seconds())

	return view, nil
}

// Score is the compact score line polled by the table display
func (s *GameService) Score(timestamp string) (*models.ScoreResponse, error) {
	game, err := s.GetGameByTimestamp(timestamp)
	if err != nil {
		return nil, err
	}

	return &models.ScoreResponse{
		Score: fmt.Sprintf("%dx%d", game.LeftScore, game.RightScore),
		Time:  utils.FormatDuration(s.timeLeft(game)),
		Ended: game.Ended,
	}, nil
}

func (s *GameService) timeLeft(game *models.Game) time.Duration {
	if game.Ended {
		return 0
	}
	left := game.TimeLeft(s.now(), s.rules)
	if left < 0 {
		return 0
	}
	return left
}

func (s *GameService) closeOpenGames(onlyExpired bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var changes []gameChange
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		changes, err = s.endOpenGames(tx, onlyExpired)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.publish(changes)
	return len(changes), nil
}

// checkExpiry ends game when it reached the goal or time limit
func (s *GameService) checkExpiry(tx *gorm.DB, game *models.Game) (bool, error) {
	if game.Ended || !game.ShouldEnd(s.now(), s.rules) {
		return false, nil
	}
	if err := s.endGame(tx, game); err != nil {
		return false, err
	}
	return true, nil
}

func (s *GameService) endOpenGames(tx *gorm.DB, onlyExpired bool) ([]gameChange, error) {
	var open []models.Game
	if err := preloadTeams(tx).Where("ended = ?", false).Order("timestamp ASC").Find(&open).Error; err != nil {
		return nil, err
	}

	var changes []gameChange
	for i := range open {
		game := &open[i]
		if onlyExpired && !game.ShouldEnd(s.now(), s.rules) {
			continue
		}
		if err := s.endGame(tx, game); err != nil {
			return nil, err
		}
		changes = append(changes, gameChange{event: models.EventGameEnded, game: *game})
	}
	return changes, nil
}

func (s *GameService) endGame(tx *gorm.DB, game *models.Game) error {
	if err := tx.Model(&models.Game{}).Where("id = ?", game.ID).Update("ended", true).Error; err != nil {
		return err
	}
	game.Ended = true

	if err := s.settlement.settle(tx, game); err != nil {
		return err
	}

	s.logger.Info().
		Str("game", game.Timestamp).
		Int("left_score", game.LeftScore).
		Int("right_score", game.RightScore).
		Msg("game ended")
	return nil
}

func (s *GameService) findOpen(tx *gorm.DB) (*models.Game, error) {
	var game models.Game
	result := preloadTeams(tx).Where("ended = ?", false).Order("timestamp DESC").Limit(1).Find(&game)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &game, nil
}

func (s *GameService) findByTimestamp(tx *gorm.DB, timestamp string) (models.Game, error) {
	var game models.Game
	result := preloadTeams(tx).Where("timestamp = ?", timestamp).Limit(1).Find(&game)
	if result.Error != nil {
		return models.Game{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Game{}, fmt.Errorf("%w: %s", ErrGameNotFound, timestamp)
	}
	return game, nil
}

func (s *GameService) reload(tx *gorm.DB, id uint) (models.Game, error) {
	var game models.Game
	if err := preloadTeams(tx).First(&game, id).Error; err != nil {
		return models.Game{}, err
	}
	return game, nil
}

func (s *GameService) requireTeams(tx *gorm.DB, ids ...uint) error {
	for _, id := range ids {
		var count int64
		if err := tx.Model(&models.Team{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("%w: %d", ErrTeamNotFound, id)
		}
	}
	return nil
}

func (s *GameService) publish(changes []gameChange) {
	for _, change := range changes {
		view, err := s.View(&change.game)
		if err != nil {
			s.logger.Warn().Err(err).Str("game", change.game.Timestamp).Msg("could not render game event")
			continue
		}
		s.feed.Publish(models.GameEvent{Type: change.event, Game: view})
	}
}

func preloadTeams(db *gorm.DB) *gorm.DB {
	return db.Preload("LeftTeam.DefensePlayer").
		Preload("LeftTeam.AttackPlayer").
		Preload("RightTeam.DefensePlayer").
		Preload("RightTeam.AttackPlayer")
}
