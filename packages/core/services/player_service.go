package services

import (
	"fmt"
	"strings"
	"time"

	"afl-api/packages/core/models"
	"afl-api/packages/core/utils"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type PlayerService struct {
	db           *gorm.DB
	ledger       *LedgerService
	defaultPhoto string
	logger       zerolog.Logger
	now          func() time.Time
}

func NewPlayerService(db *gorm.DB, ledger *LedgerService, defaultPhoto string, logger zerolog.Logger) *PlayerService {
	return &PlayerService{
		db:           db,
		ledger:       ledger,
		defaultPhoto: defaultPhoto,
		logger:       logger,
		now:          time.Now,
	}
}

// CreatePlayer inserts a player and opens its three rating tracks. Names are
// unique regardless of case.
func (s *PlayerService) CreatePlayer(req models.CreatePlayerRequest) (*models.Player, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrInvalidPlayerName
	}

	photo := strings.TrimSpace(req.Photo)
	if photo == "" {
		photo = s.defaultPhoto
	}

	player := models.Player{
		Name:  name,
		Photo: photo,
	}

	timestamp := utils.FormatTimestamp(s.now())
	err := s.db.Transaction(func(tx *gorm.DB) error {
		taken, err := s.nameTaken(tx, name, 0)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: %s", ErrPlayerAlreadyExists, name)
		}

		if err := tx.Create(&player).Error; err != nil {
			return err
		}

		for _, subject := range []models.Subject{
			models.PlayerSubject(player.ID),
			models.AttackerSubject(player.ID),
			models.DefenderSubject(player.ID),
		} {
			if _, err := s.ledger.appendStats(tx, subject, models.StatsDelta{}, timestamp); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Uint("player_id", player.ID).Str("name", player.Name).Msg("player created")
	return &player, nil
}

func (s *PlayerService) GetPlayerByID(id uint) (*models.Player, error) {
	var player models.Player

	result := s.db.Where("id = ?", id).Limit(1).Find(&player)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: %d", ErrPlayerNotFound, id)
	}

	return &player, nil
}

func (s *PlayerService) GetPlayerByName(name string) (*models.Player, error) {
	var player models.Player

	result := s.db.Where("LOWER(name) = LOWER(?)", strings.TrimSpace(name)).Limit(1).Find(&player)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, name)
	}

	return &player, nil
}

// GetAllPlayers lists players by name; hidden players only when asked for
func (s *PlayerService) GetAllPlayers(includeHidden bool) ([]models.Player, error) {
	var players []models.Player

	query := s.db.Order("name ASC")
	if !includeHidden {
		query = query.Where("hidden = ?", false)
	}

	if err := query.Find(&players).Error; err != nil {
		return nil, err
	}

	return players, nil
}

func (s *PlayerService) EditPlayer(name string, req models.UpdatePlayerRequest) (*models.Player, error) {
	player, err := s.GetPlayerByName(name)
	if err != nil {
		return nil, err
	}

	newName := strings.TrimSpace(req.Name)
	if newName == "" {
		return nil, ErrInvalidPlayerName
	}

	taken, err := s.nameTaken(s.db, newName, player.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: %s", ErrPlayerAlreadyExists, newName)
	}

	updates := map[string]interface{}{"name": newName}
	if req.Photo != nil {
		photo := strings.TrimSpace(*req.Photo)
		if photo == "" {
			photo = s.defaultPhoto
		}
		updates["photo"] = photo
	}

	if err := s.db.Model(player).Updates(updates).Error; err != nil {
		return nil, err
	}

	return s.GetPlayerByID(player.ID)
}

// SetHidden removes a player from rankings, or puts it back
func (s *PlayerService) SetHidden(name string, hidden bool) (*models.Player, error) {
	player, err := s.GetPlayerByName(name)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(player).Update("hidden", hidden).Error; err != nil {
		return nil, err
	}
	player.Hidden = hidden

	return player, nil
}

func (s *PlayerService) GetProfile(name string) (*models.PlayerProfile, error) {
	player, err := s.GetPlayerByName(name)
	if err != nil {
		return nil, err
	}

	profile := &models.PlayerProfile{Player: *player}
	for subject, dst := range map[models.Subject]*models.Stats{
		models.PlayerSubject(player.ID):   &profile.PlayerStats,
		models.AttackerSubject(player.ID): &profile.AttackStats,
		models.DefenderSubject(player.ID): &profile.DefenseStats,
	} {
		stats, err := s.ledger.CurrentStats(subject)
		if err != nil {
			return nil, err
		}
		*dst = *stats
	}

	return profile, nil
}

func (s *PlayerService) nameTaken(tx *gorm.DB, name string, exceptID uint) (bool, error) {
	var count int64
	err := tx.Model(&models.Player{}).
		Where("LOWER(name) = LOWER(?) AND id <> ?", name, exceptID).
		Count(&count).Error
	return count > 0, err
}
