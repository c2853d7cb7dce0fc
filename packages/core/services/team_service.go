package services

import (
	"errors"
	"fmt"
	"time"

	"afl-api/packages/core/models"
	"afl-api/packages/core/utils"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type TeamService struct {
	db     *gorm.DB
	ledger *LedgerService
	logger zerolog.Logger
	now    func() time.Time
}

func NewTeamService(db *gorm.DB, ledger *LedgerService, logger zerolog.Logger) *TeamService {
	return &TeamService{
		db:     db,
		ledger: ledger,
		logger: logger,
		now:    time.Now,
	}
}

// CreateTeam returns the team of the (defense, attack) pair, creating it and
// its rating track the first time the pair is seen.
func (s *TeamService) CreateTeam(req models.CreateTeamRequest) (*models.Team, error) {
	var team models.Team
	created := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, id := range []uint{req.DefensePlayerID, req.AttackPlayerID} {
			var count int64
			if err := tx.Model(&models.Player{}).Where("id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return fmt.Errorf("%w: %d", ErrPlayerNotFound, id)
			}
		}

		result := tx.Where("defense_player_id = ? AND attack_player_id = ?", req.DefensePlayerID, req.AttackPlayerID).
			Limit(1).
			Find(&team)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}

		team = models.Team{
			DefensePlayerID: req.DefensePlayerID,
			AttackPlayerID:  req.AttackPlayerID,
		}
		if err := tx.Create(&team).Error; err != nil {
			return err
		}
		created = true

		_, err := s.ledger.appendStats(tx, models.TeamSubject(team.ID), models.StatsDelta{}, utils.FormatTimestamp(s.now()))
		return err
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// another request inserted the pair between the lookup and the insert
		return s.GetTeamByPlayers(req.DefensePlayerID, req.AttackPlayerID)
	}
	if err != nil {
		return nil, err
	}

	if created {
		s.logger.Info().
			Uint("team_id", team.ID).
			Uint("defense_player_id", team.DefensePlayerID).
			Uint("attack_player_id", team.AttackPlayerID).
			Msg("team created")
	}

	return s.GetTeam(team.ID)
}

func (s *TeamService) GetTeam(id uint) (*models.Team, error) {
	var team models.Team

	result := s.db.Preload("DefensePlayer").Preload("AttackPlayer").Where("id = ?", id).Limit(1).Find(&team)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: %d", ErrTeamNotFound, id)
	}

	return &team, nil
}

func (s *TeamService) GetTeamByPlayers(defensePlayerID, attackPlayerID uint) (*models.Team, error) {
	var team models.Team

	result := s.db.Where("defense_player_id = ? AND attack_player_id = ?", defensePlayerID, attackPlayerID).
		Preload("DefensePlayer").
		Preload("AttackPlayer").
		Limit(1).
		Find(&team)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: %d+%d", ErrTeamNotFound, defensePlayerID, attackPlayerID)
	}

	return &team, nil
}

func (s *TeamService) GetAllTeams() ([]models.Team, error) {
	var teams []models.Team

	result := s.db.Preload("DefensePlayer").
		Preload("AttackPlayer").
		Order("id ASC").
		Find(&teams)
	if result.Error != nil {
		return nil, result.Error
	}

	return teams, nil
}

// GetProfile returns a team with its current stats and its latest
// historyLimit ledger entries
func (s *TeamService) GetProfile(id uint, historyLimit int) (*models.TeamProfile, error) {
	team, err := s.GetTeam(id)
	if err != nil {
		return nil, err
	}

	subject := models.TeamSubject(team.ID)
	stats, err := s.ledger.CurrentStats(subject)
	if err != nil {
		return nil, err
	}

	history, err := s.ledger.History(subject, historyLimit)
	if err != nil {
		return nil, err
	}

	return &models.TeamProfile{
		Team:    *team,
		Summary: team.Summary(),
		Stats:   *stats,
		History: history,
	}, nil
}
