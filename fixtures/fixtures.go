package fixtures

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"afl-api/packages/core"
	"afl-api/packages/core/models"
	"afl-api/packages/core/services"
	"afl-api/packages/core/utils"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const (
	fixtureGames = 50
	fixtureDays  = 30
)

type Fixtures struct {
	db     *gorm.DB
	module *core.Module
	rng    *rand.Rand
	logger zerolog.Logger
}

func NewFixtures(db *gorm.DB, module *core.Module, seed int64, logger zerolog.Logger) *Fixtures {
	return &Fixtures{
		db:     db,
		module: module,
		rng:    rand.New(rand.NewSource(seed)), // #nosec G404
		logger: logger,
	}
}

// GenerateTestData creates 10 players, their teams and 50 ended games played
// over the last 30 days, settled in chronological order
func (f *Fixtures) GenerateTestData() error {
	f.logger.Info().Msg("starting fixtures generation")

	players, err := f.generatePlayers()
	if err != nil {
		return fmt.Errorf("failed to generate players: %w", err)
	}

	teams, err := f.generateTeams(players)
	if err != nil {
		return fmt.Errorf("failed to generate teams: %w", err)
	}

	games, err := f.generateGames(teams)
	if err != nil {
		return fmt.Errorf("failed to generate games: %w", err)
	}

	// Replay so every track starts at the beginning of time
	if err := f.module.GameService.RecalculateStats(); err != nil {
		return fmt.Errorf("failed to recalculate stats: %w", err)
	}

	f.logger.Info().
		Int("players", len(players)).
		Int("teams", len(teams)).
		Int("games", games).
		Msg("fixtures generated successfully")
	return nil
}

func (f *Fixtures) generatePlayers() ([]models.Player, error) {
	names := []string{
		"Alexandre", "Marie", "Julien", "Sophie", "Thomas",
		"Camille", "Nicolas", "Laura", "Antoine", "Emma",
	}

	var players []models.Player
	for _, name := range names {
		player, err := f.module.PlayerService.CreatePlayer(models.CreatePlayerRequest{Name: name})
		if errors.Is(err, services.ErrPlayerAlreadyExists) {
			player, err = f.module.PlayerService.GetPlayerByName(name)
		}
		if err != nil {
			return nil, err
		}

		players = append(players, *player)
		f.logger.Debug().Uint("player_id", player.ID).Str("name", player.Name).Msg("created player")
	}

	return players, nil
}

// generateTeams pairs players two by two in both seat orders and adds one
// solo team
func (f *Fixtures) generateTeams(players []models.Player) ([]models.Team, error) {
	var teams []models.Team

	for i := 0; i+1 < len(players); i += 2 {
		for _, pair := range [][2]uint{
			{players[i].ID, players[i+1].ID},
			{players[i+1].ID, players[i].ID},
		} {
			team, err := f.module.TeamService.CreateTeam(models.CreateTeamRequest{
				DefensePlayerID: pair[0],
				AttackPlayerID:  pair[1],
			})
			if err != nil {
				return nil, err
			}
			teams = append(teams, *team)
		}
	}

	solo := players[len(players)-1].ID
	team, err := f.module.TeamService.CreateTeam(models.CreateTeamRequest{
		DefensePlayerID: solo,
		AttackPlayerID:  solo,
	})
	if err != nil {
		return nil, err
	}
	teams = append(teams, *team)

	f.logger.Info().Int("teams", len(teams)).Msg("created teams")
	return teams, nil
}

func (f *Fixtures) generateGames(teams []models.Team) (int, error) {
	rules := f.module.GameService.Rules()
	goalLimit := rules.GoalLimit
	now := time.Now()

	// Past the time limit, so each game ends as soon as it is stored
	timestamps := make([]time.Time, 0, fixtureGames)
	for i := 0; i < fixtureGames; i++ {
		offset := time.Duration(f.rng.Intn(fixtureDays*24*60)) * time.Minute
		timestamps = append(timestamps, now.Add(-rules.TimeLimit-time.Minute-offset).Truncate(time.Second))
	}
	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i].Before(timestamps[j]) })

	created := 0
	for _, at := range timestamps {
		left, right := f.pickOpponents(teams)

		leftScore, rightScore := goalLimit, f.rng.Intn(goalLimit)
		switch roll := f.rng.Float32(); {
		case roll < 0.1:
			// time limit reached on a draw
			leftScore = f.rng.Intn(goalLimit)
			rightScore = leftScore
		case roll < 0.55:
			leftScore, rightScore = rightScore, leftScore
		}

		_, err := f.module.GameService.CreateOrUpdateGame(models.CreateGameRequest{
			Timestamp:   utils.FormatTimestamp(at),
			LeftTeamID:  left.ID,
			RightTeamID: right.ID,
			LeftScore:   &leftScore,
			RightScore:  &rightScore,
		})
		if errors.Is(err, models.ErrGameEnded) {
			// Same second drawn twice
			continue
		}
		if err != nil {
			return created, err
		}
		created++
	}

	f.logger.Info().Int("games", created).Msg("created games")
	return created, nil
}

// pickOpponents draws two teams that share no player
func (f *Fixtures) pickOpponents(teams []models.Team) (models.Team, models.Team) {
	for {
		left := teams[f.rng.Intn(len(teams))]
		right := teams[f.rng.Intn(len(teams))]
		if !sharesPlayer(left, right) {
			return left, right
		}
	}
}

func sharesPlayer(a, b models.Team) bool {
	return a.DefensePlayerID == b.DefensePlayerID ||
		a.DefensePlayerID == b.AttackPlayerID ||
		a.AttackPlayerID == b.DefensePlayerID ||
		a.AttackPlayerID == b.AttackPlayerID
}

func (f *Fixtures) ClearAllData() error {
	f.logger.Info().Msg("clearing all fixture data")

	// Delete in correct order due to foreign key constraints
	tables := []interface{}{
		&models.StatsPointer{},
		&models.Stats{},
		&models.Game{},
		&models.Team{},
		&models.Player{},
	}

	for _, table := range tables {
		if err := f.db.Where("1 = 1").Delete(table).Error; err != nil {
			return fmt.Errorf("failed to clear table %T: %w", table, err)
		}
	}

	// Reset auto-increment sequences to start from 1
	if f.db.Dialector.Name() == "postgres" {
		sequences := []string{
			"ALTER SEQUENCE players_id_seq RESTART WITH 1",
			"ALTER SEQUENCE teams_id_seq RESTART WITH 1",
			"ALTER SEQUENCE games_id_seq RESTART WITH 1",
			"ALTER SEQUENCE stats_id_seq RESTART WITH 1",
		}

		for _, seq := range sequences {
			if err := f.db.Exec(seq).Error; err != nil {
				f.logger.Warn().Err(err).Str("statement", seq).Msg("failed to reset sequence")
			}
		}
	}

	f.logger.Info().Msg("all fixture data cleared")
	return nil
}
