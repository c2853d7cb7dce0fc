package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"afl-api/packages/core/models"
	"afl-api/packages/core/utils"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type StatsService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{
		db:  db,
		now: time.Now,
	}
}

func (s *StatsService) GetSummary() (*models.Summary, error) {
	var summary models.Summary

	// Count totals
	if err := s.db.Model(&models.Player{}).Count(&summary.TotalPlayers).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Team{}).Count(&summary.TotalTeams).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Game{}).Count(&summary.TotalGames).Error; err != nil {
		return nil, err
	}

	// Game timestamps sort lexically, so the windows compare as strings
	now := s.now()
	last7DaysStart := utils.FormatTimestamp(now.AddDate(0, 0, -7))
	previous7DaysStart := utils.FormatTimestamp(now.AddDate(0, 0, -14))

	if err := s.db.Model(&models.Game{}).
		Where("timestamp >= ?", last7DaysStart).
		Count(&summary.GamesLast7Days).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.Game{}).
		Where("timestamp >= ? AND timestamp < ?", previous7DaysStart, last7DaysStart).
		Count(&summary.GamesPrevious7Days).Error; err != nil {
		return nil, err
	}

	return &summary, nil
}

// GetRankings ranks visible players on each of their rating tracks and on
// win percentage, and ranks the teams made only of visible players.
func (s *StatsService) GetRankings(ctx context.Context) (*models.Rankings, error) {
	var (
		players  []models.Player
		teams    []models.Team
		overall  map[uint]models.Stats
		attack   map[uint]models.Stats
		defense  map[uint]models.Stats
		teamRows map[uint]models.Stats
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.db.WithContext(gCtx).Where("hidden = ?", false).Order("name ASC").Find(&players).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gCtx).
			Preload("DefensePlayer").
			Preload("AttackPlayer").
			Order("id ASC").
			Find(&teams).Error
	})
	g.Go(func() (err error) {
		overall, err = s.currentByKind(gCtx, models.SubjectPlayer)
		return err
	})
	g.Go(func() (err error) {
		attack, err = s.currentByKind(gCtx, models.SubjectAttacker)
		return err
	})
	g.Go(func() (err error) {
		defense, err = s.currentByKind(gCtx, models.SubjectDefender)
		return err
	})
	g.Go(func() (err error) {
		teamRows, err = s.currentByKind(gCtx, models.SubjectTeam)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	rankings := &models.Rankings{
		Players:       rankPlayers(players, models.SubjectPlayer, overall, eloValue),
		Attackers:     rankPlayers(players, models.SubjectAttacker, attack, eloValue),
		Defenders:     rankPlayers(players, models.SubjectDefender, defense, eloValue),
		WinPercentage: rankPlayers(players, models.SubjectPlayer, overall, models.Stats.WinPercentage),
		Teams:         rankTeams(teams, teamRows),
	}

	return rankings, nil
}

// currentByKind returns the latest stats of every subject of kind, by id
func (s *StatsService) currentByKind(ctx context.Context, kind models.SubjectKind) (map[uint]models.Stats, error) {
	var rows []models.Stats

	err := s.db.WithContext(ctx).
		Model(&models.Stats{}).
		Select("stats.*").
		Joins("JOIN stats_pointers ON stats_pointers.stats_id = stats.id").
		Where("stats_pointers.subject_kind = ?", kind).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	current := make(map[uint]models.Stats, len(rows))
	for _, row := range rows {
		subject, err := row.Subject()
		if err != nil {
			return nil, err
		}
		current[subject.ID] = row
	}
	return current, nil
}

func eloValue(s models.Stats) float64 {
	return s.EloRating
}

func rankPlayers(players []models.Player, kind models.SubjectKind, current map[uint]models.Stats, value func(models.Stats) float64) []models.RankedPlayer {
	ranked := make([]models.RankedPlayer, 0, len(players))
	for _, player := range players {
		stats, ok := current[player.ID]
		if !ok {
			stats = models.NewStats(models.MustSubject(kind, player.ID), utils.FirstTimestamp)
		}
		ranked = append(ranked, models.RankedPlayer{
			Player: player,
			Stats:  stats,
			Value:  value(stats),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Value != ranked[j].Value {
			return ranked[i].Value > ranked[j].Value
		}
		return strings.ToLower(ranked[i].Player.Name) < strings.ToLower(ranked[j].Player.Name)
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

func rankTeams(teams []models.Team, current map[uint]models.Stats) []models.RankedTeam {
	ranked := make([]models.RankedTeam, 0, len(teams))
	for _, team := range teams {
		if team.DefensePlayer.Hidden || team.AttackPlayer.Hidden {
			continue
		}

		stats, ok := current[team.ID]
		if !ok {
			stats = models.NewStats(models.TeamSubject(team.ID), utils.FirstTimestamp)
		}
		ranked = append(ranked, models.RankedTeam{
			Team:    team,
			Summary: team.Summary(),
			Stats:   stats,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Stats.EloRating > ranked[j].Stats.EloRating
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
