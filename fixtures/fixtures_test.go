package fixtures

import (
	"testing"

	"afl-api/packages/core"
	"afl-api/packages/core/models"
	"afl-api/packages/core/testutil"

	"github.com/bmizerany/assert"
	"github.com/rs/zerolog"
)

func TestGenerateAndClear(t *testing.T) {
	db := testutil.NewDB(t)
	module := core.NewModule(db, core.Options{}, zerolog.Nop())
	f := NewFixtures(db, module, 42, zerolog.Nop())

	assert.Equal(t, nil, f.GenerateTestData())

	var players, teams, games, open int64
	db.Model(&models.Player{}).Count(&players)
	db.Model(&models.Team{}).Count(&teams)
	db.Model(&models.Game{}).Count(&games)
	db.Model(&models.Game{}).Where("ended = ?", false).Count(&open)
	assert.Equal(t, int64(10), players)
	assert.Equal(t, int64(11), teams)
	assert.T(t, games > 0 && games <= fixtureGames, games)
	assert.Equal(t, int64(0), open)

	var all []models.Game
	assert.Equal(t, nil, db.Find(&all).Error)
	played := make(map[uint]int)
	for _, game := range all {
		played[game.LeftTeamID]++
		played[game.RightTeamID]++
	}

	var rows []models.Team
	assert.Equal(t, nil, db.Find(&rows).Error)
	for _, team := range rows {
		stats, err := module.LedgerService.CurrentStats(models.TeamSubject(team.ID))
		assert.Equal(t, nil, err)
		assert.Equal(t, played[team.ID], stats.Played(), team.ID)
	}

	// generating twice reuses the players
	assert.Equal(t, nil, f.GenerateTestData())
	db.Model(&models.Player{}).Count(&players)
	assert.Equal(t, int64(10), players)

	assert.Equal(t, nil, f.ClearAllData())
	for _, model := range []interface{}{&models.Player{}, &models.Team{}, &models.Game{}, &models.Stats{}, &models.StatsPointer{}} {
		var count int64
		db.Model(model).Count(&count)
		assert.Equal(t, int64(0), count)
	}
}
