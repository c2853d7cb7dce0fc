package services

import (
	"errors"
	"testing"

	"afl-api/packages/core/models"
	"afl-api/packages/core/utils"

	"github.com/bmizerany/assert"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func TestCreateTeamIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ana := env.player(t, "Ana")
	bob := env.player(t, "Bob")

	first := env.team(t, ana, bob)
	again := env.team(t, ana, bob)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "Ana+Bob", again.Summary())

	var teams int64
	env.db.Model(&models.Team{}).Count(&teams)
	assert.Equal(t, int64(1), teams)

	history, err := env.ledger.History(models.TeamSubject(first.ID), 0)
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(history))
	assert.Equal(t, utils.InitialRating, history[0].EloRating)
}

func TestCreateTeamLosingInsertRaceReturnsExisting(t *testing.T) {
	env := newTestEnv(t)
	ana := env.player(t, "Ana")
	bob := env.player(t, "Bob")

	existing := models.Team{DefensePlayerID: ana.ID, AttackPlayerID: bob.ID}
	assert.Equal(t, nil, env.db.Create(&existing).Error)

	// the first teams lookup misses, as if the row was committed right after it
	hide := true
	err := env.db.Callback().Query().Before("gorm:query").Register("test:miss_team_lookup", func(db *gorm.DB) {
		if hide && db.Statement.Table == "teams" {
			hide = false
			db.Statement.AddClause(clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "1 = 0"}}})
		}
	})
	assert.Equal(t, nil, err)

	team, err := env.teams.CreateTeam(models.CreateTeamRequest{
		DefensePlayerID: ana.ID,
		AttackPlayerID:  bob.ID,
	})
	assert.Equal(t, nil, err)
	assert.Equal(t, false, hide)
	assert.Equal(t, existing.ID, team.ID)
	assert.Equal(t, "Ana+Bob", team.Summary())

	var teams int64
	env.db.Model(&models.Team{}).Count(&teams)
	assert.Equal(t, int64(1), teams)
}

func TestCreateTeamSeatsAreOrdered(t *testing.T) {
	env := newTestEnv(t)
	ana := env.player(t, "Ana")
	bob := env.player(t, "Bob")

	ab := env.team(t, ana, bob)
	ba := env.team(t, bob, ana)
	assert.NotEqual(t, ab.ID, ba.ID)
	assert.Equal(t, "Bob+Ana", ba.Summary())

	found, err := env.teams.GetTeamByPlayers(bob.ID, ana.ID)
	assert.Equal(t, nil, err)
	assert.Equal(t, ba.ID, found.ID)
}

func TestCreateSoloTeam(t *testing.T) {
	env := newTestEnv(t)
	ana := env.player(t, "Ana")

	solo := env.team(t, ana, ana)
	assert.T(t, solo.IsSolo())
	assert.Equal(t, "Ana", solo.Summary())
}

func TestCreateTeamUnknownPlayer(t *testing.T) {
	env := newTestEnv(t)
	ana := env.player(t, "Ana")

	_, err := env.teams.CreateTeam(models.CreateTeamRequest{DefensePlayerID: ana.ID, AttackPlayerID: 99})
	assert.T(t, errors.Is(err, ErrPlayerNotFound), err)

	_, err = env.teams.GetTeam(99)
	assert.T(t, errors.Is(err, ErrTeamNotFound), err)
}

func TestTeamProfile(t *testing.T) {
	env := newTestEnv(t)
	left := env.team(t, env.player(t, "Ana"), env.player(t, "Bob"))
	right := env.team(t, env.player(t, "Cid"), env.player(t, "Dan"))

	env.play(t, left, right, 10, 3)
	env.play(t, left, right, 2, 10)

	profile, err := env.teams.GetProfile(left.ID, 2)
	assert.Equal(t, nil, err)
	assert.Equal(t, "Ana+Bob", profile.Summary)
	assert.Equal(t, 1, profile.Stats.Wins)
	assert.Equal(t, 1, profile.Stats.Losses)
	assert.Equal(t, 2, len(profile.History))
	assert.Equal(t, profile.Stats.ID, profile.History[0].ID)
}
