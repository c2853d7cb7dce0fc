package models

import (
	"errors"
	"testing"

	"afl-api/packages/core/utils"

	"github.com/bmizerany/assert"
)

func TestNewSubject(t *testing.T) {
	subject, err := NewSubject(SubjectAttacker, 7)
	assert.Equal(t, nil, err)
	assert.Equal(t, Subject{Kind: SubjectAttacker, ID: 7}, subject)
	assert.Equal(t, "attacker:7", subject.String())
	assert.Equal(t, "attack_player_id", subject.Column())

	_, err = NewSubject(SubjectKind("coach"), 7)
	assert.T(t, errors.Is(err, ErrInvalidSubject), err)

	_, err = NewSubject(SubjectTeam, 0)
	assert.T(t, errors.Is(err, ErrInvalidSubject), err)
}

func TestMustSubjectPanics(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(error)
		assert.T(t, ok, r)
		assert.T(t, errors.Is(err, ErrInvalidSubject), err)
	}()

	MustSubject(SubjectPlayer, 0)
	t.Fatal("expected panic")
}

func TestSubjectColumns(t *testing.T) {
	assert.Equal(t, "player_id", PlayerSubject(1).Column())
	assert.Equal(t, "attack_player_id", AttackerSubject(1).Column())
	assert.Equal(t, "defense_player_id", DefenderSubject(1).Column())
	assert.Equal(t, "team_id", TeamSubject(1).Column())
}

func TestNewStatsStartsAtInitialRating(t *testing.T) {
	stats := NewStats(DefenderSubject(4), utils.FirstTimestamp)

	assert.Equal(t, utils.InitialRating, stats.EloRating)
	assert.Equal(t, 0, stats.Played())
	assert.Equal(t, utils.FirstTimestamp, stats.Timestamp)
	assert.T(t, stats.PlayerID == nil)
	assert.T(t, stats.DefensePlayerID != nil)

	subject, err := stats.Subject()
	assert.Equal(t, nil, err)
	assert.Equal(t, DefenderSubject(4), subject)
}

func TestStatsSubjectRequiresExactlyOneReference(t *testing.T) {
	var empty Stats
	_, err := empty.Subject()
	assert.Equal(t, ErrInvalidSubject, err)

	one, two := uint(1), uint(2)
	both := Stats{PlayerID: &one, TeamID: &two}
	_, err = both.Subject()
	assert.Equal(t, ErrInvalidSubject, err)
	assert.Equal(t, ErrInvalidSubject, both.BeforeCreate(nil))
}

func TestStatsApply(t *testing.T) {
	current := NewStats(TeamSubject(2), utils.FirstTimestamp)
	current.ID = 9
	current.Wins = 3

	next := current.Apply(StatsDelta{Losses: 1, GoalsPro: 3, GoalsAgainst: 10, Rating: -13.5}, "2024-06-01 12:00:00")

	assert.Equal(t, uint(0), next.ID)
	assert.Equal(t, 3, next.Wins)
	assert.Equal(t, 1, next.Losses)
	assert.Equal(t, 3, next.GoalsPro)
	assert.Equal(t, 10, next.GoalsAgainst)
	assert.Equal(t, utils.InitialRating-13.5, next.EloRating)
	assert.Equal(t, "2024-06-01 12:00:00", next.Timestamp)
	assert.Equal(t, 4, next.Played())

	// receiver untouched
	assert.Equal(t, uint(9), current.ID)
	assert.Equal(t, 0, current.Losses)
	assert.Equal(t, utils.InitialRating, current.EloRating)
}

func TestStatsWinPercentage(t *testing.T) {
	stats := Stats{Wins: 1, Draws: 1, Losses: 2}
	assert.Equal(t, 25.0, stats.WinPercentage())
}
