package models

import (
	"errors"
	"testing"
	"time"

	"afl-api/packages/core/utils"

	"github.com/bmizerany/assert"
)

var testRules = GameRules{GoalLimit: 10, TimeLimit: 30 * time.Minute}

func TestParseSide(t *testing.T) {
	side, err := ParseSide("left")
	assert.Equal(t, nil, err)
	assert.Equal(t, SideLeft, side)

	side, err = ParseSide("right")
	assert.Equal(t, nil, err)
	assert.Equal(t, SideRight, side)

	_, err = ParseSide("middle")
	assert.T(t, errors.Is(err, ErrInvalidSide), err)
}

func TestRecordGoal(t *testing.T) {
	g := &Game{}

	assert.Equal(t, nil, g.RecordGoal(SideLeft, 1))
	assert.Equal(t, nil, g.RecordGoal(SideRight, 3))
	assert.Equal(t, nil, g.RecordGoal(SideRight, -1))
	assert.Equal(t, 1, g.LeftScore)
	assert.Equal(t, 2, g.RightScore)
}

func TestRecordGoalRejectsInvalidValues(t *testing.T) {
	g := &Game{LeftScore: 1}

	assert.T(t, errors.Is(g.RecordGoal(SideLeft, 0), ErrInvalidGoalValue))
	assert.T(t, errors.Is(g.RecordGoal(SideLeft, -2), ErrInvalidGoalValue))
	assert.T(t, errors.Is(g.RecordGoal(SideRight, -1), ErrInvalidGoalValue))
	assert.T(t, errors.Is(g.RecordGoal(Side("up"), 1), ErrInvalidSide))
	assert.Equal(t, 1, g.LeftScore)
	assert.Equal(t, 0, g.RightScore)
}

func TestRecordGoalOnEndedGame(t *testing.T) {
	g := &Game{Ended: true, LeftScore: 4}

	assert.T(t, errors.Is(g.RecordGoal(SideLeft, 1), ErrGameEnded))
	assert.Equal(t, 4, g.LeftScore)
	assert.Equal(t, GameEnded, g.State())
}

func TestShouldEnd(t *testing.T) {
	start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.Local)
	g := &Game{Timestamp: utils.FormatTimestamp(start)}

	assert.Equal(t, GameOpen, g.State())
	assert.T(t, !g.ShouldEnd(start.Add(10*time.Minute), testRules))
	assert.T(t, !g.ShouldEnd(start.Add(30*time.Minute), testRules))
	assert.T(t, g.ShouldEnd(start.Add(31*time.Minute), testRules))

	g.RightScore = 10
	assert.T(t, g.ShouldEnd(start.Add(time.Minute), testRules))
}

func TestTimeLeft(t *testing.T) {
	start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.Local)
	g := &Game{Timestamp: utils.FormatTimestamp(start)}

	assert.Equal(t, 20*time.Minute, g.TimeLeft(start.Add(10*time.Minute), testRules))
	assert.Equal(t, -5*time.Minute, g.TimeLeft(start.Add(35*time.Minute), testRules))
}

func TestStartedAtFallsBackToCreatedAt(t *testing.T) {
	created := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	g := &Game{Timestamp: "not a timestamp", CreatedAt: created}

	assert.T(t, g.StartedAt().Equal(created))
}

func TestOutcomeFor(t *testing.T) {
	g := &Game{LeftScore: 10, RightScore: 3}

	assert.Equal(t, StatsDelta{Wins: 1, GoalsPro: 10, GoalsAgainst: 3}, g.OutcomeFor(SideLeft))
	assert.Equal(t, StatsDelta{Losses: 1, GoalsPro: 3, GoalsAgainst: 10}, g.OutcomeFor(SideRight))

	draw := &Game{}
	assert.Equal(t, StatsDelta{Draws: 1}, draw.OutcomeFor(SideLeft))
	assert.Equal(t, StatsDelta{Draws: 1}, draw.OutcomeFor(SideRight))
}

func TestGameSummary(t *testing.T) {
	ana := Player{ID: 1, Name: "Ana"}
	bob := Player{ID: 2, Name: "Bob"}
	cid := Player{ID: 3, Name: "Cid"}

	g := &Game{
		LeftScore:  3,
		RightScore: 10,
		LeftTeam:   Team{DefensePlayerID: 1, AttackPlayerID: 2, DefensePlayer: ana, AttackPlayer: bob},
		RightTeam:  Team{DefensePlayerID: 3, AttackPlayerID: 3, DefensePlayer: cid, AttackPlayer: cid},
	}
	assert.Equal(t, "Game in progress between Ana+Bob and Cid the score is 3x10", g.Summary())

	g.Ended = true
	assert.Equal(t, "Cid defeated Ana+Bob with the score 10x3", g.Summary())

	g.LeftScore = 10
	assert.Equal(t, "Draw between Ana+Bob and Cid the score was 10x10", g.Summary())
}
