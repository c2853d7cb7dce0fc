package models

import (
	"errors"
	"fmt"
	"time"

	"afl-api/packages/core/utils"
)

var (
	ErrGameEnded        = errors.New("game has ended")
	ErrInvalidSide      = errors.New("invalid side")
	ErrInvalidGoalValue = errors.New("invalid goal value")
)

type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case SideLeft, SideRight:
		return Side(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSide, s)
	}
}

type GameState string

const (
	GameOpen  GameState = "open"
	GameEnded GameState = "ended"
)

// GameRules bound the length of a game
type GameRules struct {
	GoalLimit int
	TimeLimit time.Duration
}

func DefaultGameRules() GameRules {
	return GameRules{
		GoalLimit: 10,
		TimeLimit: 30 * time.Minute,
	}
}

type Game struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Timestamp   string    `gorm:"size:19;not null;uniqueIndex" json:"timestamp"`
	LeftTeamID  uint      `gorm:"not null;index" json:"left_team_id"`
	RightTeamID uint      `gorm:"not null;index" json:"right_team_id"`
	LeftScore   int       `gorm:"not null;default:0" json:"left_score"`
	RightScore  int       `gorm:"not null;default:0" json:"right_score"`
	Ended       bool      `gorm:"not null;default:false;index" json:"ended"`
	Settled     bool      `gorm:"not null;default:false" json:"settled"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relationships
	LeftTeam  Team `gorm:"foreignKey:LeftTeamID;references:ID" json:"left_team"`
	RightTeam Team `gorm:"foreignKey:RightTeamID;references:ID" json:"right_team"`
}

func (Game) TableName() string {
	return "games"
}

func (g *Game) State() GameState {
	if g.Ended {
		return GameEnded
	}
	return GameOpen
}

// StartedAt parses the natural key; rows with a malformed key fall back to
// their insertion time.
func (g *Game) StartedAt() time.Time {
	t, err := utils.ParseTimestamp(g.Timestamp)
	if err != nil {
		return g.CreatedAt
	}
	return t
}

// RecordGoal adds value to one side's score. Negative values undo goals but a
// score never drops below zero.
func (g *Game) RecordGoal(side Side, value int) error {
	if g.Ended {
		return ErrGameEnded
	}
	if value == 0 {
		return ErrInvalidGoalValue
	}

	switch side {
	case SideLeft:
		if g.LeftScore+value < 0 {
			return ErrInvalidGoalValue
		}
		g.LeftScore += value
	case SideRight:
		if g.RightScore+value < 0 {
			return ErrInvalidGoalValue
		}
		g.RightScore += value
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSide, side)
	}
	return nil
}

func (g *Game) TimeLeft(now time.Time, rules GameRules) time.Duration {
	return rules.TimeLimit - now.Sub(g.StartedAt())
}

func (g *Game) ShouldEnd(now time.Time, rules GameRules) bool {
	if g.LeftScore >= rules.GoalLimit || g.RightScore >= rules.GoalLimit {
		return true
	}
	return now.Sub(g.StartedAt()) > rules.TimeLimit
}

// OutcomeFor is the result increment shared by every subject playing on side
func (g *Game) OutcomeFor(side Side) StatsDelta {
	pro, against := g.LeftScore, g.RightScore
	if side == SideRight {
		pro, against = against, pro
	}

	delta := StatsDelta{GoalsPro: pro, GoalsAgainst: against}
	switch {
	case pro > against:
		delta.Wins = 1
	case pro < against:
		delta.Losses = 1
	default:
		delta.Draws = 1
	}
	return delta
}

func (g *Game) Summary() string {
	left, right := g.LeftTeam.Summary(), g.RightTeam.Summary()
	switch {
	case !g.Ended:
		return fmt.Sprintf("Game in progress between %s and %s the score is %dx%d", left, right, g.LeftScore, g.RightScore)
	case g.LeftScore == g.RightScore:
		return fmt.Sprintf("Draw between %s and %s the score was %dx%d", left, right, g.LeftScore, g.RightScore)
	case g.LeftScore > g.RightScore:
		return fmt.Sprintf("%s defeated %s with the score %dx%d", left, right, g.LeftScore, g.RightScore)
	default:
		return fmt.Sprintf("%s defeated %s with the score %dx%d", right, left, g.RightScore, g.LeftScore)
	}
}

// GameView is a game as shown to observers, with derived fields evaluated at
// read time.
type GameView struct {
	Game            Game      `json:"game"`
	State           GameState `json:"state"`
	Summary         string    `json:"summary"`
	TimeLeft        string    `json:"time_left"`
	TimeLeftSeconds int64     `json:"time_left_seconds"`
	PredictedLeft   int       `json:"predicted_left"`
	PredictedRight  int       `json:"predicted_right"`
}

type ScoreResponse struct {
	Score string `json:"score"`
	Time  string `json:"time"`
	Ended bool   `json:"ended"`
}

type CreateGameRequest struct {
	Timestamp   string `json:"timestamp,omitempty"`
	LeftTeamID  uint   `json:"left_team_id" binding:"required"`
	RightTeamID uint   `json:"right_team_id" binding:"required"`
	LeftScore   *int   `json:"left_score,omitempty"`
	RightScore  *int   `json:"right_score,omitempty"`
}

// StartGameRequest builds both teams from player ids before starting a game
type StartGameRequest struct {
	LeftDefensePlayerID  uint `json:"left_defense_player_id" binding:"required"`
	LeftAttackPlayerID   uint `json:"left_attack_player_id" binding:"required"`
	RightDefensePlayerID uint `json:"right_defense_player_id" binding:"required"`
	RightAttackPlayerID  uint `json:"right_attack_player_id" binding:"required"`
}

type GameEventType string

const (
	EventGameCreated GameEventType = "created"
	EventGoal        GameEventType = "goal"
	EventGameEnded   GameEventType = "ended"
	EventGameDeleted GameEventType = "deleted"
)

// GameEvent is pushed to live observers after the change is committed
type GameEvent struct {
	Type GameEventType `json:"type"`
	Game GameView      `json:"game"`
}
