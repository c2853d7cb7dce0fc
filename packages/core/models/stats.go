package models

import (
	"errors"
	"fmt"
	"time"

	"afl-api/packages/core/utils"

	"gorm.io/gorm"
)

var ErrInvalidSubject = errors.New("stats must reference exactly one of player, attacker, defender or team")

type SubjectKind string

const (
	SubjectPlayer   SubjectKind = "player"
	SubjectAttacker SubjectKind = "attacker"
	SubjectDefender SubjectKind = "defender"
	SubjectTeam     SubjectKind = "team"
)

// Subject identifies one rating track: a player's overall rating, a player's
// rating in one seat, or a team's rating.
type Subject struct {
	Kind SubjectKind `json:"kind"`
	ID   uint        `json:"id"`
}

func NewSubject(kind SubjectKind, id uint) (Subject, error) {
	switch kind {
	case SubjectPlayer, SubjectAttacker, SubjectDefender, SubjectTeam:
	default:
		return Subject{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidSubject, kind)
	}
	if id == 0 {
		return Subject{}, fmt.Errorf("%w: missing id", ErrInvalidSubject)
	}
	return Subject{Kind: kind, ID: id}, nil
}

// MustSubject panics on an invalid reference; only for values built in code.
func MustSubject(kind SubjectKind, id uint) Subject {
	s, err := NewSubject(kind, id)
	if err != nil {
		panic(err)
	}
	return s
}

func PlayerSubject(id uint) Subject   { return MustSubject(SubjectPlayer, id) }
func AttackerSubject(id uint) Subject { return MustSubject(SubjectAttacker, id) }
func DefenderSubject(id uint) Subject { return MustSubject(SubjectDefender, id) }
func TeamSubject(id uint) Subject     { return MustSubject(SubjectTeam, id) }

func (s Subject) String() string {
	return fmt.Sprintf("%s:%d", s.Kind, s.ID)
}

// Column is the stats column holding this subject's id
func (s Subject) Column() string {
	switch s.Kind {
	case SubjectPlayer:
		return "player_id"
	case SubjectAttacker:
		return "attack_player_id"
	case SubjectDefender:
		return "defense_player_id"
	default:
		return "team_id"
	}
}

// Stats is one immutable version of a subject's cumulative record
type Stats struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PlayerID        *uint     `gorm:"index" json:"player_id,omitempty"`
	AttackPlayerID  *uint     `gorm:"index" json:"attack_player_id,omitempty"`
	DefensePlayerID *uint     `gorm:"index" json:"defense_player_id,omitempty"`
	TeamID          *uint     `gorm:"index" json:"team_id,omitempty"`
	Wins            int       `gorm:"not null" json:"wins"`
	Draws           int       `gorm:"not null" json:"draws"`
	Losses          int       `gorm:"not null" json:"losses"`
	GoalsPro        int       `gorm:"not null" json:"goals_pro"`
	GoalsAgainst    int       `gorm:"not null" json:"goals_against"`
	EloRating       float64   `gorm:"not null" json:"elo_rating"`
	Timestamp       string    `gorm:"size:19;not null;index" json:"timestamp"`
	CreatedAt       time.Time `json:"created_at"`
}

func (Stats) TableName() string {
	return "stats"
}

// NewStats returns an unsaved zero record at the initial rating
func NewStats(subject Subject, timestamp string) Stats {
	st := Stats{EloRating: utils.InitialRating, Timestamp: timestamp}
	id := subject.ID
	switch subject.Kind {
	case SubjectPlayer:
		st.PlayerID = &id
	case SubjectAttacker:
		st.AttackPlayerID = &id
	case SubjectDefender:
		st.DefensePlayerID = &id
	case SubjectTeam:
		st.TeamID = &id
	}
	return st
}

// Subject recovers the reference, failing unless exactly one id is set
func (s *Stats) Subject() (Subject, error) {
	var found []Subject
	if s.PlayerID != nil {
		found = append(found, Subject{Kind: SubjectPlayer, ID: *s.PlayerID})
	}
	if s.AttackPlayerID != nil {
		found = append(found, Subject{Kind: SubjectAttacker, ID: *s.AttackPlayerID})
	}
	if s.DefensePlayerID != nil {
		found = append(found, Subject{Kind: SubjectDefender, ID: *s.DefensePlayerID})
	}
	if s.TeamID != nil {
		found = append(found, Subject{Kind: SubjectTeam, ID: *s.TeamID})
	}
	if len(found) != 1 {
		return Subject{}, ErrInvalidSubject
	}
	return NewSubject(found[0].Kind, found[0].ID)
}

func (s *Stats) BeforeCreate(tx *gorm.DB) error {
	_, err := s.Subject()
	return err
}

func (s Stats) Played() int {
	return s.Wins + s.Draws + s.Losses
}

func (s Stats) WinPercentage() float64 {
	return utils.WinPercentage(s.Wins, s.Draws, s.Losses)
}

// Apply returns the next version of s; the receiver is left untouched
func (s Stats) Apply(delta StatsDelta, timestamp string) Stats {
	next := s
	next.ID = 0
	next.CreatedAt = time.Time{}
	next.Wins += delta.Wins
	next.Draws += delta.Draws
	next.Losses += delta.Losses
	next.GoalsPro += delta.GoalsPro
	next.GoalsAgainst += delta.GoalsAgainst
	next.EloRating += delta.Rating
	next.Timestamp = timestamp
	return next
}

type StatsDelta struct {
	Wins         int
	Draws        int
	Losses       int
	GoalsPro     int
	GoalsAgainst int
	Rating       float64
}

func (d StatsDelta) WithRating(rating float64) StatsDelta {
	d.Rating = rating
	return d
}

// StatsPointer indexes the latest stats row of each subject
type StatsPointer struct {
	SubjectKind SubjectKind `gorm:"primaryKey;size:16"`
	SubjectID   uint        `gorm:"primaryKey;autoIncrement:false"`
	StatsID     uint        `gorm:"not null"`
}

func (StatsPointer) TableName() string {
	return "stats_pointers"
}

type Summary struct {
	TotalPlayers       int64 `json:"total_players"`
	TotalTeams         int64 `json:"total_teams"`
	TotalGames         int64 `json:"total_games"`
	GamesLast7Days     int64 `json:"games_last_7_days"`
	GamesPrevious7Days int64 `json:"games_previous_7_days"`
}

type RankedPlayer struct {
	Rank   int     `json:"rank"`
	Player Player  `json:"player"`
	Stats  Stats   `json:"stats"`
	Value  float64 `json:"value"`
}

type RankedTeam struct {
	Rank    int    `json:"rank"`
	Team    Team   `json:"team"`
	Summary string `json:"summary"`
	Stats   Stats  `json:"stats"`
}

type Rankings struct {
	Players       []RankedPlayer `json:"players"`
	Attackers     []RankedPlayer `json:"attackers"`
	Defenders     []RankedPlayer `json:"defenders"`
	WinPercentage []RankedPlayer `json:"win_percentage"`
	Teams         []RankedTeam   `json:"teams"`
}
