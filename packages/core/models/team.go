package models

import (
	"fmt"
	"time"
)

// Team is an ordered (defense, attack) pair. Both seats may hold the same
// player, which makes a solo team.
type Team struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	DefensePlayerID uint      `gorm:"not null;uniqueIndex:idx_teams_pair" json:"defense_player_id"`
	AttackPlayerID  uint      `gorm:"not null;uniqueIndex:idx_teams_pair" json:"attack_player_id"`
	CreatedAt       time.Time `json:"created_at"`

	// Relationships
	DefensePlayer Player `gorm:"foreignKey:DefensePlayerID;references:ID" json:"defense_player"`
	AttackPlayer  Player `gorm:"foreignKey:AttackPlayerID;references:ID" json:"attack_player"`
}

func (Team) TableName() string {
	return "teams"
}

func (t Team) IsSolo() bool {
	return t.DefensePlayerID == t.AttackPlayerID
}

func (t Team) Summary() string {
	if t.IsSolo() {
		return t.DefensePlayer.Name
	}
	return fmt.Sprintf("%s+%s", t.DefensePlayer.Name, t.AttackPlayer.Name)
}

type TeamProfile struct {
	Team    Team    `json:"team"`
	Summary string  `json:"summary"`
	Stats   Stats   `json:"stats"`
	History []Stats `json:"history"`
}

type CreateTeamRequest struct {
	DefensePlayerID uint `json:"defense_player_id" binding:"required"`
	AttackPlayerID  uint `json:"attack_player_id" binding:"required"`
}
