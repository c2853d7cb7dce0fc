package models

import (
	"time"
)

type Player struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Photo     string    `gorm:"size:512" json:"photo"`
	Hidden    bool      `gorm:"not null;default:false" json:"hidden"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Player) TableName() string {
	return "players"
}

// PlayerProfile is a player with the current entry of each of its rating tracks
type PlayerProfile struct {
	Player       Player `json:"player"`
	PlayerStats  Stats  `json:"player_stats"`
	AttackStats  Stats  `json:"attack_stats"`
	DefenseStats Stats  `json:"defense_stats"`
}

type CreatePlayerRequest struct {
	Name  string `json:"name" binding:"required"`
	Photo string `json:"photo,omitempty"`
}

type UpdatePlayerRequest struct {
	Name  string  `json:"name" binding:"required"`
	Photo *string `json:"photo,omitempty"`
}

type HidePlayerRequest struct {
	Hidden bool `json:"hidden"`
}
