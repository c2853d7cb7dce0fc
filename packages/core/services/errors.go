package services

import "errors"

var (
	ErrPlayerNotFound      = errors.New("player not found")
	ErrPlayerAlreadyExists = errors.New("player already exists")
	ErrInvalidPlayerName   = errors.New("player name is required")
	ErrTeamNotFound        = errors.New("team not found")
	ErrSameTeam            = errors.New("left and right teams must be different")
	ErrGameNotFound        = errors.New("game not found")
	ErrNoOpenGame          = errors.New("no open game")
	ErrInvalidTimestamp    = errors.New("invalid timestamp")
	ErrGameNotEnded        = errors.New("game is not ended")
	ErrInvalidScore        = errors.New("scores must be non-negative")
)
