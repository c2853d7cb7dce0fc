package services

import (
	"errors"
	"testing"

	"afl-api/packages/core/models"
	"afl-api/packages/core/utils"

	"github.com/bmizerany/assert"
)

func TestCreatePlayerOpensRatingTracks(t *testing.T) {
	env := newTestEnv(t)

	player, err := env.players.CreatePlayer(models.CreatePlayerRequest{Name: "  Ana "})
	assert.Equal(t, nil, err)
	assert.Equal(t, "Ana", player.Name)
	assert.Equal(t, "img/pin.png", player.Photo)
	assert.Equal(t, false, player.Hidden)

	profile, err := env.players.GetProfile("ana")
	assert.Equal(t, nil, err)
	assert.Equal(t, player.ID, profile.Player.ID)
	for _, stats := range []models.Stats{profile.PlayerStats, profile.AttackStats, profile.DefenseStats} {
		assert.NotEqual(t, uint(0), stats.ID)
		assert.Equal(t, utils.InitialRating, stats.EloRating)
		assert.Equal(t, "2024-06-01 12:00:00", stats.Timestamp)
	}
}

func TestCreatePlayerRejectsDuplicatesAndBlankNames(t *testing.T) {
	env := newTestEnv(t)
	env.player(t, "Ana")

	_, err := env.players.CreatePlayer(models.CreatePlayerRequest{Name: "ANA"})
	assert.T(t, errors.Is(err, ErrPlayerAlreadyExists), err)

	_, err = env.players.CreatePlayer(models.CreatePlayerRequest{Name: "   "})
	assert.Equal(t, ErrInvalidPlayerName, err)

	players, err := env.players.GetAllPlayers(true)
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(players))
}

func TestGetPlayerNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.players.GetPlayerByName("nobody")
	assert.T(t, errors.Is(err, ErrPlayerNotFound), err)

	_, err = env.players.GetPlayerByID(99)
	assert.T(t, errors.Is(err, ErrPlayerNotFound), err)
}

func TestEditPlayer(t *testing.T) {
	env := newTestEnv(t)
	ana := env.player(t, "Ana")
	env.player(t, "Bob")

	photo := "img/ana.png"
	edited, err := env.players.EditPlayer("ana", models.UpdatePlayerRequest{Name: "Anna", Photo: &photo})
	assert.Equal(t, nil, err)
	assert.Equal(t, ana.ID, edited.ID)
	assert.Equal(t, "Anna", edited.Name)
	assert.Equal(t, "img/ana.png", edited.Photo)

	// a missing photo keeps the current one
	edited, err = env.players.EditPlayer("Anna", models.UpdatePlayerRequest{Name: "Anna"})
	assert.Equal(t, nil, err)
	assert.Equal(t, "img/ana.png", edited.Photo)

	empty := ""
	edited, err = env.players.EditPlayer("Anna", models.UpdatePlayerRequest{Name: "Anna", Photo: &empty})
	assert.Equal(t, nil, err)
	assert.Equal(t, "img/pin.png", edited.Photo)

	_, err = env.players.EditPlayer("Anna", models.UpdatePlayerRequest{Name: "bob"})
	assert.T(t, errors.Is(err, ErrPlayerAlreadyExists), err)
}

func TestSetHiddenFiltersListing(t *testing.T) {
	env := newTestEnv(t)
	env.player(t, "Bob")
	env.player(t, "Ana")

	hidden, err := env.players.SetHidden("bob", true)
	assert.Equal(t, nil, err)
	assert.Equal(t, true, hidden.Hidden)

	visible, err := env.players.GetAllPlayers(false)
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(visible))
	assert.Equal(t, "Ana", visible[0].Name)

	all, err := env.players.GetAllPlayers(true)
	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(all))
	assert.Equal(t, "Ana", all[0].Name)

	_, err = env.players.SetHidden("bob", false)
	assert.Equal(t, nil, err)
	visible, _ = env.players.GetAllPlayers(false)
	assert.Equal(t, 2, len(visible))
}
