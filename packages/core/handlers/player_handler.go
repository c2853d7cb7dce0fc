package handlers

import (
	"net/http"
	"strconv"

	"afl-api/packages/core/models"
	"afl-api/packages/core/services"

	"github.com/gin-gonic/gin"
)

type PlayerHandler struct {
	playerService *services.PlayerService
}

func NewPlayerHandler(playerService *services.PlayerService) *PlayerHandler {
	return &PlayerHandler{
		playerService: playerService,
	}
}

// GetAllPlayers lists players
// @Summary List players
// @Description List players ordered by name. Hidden players are left out unless requested.
// @Tags players
// @Produce json
// @Param include_hidden query bool false "Include hidden players (default: false)"
// @Success 200 {array} models.Player
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /players [get]
func (h *PlayerHandler) GetAllPlayers(c *gin.Context) {
	includeHidden, err := strconv.ParseBool(c.DefaultQuery("include_hidden", "false"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid include_hidden parameter",
		})
		return
	}

	players, err := h.playerService.GetAllPlayers(includeHidden)
	if err != nil {
		respondError(c, err, "Failed to retrieve players")
		return
	}

	c.JSON(http.StatusOK, players)
}

// CreatePlayer registers a player
// @Summary Create player
// @Description Create a player and initialize its overall, attack and defense ratings
// @Tags players
// @Accept json
// @Produce json
// @Param player body models.CreatePlayerRequest true "Player data"
// @Success 201 {object} models.Player
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /players [post]
func (h *PlayerHandler) CreatePlayer(c *gin.Context) {
	var req models.CreatePlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	player, err := h.playerService.CreatePlayer(req)
	if err != nil {
		respondError(c, err, "Failed to create player")
		return
	}

	c.JSON(http.StatusCreated, player)
}

// GetPlayer retrieves a player profile by name
// @Summary Get player by name
// @Description Get a player with its current overall, attack and defense stats
// @Tags players
// @Produce json
// @Param name path string true "Player name"
// @Success 200 {object} models.PlayerProfile
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /players/{name} [get]
func (h *PlayerHandler) GetPlayer(c *gin.Context) {
	profile, err := h.playerService.GetProfile(c.Param("name"))
	if err != nil {
		respondError(c, err, "Failed to retrieve player")
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdatePlayer renames a player or changes its photo
// @Summary Update player
// @Tags players
// @Accept json
// @Produce json
// @Param name path string true "Player name"
// @Param player body models.UpdatePlayerRequest true "New player data"
// @Success 200 {object} models.Player
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /players/{name} [put]
func (h *PlayerHandler) UpdatePlayer(c *gin.Context) {
	var req models.UpdatePlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	player, err := h.playerService.EditPlayer(c.Param("name"), req)
	if err != nil {
		respondError(c, err, "Failed to update player")
		return
	}

	c.JSON(http.StatusOK, player)
}

// SetHidden hides a player from rankings or shows it again
// @Summary Hide or show player
// @Tags players
// @Accept json
// @Produce json
// @Param name path string true "Player name"
// @Param hidden body models.HidePlayerRequest true "Hidden flag"
// @Success 200 {object} models.Player
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /players/{name}/hidden [patch]
func (h *PlayerHandler) SetHidden(c *gin.Context) {
	var req models.HidePlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	player, err := h.playerService.SetHidden(c.Param("name"), req.Hidden)
	if err != nil {
		respondError(c, err, "Failed to update player")
		return
	}

	c.JSON(http.StatusOK, player)
}
