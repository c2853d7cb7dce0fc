package handlers

import (
	"net/http"
	"strconv"

	"afl-api/packages/core/models"
	"afl-api/packages/core/services"

	"github.com/gin-gonic/gin"
)

const defaultHistoryLimit = 20

type TeamHandler struct {
	teamService *services.TeamService
}

func NewTeamHandler(teamService *services.TeamService) *TeamHandler {
	return &TeamHandler{
		teamService: teamService,
	}
}

// GetAllTeams lists teams
// @Summary List teams
// @Tags teams
// @Produce json
// @Success 200 {array} models.Team
// @Failure 500 {object} map[string]string
// @Router /teams [get]
func (h *TeamHandler) GetAllTeams(c *gin.Context) {
	teams, err := h.teamService.GetAllTeams()
	if err != nil {
		respondError(c, err, "Failed to retrieve teams")
		return
	}

	c.JSON(http.StatusOK, teams)
}

// CreateTeam returns the team of a (defense, attack) pair, creating it if needed
// @Summary Create team
// @Description Create a team from a defense and an attack player. An existing pair returns the existing team.
// @Tags teams
// @Accept json
// @Produce json
// @Param team body models.CreateTeamRequest true "Team players"
// @Success 200 {object} models.Team
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /teams [post]
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	var req models.CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	team, err := h.teamService.CreateTeam(req)
	if err != nil {
		respondError(c, err, "Failed to create team")
		return
	}

	c.JSON(http.StatusOK, team)
}

// GetTeam retrieves a team profile
// @Summary Get team by ID
// @Description Get a team with its current stats and its latest stats entries
// @Tags teams
// @Produce json
// @Param id path int true "Team ID"
// @Param limit query int false "Number of history entries (default: 20)"
// @Success 200 {object} models.TeamProfile
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /teams/{id} [get]
func (h *TeamHandler) GetTeam(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid team ID",
		})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultHistoryLimit)))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid limit parameter",
		})
		return
	}

	profile, err := h.teamService.GetProfile(uint(id), limit)
	if err != nil {
		respondError(c, err, "Failed to retrieve team")
		return
	}

	c.JSON(http.StatusOK, profile)
}
