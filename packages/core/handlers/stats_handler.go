package handlers

import (
	"net/http"

	"afl-api/packages/core/services"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	statsService *services.StatsService
	gameService  *services.GameService
}

func NewStatsHandler(statsService *services.StatsService, gameService *services.GameService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
		gameService:  gameService,
	}
}

// GetStats retrieves general statistics
// @Summary Get general statistics
// @Description Get the number of players, teams and games, and the games played in the last two weeks
// @Tags stats
// @Produce json
// @Success 200 {object} models.Summary
// @Failure 500 {object} map[string]string
// @Router /stats [get]
func (h *StatsHandler) GetStats(c *gin.Context) {
	summary, err := h.statsService.GetSummary()
	if err != nil {
		respondError(c, err, "Failed to retrieve statistics")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetRankings retrieves the player and team rankings
// @Summary Get rankings
// @Description Rank visible players by overall, attack and defense rating and by win percentage, and teams by rating
// @Tags stats
// @Produce json
// @Success 200 {object} models.Rankings
// @Failure 500 {object} map[string]string
// @Router /stats/rankings [get]
func (h *StatsHandler) GetRankings(c *gin.Context) {
	rankings, err := h.statsService.GetRankings(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve rankings")
		return
	}

	c.JSON(http.StatusOK, rankings)
}

// Recalculate rebuilds every rating from the ended games
// @Summary Recalculate statistics
// @Tags stats
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /stats/recalculate [post]
func (h *StatsHandler) Recalculate(c *gin.Context) {
	if err := h.gameService.RecalculateStats(); err != nil {
		respondError(c, err, "Failed to recalculate statistics")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Statistics recalculated",
	})
}
