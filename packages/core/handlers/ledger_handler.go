package handlers

import (
	"net/http"
	"strconv"

	"afl-api/packages/core/models"
	"afl-api/packages/core/services"

	"github.com/gin-gonic/gin"
)

type LedgerHandler struct {
	ledgerService *services.LedgerService
}

func NewLedgerHandler(ledgerService *services.LedgerService) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
	}
}

// GetCurrentStats retrieves the latest stats of a subject
// @Summary Get current stats
// @Tags stats
// @Produce json
// @Param kind query string true "Subject kind" Enums(player, attacker, defender, team)
// @Param id query int true "Player or team ID"
// @Success 200 {object} models.Stats
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /stats/current [get]
func (h *LedgerHandler) GetCurrentStats(c *gin.Context) {
	subject, ok := subjectFromQuery(c)
	if !ok {
		return
	}

	stats, err := h.ledgerService.CurrentStats(subject)
	if err != nil {
		respondError(c, err, "Failed to retrieve stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetHistory retrieves the latest stats entries of a subject
// @Summary Get stats history
// @Description Get the latest stats entries of a player track or team, newest first
// @Tags stats
// @Produce json
// @Param kind query string true "Subject kind" Enums(player, attacker, defender, team)
// @Param id query int true "Player or team ID"
// @Param limit query int false "Number of entries to retrieve (default: 20, max: 500)"
// @Success 200 {array} models.Stats
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /stats/history [get]
func (h *LedgerHandler) GetHistory(c *gin.Context) {
	subject, ok := subjectFromQuery(c)
	if !ok {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultHistoryLimit)))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid limit parameter",
		})
		return
	}

	// Cap the limit to prevent excessive queries
	if limit > 500 {
		limit = 500
	}

	history, err := h.ledgerService.History(subject, limit)
	if err != nil {
		respondError(c, err, "Failed to retrieve stats history")
		return
	}

	c.JSON(http.StatusOK, history)
}

func subjectFromQuery(c *gin.Context) (models.Subject, bool) {
	id, err := strconv.ParseUint(c.Query("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid id parameter",
		})
		return models.Subject{}, false
	}

	subject, err := models.NewSubject(models.SubjectKind(c.Query("kind")), uint(id))
	if err != nil {
		respondError(c, err, "Invalid subject")
		return models.Subject{}, false
	}

	return subject, true
}
