package handlers

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"afl-api/packages/core/models"
	"afl-api/packages/core/services"

	"github.com/gin-gonic/gin"
)

const liveKeepAlive = 15 * time.Second

type GameHandler struct {
	gameService *services.GameService
	feed        *services.LiveFeed
}

func NewGameHandler(gameService *services.GameService, feed *services.LiveFeed) *GameHandler {
	return &GameHandler{
		gameService: gameService,
		feed:        feed,
	}
}

// GetGames lists games with their derived fields
// @Summary List games
// @Description List games newest first. Expired games are ended before the list is read.
// @Tags games
// @Produce json
// @Param limit query int false "Number of games to retrieve (default: all)"
// @Success 200 {array} models.GameView
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /games [get]
func (h *GameHandler) GetGames(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid limit parameter",
		})
		return
	}

	games, err := h.gameService.GetAllGames(limit)
	if err != nil {
		respondError(c, err, "Failed to retrieve games")
		return
	}

	views := make([]models.GameView, 0, len(games))
	for i := range games {
		view, err := h.gameService.View(&games[i])
		if err != nil {
			respondError(c, err, "Failed to retrieve games")
			return
		}
		views = append(views, view)
	}

	c.JSON(http.StatusOK, views)
}

// CreateOrUpdateGame upserts a game by timestamp
// @Summary Create or update game
// @Description Create a game, ending every open game first, or update the open game with the same timestamp. Without a timestamp the game starts now.
// @Tags games
// @Accept json
// @Produce json
// @Param game body models.CreateGameRequest true "Game data"
// @Success 201 {object} models.GameView
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /games [post]
func (h *GameHandler) CreateOrUpdateGame(c *gin.Context) {
	var req models.CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	game, err := h.gameService.CreateOrUpdateGame(req)
	if err != nil {
		respondError(c, err, "Failed to save game")
		return
	}

	h.respondView(c, http.StatusCreated, game)
}

// StartGame opens a game from four player seats
// @Summary Start game
// @Description Build both teams from their defense and attack players and open a game now
// @Tags games
// @Accept json
// @Produce json
// @Param game body models.StartGameRequest true "Seats"
// @Success 201 {object} models.GameView
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /games/start [post]
func (h *GameHandler) StartGame(c *gin.Context) {
	var req models.StartGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	game, err := h.gameService.StartGame(req)
	if err != nil {
		respondError(c, err, "Failed to start game")
		return
	}

	h.respondView(c, http.StatusCreated, game)
}

// GetOpenGame retrieves the game in progress
// @Summary Get open game
// @Tags games
// @Produce json
// @Success 200 {object} models.GameView
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /games/open [get]
func (h *GameHandler) GetOpenGame(c *gin.Context) {
	game, err := h.gameService.GetOpenGame()
	if err != nil {
		respondError(c, err, "Failed to retrieve open game")
		return
	}

	h.respondView(c, http.StatusOK, game)
}

// GetGame retrieves a game by timestamp
// @Summary Get game by timestamp
// @Tags games
// @Produce json
// @Param timestamp path string true "Game timestamp (YYYY-MM-DD HH:MM:SS)"
// @Success 200 {object} models.GameView
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /games/{timestamp} [get]
func (h *GameHandler) GetGame(c *gin.Context) {
	game, err := h.gameService.GetGameByTimestamp(c.Param("timestamp"))
	if err != nil {
		respondError(c, err, "Failed to retrieve game")
		return
	}

	h.respondView(c, http.StatusOK, game)
}

// GetScore retrieves the score line of a game
// @Summary Get game score
// @Tags games
// @Produce json
// @Param timestamp path string true "Game timestamp (YYYY-MM-DD HH:MM:SS)"
// @Success 200 {object} models.ScoreResponse
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /games/{timestamp}/score [get]
func (h *GameHandler) GetScore(c *gin.Context) {
	score, err := h.gameService.Score(c.Param("timestamp"))
	if err != nil {
		respondError(c, err, "Failed to retrieve score")
		return
	}

	c.JSON(http.StatusOK, score)
}

// EndGame ends and settles an open game
// @Summary End game
// @Tags games
// @Produce json
// @Param timestamp path string true "Game timestamp (YYYY-MM-DD HH:MM:SS)"
// @Success 200 {object} models.GameView
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /games/{timestamp}/end [post]
func (h *GameHandler) EndGame(c *gin.Context) {
	game, err := h.gameService.EndGame(c.Param("timestamp"))
	if err != nil {
		respondError(c, err, "Failed to end game")
		return
	}

	h.respondView(c, http.StatusOK, game)
}

// DeleteGame deletes a game and recalculates every rating
// @Summary Delete game
// @Tags games
// @Produce json
// @Param timestamp path string true "Game timestamp (YYYY-MM-DD HH:MM:SS)"
// @Success 200 {object} models.Game
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /games/{timestamp} [delete]
func (h *GameHandler) DeleteGame(c *gin.Context) {
	game, err := h.gameService.DeleteGameByTimestamp(c.Param("timestamp"))
	if err != nil {
		respondError(c, err, "Failed to delete game")
		return
	}

	c.JSON(http.StatusOK, game)
}

// RecordGoal adds goals to one side of the open game
// @Summary Record goal
// @Description Add value goals (default 1, negative to correct) to the left or right side of the open game
// @Tags goals
// @Produce json
// @Param side path string true "Side" Enums(left, right)
// @Param value path int false "Goals to add"
// @Success 200 {object} models.GameView
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /goal/{side}/{value} [post]
func (h *GameHandler) RecordGoal(c *gin.Context) {
	side, err := models.ParseSide(c.Param("side"))
	if err != nil {
		respondError(c, err, "Failed to record goal")
		return
	}

	value := 1
	if raw := c.Param("value"); raw != "" {
		value, err = strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid goal value",
			})
			return
		}
	}

	game, err := h.gameService.RecordGoal(side, value)
	if err != nil {
		respondError(c, err, "Failed to record goal")
		return
	}

	h.respondView(c, http.StatusOK, game)
}

// IsGameOn tells whether a game is in progress
// @Summary Is a game in progress
// @Tags games
// @Produce json
// @Success 200 {object} map[string]bool
// @Failure 500 {object} map[string]string
// @Router /is_game_on [get]
func (h *GameHandler) IsGameOn(c *gin.Context) {
	on, err := h.gameService.IsGameOn()
	if err != nil {
		respondError(c, err, "Failed to check open game")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"game_on": on,
	})
}

// Live streams game events as server-sent events
// @Summary Live game events
// @Description Server-sent events stream of created, goal, ended and deleted game events
// @Tags games
// @Produce text/event-stream
// @Success 200 {object} models.GameEvent
// @Router /games/live [get]
func (h *GameHandler) Live(c *gin.Context) {
	events, unsubscribe := h.feed.Subscribe()
	defer unsubscribe()

	ticker := time.NewTicker(liveKeepAlive)
	defer ticker.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(string(event.Type), event.Game)
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (h *GameHandler) respondView(c *gin.Context, status int, game *models.Game) {
	view, err := h.gameService.View(game)
	if err != nil {
		respondError(c, err, "Failed to render game")
		return
	}

	c.JSON(status, view)
}
