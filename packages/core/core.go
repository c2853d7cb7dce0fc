package core

import (
	"afl-api/packages/core/cron"
	"afl-api/packages/core/handlers"
	"afl-api/packages/core/models"
	"afl-api/packages/core/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Options tune the core module; zero values fall back to defaults
type Options struct {
	Rules        models.GameRules
	DefaultPhoto string
	ExpirySpec   string
}

type Module struct {
	PlayerHandler     *handlers.PlayerHandler
	PlayerService     *services.PlayerService
	TeamHandler       *handlers.TeamHandler
	TeamService       *services.TeamService
	GameHandler       *handlers.GameHandler
	GameService       *services.GameService
	LedgerHandler     *handlers.LedgerHandler
	LedgerService     *services.LedgerService
	SettlementService *services.SettlementService
	StatsHandler      *handlers.StatsHandler
	StatsService      *services.StatsService
	ExpiryService     *services.ExpiryService
	LiveFeed          *services.LiveFeed
	Scheduler         *cron.Scheduler
	logger            zerolog.Logger
}

func NewModule(db *gorm.DB, opts Options, logger zerolog.Logger) *Module {
	if opts.Rules.GoalLimit <= 0 || opts.Rules.TimeLimit <= 0 {
		opts.Rules = models.DefaultGameRules()
	}
	if opts.DefaultPhoto == "" {
		opts.DefaultPhoto = "img/pin.png"
	}

	logger = logger.With().Str("module", "core").Logger()

	ledgerService := services.NewLedgerService(db, logger)
	ledgerHandler := handlers.NewLedgerHandler(ledgerService)

	settlementService := services.NewSettlementService(db, ledgerService, logger)

	playerService := services.NewPlayerService(db, ledgerService, opts.DefaultPhoto, logger)
	playerHandler := handlers.NewPlayerHandler(playerService)

	teamService := services.NewTeamService(db, ledgerService, logger)
	teamHandler := handlers.NewTeamHandler(teamService)

	liveFeed := services.NewLiveFeed()
	gameService := services.NewGameService(db, ledgerService, settlementService, teamService, liveFeed, opts.Rules, logger)
	gameHandler := handlers.NewGameHandler(gameService, liveFeed)

	statsService := services.NewStatsService(db)
	statsHandler := handlers.NewStatsHandler(statsService, gameService)

	// Initialize expiry service and scheduler
	expiryService := services.NewExpiryService(db, gameService, logger)
	scheduler := cron.NewScheduler(expiryService, opts.ExpirySpec, logger)

	return &Module{
		PlayerHandler:     playerHandler,
		PlayerService:     playerService,
		TeamHandler:       teamHandler,
		TeamService:       teamService,
		GameHandler:       gameHandler,
		GameService:       gameService,
		LedgerHandler:     ledgerHandler,
		LedgerService:     ledgerService,
		SettlementService: settlementService,
		StatsHandler:      statsHandler,
		StatsService:      statsService,
		ExpiryService:     expiryService,
		LiveFeed:          liveFeed,
		Scheduler:         scheduler,
		logger:            logger,
	}
}

func (m *Module) SetupRoutes(r *gin.Engine) {
	players := r.Group("/players")
	{
		players.GET("", m.PlayerHandler.GetAllPlayers)
		players.POST("", m.PlayerHandler.CreatePlayer)
		players.GET("/:name", m.PlayerHandler.GetPlayer)
		players.PUT("/:name", m.PlayerHandler.UpdatePlayer)
		players.PATCH("/:name/hidden", m.PlayerHandler.SetHidden)
	}

	teams := r.Group("/teams")
	{
		teams.GET("", m.TeamHandler.GetAllTeams)
		teams.POST("", m.TeamHandler.CreateTeam)
		teams.GET("/:id", m.TeamHandler.GetTeam)
	}

	games := r.Group("/games")
	{
		games.GET("", m.GameHandler.GetGames)
		games.POST("", m.GameHandler.CreateOrUpdateGame)
		games.POST("/start", m.GameHandler.StartGame)
		games.GET("/open", m.GameHandler.GetOpenGame)
		games.GET("/live", m.GameHandler.Live)
		games.GET("/:timestamp", m.GameHandler.GetGame)
		games.GET("/:timestamp/score", m.GameHandler.GetScore)
		games.POST("/:timestamp/end", m.GameHandler.EndGame)
		games.DELETE("/:timestamp", m.GameHandler.DeleteGame)
	}

	goal := r.Group("/goal")
	{
		goal.POST("/:side", m.GameHandler.RecordGoal)
		goal.POST("/:side/:value", m.GameHandler.RecordGoal)
	}

	r.GET("/is_game_on", m.GameHandler.IsGameOn)

	stats := r.Group("/stats")
	{
		stats.GET("", m.StatsHandler.GetStats)
		stats.GET("/rankings", m.StatsHandler.GetRankings)
		stats.GET("/current", m.LedgerHandler.GetCurrentStats)
		stats.GET("/history", m.LedgerHandler.GetHistory)
		stats.POST("/recalculate", m.StatsHandler.Recalculate)
	}
}

// StartScheduler starts the cron scheduler for the expiry sweep
func (m *Module) StartScheduler() error {
	m.logger.Info().Msg("starting core module scheduler")
	return m.Scheduler.Start()
}

func (m *Module) StopScheduler() {
	m.logger.Info().Msg("stopping core module scheduler")
	m.Scheduler.Stop()
}

// RunExpiryNow triggers the expiry sweep outside the schedule
func (m *Module) RunExpiryNow() {
	m.Scheduler.RunNow()
}
