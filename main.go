package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"afl-api/config"
	_ "afl-api/docs" // Swagger docs
	"afl-api/logger"
	"afl-api/middleware"
	"afl-api/migrations"
	"afl-api/packages/core"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// @title           AFL API
// @version         1.0
// @description     Foosball league API: players, teams, live games and Elo ratings
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support

// @license.name  MIT
// @license.url   http://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

func main() {
	fx.New(
		fx.Provide(newLogger),
		fx.Provide(config.ConnectDatabase),
		fx.Provide(newCoreModule),
		fx.Invoke(runServer),
	).Run()
}

// newLogger loads the configuration with a bootstrap logger, then applies LOG_LEVEL
func newLogger() (zerolog.Logger, *config.Config, error) {
	base := logger.New()
	cfg, err := config.Load(base)
	if err != nil {
		return base, nil, err
	}
	return logger.WithLevel(base, cfg.LogLevel), cfg, nil
}

func newCoreModule(db *gorm.DB, cfg *config.Config, log zerolog.Logger) (*core.Module, error) {
	if err := migrations.Run(db, log); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return core.NewModule(db, core.Options{
		Rules:        cfg.Rules(),
		DefaultPhoto: cfg.DefaultPhoto,
		ExpirySpec:   cfg.ExpirySpec,
	}, log), nil
}

func runServer(
	lc fx.Lifecycle,
	module *core.Module,
	cfg *config.Config,
	db *gorm.DB,
	log zerolog.Logger,
) {
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}))

	// Swagger endpoint
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/health", healthHandler(db))

	module.SetupRoutes(r)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := module.StartScheduler(); err != nil {
				return err
			}
			go func() {
				log.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("shutting down server")
			module.StopScheduler()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("server shutdown failed")
				return err
			}

			if sqlDB, err := db.DB(); err == nil {
				if err := sqlDB.Close(); err != nil {
					log.Warn().Err(err).Msg("error closing database connection")
				}
			}
			log.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Message  string `json:"message" example:"Server is running"`
	Database string `json:"database" example:"connected"`
}

// @Summary Health Check
// @Description Check if the server is running and database is connected
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		database := "connected"

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			status = http.StatusServiceUnavailable
			database = "unreachable"
		}

		c.JSON(status, HealthResponse{
			Message:  "Server is running",
			Database: database,
		})
	}
}
