package cron

import (
	"afl-api/packages/core/services"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const DefaultExpirySpec = "*/30 * * * * *"

type Scheduler struct {
	cron          *cron.Cron
	spec          string
	expiryService *services.ExpiryService
	logger        zerolog.Logger
}

// cronLogger adapts zerolog to the cron.Logger interface
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

func NewScheduler(expiryService *services.ExpiryService, spec string, logger zerolog.Logger) *Scheduler {
	if spec == "" {
		spec = DefaultExpirySpec
	}

	logger = logger.With().Str("component", "scheduler").Logger()

	// Create cron with seconds precision and logging
	c := cron.New(cron.WithSeconds(), cron.WithLogger(cronLogger{logger: logger}))

	return &Scheduler{
		cron:          c,
		spec:          spec,
		expiryService: expiryService,
		logger:        logger,
	}
}

// Start registers the jobs and starts the scheduler
func (s *Scheduler) Start() error {
	s.logger.Info().Str("spec", s.spec).Msg("starting cron scheduler")

	if _, err := s.cron.AddFunc(s.spec, s.runExpiry); err != nil {
		s.logger.Error().Err(err).Msg("error scheduling expiry job")
		return err
	}

	s.cron.Start()
	s.logger.Info().Msg("cron scheduler started")

	return nil
}

// Stop waits for running jobs before returning
func (s *Scheduler) Stop() {
	s.logger.Info().Msg("stopping cron scheduler")
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("cron scheduler stopped")
}

func (s *Scheduler) runExpiry() {
	open, err := s.expiryService.GetOpenGamesCount()
	if err != nil {
		s.logger.Error().Err(err).Msg("error counting open games")
		return
	}

	if open == 0 {
		return
	}

	if _, err := s.expiryService.ExpireOpenGames(); err != nil {
		s.logger.Error().Err(err).Msg("expiry job failed")
	}
}

// RunNow triggers the expiry job outside the schedule
func (s *Scheduler) RunNow() {
	s.logger.Info().Msg("manually triggering expiry job")
	s.runExpiry()
}
