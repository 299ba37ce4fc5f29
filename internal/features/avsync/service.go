package avsync

import (
	"context"
	"time"

	"log/slog"

	"avsync-monitor/internal/core"
	"avsync-monitor/internal/features/avsync/database"
	"avsync-monitor/internal/features/avsync/handlers"
	"avsync-monitor/internal/features/avsync/models"
	"avsync-monitor/internal/features/avsync/services"
)

// Config holds the avsync feature configuration
type Config struct {
	SitesFile      string
	PollInterval   time.Duration
	WarmupDelay    time.Duration
	Window         time.Duration
	WarnThrottle   time.Duration
	RequestTimeout time.Duration
}

// Service wires the site registry, the monitor, and the HTTP surface
type Service struct {
	logger  *slog.Logger
	db      *database.DatabaseService
	monitor *services.Monitor
	events  *handlers.EventsHandler
	api     *handlers.APIHandler
	config  Config
}

func NewService(logger *slog.Logger, coreDB *core.Database, alerter services.Alerter, config Config) *Service {
	db := database.NewDatabaseService(coreDB)
	events := handlers.NewEventsHandler(logger)
	client := services.NewSyncClient(logger, config.RequestTimeout)

	monitor := services.NewMonitor(logger, db, client, alerter, events.Broadcast, services.SystemClock(), services.Config{
		PollInterval: config.PollInterval,
		WarmupDelay:  config.WarmupDelay,
		Window:       config.Window,
		WarnThrottle: config.WarnThrottle,
	})

	svc := &Service{
		logger:  logger,
		db:      db,
		monitor: monitor,
		events:  events,
		config:  config,
	}
	svc.api = handlers.NewAPIHandler(logger, svc)

	return svc
}

// Init prepares the registry schema, seeds it from the configured site list,
// and starts the poll scheduler
func (s *Service) Init(ctx context.Context) error {
	if err := s.db.InitSchema(ctx); err != nil {
		return core.NewDatabaseError("failed to initialize site registry schema", err)
	}

	count, err := s.db.SeedFromFile(ctx, s.config.SitesFile)
	if err != nil {
		return core.NewConfigurationError("failed to seed site registry", err)
	}
	s.logger.Info("Seeded site registry", "sites", count, "file", s.config.SitesFile)

	s.monitor.Start(ctx)
	return nil
}

// Stop halts the poll scheduler
func (s *Service) Stop() {
	s.monitor.Stop()
}

// GetAPIHandler returns the JSON API handler
func (s *Service) GetAPIHandler() *handlers.APIHandler {
	return s.api
}

// GetEventsHandler returns the SSE handler
func (s *Service) GetEventsHandler() *handlers.EventsHandler {
	return s.events
}

// GetActiveSites implements handlers.MonitorInterface
func (s *Service) GetActiveSites() ([]models.Site, error) {
	return s.db.GetActiveSites()
}

// GetSiteByID implements handlers.MonitorInterface
func (s *Service) GetSiteByID(siteID string) (*models.Site, error) {
	return s.db.GetSiteByID(siteID)
}

// Snapshot implements handlers.MonitorInterface
func (s *Service) Snapshot(siteID string) (*models.StatusSnapshot, bool) {
	return s.monitor.Snapshot(siteID)
}

// PollSiteByID implements handlers.MonitorInterface
func (s *Service) PollSiteByID(ctx context.Context, siteID string) (*models.StatusSnapshot, error) {
	return s.monitor.PollSiteByID(ctx, siteID)
}
