package avsync

import (
	"context"

	"log/slog"

	"avsync-monitor/internal/core"
	"avsync-monitor/internal/features/avsync/services"
)

type Feature struct {
	*core.BaseFeature
	service *Service
}

func NewFeature(logger *slog.Logger, db *core.Database, alerter services.Alerter, config Config) *Feature {
	service := NewService(logger, db, alerter, config)

	baseFeature := core.NewBaseFeature(
		"avsync",
		"A/V sync health monitoring with alerts",
		true,
		core.NewLogger(),
		db,
		config,
	)

	return &Feature{
		BaseFeature: baseFeature,
		service:     service,
	}
}

// Init initializes the avsync feature
func (f *Feature) Init(ctx context.Context) error {
	if err := f.BaseFeature.Init(ctx); err != nil {
		return err
	}

	if err := f.service.Init(ctx); err != nil {
		return err
	}

	f.Logger().Info("Avsync feature initialized")
	return nil
}

// Routes returns the HTTP routes for the avsync feature
func (f *Feature) Routes() []core.Route {
	apiHandler := f.service.GetAPIHandler()
	eventsHandler := f.service.GetEventsHandler()

	return []core.Route{
		{Method: "GET", Path: "/avsync/api/sites", Handler: apiHandler.ListSites},
		{Method: "GET", Path: "/avsync/api/sites/{id}", Handler: apiHandler.GetSite},
		{Method: "POST", Path: "/avsync/api/sites/{id}/poll", Handler: apiHandler.PollSite},
		{Method: "GET", Path: "/avsync/api/events", Handler: eventsHandler.Events},
	}
}

// Shutdown gracefully shuts down the avsync feature
func (f *Feature) Shutdown(ctx context.Context) error {
	f.Logger().Info("Shutting down avsync feature")
	f.service.Stop()
	return f.BaseFeature.Shutdown(ctx)
}
