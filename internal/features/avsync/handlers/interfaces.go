package handlers

import (
	"context"

	"avsync-monitor/internal/features/avsync/models"
)

// MonitorInterface is what the handlers need from the avsync service
type MonitorInterface interface {
	GetActiveSites() ([]models.Site, error)
	GetSiteByID(siteID string) (*models.Site, error)
	Snapshot(siteID string) (*models.StatusSnapshot, bool)
	PollSiteByID(ctx context.Context, siteID string) (*models.StatusSnapshot, error)
}
