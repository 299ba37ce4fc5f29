package services

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"avsync-monitor/internal/features/avsync/models"
)

// PollResult is the outcome of one sync query. OffsetMs is nil when the
// endpoint reported no measurement or the query failed.
type PollResult struct {
	OffsetMs *int64
	Status   models.Status
}

// syncResponse is the wire format of a site's sync endpoint
type syncResponse struct {
	AVOffsetMs *int64 `json:"avOffsetMs"`
	Status     string `json:"status"`
}

// SyncClient queries site sync endpoints. Failures never surface as errors:
// the scheduler must keep polling peer sites regardless of one site's
// condition, so every failure mode collapses to the unavailable sentinel.
type SyncClient struct {
	logger  *slog.Logger
	client  *http.Client
	timeout time.Duration
}

func NewSyncClient(logger *slog.Logger, timeout time.Duration) *SyncClient {
	return &SyncClient{
		logger: logger,
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Fetch performs one bounded GET against <endpoint>/sync
func (c *SyncClient) Fetch(ctx context.Context, endpoint string) PollResult {
	url := strings.TrimRight(endpoint, "/") + "/sync"

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		c.logger.Error("Failed to build sync request", "endpoint", endpoint, "error", err)
		return unavailableResult()
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("Sync query failed", "endpoint", endpoint, "error", err)
		return unavailableResult()
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("Sync query returned bad status", "endpoint", endpoint, "status_code", resp.StatusCode)
		return unavailableResult()
	}

	var body syncResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger.Warn("Sync query returned malformed body", "endpoint", endpoint, "error", err)
		return unavailableResult()
	}

	status := models.Status(body.Status)
	if !status.Valid() {
		c.logger.Warn("Sync query returned unknown status", "endpoint", endpoint, "status", body.Status)
		return unavailableResult()
	}

	return PollResult{
		OffsetMs: body.AVOffsetMs,
		Status:   status,
	}
}

func unavailableResult() PollResult {
	return PollResult{
		OffsetMs: nil,
		Status:   models.StatusUnavailable,
	}
}
