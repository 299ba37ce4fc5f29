package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"avsync-monitor/internal/features/avsync/models"

	"github.com/google/uuid"
)

// SiteSource provides the monitored site set. The registry is externally
// owned; the monitor consumes it read-only.
type SiteSource interface {
	GetActiveSites() ([]models.Site, error)
	GetSiteByID(siteID string) (*models.Site, error)
}

// SyncFetcher performs one sync query against a site endpoint
type SyncFetcher interface {
	Fetch(ctx context.Context, endpoint string) PollResult
}

// NotifyFunc signals the presentation layer that a site's snapshot changed
// or was first populated. The consumer decides what to refresh.
type NotifyFunc func(siteID string)

// Config holds the monitor's timing knobs
type Config struct {
	PollInterval time.Duration
	WarmupDelay  time.Duration
	Window       time.Duration
	WarnThrottle time.Duration
}

// siteState is the per-site monitoring state. Created lazily on first poll,
// lives for the process lifetime, mutated only under the monitor mutex.
type siteState struct {
	history    []models.Sample
	lastStatus models.Status
	alerts     AlertState
}

// Monitor drives the poll cycle: fetch, history update, aggregation, alert
// evaluation, snapshot publication. One instance owns all per-site state.
type Monitor struct {
	logger     *slog.Logger
	source     SiteSource
	fetcher    SyncFetcher
	dispatcher *AlertDispatcher
	notify     NotifyFunc
	clock      Clock
	config     Config

	mu     sync.Mutex
	states map[string]*siteState

	snapMu    sync.RWMutex
	snapshots map[string]*models.StatusSnapshot

	stopOnce sync.Once
	stop     chan struct{}
}

func NewMonitor(logger *slog.Logger, source SiteSource, fetcher SyncFetcher, alerter Alerter, notify NotifyFunc, clock Clock, config Config) *Monitor {
	if clock == nil {
		clock = SystemClock()
	}
	if notify == nil {
		notify = func(string) {}
	}

	return &Monitor{
		logger:     logger,
		source:     source,
		fetcher:    fetcher,
		dispatcher: NewAlertDispatcher(logger, alerter, clock, config.WarnThrottle),
		notify:     notify,
		clock:      clock,
		config:     config,
		states:     make(map[string]*siteState),
		snapshots:  make(map[string]*models.StatusSnapshot),
		stop:       make(chan struct{}),
	}
}

// Start launches the poll scheduler in a goroutine
func (m *Monitor) Start(ctx context.Context) {
	go m.run(ctx)
}

// Stop halts the scheduler. Safe to call more than once.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
}

// run fires one warm-up cycle shortly after startup, then a cycle per poll
// interval. Cycles are never skipped or merged; an overrunning cycle simply
// delays itself.
func (m *Monitor) run(ctx context.Context) {
	warmup := time.NewTimer(m.config.WarmupDelay)
	defer warmup.Stop()

	ticker := time.NewTicker(m.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Monitoring stopped")
			return
		case <-m.stop:
			m.logger.Info("Monitoring stopped")
			return
		case <-warmup.C:
			m.PollAllSites(ctx)
		case <-ticker.C:
			m.PollAllSites(ctx)
		}
	}
}

// PollAllSites runs one poll cycle over every registered site. Sites are
// polled sequentially; a failure while processing one site must not prevent
// the remaining sites from being polled.
func (m *Monitor) PollAllSites(ctx context.Context) {
	cycleID := uuid.NewString()

	sites, err := m.source.GetActiveSites()
	if err != nil {
		m.logger.Error("Failed to get active sites", "cycle_id", cycleID, "error", err)
		return
	}

	m.logger.Debug("Poll cycle started", "cycle_id", cycleID, "sites", len(sites))

	for _, site := range sites {
		m.pollSiteSafe(ctx, cycleID, site)
	}
}

// PollSiteByID runs one immediate poll for a single site and returns the
// resulting snapshot
func (m *Monitor) PollSiteByID(ctx context.Context, siteID string) (*models.StatusSnapshot, error) {
	site, err := m.source.GetSiteByID(siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up site %s: %w", siteID, err)
	}
	if site == nil {
		return nil, fmt.Errorf("site %s is not registered", siteID)
	}

	m.pollSiteSafe(ctx, "manual", *site)

	snapshot, ok := m.Snapshot(siteID)
	if !ok {
		// Site has no endpoint configured, so the poll was skipped.
		return nil, nil
	}
	return snapshot, nil
}

// pollSiteSafe isolates per-site failures: a panic while processing one site
// is recovered and logged at the site level.
func (m *Monitor) pollSiteSafe(ctx context.Context, cycleID string, site models.Site) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("Site poll failed", "cycle_id", cycleID, "site_id", site.ID, "panic", r)
		}
	}()

	m.pollSite(ctx, site)
}

func (m *Monitor) pollSite(ctx context.Context, site models.Site) {
	if site.Endpoint == "" {
		return // registered but not yet reachable: skipped, not an error
	}

	result := m.fetcher.Fetch(ctx, site.Endpoint)
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	state, known := m.states[site.ID]
	if !known {
		state = &siteState{lastStatus: models.StatusUnknown}
		m.states[site.ID] = state
	}

	if result.OffsetMs != nil {
		state.history = append(state.history, models.Sample{
			OffsetMs:   *result.OffsetMs,
			ObservedAt: now,
		})
	}
	state.history = PruneHistory(state.history, now, m.config.Window)
	avg, maxDrift := Aggregate(state.history)

	snapshot := &models.StatusSnapshot{
		OffsetMs:    result.OffsetMs,
		Status:      result.Status,
		Avg60s:      avg,
		MaxDrift60s: maxDrift,
		UpdatedAt:   now,
	}

	prev := state.lastStatus
	m.dispatcher.Evaluate(ctx, site, prev, result.Status, *snapshot, &state.alerts)

	m.publish(site.ID, snapshot)

	if result.Status != prev || !known {
		m.notifySafe(site.ID)
	}

	state.lastStatus = result.Status
}

// publish replaces the site's snapshot wholesale. Readers only ever see
// complete snapshots.
func (m *Monitor) publish(siteID string, snapshot *models.StatusSnapshot) {
	m.snapMu.Lock()
	m.snapshots[siteID] = snapshot
	m.snapMu.Unlock()
}

// notifySafe invokes the notify hook; hook failures must never interrupt
// subsequent polling.
func (m *Monitor) notifySafe(siteID string) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("Notify hook failed", "site_id", siteID, "panic", r)
		}
	}()

	m.notify(siteID)
}

// Snapshot returns the latest published snapshot for a site
func (m *Monitor) Snapshot(siteID string) (*models.StatusSnapshot, bool) {
	m.snapMu.RLock()
	defer m.snapMu.RUnlock()

	snapshot, ok := m.snapshots[siteID]
	return snapshot, ok
}

// Snapshots returns a copy of the published snapshot map
func (m *Monitor) Snapshots() map[string]*models.StatusSnapshot {
	m.snapMu.RLock()
	defer m.snapMu.RUnlock()

	out := make(map[string]*models.StatusSnapshot, len(m.snapshots))
	for id, snapshot := range m.snapshots {
		out[id] = snapshot
	}
	return out
}
