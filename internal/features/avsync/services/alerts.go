package services

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"avsync-monitor/internal/features/avsync/models"

	"github.com/google/uuid"
)

// Alerter delivers one alert message to the external notification channel
type Alerter interface {
	Send(ctx context.Context, text string) error
}

// AlertState is the per-site alert bookkeeping. LastWarnAlertAt feeds the
// warn throttle; LastAlertAt records the most recent send of any severity.
type AlertState struct {
	LastWarnAlertAt time.Time
	LastAlertAt     time.Time
}

// AlertDispatcher decides, per poll, whether a status observation warrants
// an external alert. Critical alerts repeat on every poll while the
// condition persists; warn alerts fire only on a transition into warn and
// are throttled. The asymmetry is an intentional escalation bias.
type AlertDispatcher struct {
	logger   *slog.Logger
	alerter  Alerter
	clock    Clock
	throttle time.Duration
}

func NewAlertDispatcher(logger *slog.Logger, alerter Alerter, clock Clock, throttle time.Duration) *AlertDispatcher {
	return &AlertDispatcher{
		logger:   logger,
		alerter:  alerter,
		clock:    clock,
		throttle: throttle,
	}
}

// Evaluate applies the transition table for one poll observation and sends
// at most one alert. Delivery is best-effort: failures are logged and never
// roll back the state update.
func (d *AlertDispatcher) Evaluate(ctx context.Context, site models.Site, prev, next models.Status, snapshot models.StatusSnapshot, state *AlertState) {
	now := d.clock.Now()

	switch {
	case next == models.StatusCritical:
		// Escalation takes priority over quiet channels: no throttle, no
		// transition requirement.
		d.send(ctx, site, "CRITICAL", snapshot)
		state.LastAlertAt = now

	case next == models.StatusWarn:
		if prev == models.StatusWarn || prev == models.StatusCritical {
			return // already in a warn-or-worse state
		}
		if !state.LastWarnAlertAt.IsZero() && now.Sub(state.LastWarnAlertAt) <= d.throttle {
			return // warned recently
		}
		d.send(ctx, site, "WARNING", snapshot)
		state.LastWarnAlertAt = now
		state.LastAlertAt = now

	case next == models.StatusOK && prev.Degraded():
		d.send(ctx, site, "RECOVERED", snapshot)
		state.LastAlertAt = now
	}
}

func (d *AlertDispatcher) send(ctx context.Context, site models.Site, severity string, snapshot models.StatusSnapshot) {
	alertID := uuid.NewString()
	text := FormatAlert(severity, site, snapshot)

	if err := d.alerter.Send(ctx, text); err != nil {
		d.logger.Error("Failed to send alert", "alert_id", alertID, "site_id", site.ID, "severity", severity, "error", err)
		return
	}

	d.logger.Info("Sent alert", "alert_id", alertID, "site_id", site.ID, "severity", severity)
}

// FormatAlert renders the alert payload: site name, numeric offset (or a
// placeholder when unknown), and the rolling window statistics.
func FormatAlert(severity string, site models.Site, snapshot models.StatusSnapshot) string {
	return fmt.Sprintf("[%s] A/V sync at %s: offset %s, 60s avg %s, 60s max drift %s",
		severity,
		site.Name,
		formatMillis(snapshot.OffsetMs),
		formatMillis(snapshot.Avg60s),
		formatMillis(snapshot.MaxDrift60s),
	)
}

func formatMillis(v *int64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%dms", *v)
}
