package models

import "time"

// Status is the health classification reported by a site's sync endpoint.
// The endpoint is authoritative; the monitor never derives status from the
// rolling statistics.
type Status string

const (
	StatusOK          Status = "ok"
	StatusWarn        Status = "warn"
	StatusCritical    Status = "critical"
	StatusUnavailable Status = "unavailable"
	StatusUnknown     Status = "unknown"
)

// Valid reports whether s is a status a sync endpoint may report
func (s Status) Valid() bool {
	switch s {
	case StatusOK, StatusWarn, StatusCritical, StatusUnavailable:
		return true
	}
	return false
}

// Degraded reports whether s warrants operator attention
func (s Status) Degraded() bool {
	return s == StatusWarn || s == StatusCritical
}

// Site is one monitored production location. Owned by the site registry;
// the monitor consumes it read-only.
type Site struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Endpoint  string    `json:"endpoint"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Sample is one successful offset observation. Never mutated after creation.
type Sample struct {
	OffsetMs   int64     `json:"offset_ms"`
	ObservedAt time.Time `json:"observed_at"`
}

// StatusSnapshot is the published health summary for a site. It is replaced
// wholesale on every poll; readers must treat it as immutable.
type StatusSnapshot struct {
	OffsetMs    *int64    `json:"offset_ms"`
	Status      Status    `json:"status"`
	Avg60s      *int64    `json:"avg_60s"`
	MaxDrift60s *int64    `json:"max_drift_60s"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SiteStatus combines a site with its current snapshot for the API
type SiteStatus struct {
	Site     Site            `json:"site"`
	Snapshot *StatusSnapshot `json:"snapshot,omitempty"`
}
