// Package sim provides the repository's test doubles: a simulated audio
// mixer and a simulated streaming encoder, each serving the site sync
// contract. They exist so higher-level control code and local runs have
// deterministic endpoints to poll; the monitor treats them as opaque
// external services.
package sim

import (
	"encoding/json"
	"math"
	"net/http"
	"time"
)

// Classification thresholds, in absolute milliseconds of A/V offset.
const (
	warnThresholdMs     = 45
	criticalThresholdMs = 120
)

// syncReply is the wire format of the simulated /sync endpoints
type syncReply struct {
	AVOffsetMs *int64 `json:"avOffsetMs"`
	Status     string `json:"status"`
}

func classify(offsetMs int64) string {
	abs := offsetMs
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs > criticalThresholdMs:
		return "critical"
	case abs > warnThresholdMs:
		return "warn"
	}
	return "ok"
}

func writeReply(w http.ResponseWriter, offsetMs int64) {
	reply := syncReply{
		AVOffsetMs: &offsetMs,
		Status:     classify(offsetMs),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(reply)
}

// Mixer simulates an audio mixer whose offset drifts smoothly: a sinusoid
// that periodically crosses the warn and critical thresholds.
type Mixer struct {
	start       time.Time
	amplitudeMs float64
	period      time.Duration
}

func NewMixer() *Mixer {
	return &Mixer{
		start:       time.Now(),
		amplitudeMs: 150,
		period:      4 * time.Minute,
	}
}

// SyncHandler serves GET /sync for the mixer
func (m *Mixer) SyncHandler(w http.ResponseWriter, r *http.Request) {
	elapsed := time.Since(m.start)
	phase := 2 * math.Pi * float64(elapsed) / float64(m.period)
	offset := int64(math.Round(m.amplitudeMs * math.Sin(phase)))

	writeReply(w, offset)
}

// Encoder simulates a streaming encoder: offset moves in discrete steps and
// the endpoint goes dark for a short window out of every cycle, the way an
// encoder drops its status endpoint during a segment restart.
type Encoder struct {
	start       time.Time
	cycle       time.Duration
	darkWindow  time.Duration
	stepOffsets []int64
}

func NewEncoder() *Encoder {
	return &Encoder{
		start:      time.Now(),
		cycle:      45 * time.Second,
		darkWindow: 5 * time.Second,
		stepOffsets: []int64{
			10, 25, 60, 130, 80, 20, -15, -70,
		},
	}
}

// SyncHandler serves GET /sync for the encoder
func (e *Encoder) SyncHandler(w http.ResponseWriter, r *http.Request) {
	elapsed := time.Since(e.start)

	if elapsed%e.cycle < e.darkWindow {
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}

	step := int(elapsed/e.cycle) % len(e.stepOffsets)
	writeReply(w, e.stepOffsets[step])
}
