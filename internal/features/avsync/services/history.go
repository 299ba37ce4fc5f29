package services

import (
	"math"
	"time"

	"avsync-monitor/internal/features/avsync/models"
)

// PruneHistory drops every sample older than the retention window.
// Invariant afterwards: now - observedAt <= window for all retained samples.
func PruneHistory(history []models.Sample, now time.Time, window time.Duration) []models.Sample {
	cutoff := now.Add(-window)

	// Samples are append-ordered, so find the first one still inside the
	// window and keep the tail.
	keep := len(history)
	for i, sample := range history {
		if !sample.ObservedAt.Before(cutoff) {
			keep = i
			break
		}
	}

	return history[keep:]
}

// Aggregate derives the rolling statistics over the retained samples:
// the rounded mean of absolute offsets and the maximum absolute offset.
// Both are nil when the history is empty.
func Aggregate(history []models.Sample) (avg *int64, maxDrift *int64) {
	if len(history) == 0 {
		return nil, nil
	}

	var sum float64
	var max int64
	for _, sample := range history {
		abs := sample.OffsetMs
		if abs < 0 {
			abs = -abs
		}
		sum += float64(abs)
		if abs > max {
			max = abs
		}
	}

	mean := int64(math.Round(sum / float64(len(history))))
	return &mean, &max
}
