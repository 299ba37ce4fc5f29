package services

import (
	"testing"
	"time"

	"avsync-monitor/internal/features/avsync/models"
)

func TestPruneHistory(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	window := 60 * time.Second

	history := []models.Sample{
		{OffsetMs: 10, ObservedAt: now.Add(-90 * time.Second)},
		{OffsetMs: 20, ObservedAt: now.Add(-61 * time.Second)},
		{OffsetMs: 30, ObservedAt: now.Add(-60 * time.Second)},
		{OffsetMs: 40, ObservedAt: now.Add(-5 * time.Second)},
		{OffsetMs: 50, ObservedAt: now},
	}

	pruned := PruneHistory(history, now, window)

	if len(pruned) != 3 {
		t.Fatalf("expected 3 retained samples, got %d", len(pruned))
	}

	for _, sample := range pruned {
		if now.Sub(sample.ObservedAt) > window {
			t.Errorf("retained sample older than window: observed at %s", sample.ObservedAt)
		}
	}
}

func TestPruneHistoryAllStale(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	history := []models.Sample{
		{OffsetMs: 10, ObservedAt: now.Add(-10 * time.Minute)},
		{OffsetMs: 20, ObservedAt: now.Add(-5 * time.Minute)},
	}

	pruned := PruneHistory(history, now, 60*time.Second)
	if len(pruned) != 0 {
		t.Fatalf("expected empty history, got %d samples", len(pruned))
	}
}

func TestPruneHistoryEmpty(t *testing.T) {
	now := time.Now()

	pruned := PruneHistory(nil, now, 60*time.Second)
	if len(pruned) != 0 {
		t.Fatalf("expected empty history, got %d samples", len(pruned))
	}
}

func TestAggregate(t *testing.T) {
	now := time.Now()
	history := []models.Sample{
		{OffsetMs: -40, ObservedAt: now},
		{OffsetMs: 60, ObservedAt: now},
	}

	avg, maxDrift := Aggregate(history)

	if avg == nil || *avg != 50 {
		t.Errorf("expected avg 50, got %v", avg)
	}
	if maxDrift == nil || *maxDrift != 60 {
		t.Errorf("expected max drift 60, got %v", maxDrift)
	}
}

func TestAggregateRounds(t *testing.T) {
	now := time.Now()
	history := []models.Sample{
		{OffsetMs: 10, ObservedAt: now},
		{OffsetMs: 11, ObservedAt: now},
	}

	avg, _ := Aggregate(history)

	// mean of 10 and 11 is 10.5, which rounds up
	if avg == nil || *avg != 11 {
		t.Errorf("expected avg 11, got %v", avg)
	}
}

func TestAggregateEmpty(t *testing.T) {
	avg, maxDrift := Aggregate(nil)

	if avg != nil {
		t.Errorf("expected nil avg for empty history, got %d", *avg)
	}
	if maxDrift != nil {
		t.Errorf("expected nil max drift for empty history, got %d", *maxDrift)
	}
}
