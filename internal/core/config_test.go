package core

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() err=%v", err)
	}

	if config.Monitor.PollInterval != 5*time.Second {
		t.Errorf("expected 5s poll interval, got %s", config.Monitor.PollInterval)
	}
	if config.Monitor.Window != 60*time.Second {
		t.Errorf("expected 60s window, got %s", config.Monitor.Window)
	}
	if config.Monitor.WarnThrottle != 5*time.Minute {
		t.Errorf("expected 5m warn throttle, got %s", config.Monitor.WarnThrottle)
	}
	if config.Monitor.RequestTimeout != 4*time.Second {
		t.Errorf("expected 4s request timeout, got %s", config.Monitor.RequestTimeout)
	}
	if config.Monitor.WarmupDelay != 3*time.Second {
		t.Errorf("expected 3s warmup delay, got %s", config.Monitor.WarmupDelay)
	}
	if config.AlertsConfigured() {
		t.Error("expected alerts unconfigured by default")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("AVSYNC_POLL_INTERVAL_MS", "1000")
	t.Setenv("AVSYNC_WINDOW_MS", "30000")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() err=%v", err)
	}

	if config.Monitor.PollInterval != time.Second {
		t.Errorf("expected 1s poll interval, got %s", config.Monitor.PollInterval)
	}
	if config.Monitor.Window != 30*time.Second {
		t.Errorf("expected 30s window, got %s", config.Monitor.Window)
	}
}

func TestHalfConfiguredTelegramStillStarts(t *testing.T) {
	// A missing chat target disables notifications; it must not keep the
	// monitor from running.
	t.Setenv("AVSYNC_TELEGRAM_TOKEN", "token-only")
	t.Setenv("AVSYNC_TELEGRAM_CHAT_ID", "")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() err=%v", err)
	}
	if config.AlertsConfigured() {
		t.Error("expected alerts to count as unconfigured without a chat id")
	}
}

func TestValidateRejectsBadPort(t *testing.T) {
	t.Setenv("AVSYNC_PORT", "99999")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected an error for out-of-range port")
	}
}
