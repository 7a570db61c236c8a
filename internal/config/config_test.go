package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"APP_PORT", "API_SEAL", "SYNC_BATCH_SIZE", "SYNC_PAGE_DELAY", "SYNC_LOG_FILE"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.APISeal != "32" {
		t.Errorf("APISeal = %q, want 32", cfg.APISeal)
	}
	if cfg.SyncBatchSize != 500 {
		t.Errorf("SyncBatchSize = %d, want 500", cfg.SyncBatchSize)
	}
	if cfg.SyncPageDelay != 500*time.Millisecond {
		t.Errorf("SyncPageDelay = %v, want 500ms", cfg.SyncPageDelay)
	}
	if cfg.LogFile != "logs/sync.log" {
		t.Errorf("LogFile = %q", cfg.LogFile)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("SYNC_BATCH_SIZE", "50")
	t.Setenv("SYNC_PAGE_DELAY", "0s")
	t.Setenv("API_TIMEOUT", "10s")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.SyncBatchSize != 50 {
		t.Errorf("SyncBatchSize = %d, want 50", cfg.SyncBatchSize)
	}
	if cfg.SyncPageDelay != 0 {
		t.Errorf("SyncPageDelay = %v, want 0", cfg.SyncPageDelay)
	}
	if cfg.APITimeout != 10*time.Second {
		t.Errorf("APITimeout = %v, want 10s", cfg.APITimeout)
	}
}
