package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/storesync")
	t.Setenv("POLL_INTERVAL", "")
	t.Setenv("SHUTDOWN_TIMEOUT", "")
	t.Setenv("METRICS_ADDR", "")
	t.Setenv("WRITE_BATCH_SIZE", "")
	t.Setenv("BATCH_CONCURRENCY", "")
	t.Setenv("INTER_BATCH_PAUSE_MS", "")
	t.Setenv("RECORD_LIMIT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.PollInterval != 300 {
		t.Errorf("expected default poll interval 300, got %d", cfg.PollInterval)
	}
	if cfg.ShutdownTimeout != 30 {
		t.Errorf("expected default shutdown timeout 30, got %d", cfg.ShutdownTimeout)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Errorf("expected default metrics addr :9090, got %s", cfg.MetricsAddr)
	}
	if cfg.WriteBatchSize != 10 {
		t.Errorf("expected default write batch size 10, got %d", cfg.WriteBatchSize)
	}
	if cfg.BatchConcurrency != 3 {
		t.Errorf("expected default batch concurrency 3, got %d", cfg.BatchConcurrency)
	}
	if cfg.InterBatchPauseMs != 500 {
		t.Errorf("expected default inter-batch pause 500ms, got %d", cfg.InterBatchPauseMs)
	}
	if cfg.RecordLimit != 0 {
		t.Errorf("expected unlimited records by default, got %d", cfg.RecordLimit)
	}
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing DATABASE_URL, got nil")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/storesync")
	t.Setenv("POLL_INTERVAL", "60")
	t.Setenv("WRITE_BATCH_SIZE", "25")
	t.Setenv("RECORD_LIMIT", "1000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.PollInterval != 60 {
		t.Errorf("expected poll interval 60, got %d", cfg.PollInterval)
	}
	if cfg.WriteBatchSize != 25 {
		t.Errorf("expected write batch size 25, got %d", cfg.WriteBatchSize)
	}
	if cfg.RecordLimit != 1000 {
		t.Errorf("expected record limit 1000, got %d", cfg.RecordLimit)
	}
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/storesync")
	t.Setenv("POLL_INTERVAL", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.PollInterval != 300 {
		t.Errorf("expected fallback to default 300, got %d", cfg.PollInterval)
	}
}
