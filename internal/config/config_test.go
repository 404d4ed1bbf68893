package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("NATS_SUBJECT", "")
	t.Setenv("STT_MODEL", "")
	t.Setenv("API_RATE_LIMIT_RPS", "")
	t.Setenv("API_MAX_CONCURRENT", "")

	cfg := Load()
	if cfg.NATSSubject != "bills.recorded" {
		t.Fatalf("expected default subject bills.recorded, got %q", cfg.NATSSubject)
	}
	if cfg.STTModel != "whisper-1" {
		t.Fatalf("expected default stt model whisper-1, got %q", cfg.STTModel)
	}
	if cfg.APIRateLimitRPS != 10 {
		t.Fatalf("expected default rate limit 10, got %v", cfg.APIRateLimitRPS)
	}
	if cfg.APIMaxConcurrent != 32 {
		t.Fatalf("expected default max concurrent 32, got %d", cfg.APIMaxConcurrent)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")
	t.Setenv("API_RATE_LIMIT_BURST", "5")
	t.Setenv("BILLS_PATH", "/var/lib/voicebill/bills")

	cfg := Load()
	if cfg.APIRateLimitRPS != 2.5 {
		t.Fatalf("expected rate limit 2.5, got %v", cfg.APIRateLimitRPS)
	}
	if cfg.APIRateLimitBurst != 5 {
		t.Fatalf("expected burst 5, got %d", cfg.APIRateLimitBurst)
	}
	if cfg.BillsPath != "/var/lib/voicebill/bills" {
		t.Fatalf("expected bills path override, got %q", cfg.BillsPath)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("API_RATE_LIMIT_BURST", "lots")

	cfg := Load()
	if cfg.APIRateLimitBurst != 20 {
		t.Fatalf("expected fallback burst 20, got %d", cfg.APIRateLimitBurst)
	}
}
