package core

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.ServiceName != "vault" {
		t.Fatalf("expected service name vault, got %q", cfg.ServiceName)
	}
	if cfg.Settlement.Channel != "noop" {
		t.Fatalf("expected noop channel, got %q", cfg.Settlement.Channel)
	}
	if cfg.Events.BufferSize != defaultEventLogMaxEntries {
		t.Fatalf("expected default buffer size, got %d", cfg.Events.BufferSize)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ServiceName = "  "
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected blank service name to fail")
	}

	cfg = DefaultConfig()
	cfg.Settlement.Timeout = -time.Second
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected negative timeout to fail")
	}

	cfg = DefaultConfig()
	cfg.Events.BufferSize = -1
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected negative buffer size to fail")
	}
}
