package live

import (
	"log/slog"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.WriteTimeout != 10*time.Second {
		t.Errorf("WriteTimeout = %v, want 10s", cfg.WriteTimeout)
	}
	if cfg.MountTimeout != 10*time.Second {
		t.Errorf("MountTimeout = %v, want 10s", cfg.MountTimeout)
	}
	if cfg.MaxMessageSize != 64*1024 {
		t.Errorf("MaxMessageSize = %d, want 64KB", cfg.MaxMessageSize)
	}
	if cfg.DeltaBuffer != 64 {
		t.Errorf("DeltaBuffer = %d, want 64", cfg.DeltaBuffer)
	}
}

func TestConfig_WithDefaults_Nil(t *testing.T) {
	cfg := (*Config)(nil).withDefaults()

	if cfg.WriteTimeout != 10*time.Second {
		t.Errorf("WriteTimeout = %v, want 10s", cfg.WriteTimeout)
	}
	if cfg.Logger == nil {
		t.Error("Logger not defaulted")
	}
}

func TestConfig_WithDefaults_FillsZeroFieldsOnly(t *testing.T) {
	logger := slog.Default()
	in := &Config{
		MountTimeout: time.Second,
		Logger:       logger,
	}

	out := in.withDefaults()

	if out.MountTimeout != time.Second {
		t.Errorf("MountTimeout = %v, want 1s (explicit value kept)", out.MountTimeout)
	}
	if out.WriteTimeout != 10*time.Second {
		t.Errorf("WriteTimeout = %v, want default", out.WriteTimeout)
	}
	if out.Logger != logger {
		t.Error("explicit Logger replaced")
	}
	if in.WriteTimeout != 0 {
		t.Error("withDefaults mutated its receiver")
	}
}
