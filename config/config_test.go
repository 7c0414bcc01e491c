package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.HTTPPort != "8080" {
		t.Errorf("HTTPPort = %q, want 8080", cfg.Server.HTTPPort)
	}
	if cfg.Proctor.TabSwitchLimit != 1 {
		t.Errorf("TabSwitchLimit = %d, want 1", cfg.Proctor.TabSwitchLimit)
	}
	if cfg.Proctor.DevToolsLimit != 2 {
		t.Errorf("DevToolsLimit = %d, want 2", cfg.Proctor.DevToolsLimit)
	}
	if cfg.Proctor.MultiFaceSeconds != 10 || cfg.Proctor.NoFaceSeconds != 15 {
		t.Errorf("face windows = %d/%d, want 10/15", cfg.Proctor.MultiFaceSeconds, cfg.Proctor.NoFaceSeconds)
	}
	if cfg.Proctor.RedirectDelay != 8*time.Second {
		t.Errorf("RedirectDelay = %v, want 8s", cfg.Proctor.RedirectDelay)
	}
	if cfg.Proctor.CameraPromptTimeout != 0 {
		t.Errorf("CameraPromptTimeout = %v, want 0", cfg.Proctor.CameraPromptTimeout)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", "/tmp/p.db")
	t.Setenv("REDIRECT_DELAY", "3s")
	t.Setenv("FACE_PROVIDER", "reported")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.DB.DSN(); got != "/tmp/p.db" {
		t.Errorf("DSN = %q, want /tmp/p.db", got)
	}
	if cfg.Proctor.RedirectDelay != 3*time.Second {
		t.Errorf("RedirectDelay = %v, want 3s", cfg.Proctor.RedirectDelay)
	}
	if cfg.Proctor.FaceProvider != "reported" {
		t.Errorf("FaceProvider = %q, want reported", cfg.Proctor.FaceProvider)
	}
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestLoad_RejectsZeroLimits(t *testing.T) {
	t.Setenv("TAB_SWITCH_LIMIT", "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero tab switch limit")
	}
}
