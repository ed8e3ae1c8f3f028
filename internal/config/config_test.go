package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.TurnSeconds != 60 {
		t.Errorf("TurnSeconds = %d, want 60", cfg.TurnSeconds)
	}
	if cfg.TickInterval != time.Second {
		t.Errorf("TickInterval = %s, want 1s", cfg.TickInterval)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %s, want INFO", cfg.LogLevel)
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "overrides",
			env:  map[string]string{"TURN_SECONDS": "45", "TICK_INTERVAL": "250ms", "LOG_LEVEL": "DEBUG", "DB_PATH": ":memory:"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.TurnSeconds != 45 || cfg.TickInterval != 250*time.Millisecond {
					t.Errorf("got %d / %s", cfg.TurnSeconds, cfg.TickInterval)
				}
				if cfg.LogLevel != slog.LevelDebug {
					t.Errorf("LogLevel = %s, want DEBUG", cfg.LogLevel)
				}
				if cfg.DBPath != ":memory:" {
					t.Errorf("DBPath = %q", cfg.DBPath)
				}
			},
		},
		{name: "zero turn", env: map[string]string{"TURN_SECONDS": "0"}, wantErr: true},
		{name: "bad interval", env: map[string]string{"TICK_INTERVAL": "soon"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}
