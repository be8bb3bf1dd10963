package config

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/luca-patrignani/splitshot/domain/shot"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DiscoveryPort != 53550 || cfg.PeerLease != 5*time.Second {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	expected := shot.Rules{MinTimesTargeted: 1, RequiredBranchCount: 2, MaxTotalShots: 10}
	if cfg.Rules() != expected {
		t.Fatalf("expected rules %+v, got %+v", expected, cfg.Rules())
	}
	if cfg.TLS() || cfg.AutoPlay {
		t.Fatal("TLS and auto play must be off by default")
	}
	if cfg.Level() != slog.LevelInfo {
		t.Fatalf("expected info level, got %s", cfg.Level())
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SPLITSHOT_MAX_TOTAL_SHOTS", "4")
	t.Setenv("SPLITSHOT_PENDING_TIMEOUT", "2s")
	t.Setenv("SPLITSHOT_AUTO_PLAY", "true")
	t.Setenv("SPLITSHOT_LOG_LEVEL", "debug")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MaxTotalShots != 4 || cfg.PendingTimeout != 2*time.Second || !cfg.AutoPlay {
		t.Fatalf("environment ignored: %+v", cfg)
	}
	if cfg.Level() != slog.LevelDebug {
		t.Fatalf("expected debug level, got %s", cfg.Level())
	}
}

func TestParseEnvError(t *testing.T) {
	t.Setenv("SPLITSHOT_DISCOVERY_PORT", "not-a-port")
	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		match string
	}{
		{"bad rules", map[string]string{"SPLITSHOT_REQUIRED_BRANCH_COUNT": "0"}, "required branch count"},
		{"short lease", map[string]string{"SPLITSHOT_PEER_LEASE": "1s"}, "peer lease"},
		{"odds", map[string]string{"SPLITSHOT_END_BEAM_ODDS": "101"}, "end beam odds"},
		{"level", map[string]string{"SPLITSHOT_LOG_LEVEL": "loud"}, "log level"},
		{"partial tls", map[string]string{"SPLITSHOT_TLS_CERT": "cert.pem"}, "TLS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.match) {
				t.Fatalf("expected error about %q, got %v", tt.match, err)
			}
		})
	}
	t.Run("rules sentinel", func(t *testing.T) {
		t.Setenv("SPLITSHOT_MAX_TOTAL_SHOTS", "0")
		if _, err := Load(); !errors.Is(err, shot.ErrInvalidRules) {
			t.Fatalf("expected ErrInvalidRules, got %v", err)
		}
	})
}
