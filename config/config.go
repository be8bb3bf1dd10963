// Package config loads the settings of a peer from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/luca-patrignani/splitshot/domain/shot"
)

// Config controls a peer.
type Config struct {
	DiscoveryPort    uint16        `env:"SPLITSHOT_DISCOVERY_PORT"     envDefault:"53550"`
	AnnounceInterval time.Duration `env:"SPLITSHOT_ANNOUNCE_INTERVAL"  envDefault:"1s"`
	PeerLease        time.Duration `env:"SPLITSHOT_PEER_LEASE"         envDefault:"5s"`
	SendTimeout      time.Duration `env:"SPLITSHOT_SEND_TIMEOUT"       envDefault:"30s"`
	DecisionTimeout  time.Duration `env:"SPLITSHOT_DECISION_TIMEOUT"   envDefault:"0s"`
	PendingTimeout   time.Duration `env:"SPLITSHOT_PENDING_TIMEOUT"    envDefault:"0s"`

	MinTimesTargeted    int `env:"SPLITSHOT_MIN_TIMES_TARGETED"    envDefault:"1"`
	RequiredBranchCount int `env:"SPLITSHOT_REQUIRED_BRANCH_COUNT" envDefault:"2"`
	MaxTotalShots       int `env:"SPLITSHOT_MAX_TOTAL_SHOTS"       envDefault:"10"`

	AutoPlay    bool `env:"SPLITSHOT_AUTO_PLAY"     envDefault:"false"`
	EndBeamOdds int  `env:"SPLITSHOT_END_BEAM_ODDS" envDefault:"50"`

	LogLevel string `env:"SPLITSHOT_LOG_LEVEL" envDefault:"info"`

	TLSCert string `env:"SPLITSHOT_TLS_CERT"`
	TLSKey  string `env:"SPLITSHOT_TLS_KEY"`
	TLSCA   string `env:"SPLITSHOT_TLS_CA"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses and validates the configuration.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Rules returns the game rules. The starting player is left to the election.
func (c Config) Rules() shot.Rules {
	return shot.Rules{
		MinTimesTargeted:    c.MinTimesTargeted,
		RequiredBranchCount: c.RequiredBranchCount,
		MaxTotalShots:       c.MaxTotalShots,
	}
}

// TLS reports whether mutual TLS is configured.
func (c Config) TLS() bool {
	return c.TLSCert != ""
}

func (c Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func (c Config) Validate() error {
	var errs []error
	if err := c.Rules().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.AnnounceInterval <= 0 {
		errs = append(errs, fmt.Errorf("announce interval must be positive, got %s", c.AnnounceInterval))
	}
	if c.PeerLease <= c.AnnounceInterval {
		errs = append(errs, fmt.Errorf("peer lease %s must exceed the announce interval %s", c.PeerLease, c.AnnounceInterval))
	}
	if c.SendTimeout <= 0 {
		errs = append(errs, fmt.Errorf("send timeout must be positive, got %s", c.SendTimeout))
	}
	if c.DecisionTimeout < 0 || c.PendingTimeout < 0 {
		errs = append(errs, errors.New("timeouts must not be negative"))
	}
	if c.EndBeamOdds < 0 || c.EndBeamOdds > 100 {
		errs = append(errs, fmt.Errorf("end beam odds must be within 0 and 100, got %d", c.EndBeamOdds))
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("log level: %w", err))
	}
	if (c.TLSCert == "") != (c.TLSKey == "") || (c.TLSCert == "") != (c.TLSCA == "") {
		errs = append(errs, errors.New("TLS needs a certificate, a key and a CA bundle"))
	}
	return errors.Join(errs...)
}
