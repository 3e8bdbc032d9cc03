package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CIPHERVIEW_"

// Config captures the cipherview configuration resolved from defaults, an
// optional YAML file and environment overrides.
type Config struct {
	Listen       string             `yaml:"listen"`
	Service      ServiceConfig      `yaml:"service"`
	Presentation PresentationConfig `yaml:"presentation"`
	Session      SessionConfig      `yaml:"session"`
	Theme        ThemeConfig        `yaml:"theme"`
	Log          LogConfig          `yaml:"log"`
}

// ServiceConfig locates the remote cipher service.
type ServiceConfig struct {
	BaseURL     string        `yaml:"base_url"`
	SeedPath    string        `yaml:"seed_path"`
	ProcessPath string        `yaml:"process_path"`
	Timeout     time.Duration `yaml:"timeout"`
}

// PresentationConfig tunes the reveal sequence.
type PresentationConfig struct {
	RevealTick  time.Duration `yaml:"reveal_tick"`
	TrustResult bool          `yaml:"trust_result"`
}

// SessionConfig bounds browser sessions.
type SessionConfig struct {
	IdleTTL     time.Duration `yaml:"idle_ttl"`
	SubmitRate  float64       `yaml:"submit_rate"`
	SubmitBurst int           `yaml:"submit_burst"`
}

// ThemeConfig selects the page theme. Tokens become CSS custom properties.
type ThemeConfig struct {
	Name    string            `yaml:"name"`
	Variant string            `yaml:"variant"`
	Tokens  map[string]string `yaml:"tokens"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Listen: "127.0.0.1:8080",
		Service: ServiceConfig{
			BaseURL:     "http://127.0.0.1:5000",
			SeedPath:    "/generate-seed",
			ProcessPath: "/process",
			Timeout:     0,
		},
		Presentation: PresentationConfig{
			RevealTick:  250 * time.Millisecond,
			TrustResult: false,
		},
		Session: SessionConfig{
			IdleTTL:     30 * time.Minute,
			SubmitRate:  2,
			SubmitBurst: 4,
		},
		Theme: ThemeConfig{
			Name:    "cipherview",
			Variant: "light",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load resolves the configuration: defaults, then the YAML file at path (if
// path is non-empty), then CIPHERVIEW_* environment variables.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("config: file %s does not exist", path)
			}
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := applyYAML(&cfg, data); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(&cfg, lookup); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyYAML(cfg *Config, data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(cfg)
}

func applyEnvOverrides(cfg *Config, lookup func(string) (string, bool)) error {
	env := func(name string) (string, bool) {
		val, ok := lookup(EnvPrefix + name)
		val = strings.TrimSpace(val)
		return val, ok && val != ""
	}

	if val, ok := env("LISTEN"); ok {
		cfg.Listen = val
	}
	if val, ok := env("SERVICE_URL"); ok {
		cfg.Service.BaseURL = val
	}
	if val, ok := env("SEED_PATH"); ok {
		cfg.Service.SeedPath = val
	}
	if val, ok := env("PROCESS_PATH"); ok {
		cfg.Service.ProcessPath = val
	}
	if val, ok := env("TIMEOUT"); ok {
		d, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("config: %sTIMEOUT: %w", EnvPrefix, err)
		}
		cfg.Service.Timeout = d
	}
	if val, ok := env("REVEAL_TICK"); ok {
		d, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("config: %sREVEAL_TICK: %w", EnvPrefix, err)
		}
		cfg.Presentation.RevealTick = d
	}
	if val, ok := env("TRUST_RESULT"); ok {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("config: %sTRUST_RESULT: %w", EnvPrefix, err)
		}
		cfg.Presentation.TrustResult = b
	}
	if val, ok := env("THEME"); ok {
		cfg.Theme.Name = val
	}
	if val, ok := env("THEME_VARIANT"); ok {
		cfg.Theme.Variant = val
	}
	if val, ok := env("LOG_LEVEL"); ok {
		cfg.Log.Level = val
	}
	return nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Listen) == "" {
		errs = append(errs, errors.New("listen address is required"))
	}
	if u, err := url.Parse(c.Service.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("service.base_url %q must be an absolute http(s) URL", c.Service.BaseURL))
	}
	if c.Service.Timeout < 0 {
		errs = append(errs, errors.New("service.timeout must not be negative"))
	}
	if c.Presentation.RevealTick <= 0 {
		errs = append(errs, errors.New("presentation.reveal_tick must be positive"))
	}
	if c.Session.IdleTTL < 0 {
		errs = append(errs, errors.New("session.idle_ttl must not be negative"))
	}
	if c.Session.SubmitRate < 0 || c.Session.SubmitBurst < 0 {
		errs = append(errs, errors.New("session submit limits must not be negative"))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("config: invalid: %w", errors.Join(errs...))
}
