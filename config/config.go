package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	coreenv "github.com/kilianp07/v2genv/core/env"
	"github.com/kilianp07/v2genv/core/factory"
	"github.com/kilianp07/v2genv/core/metrics"
	"github.com/kilianp07/v2genv/core/model"
	"github.com/kilianp07/v2genv/infra/monitoring"
	"github.com/kilianp07/v2genv/infra/mqtt"
)

// EnvPrefix selects the environment variables that override file values.
// V2G_ENV__CAPACITY=80 sets env.capacity.
const EnvPrefix = "V2G_"

type Config struct {
	Env      coreenv.Config       `json:"env"`
	Pricing  factory.ModuleConfig `json:"pricing"`
	Agent    factory.ModuleConfig `json:"agent"`
	Episodes EpisodesConfig       `json:"episodes"`
	Metrics  metrics.Config       `json:"metrics"`
	MQTT     mqtt.Config          `json:"mqtt"`
	Logging  LoggingConfig        `json:"logging"`
	Sentry   monitoring.Config    `json:"sentry"`
}

// EpisodesConfig controls how many simulated days a run covers.
type EpisodesConfig struct {
	Days int `json:"days"`
}

// Load reads the file at path, applies environment overrides, fills
// defaults and validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Vehicle defaults applied when the env section leaves them unset.
const (
	DefaultCapacity         = 100.0
	DefaultMaxChargeRate    = 10.0
	DefaultMaxDischargeRate = -10.0
)

// SetDefaults fills every section's optional fields.
func (c *Config) SetDefaults() {
	if c.Env.Capacity == 0 {
		c.Env.Capacity = DefaultCapacity
	}
	if c.Env.MaxChargeRate == 0 {
		c.Env.MaxChargeRate = DefaultMaxChargeRate
	}
	if c.Env.MaxDischargeRate == 0 {
		c.Env.MaxDischargeRate = DefaultMaxDischargeRate
	}
	c.Env.SetDefaults()
	if c.Pricing.Type == "" {
		c.Pricing.Type = "uniform"
	}
	if c.Agent.Type == "" {
		c.Agent.Type = "uniform"
	}
	if c.Episodes.Days <= 0 {
		c.Episodes.Days = 1
	}
	if c.MQTT.Broker != "" {
		c.MQTT.SetDefaults()
	}
	c.Logging.SetDefaults()
}

// Validate checks every section. An empty initial price window is accepted
// here; the app draws it from the price source.
func (c Config) Validate() error {
	envCfg := c.Env
	if len(envCfg.InitialPrices) == 0 {
		envCfg.InitialPrices = make([]float64, model.WindowSize)
	}
	if err := envCfg.Validate(); err != nil {
		return fmt.Errorf("env: %w", err)
	}
	if c.MQTT.Broker != "" {
		if err := c.MQTT.Validate(); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Sentry.Validate(); err != nil {
		return fmt.Errorf("sentry: %w", err)
	}
	return nil
}
