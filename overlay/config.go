package overlay

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Mode selects the overlay implementation backing a session.
const (
	// ModeInProc routes messages through a process-local broker shared
	// by every session opened with the same namespace.
	ModeInProc = "inproc"
)

// Defaults for Config fields left zero.
const (
	DefaultNamespace      = "default"
	DefaultDeliveryBound  = 256
	DefaultQueryableBound = 64
)

// Config describes how to open an overlay session.
type Config struct {
	// Mode selects the implementation. Empty means ModeInProc.
	Mode string `yaml:"mode"`

	// Namespace scopes an in-process broker. Sessions only see traffic
	// from sessions sharing their namespace.
	Namespace string `yaml:"namespace"`

	// DeliveryBound is the per-subscriber delivery queue depth.
	DeliveryBound int `yaml:"delivery_bound"`

	// QueryableBound is the per-queryable incoming query queue depth.
	QueryableBound int `yaml:"queryable_bound"`
}

// DefaultConfig returns the in-process overlay configuration.
func DefaultConfig() Config {
	return Config{
		Mode:           ModeInProc,
		Namespace:      DefaultNamespace,
		DeliveryBound:  DefaultDeliveryBound,
		QueryableBound: DefaultQueryableBound,
	}
}

// LoadConfig reads a YAML config file. Missing fields keep their
// defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("overlay: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("overlay: parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = ModeInProc
	}
	if c.Namespace == "" {
		c.Namespace = DefaultNamespace
	}
	if c.DeliveryBound <= 0 {
		c.DeliveryBound = DefaultDeliveryBound
	}
	if c.QueryableBound <= 0 {
		c.QueryableBound = DefaultQueryableBound
	}
}

// Open establishes a session for the given configuration.
func Open(cfg Config) (Session, error) {
	cfg.applyDefaults()
	switch cfg.Mode {
	case ModeInProc:
		return openInProc(cfg), nil
	default:
		return nil, fmt.Errorf("overlay: unsupported mode %q", cfg.Mode)
	}
}
