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

	"github.com/kilianp07/loadshift/core/shift"
	"github.com/kilianp07/loadshift/infra/input"
	"github.com/kilianp07/loadshift/metrics"
)

// Config is the root service configuration.
type Config struct {
	Inputs  input.Config   `json:"inputs"`
	Shift   shift.Config   `json:"shift"`
	Solve   SolveConfig    `json:"solve"`
	Metrics metrics.Config `json:"metrics"`
	Output  OutputConfig   `json:"output"`
}

// SolveConfig holds the objective weights and solver limits.
type SolveConfig struct {
	// ActivationCost is the fixed cost charged per activation, giving the
	// indicator linkage its objective pressure.
	ActivationCost float64 `json:"activation_cost"`
	// AbsPenalty is the small cost on the shift magnitude that keeps the
	// absolute-value relaxation tight.
	AbsPenalty float64 `json:"abs_penalty"`
	// MaxNodes bounds the branch-and-bound search. 0 uses the solver default.
	MaxNodes int `json:"max_nodes"`
}

// SetDefaults applies sane defaults.
func (c *SolveConfig) SetDefaults() {
	if c.ActivationCost == 0 {
		c.ActivationCost = 0.01
	}
	if c.AbsPenalty == 0 {
		c.AbsPenalty = 1e-4
	}
}

// Validate checks mandatory fields.
func (c SolveConfig) Validate() error {
	if c.ActivationCost < 0 || c.AbsPenalty < 0 {
		return fmt.Errorf("objective weights must be non-negative")
	}
	if c.MaxNodes < 0 {
		return fmt.Errorf("max_nodes must be non-negative")
	}
	return nil
}

// OutputConfig selects where and how the schedule is written.
type OutputConfig struct {
	// Path of the result file.
	Path string `json:"path"`
	// Format is "csv" or "json".
	Format string `json:"format"`
}

// SetDefaults applies sane defaults.
func (c *OutputConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "shift_schedule.csv"
	}
	if c.Format == "" {
		c.Format = "csv"
	}
}

// Validate checks mandatory fields.
func (c OutputConfig) Validate() error {
	if c.Format != "csv" && c.Format != "json" {
		return fmt.Errorf("unknown output format %s", c.Format)
	}
	return nil
}

// Load reads the configuration file, applies LS_ environment overrides,
// defaults and validation.
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
	if err := k.Load(env.Provider("LS_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "ls_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Inputs.SetDefaults()
	cfg.Shift.SetDefaults()
	cfg.Solve.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.Output.SetDefaults()
	if err := cfg.Shift.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Solve.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Output.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
