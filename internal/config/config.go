package config

import (
	"os"

	"imgquant/domain/stats"
	"imgquant/internal/errors"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration. The analysis
// settings come from a YAML file; connection settings may be overridden
// through environment variables.
type Config struct {
	Input    InputConfig    `yaml:"input"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Output   OutputConfig   `yaml:"output"`
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
}

// InputConfig locates the measurement source
type InputConfig struct {
	CSVPath string   `yaml:"csv_path"`
	Groups  []string `yaml:"groups"` // optional group filter; empty keeps all
}

// AnalysisConfig holds the statistical settings
type AnalysisConfig struct {
	Response    string     `yaml:"response"`
	Comparisons [][]string `yaml:"comparisons"` // optional; empty means all pairs
	Alpha       float64    `yaml:"alpha"`
	Correction  string     `yaml:"correction"`
}

// OutputConfig holds artifact settings
type OutputConfig struct {
	Dir           string `yaml:"dir"`
	SaveArtifacts bool   `yaml:"save_artifacts"`
}

// DatabaseConfig holds optional Postgres persistence settings
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Port    string `yaml:"port"`
	GinMode string `yaml:"gin_mode"`
}

// Load reads the YAML configuration file, applies environment overrides,
// fills defaults and validates the result
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", path)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Database.URL = url
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		cfg.Server.GinMode = mode
	}
	if path := os.Getenv("QUANT_CSV"); path != "" {
		cfg.Input.CSVPath = path
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Analysis.Response == "" {
		cfg.Analysis.Response = "fracIn"
	}
	if cfg.Analysis.Alpha == 0 {
		cfg.Analysis.Alpha = 0.05
	}
	if cfg.Analysis.Correction == "" {
		cfg.Analysis.Correction = string(stats.CorrectionHolm)
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "output"
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
}

func validate(cfg *Config) error {
	if cfg.Input.CSVPath == "" {
		return errors.ConfigInvalid("input.csv_path is required (or QUANT_CSV)")
	}
	if cfg.Analysis.Alpha <= 0 || cfg.Analysis.Alpha >= 1 {
		return errors.ConfigInvalid("analysis.alpha must be in (0, 1)")
	}
	if _, err := stats.ParseCorrectionMethod(cfg.Analysis.Correction); err != nil {
		return errors.ConfigInvalid(err.Error())
	}
	for _, pair := range cfg.Analysis.Comparisons {
		if len(pair) != 2 {
			return errors.ConfigInvalid("analysis.comparisons entries must name exactly two groups")
		}
	}
	return nil
}

// ContrastSpecs converts the configured comparison pairs to domain specs
func (c *Config) ContrastSpecs() []stats.ContrastSpec {
	specs := make([]stats.ContrastSpec, 0, len(c.Analysis.Comparisons))
	for _, pair := range c.Analysis.Comparisons {
		specs = append(specs, stats.ContrastSpec{Group1: pair[0], Group2: pair[1]})
	}
	return specs
}

// CorrectionMethod returns the validated correction method
func (c *Config) CorrectionMethod() stats.CorrectionMethod {
	method, _ := stats.ParseCorrectionMethod(c.Analysis.Correction)
	return method
}
