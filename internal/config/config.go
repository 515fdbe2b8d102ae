package config

import (
	"os"
	"strconv"

	"gocrack/internal/errors"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	Search   SearchConfig   `yaml:"search"`
	Data     DataConfig     `yaml:"data"`
	Output   OutputConfig   `yaml:"output"`
	Database DatabaseConfig `yaml:"database"`
}

// SearchConfig holds the annealing parameters and the restart policy
type SearchConfig struct {
	Iterations    int     `yaml:"iterations"`
	MaxBit        int     `yaml:"max_bit"`
	BitCycles     int     `yaml:"bit_cycles"`
	T0            float64 `yaml:"t0"`
	K             float64 `yaml:"k"`
	Width         int     `yaml:"width"`
	Seed          uint64  `yaml:"seed"`
	Restarts      int     `yaml:"restarts"`
	Workers       int     `yaml:"workers"`
	Rebase        bool    `yaml:"rebase"`
	FixedBaseline bool    `yaml:"fixed_baseline"`
	FullRecompute bool    `yaml:"full_recompute"`
}

// DataConfig selects the ciphertext. An empty Input means a synthetic
// scenario of Days x Measures.
type DataConfig struct {
	Input    string  `yaml:"input"`
	Days     int     `yaml:"days"`
	Measures int     `yaml:"measures"`
	Mean     float64 `yaml:"mean"`
	Noise    float64 `yaml:"noise"`
}

// OutputConfig holds file system paths for dumps and reports
type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Dumps  bool   `yaml:"dumps"`
	Report string `yaml:"report"`
}

// DatabaseConfig holds the optional run ledger connection
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// Default returns the stock configuration
func Default() *Config {
	return &Config{
		Search: SearchConfig{
			Iterations: 30,
			MaxBit:     8,
			BitCycles:  6,
			T0:         30,
			K:          10,
			Width:      32,
			Seed:       42,
			Restarts:   1,
			Workers:    4,
			Rebase:     true,
		},
		Data: DataConfig{
			Days:     100,
			Measures: 360,
			Mean:     20,
			Noise:    1,
		},
		Output: OutputConfig{
			Dir:   ".",
			Dumps: true,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML profile named
// by CRACK_PROFILE and CRACK_* environment variables, in increasing priority.
func Load() (*Config, error) {
	config := Default()

	if profile := os.Getenv("CRACK_PROFILE"); profile != "" {
		if err := LoadProfile(profile, config); err != nil {
			return nil, errors.Wrap(err, "failed to load profile")
		}
	}

	applyEnv(config)

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// LoadProfile overlays the YAML file at path onto config. Keys missing from
// the file keep their current values.
func LoadProfile(path string, config *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.IOError(path, err)
	}
	if err := yaml.Unmarshal(raw, config); err != nil {
		return errors.Wrap(errors.ConfigInvalid(err.Error()), "invalid profile "+path)
	}
	return nil
}

func applyEnv(c *Config) {
	s := &c.Search
	s.Iterations = getEnvIntOrDefault("CRACK_ITERS", s.Iterations)
	s.MaxBit = getEnvIntOrDefault("CRACK_BMAX", s.MaxBit)
	s.BitCycles = getEnvIntOrDefault("CRACK_BITCYCLES", s.BitCycles)
	s.T0 = getEnvFloatOrDefault("CRACK_T0", s.T0)
	s.K = getEnvFloatOrDefault("CRACK_K", s.K)
	s.Width = getEnvIntOrDefault("CRACK_WIDTH", s.Width)
	s.Seed = getEnvUintOrDefault("CRACK_SEED", s.Seed)
	s.Restarts = getEnvIntOrDefault("CRACK_RESTARTS", s.Restarts)
	s.Workers = getEnvIntOrDefault("CRACK_WORKERS", s.Workers)
	s.Rebase = getEnvBoolOrDefault("CRACK_REBASE", s.Rebase)
	s.FixedBaseline = getEnvBoolOrDefault("CRACK_FIXED_BASELINE", s.FixedBaseline)
	s.FullRecompute = getEnvBoolOrDefault("CRACK_FULL_RECOMPUTE", s.FullRecompute)

	d := &c.Data
	d.Input = getEnvOrDefault("CRACK_INPUT", d.Input)
	d.Days = getEnvIntOrDefault("CRACK_DAYS", d.Days)
	d.Measures = getEnvIntOrDefault("CRACK_MEASURES", d.Measures)
	d.Mean = getEnvFloatOrDefault("CRACK_MEAN", d.Mean)
	d.Noise = getEnvFloatOrDefault("CRACK_NOISE", d.Noise)

	o := &c.Output
	o.Dir = getEnvOrDefault("CRACK_OUTPUT_DIR", o.Dir)
	o.Dumps = getEnvBoolOrDefault("CRACK_DUMPS", o.Dumps)
	o.Report = getEnvOrDefault("CRACK_REPORT", o.Report)

	c.Database.URL = getEnvOrDefault("DATABASE_URL", c.Database.URL)
}

// Validate checks ranges that would otherwise fail deep inside a run
func (c *Config) Validate() error {
	s := c.Search
	if s.Iterations < 1 {
		return errors.ConfigInvalid("CRACK_ITERS must be at least 1")
	}
	if s.Width < 1 || s.Width > 32 {
		return errors.ConfigInvalid("CRACK_WIDTH must be between 1 and 32")
	}
	if s.MaxBit < 0 || s.MaxBit >= s.Width {
		return errors.ConfigInvalid("CRACK_BMAX must be below CRACK_WIDTH")
	}
	if s.BitCycles < 0 {
		return errors.ConfigInvalid("CRACK_BITCYCLES must not be negative")
	}
	if s.T0 < 0 {
		return errors.ConfigInvalid("CRACK_T0 must not be negative")
	}
	if s.Restarts < 1 || s.Workers < 1 {
		return errors.ConfigInvalid("CRACK_RESTARTS and CRACK_WORKERS must be at least 1")
	}
	if c.Data.Input == "" && (c.Data.Days < 1 || c.Data.Measures < 1) {
		return errors.ConfigInvalid("CRACK_DAYS and CRACK_MEASURES must be at least 1")
	}
	if c.Output.Dir == "" {
		return errors.ConfigInvalid("output directory is required")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvUintOrDefault(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if uintValue, err := strconv.ParseUint(value, 10, 64); err == nil {
			return uintValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
