package model

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Config maps the semantic drillhole fields onto physical column names and
// fixes the angle conventions used by survey data. A Config is an immutable
// value: construct one (or start from DefaultConfig) and pass it explicitly
// to every component. There is no package-level default state.
type Config struct {
	// HoleIDCol is the hole identifier column, shared by all tables.
	HoleIDCol string `yaml:"hole_id_col"`
	// FromCol and ToCol are the interval boundary columns.
	FromCol string `yaml:"from_col"`
	ToCol   string `yaml:"to_col"`
	// XCol, YCol and ZCol are the collar world-coordinate columns.
	XCol string `yaml:"x_col"`
	YCol string `yaml:"y_col"`
	ZCol string `yaml:"z_col"`
	// AzimuthCol and DipCol are the survey orientation columns.
	AzimuthCol string `yaml:"azimuth_col"`
	DipCol     string `yaml:"dip_col"`
	// DepthCol is the station/sample depth column.
	DepthCol string `yaml:"depth_col"`
	// TotalDepthCol is the collar total-depth column.
	TotalDepthCol string `yaml:"total_depth_col"`
	// PositiveDipsDown selects the dip sign convention: when true a
	// positive dip points downhole.
	PositiveDipsDown bool `yaml:"positive_dips_down"`
	// DipIsInclination is set when the dip column already holds
	// inclinations measured from the vertical.
	DipIsInclination bool `yaml:"dip_is_inclination"`
}

// DefaultConfig returns the conventional column mapping used by most
// exploration databases.
func DefaultConfig() Config {
	return Config{
		HoleIDCol:        "HOLEID",
		FromCol:          "SAMPFROM",
		ToCol:            "SAMPTO",
		XCol:             "EAST",
		YCol:             "NORTH",
		ZCol:             "RL",
		AzimuthCol:       "AZIMUTH",
		DipCol:           "DIP",
		DepthCol:         "DEPTH",
		TotalDepthCol:    "DEPTH",
		PositiveDipsDown: true,
	}
}

// Validate checks that every column name is set.
func (c Config) Validate() error {
	fields := map[string]string{
		"hole_id_col":     c.HoleIDCol,
		"from_col":        c.FromCol,
		"to_col":          c.ToCol,
		"x_col":           c.XCol,
		"y_col":           c.YCol,
		"z_col":           c.ZCol,
		"azimuth_col":     c.AzimuthCol,
		"dip_col":         c.DipCol,
		"depth_col":       c.DepthCol,
		"total_depth_col": c.TotalDepthCol,
	}
	for key, v := range fields {
		if v == "" {
			return fmt.Errorf("%w: %s is empty", ErrInvalidConfig, key)
		}
	}
	return nil
}

// Inclination converts a survey dip (radians) to an inclination measured
// from the vertical, following the configured convention.
func (c Config) Inclination(dip float64) float64 {
	if c.DipIsInclination {
		return dip
	}
	if c.PositiveDipsDown {
		return dip + math.Pi/2
	}
	return math.Pi/2 - dip
}

// Map returns the configuration as a flat key-value document.
func (c Config) Map() map[string]any {
	return map[string]any{
		"hole_id_col":        c.HoleIDCol,
		"from_col":           c.FromCol,
		"to_col":             c.ToCol,
		"x_col":              c.XCol,
		"y_col":              c.YCol,
		"z_col":              c.ZCol,
		"azimuth_col":        c.AzimuthCol,
		"dip_col":            c.DipCol,
		"depth_col":          c.DepthCol,
		"total_depth_col":    c.TotalDepthCol,
		"positive_dips_down": c.PositiveDipsDown,
		"dip_is_inclination": c.DipIsInclination,
	}
}

// LoadConfig reads a configuration from a YAML file. Missing keys keep
// their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path) //nolint:gosec // user-provided config path
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
