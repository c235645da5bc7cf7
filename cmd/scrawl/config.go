package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the scrawl configuration file
// (~/.config/scrawl/config.yaml). Pointer fields distinguish "not set" from
// zero values.
type Config struct {
	ModelDir string `yaml:"model_dir"`
	Variant  string `yaml:"variant"`

	// Generation defaults
	Temperature *float64 `yaml:"temperature"`
	Length      *int64   `yaml:"length"`
	RNGSeed     *int64   `yaml:"rng_seed"`
	SeedText    string   `yaml:"seed_text"`

	// Output
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Server
	ServerAddress string `yaml:"server_address"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "scrawl", "config.yaml")
}

// loadConfig reads the config file. A missing file yields a zero config.
func loadConfig() (Config, error) {
	var cfg Config
	path := configPath()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyConfig applies config file defaults wherever the corresponding CLI
// flag was not explicitly set.
func applyConfig(c *cli.Command, cfg Config, seedText *string, length *int64, temp *float64, rngSeed *int64) {
	if cfg.ModelDir != "" && !c.IsSet("model") {
		modelPath = cfg.ModelDir
	}
	if cfg.Variant != "" && !c.IsSet("variant") {
		variantName = cfg.Variant
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
	if seedText != nil && cfg.SeedText != "" && !c.IsSet("seed") {
		*seedText = cfg.SeedText
	}
	if length != nil && cfg.Length != nil && !c.IsSet("length") {
		*length = *cfg.Length
	}
	if temp != nil && cfg.Temperature != nil && !c.IsSet("temp") && !c.IsSet("temperature") {
		*temp = *cfg.Temperature
	}
	if rngSeed != nil && cfg.RNGSeed != nil && !c.IsSet("rng-seed") {
		*rngSeed = *cfg.RNGSeed
	}
}
