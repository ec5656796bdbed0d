// Package config holds the settings of the gordinal command, read
// from an optional YAML file and overridden by command line flags.
package config

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// Flags shared by the commands
var (
	ConfigFlag = cli.PathFlag{
		Name:  "config",
		Usage: "YAML file providing defaults for the other flags",
	}
	LogLevelFlag = cli.StringFlag{
		Name:  "log-level",
		Usage: "level of logging; one of critical, error, warning, notice, info, debug",
		Value: "info",
	}
	CutpointsFlag = cli.Float64SliceFlag{
		Name:  "cutpoints",
		Usage: "non-decreasing cutpoints, e.g. --cutpoints=-1,0,1",
	}
	LocationFlag = cli.Float64Flag{
		Name:  "location",
		Usage: "location of the latent logistic variable",
	}
	OtherCutpointsFlag = cli.Float64SliceFlag{
		Name:  "other-cutpoints",
		Usage: "cutpoints of the second distribution",
	}
	OtherLocationFlag = cli.Float64Flag{
		Name:  "other-location",
		Usage: "location of the second distribution",
	}
	SamplesFlag = cli.IntFlag{
		Name:  "samples",
		Usage: "number of samples for Monte Carlo estimates; 0 disables them",
	}
	SeedFlag = cli.Uint64Flag{
		Name:  "seed",
		Usage: "seed of the random number generator",
		Value: 1,
	}
)

// Config is the configuration of a single run of the command
type Config struct {
	Cutpoints      []float64 `yaml:"cutpoints"`
	Location       float64   `yaml:"location"`
	OtherCutpoints []float64 `yaml:"other_cutpoints"`
	OtherLocation  float64   `yaml:"other_location"`
	Samples        int       `yaml:"samples"`
	Seed           uint64    `yaml:"seed"`
	LogLevel       string    `yaml:"log_level"`
}

// Load reads a Config from the YAML file at path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config %v: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config %v: %w", path, err)
	}

	return cfg, nil
}

// NewConfig builds the Config of a command invocation. Values come
// from the file named by the config flag, if any, and flags that are
// set explicitly take precedence over the file. Unset fields take the
// flag defaults.
func NewConfig(ctx *cli.Context) (*Config, error) {
	cfg := &Config{
		Seed:     SeedFlag.Value,
		LogLevel: LogLevelFlag.Value,
	}

	if path := ctx.Path(ConfigFlag.Name); path != "" {
		file, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg.merge(file)
	}

	if ctx.IsSet(CutpointsFlag.Name) {
		cfg.Cutpoints = ctx.Float64Slice(CutpointsFlag.Name)
	}
	if ctx.IsSet(LocationFlag.Name) {
		cfg.Location = ctx.Float64(LocationFlag.Name)
	}
	if ctx.IsSet(OtherCutpointsFlag.Name) {
		cfg.OtherCutpoints = ctx.Float64Slice(OtherCutpointsFlag.Name)
	}
	if ctx.IsSet(OtherLocationFlag.Name) {
		cfg.OtherLocation = ctx.Float64(OtherLocationFlag.Name)
	}
	if ctx.IsSet(SamplesFlag.Name) {
		cfg.Samples = ctx.Int(SamplesFlag.Name)
	}
	if ctx.IsSet(SeedFlag.Name) {
		cfg.Seed = ctx.Uint64(SeedFlag.Name)
	}
	if ctx.IsSet(LogLevelFlag.Name) {
		cfg.LogLevel = ctx.String(LogLevelFlag.Name)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// merge copies the fields set in other into cfg
func (cfg *Config) merge(other *Config) {
	if len(other.Cutpoints) > 0 {
		cfg.Cutpoints = other.Cutpoints
	}
	if len(other.OtherCutpoints) > 0 {
		cfg.OtherCutpoints = other.OtherCutpoints
	}
	if other.Seed != 0 {
		cfg.Seed = other.Seed
	}
	if other.LogLevel != "" {
		cfg.LogLevel = other.LogLevel
	}
	cfg.Location = other.Location
	cfg.OtherLocation = other.OtherLocation
	cfg.Samples = other.Samples
}

func (cfg *Config) validate() error {
	if len(cfg.Cutpoints) == 0 {
		return fmt.Errorf("at least one cutpoint is required")
	}
	if cfg.Samples < 0 {
		return fmt.Errorf("number of samples must be non-negative but got %v",
			cfg.Samples)
	}
	return nil
}
