package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// runApp parses args with all flags of the package and returns the
// resulting Config
func runApp(t *testing.T, args ...string) (*Config, error) {
	t.Helper()

	var cfg *Config
	app := cli.NewApp()
	app.Flags = []cli.Flag{
		&ConfigFlag,
		&LogLevelFlag,
		&CutpointsFlag,
		&LocationFlag,
		&OtherCutpointsFlag,
		&OtherLocationFlag,
		&SamplesFlag,
		&SeedFlag,
	}
	app.Action = func(ctx *cli.Context) error {
		var err error
		cfg, err = NewConfig(ctx)
		return err
	}

	err := app.Run(append([]string{"test"}, args...))
	return cfg, err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestNewConfig_Flags(t *testing.T) {
	cfg, err := runApp(t, "--cutpoints=-1,0,1", "--location", "0.5",
		"--samples", "100", "--seed", "7")
	require.NoError(t, err)

	assert.Equal(t, []float64{-1, 0, 1}, cfg.Cutpoints)
	assert.Equal(t, 0.5, cfg.Location)
	assert.Equal(t, 100, cfg.Samples)
	assert.Equal(t, uint64(7), cfg.Seed)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestNewConfig_File(t *testing.T) {
	path := writeConfig(t, `
cutpoints: [-2, 0.5]
location: 1.5
other_cutpoints: [0, 1]
other_location: -1
samples: 10
seed: 3
log_level: debug
`)

	t.Run("file only", func(t *testing.T) {
		cfg, err := runApp(t, "--config", path)
		require.NoError(t, err)

		assert.Equal(t, []float64{-2, 0.5}, cfg.Cutpoints)
		assert.Equal(t, 1.5, cfg.Location)
		assert.Equal(t, []float64{0, 1}, cfg.OtherCutpoints)
		assert.Equal(t, -1.0, cfg.OtherLocation)
		assert.Equal(t, 10, cfg.Samples)
		assert.Equal(t, uint64(3), cfg.Seed)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("flags override file", func(t *testing.T) {
		cfg, err := runApp(t, "--config", path, "--location", "4",
			"--cutpoints", "1,2,3")
		require.NoError(t, err)

		assert.Equal(t, []float64{1, 2, 3}, cfg.Cutpoints)
		assert.Equal(t, 4.0, cfg.Location)
		assert.Equal(t, 10, cfg.Samples)
	})
}

func TestNewConfig_Errors(t *testing.T) {
	t.Run("missing cutpoints", func(t *testing.T) {
		_, err := runApp(t, "--location", "1")
		assert.Error(t, err)
	})

	t.Run("negative samples", func(t *testing.T) {
		_, err := runApp(t, "--cutpoints", "0", "--samples", "-1")
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := runApp(t, "--config",
			filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid file", func(t *testing.T) {
		path := writeConfig(t, "cutpoints: [oops")
		_, err := runApp(t, "--config", path)
		assert.Error(t, err)
	})
}
