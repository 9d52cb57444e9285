package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"rankdrift/internal/config"
)

func TestApplyFlagsOverridesOnlySetFlags(t *testing.T) {
	cfg := config.Default()
	cfg.OutDir = "from-env"

	app := &cli.App{
		Name:  "rankdrift",
		Flags: classifyFlags,
		Action: func(c *cli.Context) error {
			applyFlags(c, &cfg)
			return nil
		},
	}
	err := app.Run([]string{"rankdrift",
		"--predictor", "local",
		"--model", "model.yaml",
		"--delay", "2s",
		"--max-failures", "5",
		"--archive", "out.zip",
		"--sort",
	})
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Predictor)
	assert.Equal(t, "model.yaml", cfg.ModelPath)
	assert.Equal(t, 2*time.Second, cfg.Delay)
	assert.Equal(t, 5, cfg.MaxFailures)
	assert.Equal(t, "out.zip", cfg.Archive)
	assert.True(t, cfg.PreSort)

	// untouched settings keep their loaded values
	assert.Equal(t, "from-env", cfg.OutDir)
	assert.Equal(t, config.Default().Source, cfg.Source)
	assert.Equal(t, config.Default().Timeout, cfg.Timeout)
}
