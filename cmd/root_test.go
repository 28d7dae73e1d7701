package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RAJVEERSINGHMUNDE/Network-on-Chip-Simulator/sim"
)

func TestRunCmd_Flags_RegisteredWithExpectedDefaults(t *testing.T) {
	// GIVEN the run command with its registered flags
	flags := runCmd.Flags()

	// THEN each flag is registered with its expected default value
	assert.NotNil(t, flags.Lookup("num-gpus"))
	assert.Equal(t, "mesh", flags.Lookup("topology").DefValue)
	assert.Equal(t, "4", flags.Lookup("fat-tree-k").DefValue)
	assert.Equal(t, "1", flags.Lookup("num-vcs").DefValue)
	assert.Equal(t, "deterministic", flags.Lookup("routing").DefValue)
	assert.Equal(t, "uniform_random", flags.Lookup("traffic").DefValue)
	assert.Equal(t, "monolithic", flags.Lookup("architecture").DefValue)
	assert.Equal(t, "info", flags.Lookup("log").DefValue)
}

func TestBuildConfig_NoFlagsChanged_NoConfigFile_UsesSimDefaults(t *testing.T) {
	// GIVEN no flags were explicitly set and no --config was given
	configPath = ""

	// WHEN buildConfig is called
	cfg, err := buildConfig()

	// THEN it is exactly sim.DefaultConfig()
	assert.NoError(t, err)
	assert.Equal(t, sim.DefaultConfig(), cfg)
}

func TestBuildConfig_FlagOverridesConfigFile(t *testing.T) {
	// GIVEN a config file setting num_gpus=16 and a --num-gpus flag set to 4
	path := writeConfig(t, "num_gpus: 16\ntopology: mesh\n")
	configPath = path
	defer func() { configPath = "" }()

	flags := runCmd.Flags()
	require.NoError(t, flags.Set("num-gpus", "4"))
	defer func() {
		flags.Set("num-gpus", "16")
		flags.Lookup("num-gpus").Changed = false
	}()

	// WHEN buildConfig is called
	cfg, err := buildConfig()

	// THEN the explicit flag wins over the config file's value
	assert.NoError(t, err)
	assert.Equal(t, 4, cfg.NumGPUs)
}
