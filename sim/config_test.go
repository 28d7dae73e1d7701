package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate_RejectsNonPositiveNumGPUs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumGPUs = 0
	cfg.Topology = TopologyMesh

	err := cfg.Validate()
	require.Error(t, err)
	assert.IsType(t, &ConfigError{}, err)
}

func TestConfig_Validate_MeshRequiresPerfectSquare(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Topology = TopologyMesh
	cfg.NumGPUs = 10 // not a perfect square

	assert.Error(t, cfg.Validate())

	cfg.NumGPUs = 16
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_TorusSameAsMesh(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Topology = TopologyTorus
	cfg.NumGPUs = 9

	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_FatTreeRequiresEvenK(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Topology = TopologyFatTree
	cfg.FatTreeK = 3
	cfg.NumGPUs = (3 * 3 * 3) / 4

	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_FatTreeNodeCountMustMatchK(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Topology = TopologyFatTree
	cfg.FatTreeK = 4
	cfg.NumGPUs = 99 // k^3/4 = 16, not 99

	assert.Error(t, cfg.Validate())

	cfg.NumGPUs = 16
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_RejectsUnknownEnums(t *testing.T) {
	base := DefaultConfig()
	base.Topology = TopologyMesh
	base.NumGPUs = 4

	withBadRouting := base
	withBadRouting.RoutingAlgo = "not_a_real_algo"
	assert.Error(t, withBadRouting.Validate())

	withBadTraffic := base
	withBadTraffic.TrafficPattern = "not_a_real_pattern"
	assert.Error(t, withBadTraffic.Validate())
}

func TestConfig_Validate_HybridElectricalRequiresValidSecondaryTopology(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Topology = TopologyMesh
	cfg.NumGPUs = 4
	cfg.Architecture = ArchitectureHybridElectrical
	cfg.HybridElectrical.SecondaryTopology = "bogus"

	assert.Error(t, cfg.Validate())

	cfg.HybridElectrical.SecondaryTopology = TopologyFatTree
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_RejectsTooFewVirtualChannels(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Topology = TopologyMesh
	cfg.NumGPUs = 4
	cfg.NumVirtualChannels = 0

	assert.Error(t, cfg.Validate())
}
