package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func meshConfig(n int) Config {
	cfg := DefaultConfig()
	cfg.Topology = TopologyMesh
	cfg.NumGPUs = n
	cfg.NumVirtualChannels = 1
	cfg.RouterBufferSize = 4
	return cfg
}

func TestNewFabric_Mesh_BuildsPerfectSquareGrid(t *testing.T) {
	// GIVEN a 3x3 mesh config
	cfg := meshConfig(9)

	// WHEN NewFabric is called
	fab, err := NewFabric(TopologyMesh, RoutingDeterministic, cfg)
	require.NoError(t, err)

	// THEN it has 9 routers and GridWidth 3
	assert.Len(t, fab.Routers(), 9)
	assert.Equal(t, 3, fab.GridWidth())
}

func TestNewFabric_Mesh_RejectsNonSquareNodeCount(t *testing.T) {
	cfg := meshConfig(10)

	_, err := NewFabric(TopologyMesh, RoutingDeterministic, cfg)
	require.Error(t, err)
	assert.IsType(t, &ConfigError{}, err)
}

func TestNewFabric_Mesh_LinksAreSymmetric(t *testing.T) {
	// GIVEN a 2x2 mesh
	cfg := meshConfig(4)
	fab, err := NewFabric(TopologyMesh, RoutingDeterministic, cfg)
	require.NoError(t, err)

	// WHEN every router's connections are inspected
	// THEN every link is bidirectional: A->B on port p implies B->A on the
	// matching reverse port
	for h := range fab.Routers() {
		handle := RouterHandle(h)
		for port, conn := range fab.connections[handle] {
			reverse, ok := fab.ConnectionFrom(conn.To, conn.Port)
			if !assert.True(t, ok, "router %d port %d links to %d:%d, but no link back", handle, port, conn.To, conn.Port) {
				continue
			}
			assert.Equal(t, handle, reverse.To, "asymmetric link: %d:%d -> %d:%d -> %d:%d", handle, port, conn.To, conn.Port, reverse.To, reverse.Port)
			assert.Equal(t, port, reverse.Port, "asymmetric link: %d:%d -> %d:%d -> %d:%d", handle, port, conn.To, conn.Port, reverse.To, reverse.Port)
		}
	}
}

func TestNewFabric_Torus_WrapsEdges(t *testing.T) {
	// GIVEN a 2x2 torus
	cfg := meshConfig(4)
	cfg.Topology = TopologyTorus

	fab, err := NewFabric(TopologyTorus, RoutingDeterministic, cfg)
	require.NoError(t, err)

	// WHEN router (0,0)'s NORTH port is inspected
	r00 := fab.idIndex[RouterID{Kind: RouterGrid, X: 0, Y: 0}]
	conn, ok := fab.ConnectionFrom(r00, PortNorth)
	require.True(t, ok, "torus router (0,0) has no NORTH link; expected a wraparound")

	// THEN it wraps to (0, 1) — the bottom row
	wantID := RouterID{Kind: RouterGrid, X: 0, Y: 1}
	assert.Equal(t, wantID, fab.Router(conn.To).ID, "torus wraparound NORTH from (0,0)")
}

func fatTreeConfig(k int) Config {
	cfg := DefaultConfig()
	cfg.Topology = TopologyFatTree
	cfg.FatTreeK = k
	cfg.NumGPUs = (k * k * k) / 4
	cfg.NumVirtualChannels = 1
	cfg.RouterBufferSize = 4
	return cfg
}

func TestNewFabric_FatTree_BuildsExpectedSwitchCounts(t *testing.T) {
	// GIVEN a k=4 fat-tree (16 nodes, 8 edge switches, 4 core switches)
	cfg := fatTreeConfig(4)

	fab, err := NewFabric(TopologyFatTree, RoutingDeterministic, cfg)
	require.NoError(t, err)

	// THEN there are 12 total switches (8 edge + 4 core) and 16 attached nodes
	assert.Len(t, fab.Routers(), 12)
	assert.Len(t, fab.nodeToRouter, 16)
}

func TestNewFabric_FatTree_RejectsOddK(t *testing.T) {
	cfg := fatTreeConfig(4)
	cfg.FatTreeK = 3
	cfg.NumGPUs = 6

	_, err := NewFabric(TopologyFatTree, RoutingDeterministic, cfg)
	require.Error(t, err)
	assert.IsType(t, &ConfigError{}, err)
}

func TestNewFabric_FatTree_RejectsMismatchedNodeCount(t *testing.T) {
	cfg := fatTreeConfig(4)
	cfg.NumGPUs = 99

	_, err := NewFabric(TopologyFatTree, RoutingDeterministic, cfg)
	require.Error(t, err)
	assert.IsType(t, &ConfigError{}, err)
}

func TestFabric_DownstreamWouldOverflow_RespectsVC(t *testing.T) {
	// GIVEN a 2x2 mesh with buffer depth 1
	cfg := meshConfig(4)
	cfg.RouterBufferSize = 1
	fab, err := NewFabric(TopologyMesh, RoutingDeterministic, cfg)
	require.NoError(t, err)

	r00 := fab.idIndex[RouterID{Kind: RouterGrid, X: 0, Y: 0}]
	conn, ok := fab.ConnectionFrom(r00, PortEast)
	require.True(t, ok, "expected router (0,0) to have an EAST link")

	// WHEN the downstream router's VC0 input buffer is already at depth
	fab.Router(conn.To).InputBuffer(conn.Port, 0).Push(&Flit{})

	// THEN downstreamWouldOverflow reports true for VC0
	assert.True(t, fab.downstreamWouldOverflow(r00, PortEast, 0, 1), "downstreamWouldOverflow should be true once the single-slot VC0 buffer is full")
}
