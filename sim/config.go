// Groups the language-neutral configuration keys of spec.md §6 into typed
// Go structs and validates the combinations that spec.md §4.3 and §7 call
// out as construction-time Configuration errors.

package sim

import "math"

// Topology selects the fabric shape.
type Topology string

const (
	TopologyMesh    Topology = "mesh"
	TopologyTorus   Topology = "torus"
	TopologyFatTree Topology = "fat_tree"
)

// RoutingAlgo selects deterministic or congestion-adaptive routing.
type RoutingAlgo string

const (
	RoutingDeterministic RoutingAlgo = "deterministic"
	RoutingAdaptive      RoutingAlgo = "adaptive"
)

// TrafficPattern selects synthetic destination-selection behaviour, or the
// structured all_reduce collective workload.
type TrafficPattern string

const (
	TrafficUniformRandom TrafficPattern = "uniform_random"
	TrafficTranspose     TrafficPattern = "transpose"
	TrafficHotspot       TrafficPattern = "hotspot"
	TrafficAllReduce     TrafficPattern = "all_reduce"
)

// Architecture selects a single fabric or the hybrid dual-fabric mode.
type Architecture string

const (
	ArchitectureMonolithic       Architecture = "monolithic"
	ArchitectureHybridElectrical Architecture = "hybrid_electrical"
)

// WorkloadConfig groups the ring all-reduce parameters.
type WorkloadConfig struct {
	AllReduceDataSize       int // D, chunk count
	AllReduceChunkSizeFlits int // flits per chunk packet
}

// HybridElectricalConfig groups the secondary-fabric parameters for
// architecture=hybrid_electrical.
type HybridElectricalConfig struct {
	SecondaryTopology Topology
	SecondaryTraffic  []TrafficPattern
}

// Config is the language-neutral programmatic surface of spec.md §6,
// expressed as a plain Go struct. cmd/ builds one of these from CLI flags
// or a YAML file (ambient concern; see SPEC_FULL.md §5) and hands it to
// NewSimulator.
type Config struct {
	NumGPUs                 int
	Topology                Topology
	FatTreeK                int
	NumVirtualChannels      int
	RouterBufferSize        int
	RoutingAlgo             RoutingAlgo
	TrafficPattern          TrafficPattern
	InjectionRate           float64
	HotspotNodes            []int
	HotspotRate             float64
	SimulationCycles        int64
	Workload                WorkloadConfig
	SimulationTimeoutCycles int64
	RandomSeed              int64
	StrictBackpressure      bool
	Architecture            Architecture
	HybridElectrical        HybridElectricalConfig
}

// DefaultConfig returns a Config with fat_tree_k=4, router_buffer_size=8,
// routing_algo=deterministic, traffic_pattern=uniform_random,
// num_virtual_channels=1 and architecture=monolithic, and everything else
// zero-valued; callers still must set NumGPUs and Topology.
func DefaultConfig() Config {
	return Config{
		FatTreeK:           4,
		RouterBufferSize:   8,
		RoutingAlgo:        RoutingDeterministic,
		TrafficPattern:     TrafficUniformRandom,
		Architecture:       ArchitectureMonolithic,
		NumVirtualChannels: 1,
	}
}

// Validate checks the combinations spec.md §4.3/§7 call "Configuration
// error" — invalid num_gpus for the chosen topology, odd fat_tree_k, or an
// unrecognized enum value. It does not mutate cfg.
func (cfg Config) Validate() error {
	if cfg.NumGPUs <= 0 {
		return &ConfigError{Field: "num_gpus", Msg: "must be positive"}
	}
	if cfg.NumVirtualChannels < 1 {
		return &ConfigError{Field: "num_virtual_channels", Msg: "must be >= 1"}
	}

	switch cfg.Topology {
	case TopologyMesh, TopologyTorus:
		root := math.Sqrt(float64(cfg.NumGPUs))
		if root != math.Trunc(root) {
			return &ConfigError{Field: "num_gpus", Msg: "must be a perfect square for mesh/torus topology"}
		}
	case TopologyFatTree:
		k := cfg.FatTreeK
		if k <= 0 || k%2 != 0 {
			return &ConfigError{Field: "fat_tree_k", Msg: "must be a positive even integer"}
		}
		expected := (k * k * k) / 4
		if cfg.NumGPUs != expected {
			return &ConfigError{Field: "num_gpus", Msg: "does not match k-ary fat-tree node count k^3/4"}
		}
	default:
		return &ConfigError{Field: "topology", Msg: "unknown topology: " + string(cfg.Topology)}
	}

	switch cfg.RoutingAlgo {
	case RoutingDeterministic, RoutingAdaptive:
	default:
		return &ConfigError{Field: "routing_algo", Msg: "unknown routing_algo: " + string(cfg.RoutingAlgo)}
	}

	switch cfg.TrafficPattern {
	case TrafficUniformRandom, TrafficTranspose, TrafficHotspot, TrafficAllReduce:
	default:
		return &ConfigError{Field: "traffic_pattern", Msg: "unknown traffic_pattern: " + string(cfg.TrafficPattern)}
	}

	if cfg.Architecture == ArchitectureHybridElectrical {
		switch cfg.HybridElectrical.SecondaryTopology {
		case TopologyMesh, TopologyTorus, TopologyFatTree:
		default:
			return &ConfigError{Field: "hybrid_electrical_config.secondary_topology", Msg: "unknown topology"}
		}
	}

	return nil
}
