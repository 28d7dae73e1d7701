// Loads a config.yaml into sim.Config. This is the ambient YAML-loading
// glue spec.md's Out-of-scope section waves off as "external" — the
// simulator's actual configuration surface is the sim.Config struct;
// this file only translates a YAML document into one, following the
// same strict-field-checking pattern as the teacher's
// cmd/default_config.go loadDefaultsConfig.

package cmd

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/RAJVEERSINGHMUNDE/Network-on-Chip-Simulator/sim"
)

type workloadFileConfig struct {
	AllReduceDataSize       int `yaml:"all_reduce_data_size"`
	AllReduceChunkSizeFlits int `yaml:"all_reduce_chunk_size_flits"`
}

type hybridElectricalFileConfig struct {
	SecondaryTopology string   `yaml:"secondary_topology"`
	SecondaryTraffic  []string `yaml:"secondary_traffic"`
}

// fileConfig mirrors the recognized keys of spec.md §6 one-to-one.
type fileConfig struct {
	NumGPUs                 int                        `yaml:"num_gpus"`
	Topology                string                     `yaml:"topology"`
	FatTreeK                int                        `yaml:"fat_tree_k"`
	NumVirtualChannels      int                        `yaml:"num_virtual_channels"`
	RouterBufferSize        int                        `yaml:"router_buffer_size"`
	RoutingAlgo             string                     `yaml:"routing_algo"`
	TrafficPattern          string                     `yaml:"traffic_pattern"`
	InjectionRate           float64                    `yaml:"injection_rate"`
	HotspotNodes            []int                      `yaml:"hotspot_nodes"`
	HotspotRate             float64                    `yaml:"hotspot_rate"`
	SimulationCycles        int64                      `yaml:"simulation_cycles"`
	Workload                workloadFileConfig         `yaml:"workload"`
	SimulationTimeoutCycles int64                      `yaml:"simulation_timeout_cycles"`
	RandomSeed              int64                      `yaml:"random_seed"`
	StrictBackpressure      bool                       `yaml:"strict_backpressure"`
	Architecture            string                     `yaml:"architecture"`
	HybridElectricalConfig  hybridElectricalFileConfig `yaml:"hybrid_electrical_config"`
}

// loadConfig reads and strictly parses path, then overlays its
// non-zero-valued fields onto sim.DefaultConfig().
func loadConfig(path string) (sim.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return sim.Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc fileConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&fc); err != nil {
		return sim.Config{}, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	cfg := sim.DefaultConfig()
	cfg.NumGPUs = fc.NumGPUs
	if fc.Topology != "" {
		cfg.Topology = sim.Topology(fc.Topology)
	}
	if fc.FatTreeK != 0 {
		cfg.FatTreeK = fc.FatTreeK
	}
	if fc.NumVirtualChannels != 0 {
		cfg.NumVirtualChannels = fc.NumVirtualChannels
	}
	if fc.RouterBufferSize != 0 {
		cfg.RouterBufferSize = fc.RouterBufferSize
	}
	if fc.RoutingAlgo != "" {
		cfg.RoutingAlgo = sim.RoutingAlgo(fc.RoutingAlgo)
	}
	if fc.TrafficPattern != "" {
		cfg.TrafficPattern = sim.TrafficPattern(fc.TrafficPattern)
	}
	cfg.InjectionRate = fc.InjectionRate
	cfg.HotspotNodes = fc.HotspotNodes
	cfg.HotspotRate = fc.HotspotRate
	cfg.SimulationCycles = fc.SimulationCycles
	cfg.Workload = sim.WorkloadConfig{
		AllReduceDataSize:       fc.Workload.AllReduceDataSize,
		AllReduceChunkSizeFlits: fc.Workload.AllReduceChunkSizeFlits,
	}
	cfg.SimulationTimeoutCycles = fc.SimulationTimeoutCycles
	cfg.RandomSeed = fc.RandomSeed
	cfg.StrictBackpressure = fc.StrictBackpressure
	if fc.Architecture != "" {
		cfg.Architecture = sim.Architecture(fc.Architecture)
	}
	if fc.HybridElectricalConfig.SecondaryTopology != "" {
		secondaryTraffic := make([]sim.TrafficPattern, len(fc.HybridElectricalConfig.SecondaryTraffic))
		for i, p := range fc.HybridElectricalConfig.SecondaryTraffic {
			secondaryTraffic[i] = sim.TrafficPattern(p)
		}
		cfg.HybridElectrical = sim.HybridElectricalConfig{
			SecondaryTopology: sim.Topology(fc.HybridElectricalConfig.SecondaryTopology),
			SecondaryTraffic:  secondaryTraffic,
		}
	}

	return cfg, nil
}
