// cmd/root.go
package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/RAJVEERSINGHMUNDE/Network-on-Chip-Simulator/sim"
)

var (
	numGPUs                 int
	topology                string
	fatTreeK                int
	numVirtualChannels      int
	routerBufferSize        int
	routingAlgo             string
	trafficPattern          string
	injectionRate           float64
	hotspotNodes            []int
	hotspotRate             float64
	simulationCycles        int64
	allReduceDataSize       int
	allReduceChunkSizeFlits int
	simulationTimeoutCycles int64
	randomSeed              int64
	strictBackpressure      bool
	architecture            string
	secondaryTopology       string
	secondaryTraffic        []string
	logLevel                string
	configPath              string
)

var rootCmd = &cobra.Command{
	Use:   "noc-sim",
	Short: "Cycle-accurate network-on-chip simulator",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the network-on-chip simulation",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg, err := buildConfig()
		if err != nil {
			logrus.Fatalf("invalid configuration: %v", err)
		}

		logrus.Infof("starting simulation: num_gpus=%d topology=%s routing=%s traffic=%s",
			cfg.NumGPUs, cfg.Topology, cfg.RoutingAlgo, cfg.TrafficPattern)

		s, err := sim.NewSimulator(cfg)
		if err != nil {
			logrus.Fatalf("failed to build simulator: %v", err)
		}

		if err := s.Run(cfg.SimulationCycles); err != nil {
			logrus.Warnf("simulation ended early: %v", err)
		}

		p50, p99, stddev := s.Tracker.LatencyPercentiles()
		logrus.Infof("simulation complete at cycle %d", s.Cycle())
		logrus.Infof("packets completed: %d", s.Tracker.CompletedCount())
		logrus.Infof("average latency: %.2f cycles", s.Tracker.AverageLatency())
		logrus.Infof("p50=%.2f p99=%.2f stddev=%.2f", p50, p99, stddev)
		logrus.Infof("throughput: %.4f packets/cycle", s.Tracker.Throughput(s.Cycle(), cfg.NumGPUs))
	},
}

// buildConfig loads a YAML config file when --config is set, then applies
// any explicitly-set flags on top of it; otherwise it starts from
// sim.DefaultConfig() and applies flags the same way.
func buildConfig() (sim.Config, error) {
	var cfg sim.Config
	if configPath != "" {
		loaded, err := loadConfig(configPath)
		if err != nil {
			return sim.Config{}, err
		}
		cfg = loaded
	} else {
		cfg = sim.DefaultConfig()
	}

	flags := runCmd.Flags()
	if flags.Changed("num-gpus") {
		cfg.NumGPUs = numGPUs
	}
	if flags.Changed("topology") {
		cfg.Topology = sim.Topology(topology)
	}
	if flags.Changed("fat-tree-k") {
		cfg.FatTreeK = fatTreeK
	}
	if flags.Changed("num-vcs") {
		cfg.NumVirtualChannels = numVirtualChannels
	}
	if flags.Changed("buffer-size") {
		cfg.RouterBufferSize = routerBufferSize
	}
	if flags.Changed("routing") {
		cfg.RoutingAlgo = sim.RoutingAlgo(routingAlgo)
	}
	if flags.Changed("traffic") {
		cfg.TrafficPattern = sim.TrafficPattern(trafficPattern)
	}
	if flags.Changed("injection-rate") {
		cfg.InjectionRate = injectionRate
	}
	if flags.Changed("hotspot-nodes") {
		cfg.HotspotNodes = hotspotNodes
	}
	if flags.Changed("hotspot-rate") {
		cfg.HotspotRate = hotspotRate
	}
	if flags.Changed("cycles") {
		cfg.SimulationCycles = simulationCycles
	}
	if flags.Changed("all-reduce-data-size") {
		cfg.Workload.AllReduceDataSize = allReduceDataSize
	}
	if flags.Changed("all-reduce-chunk-flits") {
		cfg.Workload.AllReduceChunkSizeFlits = allReduceChunkSizeFlits
	}
	if flags.Changed("timeout-cycles") {
		cfg.SimulationTimeoutCycles = simulationTimeoutCycles
	}
	if flags.Changed("seed") {
		cfg.RandomSeed = randomSeed
	}
	if flags.Changed("strict-backpressure") {
		cfg.StrictBackpressure = strictBackpressure
	}
	if flags.Changed("architecture") {
		cfg.Architecture = sim.Architecture(architecture)
	}
	if flags.Changed("secondary-topology") {
		traffic := make([]sim.TrafficPattern, len(secondaryTraffic))
		for i, p := range secondaryTraffic {
			traffic[i] = sim.TrafficPattern(p)
		}
		cfg.HybridElectrical = sim.HybridElectricalConfig{
			SecondaryTopology: sim.Topology(secondaryTopology),
			SecondaryTraffic:  traffic,
		}
	}

	return cfg, nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := runCmd.Flags()
	flags.StringVar(&configPath, "config", "", "Path to a YAML config file")
	flags.StringVar(&logLevel, "log", "info", "Log level (debug, info, warn, error)")

	flags.IntVar(&numGPUs, "num-gpus", 16, "Number of GPU nodes")
	flags.StringVar(&topology, "topology", string(sim.TopologyMesh), "Topology: mesh, torus, fat_tree")
	flags.IntVar(&fatTreeK, "fat-tree-k", 4, "Fat-tree radix k")
	flags.IntVar(&numVirtualChannels, "num-vcs", 1, "Virtual channels per port")
	flags.IntVar(&routerBufferSize, "buffer-size", 8, "Per-VC router input buffer depth (flits)")
	flags.StringVar(&routingAlgo, "routing", string(sim.RoutingDeterministic), "Routing algorithm: deterministic, adaptive")
	flags.StringVar(&trafficPattern, "traffic", string(sim.TrafficUniformRandom), "Traffic pattern: uniform_random, hotspot, transpose, all_reduce")
	flags.Float64Var(&injectionRate, "injection-rate", 0.1, "Per-node per-cycle injection probability")
	flags.IntSliceVar(&hotspotNodes, "hotspot-nodes", nil, "Hotspot destination node ids")
	flags.Float64Var(&hotspotRate, "hotspot-rate", 0.0, "Fraction of traffic directed to hotspot nodes")
	flags.Int64Var(&simulationCycles, "cycles", 10000, "Number of cycles to simulate")
	flags.IntVar(&allReduceDataSize, "all-reduce-data-size", 0, "Number of chunks for the all-reduce workload")
	flags.IntVar(&allReduceChunkSizeFlits, "all-reduce-chunk-flits", 4, "Flits per all-reduce chunk packet")
	flags.Int64Var(&simulationTimeoutCycles, "timeout-cycles", 0, "Workload timeout in cycles (0 = no timeout)")
	flags.Int64Var(&randomSeed, "seed", 1, "Random seed")
	flags.BoolVar(&strictBackpressure, "strict-backpressure", false, "Do not forward a flit into a downstream VC buffer that is already full")
	flags.StringVar(&architecture, "architecture", string(sim.ArchitectureMonolithic), "Architecture: monolithic, hybrid_electrical")
	flags.StringVar(&secondaryTopology, "secondary-topology", "", "Hybrid electrical secondary fabric topology")
	flags.StringSliceVar(&secondaryTraffic, "secondary-traffic", nil, "Hybrid electrical secondary fabric traffic patterns")

	rootCmd.AddCommand(runCmd)
}
