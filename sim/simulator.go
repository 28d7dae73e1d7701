// Implements the cycle engine: the six-step per-cycle order of spec.md
// §4.7, applied to one fabric (monolithic) or two (hybrid_electrical).

package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/RAJVEERSINGHMUNDE/Network-on-Chip-Simulator/sim/workload"
)

// Simulator is the main simulation engine: it builds the fabric(s) and
// nodes from a Config and advances the global cycle counter, driving
// routers, nodes, and the workload driver (if any) in the fixed order
// spec.md §4.7 requires.
type Simulator struct {
	Config  Config
	Tracker *Tracker

	Nodes     []*Node
	Primary   *Fabric
	Secondary *Fabric // nil unless Config.Architecture == hybrid_electrical

	workload *workload.AllReduceWorkload

	cycle        int64
	rng          *PartitionedRNG
	nextPacketID uint64
}

// NewSimulator validates cfg, builds the fabric(s) and nodes, and wires up
// the ring all-reduce driver when TrafficPattern is all_reduce. Returns a
// *ConfigError for anything spec.md §7 calls a Configuration error;
// construction never panics.
func NewSimulator(cfg Config) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	primary, err := NewFabric(cfg.Topology, cfg.RoutingAlgo, cfg)
	if err != nil {
		return nil, err
	}

	var secondary *Fabric
	if cfg.Architecture == ArchitectureHybridElectrical {
		secondaryCfg := cfg
		secondaryCfg.Topology = cfg.HybridElectrical.SecondaryTopology
		secondary, err = NewFabric(secondaryCfg.Topology, cfg.RoutingAlgo, secondaryCfg)
		if err != nil {
			return nil, err
		}
	}

	s := &Simulator{
		Config:    cfg,
		Tracker:   NewTracker(),
		Primary:   primary,
		Secondary: secondary,
		rng:       NewPartitionedRNG(NewSimulationKey(cfg.RandomSeed)),
	}

	hasGrid := cfg.Topology == TopologyMesh || cfg.Topology == TopologyTorus
	s.Nodes = make([]*Node, cfg.NumGPUs)
	for i := 0; i < cfg.NumGPUs; i++ {
		gx, gy := 0, 0
		if hasGrid {
			gx, gy = i%primary.GridWidth(), i/primary.GridWidth()
		}
		s.Nodes[i] = NewNode(i, hasGrid, gx, gy, primary.GridWidth(), cfg, s.Tracker, s.rng, &s.nextPacketID)
	}

	if cfg.TrafficPattern == TrafficAllReduce {
		injectors := make([]workload.PacketInjector, len(s.Nodes))
		for i, n := range s.Nodes {
			injectors[i] = n
		}
		s.workload = workload.New(workload.Config{
			DataSize:       cfg.Workload.AllReduceDataSize,
			ChunkSizeFlits: cfg.Workload.AllReduceChunkSizeFlits,
		}, injectors)
	}

	return s, nil
}

// Cycle returns the current global cycle count.
func (s *Simulator) Cycle() int64 { return s.cycle }

func (s *Simulator) fabrics() []*Fabric {
	if s.Secondary != nil {
		return []*Fabric{s.Primary, s.Secondary}
	}
	return []*Fabric{s.Primary}
}

func (s *Simulator) fabricFor(f *Flit) *Fabric {
	if f.UseSecondaryNetwork && s.Secondary != nil {
		return s.Secondary
	}
	return s.Primary
}

// Run advances the simulation for up to numCycles cycles. When a workload
// is active it returns as soon as the workload completes, or a
// *TimeoutError if Config.SimulationTimeoutCycles is exceeded first
// (spec.md §4.5 "Completion" / §7 "Deadlock / timeout"). Without a
// workload it always runs the full numCycles and returns nil.
func (s *Simulator) Run(numCycles int64) error {
	if s.workload != nil {
		s.workload.Initialize(s.cycle)
	}

	for i := int64(0); i < numCycles; i++ {
		if i > 0 && i%100 == 0 {
			logrus.Infof("cycle %d/%d", i, numCycles)
		}
		s.step()

		if s.workload != nil {
			if s.workload.IsComplete() {
				return nil
			}
			if s.Config.SimulationTimeoutCycles > 0 && s.cycle >= s.Config.SimulationTimeoutCycles {
				return &TimeoutError{Cycle: s.cycle}
			}
		}
	}

	if s.workload != nil && !s.workload.IsComplete() {
		return &TimeoutError{Cycle: s.cycle}
	}
	return nil
}

// step executes the six-step order of spec.md §4.7. Any other ordering
// changes semantics: route computation for every router completes before
// any buffer is mutated, which is what makes a single-threaded snapshot
// read in step 1 safe against the writes in steps 2-4.
func (s *Simulator) step() {
	fabrics := s.fabrics()

	// 1. Route computation + arbitration: every router decides its
	// winners from a consistent snapshot of its own input buffers.
	// decisions[fab] is indexed by RouterHandle (fab.Routers() is itself
	// handle-ordered), so steps 2 and 4 below can walk it in ascending
	// router/port order instead of a map's randomized iteration order —
	// required for the completed-latency list to be bit-identical across
	// runs with the same seed when more than one packet completes in the
	// same cycle (spec.md §8 invariant 6).
	decisions := make(map[*Fabric][]map[int]*Flit, len(fabrics))
	for _, fab := range fabrics {
		routers := fab.Routers()
		perRouter := make([]map[int]*Flit, len(routers))
		for i, r := range routers {
			perRouter[i] = r.ProcessCycle(fab)
		}
		decisions[fab] = perRouter
	}

	// 2. Inter-router transfers for winners not bound for a node.
	for _, fab := range fabrics {
		for _, r := range fab.Routers() {
			handle := r.Handle
			for outPort := 0; outPort < r.NumPorts; outPort++ {
				flit := decisions[fab][handle][outPort]
				if flit == nil {
					continue
				}
				if _, isNode := fab.NodeAt(handle, outPort); isNode {
					continue
				}
				conn, ok := fab.ConnectionFrom(handle, outPort)
				if !ok {
					continue
				}
				fab.Router(conn.To).InputBuffer(conn.Port, flit.VCID).Push(flit)
			}
		}
	}

	// 3. Injection: one flit per node's queue into its router's LOCAL
	// input buffer (or the matching fat-tree down-port).
	for _, node := range s.Nodes {
		q := node.InjectionQueue()
		head := q.Front()
		if head == nil {
			continue
		}
		fab := s.fabricFor(head)
		att, ok := fab.Attachment(node.ID)
		if !ok {
			continue
		}
		q.Pop()
		fab.Router(att.Router).InputBuffer(att.Port, head.VCID).Push(head)
	}

	// 4. Ejection to nodes + workload notification.
	for _, fab := range fabrics {
		for _, r := range fab.Routers() {
			handle := r.Handle
			for outPort := 0; outPort < r.NumPorts; outPort++ {
				flit := decisions[fab][handle][outPort]
				if flit == nil {
					continue
				}
				nodeID, ok := fab.NodeAt(handle, outPort)
				if !ok {
					continue
				}
				rec := s.Nodes[nodeID].ReceiveFlit(flit, s.cycle)
				if rec != nil && s.workload != nil {
					s.workload.OnPacketReceived(rec.Dest, rec.Src, s.cycle)
				}
			}
		}
	}

	// 5. Synthetic generation for the next cycle, only when no workload
	// is driving traffic.
	if s.workload == nil {
		for _, node := range s.Nodes {
			node.GenerateTraffic(s.cycle)
		}
	}

	s.cycle++
}
