// Package workload implements the ring all-reduce collective workload
// driver: a state machine that sequences dependent packets across nodes
// through a scatter-reduce phase and an all-gather phase, per chunk.
//
// This package depends only on PacketInjector, a narrow interface it
// declares itself and *sim.Node satisfies structurally — sim/workload
// never imports sim, even though sim.Simulator imports sim/workload, so
// there is no import cycle.
package workload

// Phase is one state in a node's ring all-reduce progression.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseScatterReduce
	PhaseAllGather
)

// PacketInjector is the subset of *sim.Node the workload driver needs:
// the ability to build and enqueue a fixed-size packet bound for a given
// destination, bypassing synthetic traffic generation.
type PacketInjector interface {
	InjectWorkloadPacket(dest, sizeFlits int, cycle int64, transactionID int64)
}

// Config groups the ring all-reduce parameters: D data chunks, each
// chunk_size_flits flits per step packet.
type Config struct {
	DataSize       int
	ChunkSizeFlits int
}

type nodeState struct {
	phase    Phase
	step     int
	chunkIdx int
}

// AllReduceWorkload sequences a ring all-reduce of Config.DataSize chunks
// across the given nodes: each phase is N-1 steps, where at each step
// every node sends one chunk_size_flits packet to its ring successor
// (self+1) mod N and waits for one from its predecessor.
type AllReduceWorkload struct {
	cfg    Config
	nodes  []PacketInjector
	states []nodeState
}

// New constructs a driver over the given node set, one PacketInjector per
// node id 0..N-1.
func New(cfg Config, nodes []PacketInjector) *AllReduceWorkload {
	return &AllReduceWorkload{
		cfg:    cfg,
		nodes:  nodes,
		states: make([]nodeState, len(nodes)),
	}
}

// Initialize starts every node in SCATTER_REDUCE and sends its first
// packet, unless DataSize <= 0 in which case every node goes straight to
// IDLE (a zero-chunk all-reduce completes trivially).
func (w *AllReduceWorkload) Initialize(cycle int64) {
	if w.cfg.DataSize <= 0 {
		for i := range w.states {
			w.states[i].phase = PhaseIdle
		}
		return
	}
	for i := range w.states {
		w.states[i].phase = PhaseScatterReduce
		w.sendNext(i, cycle)
	}
}

// IsComplete reports whether every node has returned to IDLE.
func (w *AllReduceWorkload) IsComplete() bool {
	for _, s := range w.states {
		if s.phase != PhaseIdle {
			return false
		}
	}
	return true
}

// OnPacketReceived advances nodeID's state machine on receipt of a packet
// from srcID, then issues the node's next outgoing packet. This is the
// chunk-aware formulation: step is checked against N-2 (phase complete)
// *before* being advanced, and only advanced in the non-transition branch
// — the other ordering found in the original source is a known-bug
// candidate (spec.md §4.5/§9) and is deliberately not implemented.
func (w *AllReduceWorkload) OnPacketReceived(nodeID, srcID int, cycle int64) {
	s := &w.states[nodeID]
	if s.phase == PhaseIdle {
		return
	}

	n := len(w.states)
	phaseComplete := s.step == n-2

	switch {
	case s.phase == PhaseScatterReduce && phaseComplete:
		s.phase = PhaseAllGather
		s.step = 0
	case s.phase == PhaseAllGather && phaseComplete:
		s.chunkIdx++
		if s.chunkIdx >= w.cfg.DataSize {
			s.phase = PhaseIdle
		} else {
			s.phase = PhaseScatterReduce
			s.step = 0
		}
	default:
		s.step++
	}

	w.sendNext(nodeID, cycle)
}

func (w *AllReduceWorkload) sendNext(nodeID int, cycle int64) {
	s := w.states[nodeID]
	if s.phase == PhaseIdle {
		return
	}
	n := len(w.states)
	dest := (nodeID + 1) % n

	var phaseBit int64
	if s.phase == PhaseAllGather {
		phaseBit = 1
	}
	transactionID := (int64(nodeID) << 20) | (int64(s.chunkIdx) << 12) | (phaseBit << 8) | int64(s.step)

	w.nodes[nodeID].InjectWorkloadPacket(dest, w.cfg.ChunkSizeFlits, cycle, transactionID)
}
