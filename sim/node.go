// Implements the compute-node traffic source/sink: synthetic generation
// (uniform_random/transpose/hotspot), packetization, the injection queue,
// and reassembly of arriving flits into completed packets. See spec.md §4.4.

package sim

// Node is addressed by an integer id 0..N-1, with optional grid coordinates
// when the attached topology is grid-shaped.
type Node struct {
	ID       int
	HasGrid  bool
	GridX    int
	GridY    int
	gridW    int

	numNodes       int
	injectionRate  float64
	trafficPattern TrafficPattern
	hotspotNodes   []int
	hotspotRate    float64
	numVCs         int

	secondaryTrafficPatterns map[TrafficPattern]bool

	injectionQueue   FlitQueue
	reassembly       map[uint64][]*Flit
	packetsSent      int
	packetsReceived  int

	tracker *Tracker
	rng     *PartitionedRNG
	nextID  *uint64

	warnedTopologyFallback bool
}

// CompletionRecord is returned by ReceiveFlit when a flit's arrival
// completes its packet.
type CompletionRecord struct {
	PacketID uint64
	Src      int
	Dest     int
}

// NewNode constructs a node attached to the given fabric position. coords
// is only meaningful when the topology is grid-shaped; pass hasGrid=false
// otherwise (fat-tree). nextID is a shared counter (owned by the
// Simulator, per Design Notes — not a package-global) used to mint packet
// ids across every node.
func NewNode(id int, hasGrid bool, gridX, gridY, gridWidth int, cfg Config, tracker *Tracker, rng *PartitionedRNG, nextID *uint64) *Node {
	n := &Node{
		ID:             id,
		HasGrid:        hasGrid,
		GridX:          gridX,
		GridY:          gridY,
		gridW:          gridWidth,
		numNodes:       cfg.NumGPUs,
		injectionRate:  cfg.InjectionRate,
		trafficPattern: cfg.TrafficPattern,
		hotspotNodes:   cfg.HotspotNodes,
		hotspotRate:    cfg.HotspotRate,
		numVCs:         cfg.NumVirtualChannels,
		reassembly:     make(map[uint64][]*Flit),
		tracker:        tracker,
		rng:            rng,
		nextID:         nextID,
	}
	if cfg.Architecture == ArchitectureHybridElectrical {
		n.secondaryTrafficPatterns = make(map[TrafficPattern]bool, len(cfg.HybridElectrical.SecondaryTraffic))
		for _, p := range cfg.HybridElectrical.SecondaryTraffic {
			n.secondaryTrafficPatterns[p] = true
		}
	}
	return n
}

// InjectionQueue exposes the FIFO of flits awaiting admission to the
// attached router, popped one-at-a-time by the Simulator each cycle.
func (n *Node) InjectionQueue() *FlitQueue { return &n.injectionQueue }

func (n *Node) usesSecondaryNetwork() bool {
	return n.secondaryTrafficPatterns[n.trafficPattern]
}

func (n *Node) allocatePacketID() uint64 {
	id := *n.nextID
	*n.nextID++
	return id
}

// destination picks a target node id under the configured traffic pattern.
func (n *Node) destination() int {
	switch n.trafficPattern {
	case TrafficTranspose:
		if !n.HasGrid {
			if !n.warnedTopologyFallback {
				logTopologyConstraintFallback(n.ID)
				n.warnedTopologyFallback = true
			}
			break
		}
		destID := n.GridX*n.gridW + n.GridY
		if destID != n.ID {
			return destID
		}
	case TrafficHotspot:
		if len(n.hotspotNodes) > 0 && n.rng.ForSubsystem(SubsystemTraffic).Float64() < n.hotspotRate {
			if !contains(n.hotspotNodes, n.ID) {
				return n.hotspotNodes[n.rng.ForSubsystem(SubsystemTraffic).Intn(len(n.hotspotNodes))]
			}
		}
	}
	rng := n.rng.ForSubsystem(SubsystemTraffic)
	dest := n.ID
	for dest == n.ID {
		dest = rng.Intn(n.numNodes)
	}
	return dest
}

func contains(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

// GenerateTraffic draws, with probability injectionRate, a new synthetic
// packet for the given cycle and enqueues its flits.
func (n *Node) GenerateTraffic(cycle int64) {
	if n.numNodes <= 1 {
		// No legal destination exists; a single-node fabric silently
		// never generates traffic (spec.md §8 boundary behaviour).
		return
	}
	rng := n.rng.ForSubsystem(SubsystemTraffic)
	if rng.Float64() >= n.injectionRate {
		return
	}

	dest := n.destination()
	payloadLen := 1 + rng.Intn(8)
	payload := make([]uint32, payloadLen)
	for i := range payload {
		payload[i] = rng.Uint32()
	}

	pkt := Packet{
		ID:            n.allocatePacketID(),
		Type:          PacketWrite,
		Src:           n.ID,
		Dest:          dest,
		TransactionID: int64(rng.Intn(65536)),
		Payload:       payload,
		CreationCycle: cycle,
	}
	n.tracker.RecordCreation(pkt.ID, cycle)

	vcID := rng.Intn(n.numVCs)
	for _, f := range Packetize(pkt, vcID, n.usesSecondaryNetwork()) {
		n.injectionQueue.Push(f)
	}
	n.packetsSent++
}

// InjectWorkloadPacket builds and enqueues a packet of sizeFlits payload
// words bound for dest, bypassing random generation. Used by the ring
// all-reduce driver via the workload.PacketInjector interface.
func (n *Node) InjectWorkloadPacket(dest, sizeFlits int, cycle int64, transactionID int64) {
	if sizeFlits <= 0 {
		return
	}
	payload := make([]uint32, sizeFlits)
	for i := range payload {
		payload[i] = uint32(i)
	}
	pkt := Packet{
		ID:            n.allocatePacketID(),
		Type:          PacketWrite,
		Src:           n.ID,
		Dest:          dest,
		TransactionID: transactionID,
		Payload:       payload,
		CreationCycle: cycle,
	}
	n.tracker.RecordCreation(pkt.ID, cycle)

	vcID := n.rng.ForSubsystem(SubsystemTraffic).Intn(n.numVCs)
	for _, f := range Packetize(pkt, vcID, n.usesSecondaryNetwork()) {
		n.injectionQueue.Push(f)
	}
	n.packetsSent++
}

// ReceiveFlit appends an arriving flit to its packet's reassembly bucket.
// When the flit is Last (TAIL, or the HEAD of a 1-flit packet), the
// bucket is dropped, the packet's latency is recorded, and a
// CompletionRecord is returned; otherwise returns nil.
func (n *Node) ReceiveFlit(f *Flit, cycle int64) *CompletionRecord {
	n.reassembly[f.PacketID] = append(n.reassembly[f.PacketID], f)
	if !f.Last {
		return nil
	}
	delete(n.reassembly, f.PacketID)
	n.packetsReceived++
	n.tracker.RecordReceipt(f.PacketID, cycle)
	return &CompletionRecord{PacketID: f.PacketID, Src: f.Src, Dest: f.Dest}
}

// PacketsSent and PacketsReceived report this node's lifetime counters.
func (n *Node) PacketsSent() int     { return n.packetsSent }
func (n *Node) PacketsReceived() int { return n.packetsReceived }
