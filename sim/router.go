// Implements the router microarchitecture: per-port/per-VC input buffers,
// route computation (dispatched to a topology-specific RouteFunc chosen at
// construction — see Design Notes in spec.md), round-robin VC arbitration,
// and one-flit-per-output-port-per-cycle forwarding.

package sim

import "strconv"

// Port identifies a grid router's cardinal ports. Fat-tree routers
// address ports by plain int (down-ports then up-ports); only grid
// routers use these symbolic names.
const (
	PortNorth = 0
	PortEast  = 1
	PortSouth = 2
	PortWest  = 3
	PortLocal = 4
)

// RouterKind tags which variant of routing a Router performs, fixed at
// construction — no string parsing of an id at routing time (Design Notes).
type RouterKind int

const (
	RouterGrid RouterKind = iota
	RouterFatTreeEdge
	RouterFatTreeCore
)

// RouterID is the opaque, comparable public identifier of spec.md §3: grid
// routers set X/Y, fat-tree edge routers set Pod/Switch, fat-tree core
// routers set Core.
type RouterID struct {
	Kind   RouterKind
	X, Y   int
	Pod    int
	Switch int
	Core   int
}

func (id RouterID) String() string {
	switch id.Kind {
	case RouterFatTreeEdge:
		return "e_" + strconv.Itoa(id.Pod) + "_" + strconv.Itoa(id.Switch)
	case RouterFatTreeCore:
		return "c_" + strconv.Itoa(id.Core)
	default:
		return "(" + strconv.Itoa(id.X) + "," + strconv.Itoa(id.Y) + ")"
	}
}

// RouterHandle is an arena index into Fabric.routers, used in place of
// pointer-keyed maps (Design Notes: "arena indexed by integer handle").
type RouterHandle int

// RouteFunc computes the output port a flit should take, given the
// router performing route computation and the fabric it belongs to (for
// adaptive routing's downstream-fullness queries). Chosen once per router
// at fabric-construction time.
type RouteFunc func(r *Router, f *Flit, fab *Fabric) int

// contender is one (flit, in_port, vc) request for an output port.
type contender struct {
	flit   *Flit
	inPort int
	vc     int
}

// Router holds per-port/per-VC input buffers and the round-robin arbiter
// cursor for each output port; it is otherwise stateless across cycles.
// It never holds a back-reference to its Fabric — callers pass the Fabric
// into ProcessCycle for downstream-fullness queries, side-stepping the
// cyclic-ownership problem instead of routing around it with handles.
type Router struct {
	Handle      RouterHandle
	ID          RouterID
	Kind        RouterKind
	NumPorts    int
	NumVCs      int
	BufferDepth int
	GridWidth   int // mesh/torus only
	IsTorus     bool
	FatTreeK    int // fat-tree only

	StrictBackpressure bool

	inputBuffers [][]*FlitQueue // [port][vc]
	arbiter      []int          // cursor per output port

	route RouteFunc
}

// NewRouter allocates a router with empty input buffers and a zeroed
// arbiter cursor for every port.
func NewRouter(handle RouterHandle, id RouterID, kind RouterKind, numPorts, numVCs, bufferDepth int, route RouteFunc) *Router {
	buffers := make([][]*FlitQueue, numPorts)
	for p := range buffers {
		vcs := make([]*FlitQueue, numVCs)
		for v := range vcs {
			vcs[v] = &FlitQueue{}
		}
		buffers[p] = vcs
	}
	return &Router{
		Handle:       handle,
		ID:           id,
		Kind:         kind,
		NumPorts:     numPorts,
		NumVCs:       numVCs,
		BufferDepth:  bufferDepth,
		inputBuffers: buffers,
		arbiter:      make([]int, numPorts),
		route:        route,
	}
}

// InputBuffer returns the FIFO for the given (port, vc). Panics on an
// out-of-range port or vc, which would indicate a fabric-construction bug.
func (r *Router) InputBuffer(port, vc int) *FlitQueue {
	return r.inputBuffers[port][vc]
}

// bufferFullness reports sum(len(vc))/(numVCs*bufferDepth) over this
// router's own input buffer at the given port — used by Fabric when a
// neighbour queries downstream fullness for adaptive routing.
func (r *Router) bufferFullness(port int) float64 {
	total := 0
	for _, vc := range r.inputBuffers[port] {
		total += vc.Len()
	}
	return float64(total) / float64(r.NumVCs*r.BufferDepth)
}

// ProcessCycle inspects every non-empty input buffer, computes a route for
// each head flit, arbitrates contested output ports round-robin, and
// returns at most one winning flit per output port. The caller is
// responsible for moving winners to their destination (neighbour buffer or
// node delivery); ProcessCycle itself only dequeues winners from this
// router's own buffers.
func (r *Router) ProcessCycle(fab *Fabric) map[int]*Flit {
	requests := make(map[int][]contender)
	for inPort, vcs := range r.inputBuffers {
		for vc, q := range vcs {
			head := q.Front()
			if head == nil {
				continue
			}
			outPort := r.route(r, head, fab)
			if outPort < 0 {
				// Transient router warning (spec.md §7): routing function
				// could not resolve an output. Should not occur by
				// construction; drop the flit rather than propagate.
				logTransientRouteWarning(r.ID, head)
				q.Pop()
				continue
			}
			requests[outPort] = append(requests[outPort], contender{flit: head, inPort: inPort, vc: vc})
		}
	}

	forwarded := make(map[int]*Flit)
	for outPort, reqs := range requests {
		if len(reqs) == 0 {
			continue
		}
		start := r.arbiter[outPort] % len(reqs)
		for i := 0; i < len(reqs); i++ {
			idx := (start + i) % len(reqs)
			c := reqs[idx]
			if r.StrictBackpressure && fab.downstreamWouldOverflow(r.Handle, outPort, c.vc, r.BufferDepth) {
				continue
			}
			r.arbiter[outPort] = (idx + 1) % len(reqs)
			forwarded[outPort] = r.inputBuffers[c.inPort][c.vc].Pop()
			break
		}
	}
	return forwarded
}
