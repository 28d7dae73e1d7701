// Builds the three supported topologies (mesh, torus, k-ary fat-tree) into
// a Fabric: an arena of routers plus a connections table and the
// node<->router attachment maps, per spec.md §4.3. Routers never hold a
// pointer back to their Fabric (see router.go); the Fabric is what threads
// handles through ProcessCycle's adaptive-fullness queries.

package sim

// Connection is a directed inter-router link: Fabric.connections[h][port]
// gives the neighbour router handle and the input port the link lands on.
type Connection struct {
	To   RouterHandle
	Port int
}

// Attachment records which (router, port) a node is wired to.
type Attachment struct {
	Router RouterHandle
	Port   int
}

// Fabric is the topology: routers, directed inter-router links, and
// node<->router attachment, per spec.md §3.
type Fabric struct {
	Topology Topology

	routers     []*Router
	idIndex     map[RouterID]RouterHandle
	connections []map[int]Connection // indexed by RouterHandle

	nodeToRouter     map[int]Attachment
	routerPortToNode map[RouterHandle]map[int]int

	gridWidth, gridHeight int
	fatTreeK              int
}

// Router returns the router at the given handle.
func (f *Fabric) Router(h RouterHandle) *Router { return f.routers[h] }

// Routers returns every router in the fabric, in construction order.
func (f *Fabric) Routers() []*Router { return f.routers }

// GridWidth returns the mesh/torus side length, or 0 for a fat-tree fabric.
func (f *Fabric) GridWidth() int { return f.gridWidth }

// Attachment returns the (router, port) a node is wired to, and whether
// the node id is attached to this fabric at all (it may belong to the
// other fabric in hybrid_electrical mode — it never does in this design,
// since both fabrics attach every node, but the bool keeps the API honest).
func (f *Fabric) Attachment(nodeID int) (Attachment, bool) {
	a, ok := f.nodeToRouter[nodeID]
	return a, ok
}

// NodeAt returns the node id ejecting at (router, port), if any.
func (f *Fabric) NodeAt(h RouterHandle, port int) (int, bool) {
	ports, ok := f.routerPortToNode[h]
	if !ok {
		return 0, false
	}
	nodeID, ok := ports[port]
	return nodeID, ok
}

// ConnectionFrom returns the neighbour a router's output port links to.
func (f *Fabric) ConnectionFrom(h RouterHandle, port int) (Connection, bool) {
	c, ok := f.connections[h][port]
	return c, ok
}

// bufferFullness implements spec.md §4.1: fullness of the *downstream*
// router's input buffer reached by leaving `from` via `port`. Ports
// without an outbound link report 1.0 (uninvertible — never selected by a
// min-fullness adaptive choice unless it is the only candidate).
func (f *Fabric) bufferFullness(from RouterHandle, port int) float64 {
	conn, ok := f.connections[from][port]
	if !ok {
		return 1.0
	}
	return f.routers[conn.To].bufferFullness(conn.Port)
}

// downstreamWouldOverflow reports whether the input VC buffer on the other
// end of `from`'s `port` output link already holds bufferDepth flits on
// the given VC — used only when StrictBackpressure is enabled (spec.md
// §4.1 enhanced variant).
func (f *Fabric) downstreamWouldOverflow(from RouterHandle, port, vc, bufferDepth int) bool {
	conn, ok := f.connections[from][port]
	if !ok {
		return false
	}
	dest := f.routers[conn.To]
	return dest.inputBuffers[conn.Port][vc].Len() >= bufferDepth
}

func (f *Fabric) addRouter(id RouterID, kind RouterKind, numPorts, numVCs, bufferDepth int, route RouteFunc) RouterHandle {
	h := RouterHandle(len(f.routers))
	r := NewRouter(h, id, kind, numPorts, numVCs, bufferDepth, route)
	f.routers = append(f.routers, r)
	f.connections = append(f.connections, map[int]Connection{})
	f.idIndex[id] = h
	return h
}

func (f *Fabric) link(a RouterHandle, aPort int, b RouterHandle, bPort int) {
	f.connections[a][aPort] = Connection{To: b, Port: bPort}
	f.connections[b][bPort] = Connection{To: a, Port: aPort}
}

// NewFabric builds the topology named by `topology`, using `algo` to pick
// each router's RouteFunc and `cfg` for sizing (num_gpus, fat_tree_k,
// num_virtual_channels, router_buffer_size, strict_backpressure). Returns
// a *ConfigError for any violation spec.md §4.3 calls out.
func NewFabric(topology Topology, algo RoutingAlgo, cfg Config) (*Fabric, error) {
	f := &Fabric{
		Topology:         topology,
		idIndex:          make(map[RouterID]RouterHandle),
		nodeToRouter:     make(map[int]Attachment),
		routerPortToNode: make(map[RouterHandle]map[int]int),
	}

	switch topology {
	case TopologyMesh:
		if err := f.buildGrid(cfg, algo, false); err != nil {
			return nil, err
		}
	case TopologyTorus:
		if err := f.buildGrid(cfg, algo, true); err != nil {
			return nil, err
		}
	case TopologyFatTree:
		if err := f.buildFatTree(cfg, algo); err != nil {
			return nil, err
		}
	default:
		return nil, &ConfigError{Field: "topology", Msg: "unknown topology: " + string(topology)}
	}

	for nodeID, att := range f.nodeToRouter {
		ports, ok := f.routerPortToNode[att.Router]
		if !ok {
			ports = make(map[int]int)
			f.routerPortToNode[att.Router] = ports
		}
		ports[att.Port] = nodeID
	}
	return f, nil
}

func (f *Fabric) buildGrid(cfg Config, algo RoutingAlgo, torus bool) error {
	width := isqrt(cfg.NumGPUs)
	if width*width != cfg.NumGPUs {
		return &ConfigError{Field: "num_gpus", Msg: "must be a perfect square for mesh/torus topology"}
	}
	f.gridWidth, f.gridHeight = width, width

	var route RouteFunc
	switch algo {
	case RoutingAdaptive:
		route = routeGridAdaptive
	default:
		if torus {
			route = routeTorusXY
		} else {
			route = routeMeshXY
		}
	}

	handles := make(map[[2]int]RouterHandle, cfg.NumGPUs)
	for y := 0; y < width; y++ {
		for x := 0; x < width; x++ {
			id := RouterID{Kind: RouterGrid, X: x, Y: y}
			h := f.addRouter(id, RouterGrid, 5, cfg.NumVirtualChannels, cfg.RouterBufferSize, route)
			f.routers[h].GridWidth = width
			f.routers[h].IsTorus = torus
			f.routers[h].StrictBackpressure = cfg.StrictBackpressure
			handles[[2]int{x, y}] = h
			f.nodeToRouter[y*width+x] = Attachment{Router: h, Port: PortLocal}
		}
	}

	for y := 0; y < width; y++ {
		for x := 0; x < width; x++ {
			h := handles[[2]int{x, y}]
			if torus {
				f.link(h, PortNorth, handles[[2]int{x, (y - 1 + width) % width}], PortSouth)
				f.link(h, PortEast, handles[[2]int{(x + 1) % width, y}], PortWest)
			} else {
				if y > 0 {
					f.link(h, PortNorth, handles[[2]int{x, y - 1}], PortSouth)
				}
				if x < width-1 {
					f.link(h, PortEast, handles[[2]int{x + 1, y}], PortWest)
				}
			}
		}
	}
	return nil
}

func (f *Fabric) buildFatTree(cfg Config, algo RoutingAlgo) error {
	k := cfg.FatTreeK
	if k <= 0 || k%2 != 0 {
		return &ConfigError{Field: "fat_tree_k", Msg: "must be a positive even integer"}
	}
	f.fatTreeK = k
	nodesPerSwitch := k / 2
	numPods := k
	numEdgeSwitches := numPods * nodesPerSwitch
	numCoreSwitches := nodesPerSwitch * nodesPerSwitch
	expectedNodes := numEdgeSwitches * nodesPerSwitch
	if cfg.NumGPUs != expectedNodes {
		return &ConfigError{Field: "num_gpus", Msg: "does not match k-ary fat-tree node count"}
	}

	var edgeRoute, coreRoute RouteFunc
	if algo == RoutingAdaptive {
		edgeRoute, coreRoute = routeFatTreeAdaptive, routeFatTreeAdaptive
	} else {
		edgeRoute, coreRoute = routeFatTreeUpDown, routeFatTreeUpDown
	}

	coreHandles := make([]RouterHandle, numCoreSwitches)
	for i := 0; i < numCoreSwitches; i++ {
		id := RouterID{Kind: RouterFatTreeCore, Core: i}
		h := f.addRouter(id, RouterFatTreeCore, k, cfg.NumVirtualChannels, cfg.RouterBufferSize, coreRoute)
		f.routers[h].FatTreeK = k
		f.routers[h].StrictBackpressure = cfg.StrictBackpressure
		coreHandles[i] = h
	}

	edgeHandles := make([][]RouterHandle, numPods)
	for pod := 0; pod < numPods; pod++ {
		edgeHandles[pod] = make([]RouterHandle, nodesPerSwitch)
		for s := 0; s < nodesPerSwitch; s++ {
			id := RouterID{Kind: RouterFatTreeEdge, Pod: pod, Switch: s}
			h := f.addRouter(id, RouterFatTreeEdge, k, cfg.NumVirtualChannels, cfg.RouterBufferSize, edgeRoute)
			f.routers[h].FatTreeK = k
			f.routers[h].StrictBackpressure = cfg.StrictBackpressure
			edgeHandles[pod][s] = h
		}
	}

	for pod := 0; pod < numPods; pod++ {
		for s := 0; s < nodesPerSwitch; s++ {
			edgeH := edgeHandles[pod][s]
			for j := 0; j < nodesPerSwitch; j++ {
				coreIdx := s*nodesPerSwitch + j
				coreH := coreHandles[coreIdx]
				edgeUpPort := nodesPerSwitch + j
				coreDownPort := pod
				f.link(edgeH, edgeUpPort, coreH, coreDownPort)
			}
		}
	}

	for pod := 0; pod < numPods; pod++ {
		for s := 0; s < nodesPerSwitch; s++ {
			edgeH := edgeHandles[pod][s]
			for j := 0; j < nodesPerSwitch; j++ {
				nodeID := pod*nodesPerSwitch*nodesPerSwitch + s*nodesPerSwitch + j
				f.nodeToRouter[nodeID] = Attachment{Router: edgeH, Port: j}
			}
		}
	}
	return nil
}

func isqrt(n int) int {
	if n <= 0 {
		return 0
	}
	x := n
	for x*x > n {
		x = (x + n/x) / 2
	}
	for (x+1)*(x+1) <= n {
		x++
	}
	return x
}
