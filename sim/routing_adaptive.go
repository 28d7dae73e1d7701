// Congestion-adaptive routing: grid adaptive picks the productive port
// (one that reduces distance to destination) with minimum downstream
// buffer fullness; fat-tree adaptive replaces the upward hash with
// least-full up-port and keeps the downward path deterministic. Ties
// prefer the smallest port number, a deterministic tie-break given the
// same fullness values (spec.md §4.2 "Tie-breaking").

package sim

// routeGridAdaptive builds the productive-port set (ports that reduce
// Manhattan — or, on a torus, wrap — distance to the destination) and
// picks the one with minimum downstream buffer fullness. Returns LOCAL
// when the productive set is empty (i.e. the flit is already home).
func routeGridAdaptive(r *Router, f *Flit, fab *Fabric) int {
	destX, destY := destCoords(f.Dest, r.GridWidth)
	if destX == r.ID.X && destY == r.ID.Y {
		return PortLocal
	}

	var candidates []int
	if destX != r.ID.X {
		candidates = append(candidates, productiveXPort(r, destX))
	}
	if destY != r.ID.Y {
		candidates = append(candidates, productiveYPort(r, destY))
	}
	if len(candidates) == 0 {
		return PortLocal
	}
	return leastFullPort(r, fab, candidates)
}

func productiveXPort(r *Router, destX int) int {
	if r.IsTorus {
		if wrapDistance(r.ID.X, destX, r.GridWidth)*2 <= r.GridWidth {
			return PortEast
		}
		return PortWest
	}
	if destX > r.ID.X {
		return PortEast
	}
	return PortWest
}

func productiveYPort(r *Router, destY int) int {
	if r.IsTorus {
		if wrapDistance(r.ID.Y, destY, r.GridWidth)*2 <= r.GridWidth {
			return PortSouth
		}
		return PortNorth
	}
	if destY > r.ID.Y {
		return PortSouth
	}
	return PortNorth
}

// routeFatTreeAdaptive forwards down deterministically (the unique path to
// a local node) and, going up, picks the least-full up-port instead of the
// static packet-id hash.
func routeFatTreeAdaptive(r *Router, f *Flit, fab *Fabric) int {
	k := r.FatTreeK
	nodesPerSwitch := k / 2
	switch r.Kind {
	case RouterFatTreeEdge:
		destEdgeID := f.Dest / nodesPerSwitch
		currentEdgeID := r.ID.Pod*nodesPerSwitch + r.ID.Switch
		if destEdgeID == currentEdgeID {
			return f.Dest % nodesPerSwitch
		}
		upPorts := make([]int, 0, nodesPerSwitch)
		for p := nodesPerSwitch; p < k; p++ {
			upPorts = append(upPorts, p)
		}
		return leastFullPort(r, fab, upPorts)
	case RouterFatTreeCore:
		destEdgeID := f.Dest / nodesPerSwitch
		return destEdgeID / nodesPerSwitch
	default:
		return -1
	}
}

// leastFullPort returns the candidate with minimum downstream buffer
// fullness, breaking ties by smallest port number whatever the order of
// candidates.
func leastFullPort(r *Router, fab *Fabric, candidates []int) int {
	best := candidates[0]
	bestFullness := fab.bufferFullness(r.Handle, best)
	for _, p := range candidates[1:] {
		fullness := fab.bufferFullness(r.Handle, p)
		if fullness < bestFullness || (fullness == bestFullness && p < best) {
			best = p
			bestFullness = fullness
		}
	}
	return best
}
