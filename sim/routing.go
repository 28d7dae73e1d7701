// Deterministic routing functions: mesh/torus XY (dimension-ordered, drains
// X before Y) and fat-tree up/down (static oblivious upward spreading via
// packet-id hash, deterministic downward path). See spec.md §4.2.

package sim

// routeMeshXY implements dimension-ordered XY routing on a mesh: drain the
// X dimension first, then Y, then LOCAL. Deadlock-free without VCs by
// dimension ordering.
func routeMeshXY(r *Router, f *Flit, fab *Fabric) int {
	destX, destY := destCoords(f.Dest, r.GridWidth)
	if destX != r.ID.X {
		if destX > r.ID.X {
			return PortEast
		}
		return PortWest
	}
	if destY != r.ID.Y {
		if destY > r.ID.Y {
			return PortSouth
		}
		return PortNorth
	}
	return PortLocal
}

// routeTorusXY implements the "shortest wrap-around direction" variant for
// torus: per dimension, pick the direction whose wrap distance
// (dest-self+size) mod size is <= size/2, ties forward (EAST/SOUTH);
// drain X before Y. Torus formally needs dateline VC discipline for
// deadlock-freedom on top of this — not implemented; see SPEC_FULL.md §9
// open question #3 and spec.md §4.2/§9.
func routeTorusXY(r *Router, f *Flit, fab *Fabric) int {
	destX, destY := destCoords(f.Dest, r.GridWidth)
	if destX != r.ID.X {
		dist := wrapDistance(r.ID.X, destX, r.GridWidth)
		if dist*2 <= r.GridWidth {
			return PortEast
		}
		return PortWest
	}
	if destY != r.ID.Y {
		dist := wrapDistance(r.ID.Y, destY, r.GridWidth)
		if dist*2 <= r.GridWidth {
			return PortSouth
		}
		return PortNorth
	}
	return PortLocal
}

// routeFatTreeUpDown implements the k-ary fat-tree deterministic variant:
// an edge switch forwards on the matching down-port for a local
// destination, else picks an up-port by hashing the packet id modulo k/2
// (static oblivious upward spreading); a core switch always forwards down
// on the port indexed by the destination's pod.
func routeFatTreeUpDown(r *Router, f *Flit, fab *Fabric) int {
	k := r.FatTreeK
	nodesPerSwitch := k / 2
	switch r.Kind {
	case RouterFatTreeEdge:
		destEdgeID := f.Dest / nodesPerSwitch
		currentEdgeID := r.ID.Pod*nodesPerSwitch + r.ID.Switch
		if destEdgeID == currentEdgeID {
			return f.Dest % nodesPerSwitch
		}
		return nodesPerSwitch + int(f.PacketID%uint64(nodesPerSwitch))
	case RouterFatTreeCore:
		destEdgeID := f.Dest / nodesPerSwitch
		return destEdgeID / nodesPerSwitch
	default:
		return -1
	}
}

func destCoords(destNode, gridWidth int) (int, int) {
	return destNode % gridWidth, destNode / gridWidth
}

func wrapDistance(from, to, size int) int {
	return ((to-from)%size + size) % size
}
