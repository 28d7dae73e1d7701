// Centralizes the non-fatal log lines the error taxonomy (spec.md §7)
// calls for: a transient router warning when a route cannot be resolved,
// and a one-time-per-node topology-constraint warning when transpose is
// requested on a non-grid fabric.

package sim

import "github.com/sirupsen/logrus"

func logTransientRouteWarning(id RouterID, f *Flit) {
	logrus.WithFields(logrus.Fields{
		"router": id.String(),
		"packet": f.PacketID,
		"dest":   f.Dest,
	}).Warn("router: could not resolve output port for head flit, dropping")
}

func logTopologyConstraintFallback(nodeID int) {
	logrus.WithField("node", nodeID).
		Warn("transpose traffic pattern is only valid on grid topologies; falling back to uniform_random")
}
