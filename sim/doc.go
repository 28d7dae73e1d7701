// Package sim implements the cycle-accurate Network-on-Chip simulation
// engine: the packet/flit model, router microarchitecture, topology
// fabrics (mesh, torus, fat-tree), compute nodes, and the cycle-by-cycle
// engine that drives them.
//
// # Reading guide
//
// Start with these files to understand the simulation kernel:
//   - packet.go: Packet/Flit model
//   - router.go: per-cycle route computation, VC arbitration, forwarding
//   - network.go: fabric construction for mesh/torus/fat-tree
//   - node.go: traffic generation, packetization, reassembly
//   - simulator.go: the six-step cycle engine
//
// Collective workload generation (ring all-reduce) lives in the
// sim/workload sub-package, which depends only on a narrow interface
// (workload.PacketInjector) that *Node satisfies — sim imports
// sim/workload, not the other way around.
package sim
