// Defines the Packet/Flit model: immutable descriptors for traffic units.
// Packet ids are minted by a per-simulator counter (not a package-global
// one) so that independent simulations with different seeds never share
// id space — see Design Notes in spec.md.

package sim

import "fmt"

// PacketType classifies the logical transaction a packet represents.
type PacketType int

const (
	PacketRead PacketType = iota
	PacketWrite
	PacketResponse
	PacketSnoop
)

func (t PacketType) String() string {
	switch t {
	case PacketRead:
		return "READ"
	case PacketWrite:
		return "WRITE"
	case PacketResponse:
		return "RESPONSE"
	case PacketSnoop:
		return "SNOOP"
	default:
		return "UNKNOWN"
	}
}

// FlitType identifies a flit's position within its packet's flit train.
type FlitType int

const (
	FlitHead FlitType = iota
	FlitBody
	FlitTail
)

func (t FlitType) String() string {
	switch t {
	case FlitHead:
		return "HEAD"
	case FlitBody:
		return "BODY"
	case FlitTail:
		return "TAIL"
	default:
		return "UNKNOWN"
	}
}

// Packet is a logical message created at a source node. Packets are never
// forwarded whole: Packetize splits them into a flit train that the
// network actually moves.
type Packet struct {
	ID            uint64
	Type          PacketType
	Src           int
	Dest          int
	TransactionID int64
	Payload       []uint32
	CreationCycle int64
}

// Flit is the unit that actually traverses the network. All flits of one
// packet carry the same VCID and travel strictly FIFO on a given
// (router, in_port, vc) queue — see spec.md §5 ordering guarantees.
type Flit struct {
	Type                FlitType
	Payload             uint32
	PacketID            uint64
	VCID                int
	Src                 int
	Dest                int
	UseSecondaryNetwork bool
	// Last marks the flit whose arrival completes the packet: every TAIL,
	// and the HEAD of a single-flit (1-word payload) packet. Reception
	// logic keys off Last instead of Type == FlitTail so that 1-word
	// packets are not silently dropped from the metrics tracker (see
	// SPEC_FULL.md §9, resolved Open Question #2).
	Last bool
}

func (f Flit) String() string {
	marker := "(Pri)"
	if f.UseSecondaryNetwork {
		marker = "(Sec)"
	}
	return fmt.Sprintf("Flit(%s, pkt=%d, vc=%d, dst=%d)%s", f.Type, f.PacketID, f.VCID, f.Dest, marker)
}

// Packetize splits a packet's payload into a flit train: HEAD, BODY...,
// TAIL for N>=2 words, or a single Last HEAD for a 1-word payload.
// useSecondary marks every resulting flit for the secondary fabric in a
// hybrid_electrical deployment.
func Packetize(p Packet, vcID int, useSecondary bool) []*Flit {
	payload := p.Payload
	if len(payload) == 0 {
		payload = []uint32{0}
	}

	flits := make([]*Flit, 0, len(payload))
	base := func(ft FlitType, word uint32, last bool) *Flit {
		return &Flit{
			Type:                ft,
			Payload:             word,
			PacketID:            p.ID,
			VCID:                vcID,
			Src:                 p.Src,
			Dest:                p.Dest,
			UseSecondaryNetwork: useSecondary,
			Last:                last,
		}
	}

	if len(payload) == 1 {
		flits = append(flits, base(FlitHead, payload[0], true))
		return flits
	}

	flits = append(flits, base(FlitHead, payload[0], false))
	for _, word := range payload[1 : len(payload)-1] {
		flits = append(flits, base(FlitBody, word, false))
	}
	flits = append(flits, base(FlitTail, payload[len(payload)-1], true))
	return flits
}
