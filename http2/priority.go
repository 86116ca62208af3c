package http2

import "encoding/binary"

const (
	// DefaultWeight is the priority weight assigned to streams that
	// carry no explicit priority information.
	// https://httpwg.org/specs/rfc7540.html#rfc.section.5.3.5
	DefaultWeight = 16

	// HighestWeight is the largest expressible priority weight.
	HighestWeight = 256
)

// PriorityParam is the stream prioritization tuple carried by PRIORITY
// frames and by HEADERS frames with the PRIORITY flag set. Weight is
// kept in its semantic 1..256 range; the wire encodes weight-1.
type PriorityParam struct {
	Exclusive        bool
	StreamDependency uint32
	Weight           uint16
}

// DefaultPriority is the priority of a stream that never received
// explicit priority information: dependent on stream 0, weight 16.
func DefaultPriority() PriorityParam {
	return PriorityParam{Weight: DefaultWeight}
}

// HighestPriority depends on stream 0 with the maximum weight.
func HighestPriority() PriorityParam {
	return PriorityParam{Weight: HighestWeight}
}

// parsePriorityParam decodes the 5-byte E/Stream Dependency/Weight block.
func parsePriorityParam(b []byte) PriorityParam {
	dep := binary.BigEndian.Uint32(b)
	return PriorityParam{
		Exclusive:        TestBit(dep, 31),
		StreamDependency: ClearBit(dep, 31),
		Weight:           uint16(b[4]) + 1,
	}
}

func (p PriorityParam) marshal() []byte {
	b := make([]byte, 5)
	dep := ClearBit(p.StreamDependency, 31)
	if p.Exclusive {
		dep = SetBit(dep, 31)
	}
	binary.BigEndian.PutUint32(b, dep)
	b[4] = byte(p.Weight - 1)
	return b
}
