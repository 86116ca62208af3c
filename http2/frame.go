package http2

import (
	"encoding/binary"

	slog "github.com/vearne/simplelog"
)

// FrameBase is a frame header together with the raw, length-delimited
// payload. It is the unit handed over by the connection layer; the
// typed Parse* functions in this package turn it into one of the
// per-type frame structures.
//
//	+-----------------------------------------------+
//	|                 Length (24)                   |
//	+---------------+---------------+---------------+
//	|   Type (8)    |   Flags (8)   |
//	+-+-------------+---------------+-------------------------------+
//	|R|                 Stream Identifier (31)                      |
//	+=+=============================================================+
//	|                   Frame Payload (0...)                      ...
//	+---------------------------------------------------------------+
type FrameBase struct {
	Length   uint32
	Type     FrameType
	Flags    Flags
	StreamID uint32
	Payload  []byte
}

// ParseFrameBase decodes a 9-byte frame header, optionally followed by
// the complete frame payload. The reserved bit of the stream identifier
// is masked off. When a payload is present its size must match the
// header's length field exactly.
func ParseFrameBase(b []byte) (*FrameBase, error) {
	if len(b) < HeaderSize {
		return nil, connError(ErrCodeFrameSize, "truncated frame header: %d bytes", len(b))
	}

	var fb FrameBase
	// Length(24)
	for i := 0; i < LengthSize; i++ {
		fb.Length = fb.Length*256 + uint32(b[i])
	}
	// Type(8)
	fb.Type = FrameType(b[3])
	// Flags(8)
	fb.Flags = Flags(b[4])
	// R + Stream Identifier(31)
	fb.StreamID = ClearBit(binary.BigEndian.Uint32(b[5:HeaderSize]), 31)

	if len(b) > HeaderSize {
		payload := b[HeaderSize:]
		if uint32(len(payload)) != fb.Length {
			return nil, connError(ErrCodeFrameSize,
				"frame length %d does not match payload size %d", fb.Length, len(payload))
		}
		fb.Payload = payload
	}
	slog.Debug("ParseFrameBase, FrameType:%v, streamID:%v, length:%v",
		fb.Type, fb.StreamID, fb.Length)
	return &fb, nil
}

// flags returns the frame's flags with bits undefined for its type
// masked off, per the forward-compatibility rules of RFC 7540 section 4.1.
func (fb *FrameBase) flags() Flags {
	if !fb.Type.Known() {
		return fb.Flags
	}
	return fb.Flags & ValidFlags(fb.Type)
}

// Marshal encodes the frame header followed by the payload.
func (fb *FrameBase) Marshal() []byte {
	return append(fb.marshalHeader(), fb.Payload...)
}

func (fb *FrameBase) marshalHeader() []byte {
	b := make([]byte, HeaderSize, HeaderSize+len(fb.Payload))
	b[0] = byte(fb.Length >> 16)
	b[1] = byte(fb.Length >> 8)
	b[2] = byte(fb.Length)
	b[3] = byte(fb.Type)
	b[4] = byte(fb.Flags)
	binary.BigEndian.PutUint32(b[5:], ClearBit(fb.StreamID, 31))
	return b
}

func newFrameBase(t FrameType, flags Flags, streamID uint32, payload []byte) *FrameBase {
	return &FrameBase{
		Length:   uint32(len(payload)),
		Type:     t,
		Flags:    flags,
		StreamID: streamID,
		Payload:  payload,
	}
}
