package http2

import "fmt"

// A FrameType is the 8-bit type field of a frame header.
// https://httpwg.org/specs/rfc7540.html#rfc.section.6
type FrameType uint8

const (
	FrameTypeData         FrameType = 0x0
	FrameTypeHeaders      FrameType = 0x1
	FrameTypePriority     FrameType = 0x2
	FrameTypeRSTStream    FrameType = 0x3
	FrameTypeSettings     FrameType = 0x4
	FrameTypePushPromise  FrameType = 0x5
	FrameTypePing         FrameType = 0x6
	FrameTypeGoAway       FrameType = 0x7
	FrameTypeWindowUpdate FrameType = 0x8
	FrameTypeContinuation FrameType = 0x9
)

var frameTypeName = map[FrameType]string{
	FrameTypeData:         "DATA",
	FrameTypeHeaders:      "HEADERS",
	FrameTypePriority:     "PRIORITY",
	FrameTypeRSTStream:    "RST_STREAM",
	FrameTypeSettings:     "SETTINGS",
	FrameTypePushPromise:  "PUSH_PROMISE",
	FrameTypePing:         "PING",
	FrameTypeGoAway:       "GOAWAY",
	FrameTypeWindowUpdate: "WINDOW_UPDATE",
	FrameTypeContinuation: "CONTINUATION",
}

// Known reports whether t is one of the frame types defined by RFC 7540.
// Unknown types are carried verbatim rather than rejected: endpoints must
// ignore frames of unknown types.
func (t FrameType) Known() bool {
	_, ok := frameTypeName[t]
	return ok
}

func (t FrameType) String() string {
	if name, ok := frameTypeName[t]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN_FRAME_TYPE_%d", uint8(t))
}

// Flags is the 8-bit flags field of a frame header. The meaning of each
// bit depends on the frame type.
type Flags uint8

func (f Flags) Has(v Flags) bool {
	return f&v != 0
}

const (
	FlagDataEndStream Flags = 0x1
	FlagDataPadded    Flags = 0x8

	FlagHeadersEndStream  Flags = 0x1
	FlagHeadersEndHeaders Flags = 0x4
	FlagHeadersPadded     Flags = 0x8
	FlagHeadersPriority   Flags = 0x20

	FlagSettingsAck Flags = 0x1

	FlagPushPromiseEndHeaders Flags = 0x4
	FlagPushPromisePadded     Flags = 0x8

	FlagPingAck Flags = 0x1

	FlagContinuationEndHeaders Flags = 0x4
)

var validFlags = map[FrameType]Flags{
	FrameTypeData:         FlagDataEndStream | FlagDataPadded,
	FrameTypeHeaders:      FlagHeadersEndStream | FlagHeadersEndHeaders | FlagHeadersPadded | FlagHeadersPriority,
	FrameTypePriority:     0,
	FrameTypeRSTStream:    0,
	FrameTypeSettings:     FlagSettingsAck,
	FrameTypePushPromise:  FlagPushPromiseEndHeaders | FlagPushPromisePadded,
	FrameTypePing:         FlagPingAck,
	FrameTypeGoAway:       0,
	FrameTypeWindowUpdate: 0,
	FrameTypeContinuation: FlagContinuationEndHeaders,
}

// ValidFlags returns the mask of flag bits defined for frames of type t.
// Bits outside the mask carry no meaning for t and must be ignored.
func ValidFlags(t FrameType) Flags {
	return validFlags[t]
}

// AllowsPadding reports whether frames of type t define the PADDED flag
// and a Pad Length field.
func AllowsPadding(t FrameType) bool {
	switch t {
	case FrameTypeData, FrameTypeHeaders, FrameTypePushPromise:
		return true
	}
	return false
}

// Stream 0 carries frames that apply to the connection as a whole.
func IsConnectionControl(streamID uint32) bool {
	return streamID == 0
}

// Client-initiated streams use odd identifiers.
func IsClientInitiated(streamID uint32) bool {
	return streamID%2 == 1
}

// Server-initiated streams use even, nonzero identifiers.
func IsServerInitiated(streamID uint32) bool {
	return streamID != 0 && streamID%2 == 0
}
