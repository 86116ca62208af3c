// Package stream implements the lifecycle state machine of a single
// HTTP/2 stream, RFC 7540 section 5.1. It is connection-independent:
// the surrounding connection layer owns one Machine per stream, derives
// events from frame flags and drives the transitions; this package
// performs no I/O and holds no reference back to the stream or the
// connection.
package stream

import (
	"fmt"

	"github.com/vearne/h2core/http2"
)

// A HalfState tracks one direction of an open stream: whether that side
// has delivered its header block yet.
type HalfState uint8

const (
	AwaitingHeaders HalfState = iota
	Streaming
)

var halfStateName = map[HalfState]string{
	AwaitingHeaders: "AwaitingHeaders",
	Streaming:       "Streaming",
}

func (h HalfState) String() string {
	if name, ok := halfStateName[h]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN_HALF_STATE_%d", uint8(h))
}

// A CloseCause records why a stream reached Closed: both directions
// ended naturally, or a reset carried a reason.
type CloseCause uint8

const (
	CauseEndStream CloseCause = iota
	CauseLocallyReset
)

// A Kind names one of the seven lifecycle states of the RFC 7540
// section 5.1 diagram.
type Kind uint8

const (
	Idle Kind = iota
	ReservedLocal
	ReservedRemote
	Open
	HalfClosedLocal
	HalfClosedRemote
	Closed
)

var kindName = map[Kind]string{
	Idle:             "Idle",
	ReservedLocal:    "ReservedLocal",
	ReservedRemote:   "ReservedRemote",
	Open:             "Open",
	HalfClosedLocal:  "HalfClosedLocal",
	HalfClosedRemote: "HalfClosedRemote",
	Closed:           "Closed",
}

func (k Kind) String() string {
	if name, ok := kindName[k]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN_STREAM_STATE_%d", uint8(k))
}

// State is one lifecycle state. While Open it carries independent
// local and remote sub-states, because the two directions of a stream
// close independently; a flat enum would lose the half-closed
// distinction the RFC requires. State is a comparable value.
type State struct {
	kind Kind
	// local is the local half while Open, or the still-open local half
	// while HalfClosedRemote.
	local HalfState
	// remote is the remote half while Open, or the still-open remote
	// half while HalfClosedLocal.
	remote HalfState
	// cause and code are meaningful only while Closed.
	cause CloseCause
	code  http2.ErrCode
}

func idle() State { return State{kind: Idle} }

func reservedLocal() State { return State{kind: ReservedLocal} }

func reservedRemote() State { return State{kind: ReservedRemote} }

func open(local, remote HalfState) State { return State{kind: Open, local: local, remote: remote} }

func halfClosedLocal(r HalfState) State { return State{kind: HalfClosedLocal, remote: r} }

func halfClosedRemote(l HalfState) State { return State{kind: HalfClosedRemote, local: l} }

func closedEndStream() State { return State{kind: Closed, cause: CauseEndStream} }

func closedReset(c http2.ErrCode) State {
	return State{kind: Closed, cause: CauseLocallyReset, code: c}
}

func (s State) Kind() Kind { return s.kind }

// Cause is meaningful only when Kind() is Closed.
func (s State) Cause() CloseCause { return s.cause }

// ResetCode is the reason carried by the reset that closed the stream.
// Meaningful only when Cause() is CauseLocallyReset.
func (s State) ResetCode() http2.ErrCode { return s.code }

func (s State) String() string {
	switch s.kind {
	case Open:
		return fmt.Sprintf("Open(local=%v, remote=%v)", s.local, s.remote)
	case HalfClosedLocal:
		return fmt.Sprintf("HalfClosedLocal(%v)", s.remote)
	case HalfClosedRemote:
		return fmt.Sprintf("HalfClosedRemote(%v)", s.local)
	case Closed:
		if s.cause == CauseLocallyReset {
			return fmt.Sprintf("Closed(LocallyReset(%v))", s.code)
		}
		return "Closed(EndStream)"
	default:
		return s.kind.String()
	}
}

func (s State) IsIdle() bool {
	return s.kind == Idle
}

func (s State) IsClosed() bool {
	return s.kind == Closed
}

// IsReset reports whether the stream closed because of a reset, as
// opposed to a natural end-of-stream completion.
func (s State) IsReset() bool {
	return s.kind == Closed && s.cause == CauseLocallyReset
}

// IsSendClosed reports whether no further frames may be sent on the
// stream. A remotely reserved stream forecloses the send direction.
func (s State) IsSendClosed() bool {
	switch s.kind {
	case Closed, HalfClosedLocal, ReservedRemote:
		return true
	}
	return false
}

// IsRecvClosed reports whether no further frames are expected from the
// peer. A locally reserved stream forecloses the receive direction.
func (s State) IsRecvClosed() bool {
	switch s.kind {
	case Closed, HalfClosedRemote, ReservedLocal:
		return true
	}
	return false
}

// IsSendStreaming reports whether the local side has sent its header
// block and may now send DATA.
func (s State) IsSendStreaming() bool {
	switch s.kind {
	case Open, HalfClosedRemote:
		return s.local == Streaming
	}
	return false
}

// IsRecvStreaming reports whether the remote side has delivered its
// header block and DATA from the peer is legal.
func (s State) IsRecvStreaming() bool {
	switch s.kind {
	case Open, HalfClosedLocal:
		return s.remote == Streaming
	}
	return false
}

// CanRecvHeaders reports whether an incoming HEADERS frame is legal:
// exactly the states in which the remote side has not yet delivered its
// header block.
func (s State) CanRecvHeaders() bool {
	switch s.kind {
	case Idle, ReservedRemote:
		return true
	case Open, HalfClosedLocal:
		return s.remote == AwaitingHeaders
	}
	return false
}
