package stream

import (
	slog "github.com/vearne/simplelog"

	"github.com/vearne/h2core/http2"
)

// Machine owns the state cell of one stream. Transitions either commit
// and return nil, or leave the state untouched and return a
// *http2.ConnectionError with PROTOCOL_ERROR; no transition is ever
// partially applied. Calls for a single stream must be serialized by
// the caller; distinct streams are fully independent.
type Machine struct {
	state State
}

// NewMachine returns a machine in the Idle state.
func NewMachine() *Machine {
	return &Machine{state: idle()}
}

// State returns the current lifecycle state.
func (m *Machine) State() State {
	return m.state
}

func (m *Machine) transition(next State) {
	slog.Debug("stream state, fromState:[%v] -> toState:[%v]", m.state, next)
	m.state = next
}

func (m *Machine) invalid(event string) error {
	return &http2.ConnectionError{
		Code:   http2.ErrCodeProtocol,
		Reason: "invalid " + event + " in state " + m.state.String(),
	}
}

// ReserveLocal marks the stream as promised to the peer via a sent
// PUSH_PROMISE.
func (m *Machine) ReserveLocal() error {
	if m.state.kind != Idle {
		return m.invalid("RESERVE_LOCAL")
	}
	m.transition(reservedLocal())
	return nil
}

// ReserveRemote marks the stream as promised by the peer via a
// received PUSH_PROMISE.
func (m *Machine) ReserveRemote() error {
	if m.state.kind != Idle {
		return m.invalid("RESERVE_REMOTE")
	}
	m.transition(reservedRemote())
	return nil
}

// SendOpen records a locally sent HEADERS frame, optionally carrying
// END_STREAM, which folds the corresponding close into the same
// transition.
func (m *Machine) SendOpen(endStream bool) error {
	s := m.state
	var next State
	switch {
	case s.kind == Idle:
		if endStream {
			next = halfClosedLocal(AwaitingHeaders)
		} else {
			next = open(Streaming, AwaitingHeaders)
		}
	case s.kind == Open && s.local == AwaitingHeaders:
		if endStream {
			next = halfClosedLocal(s.remote)
		} else {
			next = open(Streaming, s.remote)
		}
	case s.kind == ReservedLocal || s.kind == ReservedRemote:
		if endStream {
			next = closedEndStream()
		} else {
			next = open(Streaming, AwaitingHeaders)
		}
	case s.kind == HalfClosedRemote && s.local == AwaitingHeaders:
		if endStream {
			next = closedEndStream()
		} else {
			next = halfClosedRemote(Streaming)
		}
	default:
		return m.invalid("SEND_OPEN")
	}
	m.transition(next)
	return nil
}

// RecvOpen records a received HEADERS frame. It mirrors SendOpen with
// the local and remote sides swapped.
func (m *Machine) RecvOpen(endStream bool) error {
	s := m.state
	var next State
	switch {
	case s.kind == Idle:
		if endStream {
			next = halfClosedRemote(AwaitingHeaders)
		} else {
			next = open(AwaitingHeaders, Streaming)
		}
	case s.kind == Open && s.remote == AwaitingHeaders:
		if endStream {
			next = halfClosedRemote(s.local)
		} else {
			next = open(s.local, Streaming)
		}
	case s.kind == ReservedRemote || s.kind == ReservedLocal:
		if endStream {
			next = closedEndStream()
		} else {
			next = open(AwaitingHeaders, Streaming)
		}
	case s.kind == HalfClosedLocal && s.remote == AwaitingHeaders:
		if endStream {
			next = closedEndStream()
		} else {
			next = halfClosedLocal(Streaming)
		}
	default:
		return m.invalid("RECV_OPEN")
	}
	m.transition(next)
	return nil
}

// SendClose ends the local direction of the stream.
func (m *Machine) SendClose() error {
	s := m.state
	switch s.kind {
	case Open:
		m.transition(halfClosedLocal(s.remote))
	case HalfClosedRemote:
		m.transition(closedEndStream())
	default:
		return m.invalid("SEND_CLOSE")
	}
	return nil
}

// RecvClose ends the remote direction of the stream.
func (m *Machine) RecvClose() error {
	s := m.state
	switch s.kind {
	case Open:
		m.transition(halfClosedRemote(s.local))
	case HalfClosedLocal:
		m.transition(closedEndStream())
	default:
		return m.invalid("RECV_CLOSE")
	}
	return nil
}

// RecvReset records a received RST_STREAM. A reset arriving on an
// already closed stream is absorbed when it was not queued behind
// other frames: the connection layer may have finalized the stream
// before observing an in-flight reset. It never fails.
func (m *Machine) RecvReset(code http2.ErrCode, queued bool) {
	if m.state.kind == Closed && !queued {
		slog.Debug("late RST_STREAM(%v) on %v ignored", code, m.state)
		return
	}
	m.transition(closedReset(code))
}

// SetReset closes the stream with a reset reason unconditionally, for
// a locally initiated RST_STREAM.
func (m *Machine) SetReset(code http2.ErrCode) {
	m.transition(closedReset(code))
}
