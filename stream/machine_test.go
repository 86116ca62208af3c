package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vearne/h2core/http2"
)

func TestRequestResponseLifecycle(t *testing.T) {
	m := NewMachine()
	assert.True(t, m.State().IsIdle())
	assert.True(t, m.State().CanRecvHeaders())

	// send HEADERS
	assert.Nil(t, m.SendOpen(false))
	assert.Equal(t, Open, m.State().Kind())
	assert.True(t, m.State().IsSendStreaming())
	assert.False(t, m.State().IsRecvStreaming())
	assert.True(t, m.State().CanRecvHeaders())

	// receive HEADERS
	assert.Nil(t, m.RecvOpen(false))
	assert.True(t, m.State().IsRecvStreaming())
	assert.False(t, m.State().CanRecvHeaders())

	// send END_STREAM
	assert.Nil(t, m.SendClose())
	assert.Equal(t, HalfClosedLocal, m.State().Kind())
	assert.True(t, m.State().IsSendClosed())
	assert.True(t, m.State().IsRecvStreaming())

	// receive END_STREAM
	assert.Nil(t, m.RecvClose())
	assert.True(t, m.State().IsClosed())
	assert.False(t, m.State().IsReset())
	assert.Equal(t, CauseEndStream, m.State().Cause())
}

func TestSendOpenEndStream(t *testing.T) {
	m := NewMachine()

	assert.Nil(t, m.SendOpen(true))
	assert.Equal(t, HalfClosedLocal, m.State().Kind())
	assert.Equal(t, "HalfClosedLocal(AwaitingHeaders)", m.State().String())
	assert.True(t, m.State().IsSendClosed())
	assert.True(t, m.State().CanRecvHeaders())

	assert.Nil(t, m.RecvOpen(true))
	assert.True(t, m.State().IsClosed())
	assert.False(t, m.State().IsReset())
}

// The scenario of a pushed stream: reserve, open, close the local
// side, then the peer finishes with END_STREAM.
func TestReservedRemoteLifecycle(t *testing.T) {
	m := NewMachine()

	assert.Nil(t, m.ReserveRemote())
	assert.Equal(t, ReservedRemote, m.State().Kind())
	assert.True(t, m.State().IsSendClosed())
	assert.True(t, m.State().CanRecvHeaders())

	assert.Nil(t, m.SendOpen(false))
	assert.Equal(t, "Open(local=Streaming, remote=AwaitingHeaders)", m.State().String())

	assert.Nil(t, m.SendClose())
	assert.Equal(t, "HalfClosedLocal(AwaitingHeaders)", m.State().String())

	assert.Nil(t, m.RecvOpen(true))
	assert.True(t, m.State().IsClosed())
	assert.False(t, m.State().IsReset())
	assert.Equal(t, CauseEndStream, m.State().Cause())
}

func TestReserveLocal(t *testing.T) {
	m := NewMachine()

	assert.Nil(t, m.ReserveLocal())
	assert.Equal(t, ReservedLocal, m.State().Kind())
	assert.True(t, m.State().IsRecvClosed())
	assert.False(t, m.State().CanRecvHeaders())

	// HEADERS with END_STREAM closes a reserved stream outright.
	assert.Nil(t, m.SendOpen(true))
	assert.True(t, m.State().IsClosed())
}

func TestHalfClosedRemoteSendOpen(t *testing.T) {
	m := NewMachine()
	assert.Nil(t, m.RecvOpen(true))
	assert.Equal(t, HalfClosedRemote, m.State().Kind())
	assert.True(t, m.State().IsRecvClosed())

	assert.Nil(t, m.SendOpen(false))
	assert.Equal(t, "HalfClosedRemote(Streaming)", m.State().String())
	assert.True(t, m.State().IsSendStreaming())

	assert.Nil(t, m.SendClose())
	assert.True(t, m.State().IsClosed())
}

// Invalid transitions must fail with PROTOCOL_ERROR and leave the
// stored state untouched.
func TestInvalidTransitions(t *testing.T) {
	cases := []struct {
		name    string
		prepare func(m *Machine)
		event   func(m *Machine) error
	}{
		{"send_close on Idle", func(m *Machine) {}, (*Machine).SendClose},
		{"recv_close on Idle", func(m *Machine) {}, (*Machine).RecvClose},
		{"reserve_local on Open", func(m *Machine) {
			_ = m.SendOpen(false)
		}, (*Machine).ReserveLocal},
		{"reserve_remote on Closed", func(m *Machine) {
			m.SetReset(http2.ErrCodeCancel)
		}, (*Machine).ReserveRemote},
		{"send_open twice", func(m *Machine) {
			_ = m.SendOpen(false)
		}, func(m *Machine) error { return m.SendOpen(false) }},
		{"recv_open on half closed remote", func(m *Machine) {
			_ = m.RecvOpen(true)
		}, func(m *Machine) error { return m.RecvOpen(false) }},
		{"send_close on half closed local", func(m *Machine) {
			_ = m.SendOpen(true)
		}, (*Machine).SendClose},
		{"recv_close on closed", func(m *Machine) {
			_ = m.SendOpen(true)
			_ = m.RecvOpen(true)
		}, (*Machine).RecvClose},
		{"send_open on reserved then closed", func(m *Machine) {
			_ = m.ReserveLocal()
			_ = m.SendOpen(true)
		}, func(m *Machine) error { return m.SendOpen(false) }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMachine()
			tc.prepare(m)
			before := m.State()

			err := tc.event(m)
			if err == nil {
				t.Fatalf("expected error, state:%v", m.State())
			}
			connErr, ok := err.(*http2.ConnectionError)
			if !ok {
				t.Fatalf("expected *http2.ConnectionError, got %T", err)
			}
			if connErr.Code != http2.ErrCodeProtocol {
				t.Errorf("expect:%v, actual:%v", http2.ErrCodeProtocol, connErr.Code)
			}
			if m.State() != before {
				t.Errorf("state changed by failed transition: %v -> %v", before, m.State())
			}
		})
	}
}

func TestSetReset(t *testing.T) {
	prepares := map[string]func(m *Machine){
		"idle":             func(m *Machine) {},
		"reserved":         func(m *Machine) { _ = m.ReserveRemote() },
		"open":             func(m *Machine) { _ = m.SendOpen(false) },
		"half closed":      func(m *Machine) { _ = m.SendOpen(true) },
		"closed end":       func(m *Machine) { _ = m.SendOpen(true); _ = m.RecvOpen(true) },
		"already reset":    func(m *Machine) { m.SetReset(http2.ErrCodeNo) },
		"open both halves": func(m *Machine) { _ = m.SendOpen(false); _ = m.RecvOpen(false) },
	}

	for name, prepare := range prepares {
		t.Run(name, func(t *testing.T) {
			m := NewMachine()
			prepare(m)

			m.SetReset(http2.ErrCodeCancel)
			assert.True(t, m.State().IsClosed())
			assert.True(t, m.State().IsReset())
			assert.Equal(t, CauseLocallyReset, m.State().Cause())
			assert.Equal(t, http2.ErrCodeCancel, m.State().ResetCode())
		})
	}
}

func TestRecvReset(t *testing.T) {
	// A late reset on an already closed stream is absorbed when it was
	// not queued.
	m := NewMachine()
	assert.Nil(t, m.SendOpen(true))
	assert.Nil(t, m.RecvOpen(true))
	m.RecvReset(http2.ErrCodeCancel, false)
	assert.False(t, m.State().IsReset())
	assert.Equal(t, CauseEndStream, m.State().Cause())

	// A queued reset closes again with the reset cause.
	m.RecvReset(http2.ErrCodeCancel, true)
	assert.True(t, m.State().IsReset())
	assert.Equal(t, http2.ErrCodeCancel, m.State().ResetCode())

	// On a live stream the reset always wins.
	m = NewMachine()
	assert.Nil(t, m.RecvOpen(false))
	m.RecvReset(http2.ErrCodeRefusedStream, false)
	assert.True(t, m.State().IsReset())
	assert.Equal(t, http2.ErrCodeRefusedStream, m.State().ResetCode())
}

func TestStateString(t *testing.T) {
	m := NewMachine()
	assert.Equal(t, "Idle", m.State().String())

	_ = m.SendOpen(false)
	assert.Equal(t, "Open(local=Streaming, remote=AwaitingHeaders)", m.State().String())

	m.SetReset(http2.ErrCodeEnhanceYourCalm)
	assert.Equal(t, "Closed(LocallyReset(ENHANCE_YOUR_CALM))", m.State().String())
}
