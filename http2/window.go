package http2

// A WindowSize is a flow-control window balance. It is signed: a
// SETTINGS-driven decrease can legally drive a window negative until
// the peer consumes the excess. It must never be treated as unsigned.
type WindowSize = int

// WindowOverflow reports whether a window has been pushed past the
// 2^31-1 maximum by an increment, by testing bit 31 of the value's
// unsigned reinterpretation. The caller must run this check after every
// WINDOW_UPDATE or settings-driven rebase and answer a true result with
// FLOW_CONTROL_ERROR (connection-scoped for the connection window,
// stream-scoped for a stream window).
func WindowOverflow(size WindowSize) bool {
	return TestBit(uint32(size), 31)
}
