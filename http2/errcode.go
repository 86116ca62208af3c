package http2

import "fmt"

// An ErrCode is an error code carried by RST_STREAM and GOAWAY frames.
// https://httpwg.org/specs/rfc7540.html#ErrorCodes
type ErrCode uint32

const (
	ErrCodeNo                 ErrCode = 0x0
	ErrCodeProtocol           ErrCode = 0x1
	ErrCodeInternal           ErrCode = 0x2
	ErrCodeFlowControl        ErrCode = 0x3
	ErrCodeSettingsTimeout    ErrCode = 0x4
	ErrCodeStreamClosed       ErrCode = 0x5
	ErrCodeFrameSize          ErrCode = 0x6
	ErrCodeRefusedStream      ErrCode = 0x7
	ErrCodeCancel             ErrCode = 0x8
	ErrCodeCompression        ErrCode = 0x9
	ErrCodeConnect            ErrCode = 0xa
	ErrCodeEnhanceYourCalm    ErrCode = 0xb
	ErrCodeInadequateSecurity ErrCode = 0xc
	ErrCodeHTTP11Required     ErrCode = 0xd
)

var errCodeName = map[ErrCode]string{
	ErrCodeNo:                 "NO_ERROR",
	ErrCodeProtocol:           "PROTOCOL_ERROR",
	ErrCodeInternal:           "INTERNAL_ERROR",
	ErrCodeFlowControl:        "FLOW_CONTROL_ERROR",
	ErrCodeSettingsTimeout:    "SETTINGS_TIMEOUT",
	ErrCodeStreamClosed:       "STREAM_CLOSED",
	ErrCodeFrameSize:          "FRAME_SIZE_ERROR",
	ErrCodeRefusedStream:      "REFUSED_STREAM",
	ErrCodeCancel:             "CANCEL",
	ErrCodeCompression:        "COMPRESSION_ERROR",
	ErrCodeConnect:            "CONNECT_ERROR",
	ErrCodeEnhanceYourCalm:    "ENHANCE_YOUR_CALM",
	ErrCodeInadequateSecurity: "INADEQUATE_SECURITY",
	ErrCodeHTTP11Required:     "HTTP_1_1_REQUIRED",
}

// Known reports whether the code is one of the codes RFC 7540 defines.
// Unknown codes must be treated as equivalent to INTERNAL_ERROR but the
// raw value is preserved so it round-trips on the wire.
func (e ErrCode) Known() bool {
	_, ok := errCodeName[e]
	return ok
}

func (e ErrCode) String() string {
	if name, ok := errCodeName[e]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN_ERROR_CODE_%d", uint32(e))
}

// A ConnectionError is fatal to the whole connection. On receiving one
// the caller must send a GOAWAY frame and terminate the connection.
// https://httpwg.org/specs/rfc7540.html#rfc.section.5.4.1
type ConnectionError struct {
	Code   ErrCode
	Reason string
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error (%v): %s", e.Code, e.Reason)
}

// A StreamError terminates a single stream. The caller must send a
// RST_STREAM frame carrying the code and tear down only that stream.
type StreamError struct {
	Code     ErrCode
	StreamID uint32
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("stream error on stream %d: %v", e.StreamID, e.Code)
}

func connError(code ErrCode, format string, args ...interface{}) *ConnectionError {
	return &ConnectionError{Code: code, Reason: fmt.Sprintf(format, args...)}
}

func streamError(code ErrCode, streamID uint32) *StreamError {
	return &StreamError{Code: code, StreamID: streamID}
}
