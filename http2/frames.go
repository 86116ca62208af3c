package http2

import (
	"encoding/binary"

	slog "github.com/vearne/simplelog"
)

// A TypedFrame is the decoded form of one frame. The set of
// implementations is closed over the ten RFC 7540 frame types plus
// FrameUnknown, which carries frames of types this package does not
// recognize (they must be ignored, not rejected).
type TypedFrame interface {
	FrameType() FrameType
	Marshal() []byte
}

// ParseFrame decodes the payload of fb into the frame structure for its
// type. Flag bits undefined for the type are masked off before any
// flag is interpreted.
func ParseFrame(fb *FrameBase) (TypedFrame, error) {
	switch fb.Type {
	case FrameTypeData:
		return ParseFrameData(fb)
	case FrameTypeHeaders:
		return ParseFrameHeaders(fb)
	case FrameTypePriority:
		return ParseFramePriority(fb)
	case FrameTypeRSTStream:
		return ParseFrameRSTStream(fb)
	case FrameTypeSettings:
		return ParseFrameSettings(fb)
	case FrameTypePushPromise:
		return ParseFramePushPromise(fb)
	case FrameTypePing:
		return ParseFramePing(fb)
	case FrameTypeGoAway:
		return ParseFrameGoAway(fb)
	case FrameTypeWindowUpdate:
		return ParseFrameWindowUpdate(fb)
	case FrameTypeContinuation:
		return ParseFrameContinuation(fb)
	default:
		slog.Debug("unknown frame type:%v, carried as FrameUnknown", fb.Type)
		return &FrameUnknown{
			StreamID: fb.StreamID,
			RawType:  fb.Type,
			Flags:    fb.Flags,
			Payload:  fb.Payload,
		}, nil
	}
}

// splitPadding strips the Pad Length field and trailing padding from the
// payload of a frame whose type defines the PADDED flag.
func splitPadding(fb *FrameBase, padded bool) (uint8, []byte, error) {
	payload := fb.Payload
	if !padded {
		return 0, payload, nil
	}
	if len(payload) < 1 {
		return 0, nil, connError(ErrCodeFrameSize, "%v frame too short for pad length", fb.Type)
	}
	padLength := payload[0]
	payload = payload[1:]
	if int(padLength) >= len(payload)+1 {
		// https://httpwg.org/specs/rfc7540.html#rfc.section.6.1
		return 0, nil, connError(ErrCodeProtocol, "padding exceeds %v frame payload", fb.Type)
	}
	return padLength, payload, nil
}

func appendPadding(b []byte, padLength uint8) []byte {
	return append(b, make([]byte, padLength)...)
}

type FrameData struct {
	StreamID  uint32
	EndStream bool
	Padded    bool
	// Frame Payload
	PadLength uint8
	Data      []byte
}

func (f *FrameData) FrameType() FrameType { return FrameTypeData }

func ParseFrameData(fb *FrameBase) (*FrameData, error) {
	if IsConnectionControl(fb.StreamID) {
		return nil, connError(ErrCodeProtocol, "DATA frame on stream 0")
	}
	var fd FrameData
	fd.StreamID = fb.StreamID

	flags := fb.flags()
	fd.EndStream = flags.Has(FlagDataEndStream)
	fd.Padded = flags.Has(FlagDataPadded)

	padLength, payload, err := splitPadding(fb, fd.Padded)
	if err != nil {
		return nil, err
	}
	fd.PadLength = padLength
	fd.Data = payload[:len(payload)-int(padLength)]
	return &fd, nil
}

func (f *FrameData) Marshal() []byte {
	var flags Flags
	payload := make([]byte, 0, 1+len(f.Data)+int(f.PadLength))
	if f.EndStream {
		flags |= FlagDataEndStream
	}
	if f.Padded {
		flags |= FlagDataPadded
		payload = append(payload, f.PadLength)
	}
	payload = append(payload, f.Data...)
	if f.Padded {
		payload = appendPadding(payload, f.PadLength)
	}
	return newFrameBase(FrameTypeData, flags, f.StreamID, payload).Marshal()
}

type FrameHeaders struct {
	StreamID   uint32
	EndStream  bool
	EndHeaders bool
	Padded     bool
	// Priority is non-nil when the frame carried the PRIORITY flag.
	Priority *PriorityParam
	// Frame Payload
	PadLength           uint8
	HeaderBlockFragment []byte
}

func (f *FrameHeaders) FrameType() FrameType { return FrameTypeHeaders }

func ParseFrameHeaders(fb *FrameBase) (*FrameHeaders, error) {
	if IsConnectionControl(fb.StreamID) {
		return nil, connError(ErrCodeProtocol, "HEADERS frame on stream 0")
	}
	var fh FrameHeaders
	fh.StreamID = fb.StreamID

	flags := fb.flags()
	fh.EndStream = flags.Has(FlagHeadersEndStream)
	fh.EndHeaders = flags.Has(FlagHeadersEndHeaders)
	fh.Padded = flags.Has(FlagHeadersPadded)

	padLength, payload, err := splitPadding(fb, fh.Padded)
	if err != nil {
		return nil, err
	}
	fh.PadLength = padLength

	// E/Stream Dependency/Weight (optional)
	if flags.Has(FlagHeadersPriority) {
		if len(payload) < 5 {
			return nil, connError(ErrCodeFrameSize, "HEADERS frame too short for priority")
		}
		p := parsePriorityParam(payload)
		if p.StreamDependency == fb.StreamID {
			// A stream cannot depend on itself.
			return nil, streamError(ErrCodeProtocol, fb.StreamID)
		}
		fh.Priority = &p
		payload = payload[5:]
	}

	if int(padLength) > len(payload) {
		return nil, connError(ErrCodeProtocol, "padding exceeds HEADERS frame payload")
	}
	fh.HeaderBlockFragment = payload[:len(payload)-int(padLength)]
	slog.Debug("ParseFrameHeaders, stream:%v, EndHeaders:%v, EndStream:%v, len(fragment):%v",
		fh.StreamID, fh.EndHeaders, fh.EndStream, len(fh.HeaderBlockFragment))
	return &fh, nil
}

func (f *FrameHeaders) Marshal() []byte {
	var flags Flags
	payload := make([]byte, 0, 6+len(f.HeaderBlockFragment)+int(f.PadLength))
	if f.EndStream {
		flags |= FlagHeadersEndStream
	}
	if f.EndHeaders {
		flags |= FlagHeadersEndHeaders
	}
	if f.Padded {
		flags |= FlagHeadersPadded
		payload = append(payload, f.PadLength)
	}
	if f.Priority != nil {
		flags |= FlagHeadersPriority
		payload = append(payload, f.Priority.marshal()...)
	}
	payload = append(payload, f.HeaderBlockFragment...)
	if f.Padded {
		payload = appendPadding(payload, f.PadLength)
	}
	return newFrameBase(FrameTypeHeaders, flags, f.StreamID, payload).Marshal()
}

type FramePriority struct {
	StreamID uint32
	Priority PriorityParam
}

func (f *FramePriority) FrameType() FrameType { return FrameTypePriority }

func ParseFramePriority(fb *FrameBase) (*FramePriority, error) {
	if IsConnectionControl(fb.StreamID) {
		return nil, connError(ErrCodeProtocol, "PRIORITY frame on stream 0")
	}
	if len(fb.Payload) != 5 {
		return nil, streamError(ErrCodeFrameSize, fb.StreamID)
	}
	p := parsePriorityParam(fb.Payload)
	if p.StreamDependency == fb.StreamID {
		return nil, streamError(ErrCodeProtocol, fb.StreamID)
	}
	return &FramePriority{StreamID: fb.StreamID, Priority: p}, nil
}

func (f *FramePriority) Marshal() []byte {
	return newFrameBase(FrameTypePriority, 0, f.StreamID, f.Priority.marshal()).Marshal()
}

type FrameRSTStream struct {
	StreamID uint32
	Code     ErrCode
}

func (f *FrameRSTStream) FrameType() FrameType { return FrameTypeRSTStream }

func ParseFrameRSTStream(fb *FrameBase) (*FrameRSTStream, error) {
	if IsConnectionControl(fb.StreamID) {
		return nil, connError(ErrCodeProtocol, "RST_STREAM frame on stream 0")
	}
	if len(fb.Payload) != 4 {
		return nil, connError(ErrCodeFrameSize, "RST_STREAM frame with length %d", len(fb.Payload))
	}
	code := ErrCode(binary.BigEndian.Uint32(fb.Payload))
	return &FrameRSTStream{StreamID: fb.StreamID, Code: code}, nil
}

func (f *FrameRSTStream) Marshal() []byte {
	payload := make([]byte, 4)
	binary.BigEndian.PutUint32(payload, uint32(f.Code))
	return newFrameBase(FrameTypeRSTStream, 0, f.StreamID, payload).Marshal()
}

type FrameSettings struct {
	Ack bool
	// Frame Payload, in wire order. Later entries for the same ID
	// override earlier ones when applied.
	Settings []Setting
}

func (f *FrameSettings) FrameType() FrameType { return FrameTypeSettings }

func ParseFrameSettings(fb *FrameBase) (*FrameSettings, error) {
	if !IsConnectionControl(fb.StreamID) {
		return nil, connError(ErrCodeProtocol, "SETTINGS frame on stream %d", fb.StreamID)
	}
	var fs FrameSettings
	fs.Ack = fb.flags().Has(FlagSettingsAck)
	if fs.Ack && len(fb.Payload) != 0 {
		return nil, connError(ErrCodeFrameSize, "SETTINGS ACK frame with payload")
	}
	if len(fb.Payload)%SettingItemSize != 0 {
		return nil, connError(ErrCodeFrameSize, "SETTINGS frame with length %d", len(fb.Payload))
	}

	// All parameters are optional
	for b := fb.Payload; len(b) > 0; b = b[SettingItemSize:] {
		s := Setting{
			ID:  SettingID(binary.BigEndian.Uint16(b)),
			Val: binary.BigEndian.Uint32(b[2:]),
		}
		if !s.ID.Known() {
			slog.Debug("unknown setting:%v", s)
		}
		fs.Settings = append(fs.Settings, s)
	}
	return &fs, nil
}

func (f *FrameSettings) Marshal() []byte {
	var flags Flags
	if f.Ack {
		flags |= FlagSettingsAck
	}
	payload := make([]byte, 0, len(f.Settings)*SettingItemSize)
	for _, s := range f.Settings {
		payload = binary.BigEndian.AppendUint16(payload, uint16(s.ID))
		payload = binary.BigEndian.AppendUint32(payload, s.Val)
	}
	return newFrameBase(FrameTypeSettings, flags, 0, payload).Marshal()
}

type FramePushPromise struct {
	StreamID   uint32
	EndHeaders bool
	Padded     bool
	// Frame Payload
	PadLength           uint8
	PromisedStreamID    uint32
	HeaderBlockFragment []byte
}

func (f *FramePushPromise) FrameType() FrameType { return FrameTypePushPromise }

func ParseFramePushPromise(fb *FrameBase) (*FramePushPromise, error) {
	if IsConnectionControl(fb.StreamID) {
		return nil, connError(ErrCodeProtocol, "PUSH_PROMISE frame on stream 0")
	}
	var fp FramePushPromise
	fp.StreamID = fb.StreamID

	flags := fb.flags()
	fp.EndHeaders = flags.Has(FlagPushPromiseEndHeaders)
	fp.Padded = flags.Has(FlagPushPromisePadded)

	padLength, payload, err := splitPadding(fb, fp.Padded)
	if err != nil {
		return nil, err
	}
	fp.PadLength = padLength

	if len(payload) < 4 {
		return nil, connError(ErrCodeFrameSize, "PUSH_PROMISE frame too short")
	}
	fp.PromisedStreamID = ClearBit(binary.BigEndian.Uint32(payload), 31)
	payload = payload[4:]

	if int(padLength) > len(payload) {
		return nil, connError(ErrCodeProtocol, "padding exceeds PUSH_PROMISE frame payload")
	}
	fp.HeaderBlockFragment = payload[:len(payload)-int(padLength)]
	return &fp, nil
}

func (f *FramePushPromise) Marshal() []byte {
	var flags Flags
	payload := make([]byte, 0, 5+len(f.HeaderBlockFragment)+int(f.PadLength))
	if f.EndHeaders {
		flags |= FlagPushPromiseEndHeaders
	}
	if f.Padded {
		flags |= FlagPushPromisePadded
		payload = append(payload, f.PadLength)
	}
	payload = binary.BigEndian.AppendUint32(payload, ClearBit(f.PromisedStreamID, 31))
	payload = append(payload, f.HeaderBlockFragment...)
	if f.Padded {
		payload = appendPadding(payload, f.PadLength)
	}
	return newFrameBase(FrameTypePushPromise, flags, f.StreamID, payload).Marshal()
}

type FramePing struct {
	Ack bool
	// Frame Payload
	Data [PingPayloadSize]byte
}

func (f *FramePing) FrameType() FrameType { return FrameTypePing }

func ParseFramePing(fb *FrameBase) (*FramePing, error) {
	if !IsConnectionControl(fb.StreamID) {
		return nil, connError(ErrCodeProtocol, "PING frame on stream %d", fb.StreamID)
	}
	if len(fb.Payload) != PingPayloadSize {
		return nil, connError(ErrCodeFrameSize, "PING frame with length %d", len(fb.Payload))
	}
	var fp FramePing
	fp.Ack = fb.flags().Has(FlagPingAck)
	copy(fp.Data[:], fb.Payload)
	return &fp, nil
}

func (f *FramePing) Marshal() []byte {
	var flags Flags
	if f.Ack {
		flags |= FlagPingAck
	}
	return newFrameBase(FrameTypePing, flags, 0, f.Data[:]).Marshal()
}

type FrameGoAway struct {
	LastStreamID uint32
	Code         ErrCode
	DebugData    []byte
}

func (f *FrameGoAway) FrameType() FrameType { return FrameTypeGoAway }

func ParseFrameGoAway(fb *FrameBase) (*FrameGoAway, error) {
	if !IsConnectionControl(fb.StreamID) {
		return nil, connError(ErrCodeProtocol, "GOAWAY frame on stream %d", fb.StreamID)
	}
	if len(fb.Payload) < 8 {
		return nil, connError(ErrCodeFrameSize, "GOAWAY frame with length %d", len(fb.Payload))
	}
	return &FrameGoAway{
		LastStreamID: ClearBit(binary.BigEndian.Uint32(fb.Payload), 31),
		Code:         ErrCode(binary.BigEndian.Uint32(fb.Payload[4:])),
		DebugData:    fb.Payload[8:],
	}, nil
}

func (f *FrameGoAway) Marshal() []byte {
	payload := make([]byte, 8, 8+len(f.DebugData))
	binary.BigEndian.PutUint32(payload, ClearBit(f.LastStreamID, 31))
	binary.BigEndian.PutUint32(payload[4:], uint32(f.Code))
	payload = append(payload, f.DebugData...)
	return newFrameBase(FrameTypeGoAway, 0, 0, payload).Marshal()
}

type FrameWindowUpdate struct {
	StreamID uint32
	// Increment is the 31-bit window size increment. Zero is a protocol
	// error: connection-scoped on stream 0, stream-scoped otherwise.
	Increment uint32
}

func (f *FrameWindowUpdate) FrameType() FrameType { return FrameTypeWindowUpdate }

func ParseFrameWindowUpdate(fb *FrameBase) (*FrameWindowUpdate, error) {
	if len(fb.Payload) != 4 {
		return nil, connError(ErrCodeFrameSize, "WINDOW_UPDATE frame with length %d", len(fb.Payload))
	}
	increment := ClearBit(binary.BigEndian.Uint32(fb.Payload), 31)
	if increment == 0 {
		// https://httpwg.org/specs/rfc7540.html#rfc.section.6.9
		if IsConnectionControl(fb.StreamID) {
			return nil, connError(ErrCodeProtocol, "WINDOW_UPDATE frame with zero increment on stream 0")
		}
		return nil, streamError(ErrCodeProtocol, fb.StreamID)
	}
	return &FrameWindowUpdate{StreamID: fb.StreamID, Increment: increment}, nil
}

func (f *FrameWindowUpdate) Marshal() []byte {
	payload := make([]byte, 4)
	binary.BigEndian.PutUint32(payload, ClearBit(f.Increment, 31))
	return newFrameBase(FrameTypeWindowUpdate, 0, f.StreamID, payload).Marshal()
}

type FrameContinuation struct {
	StreamID            uint32
	EndHeaders          bool
	HeaderBlockFragment []byte
}

func (f *FrameContinuation) FrameType() FrameType { return FrameTypeContinuation }

func ParseFrameContinuation(fb *FrameBase) (*FrameContinuation, error) {
	if IsConnectionControl(fb.StreamID) {
		return nil, connError(ErrCodeProtocol, "CONTINUATION frame on stream 0")
	}
	return &FrameContinuation{
		StreamID:            fb.StreamID,
		EndHeaders:          fb.flags().Has(FlagContinuationEndHeaders),
		HeaderBlockFragment: fb.Payload,
	}, nil
}

func (f *FrameContinuation) Marshal() []byte {
	var flags Flags
	if f.EndHeaders {
		flags |= FlagContinuationEndHeaders
	}
	return newFrameBase(FrameTypeContinuation, flags, f.StreamID, f.HeaderBlockFragment).Marshal()
}

// FrameUnknown preserves a frame of a type this package does not know,
// raw flags and payload included, so it round-trips unchanged.
type FrameUnknown struct {
	StreamID uint32
	RawType  FrameType
	Flags    Flags
	Payload  []byte
}

func (f *FrameUnknown) FrameType() FrameType { return f.RawType }

func (f *FrameUnknown) Marshal() []byte {
	return newFrameBase(f.RawType, f.Flags, f.StreamID, f.Payload).Marshal()
}
