package http2

import (
	"fmt"

	slog "github.com/vearne/simplelog"
)

// A SettingID is an HTTP/2 setting as defined in
// https://httpwg.org/specs/rfc7540.html#iana-settings
type SettingID uint16

const (
	SettingHeaderTableSize      SettingID = 0x1
	SettingEnablePush           SettingID = 0x2
	SettingMaxConcurrentStreams SettingID = 0x3
	SettingInitialWindowSize    SettingID = 0x4
	SettingMaxFrameSize         SettingID = 0x5
	SettingMaxHeaderListSize    SettingID = 0x6
)

var settingName = map[SettingID]string{
	SettingHeaderTableSize:      "HEADER_TABLE_SIZE",
	SettingEnablePush:           "ENABLE_PUSH",
	SettingMaxConcurrentStreams: "MAX_CONCURRENT_STREAMS",
	SettingInitialWindowSize:    "INITIAL_WINDOW_SIZE",
	SettingMaxFrameSize:         "MAX_FRAME_SIZE",
	SettingMaxHeaderListSize:    "MAX_HEADER_LIST_SIZE",
}

// Known reports whether the ID is one of the six settings RFC 7540
// defines. Unknown IDs are decoded and then ignored on apply.
func (s SettingID) Known() bool {
	_, ok := settingName[s]
	return ok
}

func (s SettingID) String() string {
	if v, ok := settingName[s]; ok {
		return v
	}
	return fmt.Sprintf("UNKNOWN_SETTING_%d", uint16(s))
}

// Setting is a setting parameter: which setting it is, and its value.
type Setting struct {
	ID  SettingID
	Val uint32
}

func (s Setting) String() string {
	return fmt.Sprintf("[%v = %d]", s.ID, s.Val)
}

// Validate checks the value constraints of RFC 7540 section 6.5.2.
// A violation is always fatal to the connection.
func (s Setting) Validate() error {
	switch s.ID {
	case SettingEnablePush:
		if s.Val != 0 && s.Val != 1 {
			return connError(ErrCodeProtocol, "ENABLE_PUSH must be 0 or 1, got %d", s.Val)
		}
	case SettingInitialWindowSize:
		if s.Val > MaxWindowSize {
			return connError(ErrCodeFlowControl, "INITIAL_WINDOW_SIZE %d exceeds maximum window size", s.Val)
		}
	case SettingMaxFrameSize:
		if s.Val < DefaultMaxFrameSize || s.Val > MaxAllowedFrameSize {
			return connError(ErrCodeProtocol, "MAX_FRAME_SIZE %d outside [16384, 16777215]", s.Val)
		}
	}
	// HEADER_TABLE_SIZE, MAX_CONCURRENT_STREAMS and MAX_HEADER_LIST_SIZE
	// accept any value, as do unknown settings.
	return nil
}

// ValidateSettings checks a decoded settings list in wire order and
// returns the first violation, or nil if the whole frame is acceptable.
func ValidateSettings(list []Setting) error {
	for _, s := range list {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Settings is the record of negotiable connection parameters. A nil
// pointer field means the parameter is unbounded.
type Settings struct {
	HeaderTableSize      uint32
	EnablePush           bool
	MaxConcurrentStreams *uint32
	InitialWindowSize    uint32
	MaxFrameSize         uint32
	MaxHeaderListSize    *uint32
}

// DefaultSettings returns the initial values of RFC 7540 section 6.5.2.
func DefaultSettings() Settings {
	return Settings{
		HeaderTableSize:   DefaultHeaderTableSize,
		EnablePush:        true,
		InitialWindowSize: DefaultInitialWindowSize,
		MaxFrameSize:      DefaultMaxFrameSize,
	}
}

// Apply folds a decoded settings list into the record, in order. Later
// entries for the same ID win, matching the ordered body of a SETTINGS
// frame. Unknown IDs are ignored. Values are assumed to have passed
// ValidateSettings.
func (s Settings) Apply(list []Setting) Settings {
	for _, item := range list {
		switch item.ID {
		case SettingHeaderTableSize:
			s.HeaderTableSize = item.Val
		case SettingEnablePush:
			s.EnablePush = item.Val == 1
		case SettingMaxConcurrentStreams:
			v := item.Val
			s.MaxConcurrentStreams = &v
		case SettingInitialWindowSize:
			s.InitialWindowSize = item.Val
		case SettingMaxFrameSize:
			s.MaxFrameSize = item.Val
		case SettingMaxHeaderListSize:
			v := item.Val
			s.MaxHeaderListSize = &v
		default:
			slog.Debug("ignore:%v", item.ID)
		}
	}
	return s
}
