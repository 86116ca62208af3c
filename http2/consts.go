package http2

const (
	// ClientPreface is the string every client connection must begin with.
	// https://httpwg.org/specs/rfc7540.html#ConnectionHeader
	ClientPreface = "PRI * HTTP/2.0\r\n\r\nSM\r\n\r\n"

	ConnectionPrefaceSize = 24

	HeaderSize = 9
	LengthSize = 3

	SettingItemSize = 6
	PingPayloadSize = 8
)

const (
	// https://httpwg.org/specs/rfc7540.html#rfc.section.4.2
	DefaultMaxFrameSize = 16384
	MaxAllowedFrameSize = 1<<24 - 1

	// https://httpwg.org/specs/rfc7540.html#SettingValues
	DefaultHeaderTableSize = 4096

	// https://httpwg.org/specs/rfc7540.html#rfc.section.6.9.2
	DefaultInitialWindowSize = 65535
	MaxWindowSize            = 1<<31 - 1
)
