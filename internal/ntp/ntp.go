package ntp

type TimestampEncoded = uint64

type ShortEncoded = uint32

type Mode byte

const (
	RESERVED Mode = iota
	SYMMETRIC_ACTIVE
	SYMMETRIC_PASSIVE
	CLIENT
	SERVER
	BROADCAST_SERVER
	BROADCAST_CLIENT
	RESERVED_PRIVATE_USE
)

// LeapIndicator warns of an impending leap second. NOSYNC marks a server
// whose clock is not synchronized.
type LeapIndicator byte

const (
	NOWARNING LeapIndicator = iota
	LEAP61
	LEAP59
	NOSYNC
)

const (
	Port        = 123 // NTP port number
	PacketSize  = 48  // header without extension fields
	VERSION     = 4
	DefaultPoll = 1 << 10 // seconds between polls before a server says otherwise
	MAXPOLL     = 17      // largest poll exponent honoured (36 h)
)

// Fields of a client request that are not zero.
const (
	RequestFlags     byte = 0x1B
	RequestPoll      int8 = 6
	RequestPrecision int8 = -20 // 0xEC on the wire
)
