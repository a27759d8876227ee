package ntp

import (
	"time"
)

const (
	EraLength     int64 = 4_294_967_296 // 2^32
	UnixEraOffset int64 = 2_208_988_800 // 1970 - 1900 in seconds
)

// NTPSecondsToUnix converts the seconds half of an NTP timestamp (era 0) to
// seconds since the Unix epoch.
func NTPSecondsToUnix(seconds uint32) int64 {
	return int64(seconds) - UnixEraOffset
}

// UnixToNTPSeconds is the inverse of NTPSecondsToUnix.
func UnixToNTPSeconds(epoch int64) uint32 {
	return uint32(epoch + UnixEraOffset)
}

func TimeToNTPTimestampEncoded(t time.Time) TimestampEncoded {
	seconds := uint64(t.Unix() + UnixEraOffset)
	fraction := uint64(t.Nanosecond()) * uint64(EraLength) / 1e9
	return TimestampEncoded(seconds<<32 | fraction&0xffffffff)
}

func NTPTimestampToTime(ntpTimestamp TimestampEncoded) time.Time {
	Sec := int64(ntpTimestamp>>32) - UnixEraOffset
	Nsec := int64((ntpTimestamp & 0xffffffff) * 1e9 >> 32)
	return time.Unix(Sec, Nsec)
}

// PollInterval turns a poll exponent from a server reply into the time to
// wait before the next query. Zero means the server did not say, so the
// default applies; exponents past MAXPOLL are clamped.
func PollInterval(poll int8) time.Duration {
	if poll == 0 {
		return DefaultPoll * time.Second
	}
	exponent := uint8(poll)
	if exponent > MAXPOLL {
		exponent = MAXPOLL
	}
	return time.Duration(int64(1)<<exponent) * time.Second
}
