package ntp

import (
	"encoding/binary"
	"errors"
)

var ErrPacketSize = errors.New("ntp: packet shorter than 48 bytes")

// Packet is the fixed NTP header. Timestamps keep their on-wire 32.32
// fixed-point form; Encode and DecodePacket do all byte order conversion.
type Packet struct {
	Flags     byte /* leap indicator, version and mode */
	Stratum   byte
	Poll      int8
	Precision int8
	Rootdelay ShortEncoded
	Rootdisp  ShortEncoded
	Refid     ShortEncoded
	Reftime   TimestampEncoded
	Org       TimestampEncoded
	Rec       TimestampEncoded
	Xmt       TimestampEncoded
}

// NewRequest returns a client request whose reference ID carries refid,
// an IPv4 address held as a big-endian integer.
func NewRequest(refid uint32) Packet {
	return Packet{
		Flags:     RequestFlags,
		Poll:      RequestPoll,
		Precision: RequestPrecision,
		Refid:     refid,
	}
}

func (p Packet) Leap() LeapIndicator { return LeapIndicator(p.Flags >> 6) }
func (p Packet) Version() byte       { return (p.Flags >> 3) & 0b111 }
func (p Packet) Mode() Mode          { return Mode(p.Flags & 0b111) }

// TransmitSeconds is the integer part of the server transmit timestamp.
func (p Packet) TransmitSeconds() uint32 {
	return uint32(p.Xmt >> 32)
}

// Encode lays the packet out in network order into a new 48 byte slice.
func (p Packet) Encode() []byte {
	b := make([]byte, PacketSize)
	p.EncodeTo(b)
	return b
}

// EncodeTo writes the packet into b, which must hold at least 48 bytes.
func (p Packet) EncodeTo(b []byte) {
	_ = b[PacketSize-1]
	b[0] = p.Flags
	b[1] = p.Stratum
	b[2] = byte(p.Poll)
	b[3] = byte(p.Precision)
	binary.BigEndian.PutUint32(b[4:8], p.Rootdelay)
	binary.BigEndian.PutUint32(b[8:12], p.Rootdisp)
	binary.BigEndian.PutUint32(b[12:16], p.Refid)
	binary.BigEndian.PutUint64(b[16:24], p.Reftime)
	binary.BigEndian.PutUint64(b[24:32], p.Org)
	binary.BigEndian.PutUint64(b[32:40], p.Rec)
	binary.BigEndian.PutUint64(b[40:48], p.Xmt)
}

func DecodePacket(encoded []byte) (Packet, error) {
	if len(encoded) < PacketSize {
		return Packet{}, ErrPacketSize
	}
	return Packet{
		Flags:     encoded[0],
		Stratum:   encoded[1],
		Poll:      int8(encoded[2]),
		Precision: int8(encoded[3]),
		Rootdelay: binary.BigEndian.Uint32(encoded[4:8]),
		Rootdisp:  binary.BigEndian.Uint32(encoded[8:12]),
		Refid:     binary.BigEndian.Uint32(encoded[12:16]),
		Reftime:   binary.BigEndian.Uint64(encoded[16:24]),
		Org:       binary.BigEndian.Uint64(encoded[24:32]),
		Rec:       binary.BigEndian.Uint64(encoded[32:40]),
		Xmt:       binary.BigEndian.Uint64(encoded[40:48]),
	}, nil
}
