package ntpc

import (
	"errors"
	"io"
	"net"
	"net/netip"
	"time"

	"golang.org/x/net/ipv4"
)

// UDPSocket is the Transport used against real servers. It is connected to
// one remote address, so reads only ever see that peer's datagrams.
type UDPSocket struct {
	// TOS, when non-zero, is set as the IPv4 type-of-service byte of every
	// binding.
	TOS int

	conn   *net.UDPConn
	addr   netip.Addr
	parsed int // bytes reported by the last ParsePacket and not read since

	// Only filled by peekAvailable, on platforms without a queued-bytes ioctl.
	pending []byte
	scratch []byte
}

func NewUDPSocket() *UDPSocket {
	return &UDPSocket{}
}

func (s *UDPSocket) Bind(host string, port uint16) error {
	s.parsed = 0
	if s.Valid() {
		s.Close()
	}

	addr, err := ResolveIPv4(host)
	if err != nil {
		return err
	}

	raddr := net.UDPAddrFromAddrPort(netip.AddrPortFrom(addr, port))
	conn, err := net.DialUDP("udp4", nil, raddr)
	if err != nil {
		return err
	}

	if s.TOS != 0 {
		if err := ipv4.NewConn(conn).SetTOS(s.TOS); err != nil {
			info("Could not set TOS on", raddr, "error:", err)
		}
	}

	s.conn = conn
	s.addr = addr
	debug("Bound", conn.LocalAddr(), "->", raddr)
	return nil
}

func (s *UDPSocket) IPv4() uint32 {
	if !s.Valid() {
		return 0
	}
	return ipToRefID(s.addr)
}

func (s *UDPSocket) Valid() bool {
	return s.conn != nil
}

func (s *UDPSocket) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	s.addr = netip.Addr{}
	s.parsed = 0
	s.pending = nil
	return err
}

// LocalAddr is the local end of the current binding, or nil.
func (s *UDPSocket) LocalAddr() net.Addr {
	if s.conn == nil {
		return nil
	}
	return s.conn.LocalAddr()
}

func (s *UDPSocket) Write(b []byte) (int, error) {
	if s.conn == nil {
		return 0, ErrNotBound
	}
	return s.conn.Write(b)
}

// Read returns at most len(b) bytes of the next datagram. The rest of a
// datagram longer than b is lost.
func (s *UDPSocket) Read(b []byte) (int, error) {
	if s.conn == nil {
		return 0, ErrNotBound
	}

	var n int
	var err error
	if len(s.pending) > 0 {
		n = copy(b, s.pending)
		s.pending = nil
	} else {
		n, err = s.conn.Read(b)
	}

	if n > 0 {
		s.parsed = max(s.parsed-n, 0)
	}
	return n, err
}

func (s *UDPSocket) ReadByte() (byte, error) {
	var b [1]byte
	n, err := s.Read(b[:])
	if err != nil {
		return 0, err
	}
	if n != 1 {
		return 0, io.ErrUnexpectedEOF
	}
	return b[0], nil
}

func (s *UDPSocket) Available() (int, error) {
	if s.conn == nil {
		return 0, nil
	}
	if len(s.pending) > 0 {
		return len(s.pending), nil
	}
	return s.available()
}

func (s *UDPSocket) Flush() {
	for s.ParsePacket() != 0 {
	}
}

func (s *UDPSocket) ParsePacket() int {
	if s.conn == nil {
		return 0
	}

	if s.parsed > 0 {
		// previously parsed data was never read, discard it
		for {
			n, err := s.Available()
			if err != nil || n <= 0 {
				break
			}
			if _, err := s.ReadByte(); err != nil {
				break
			}
		}
	}

	n, err := s.Available()
	if err != nil {
		debug("Available error:", err)
		n = 0
	}
	s.parsed = n
	return n
}

const (
	maxDatagram = 65535
	peekWait    = time.Millisecond
)

// peekAvailable reads the next datagram early with a short deadline and
// keeps it in pending until Read asks for it.
func (s *UDPSocket) peekAvailable() (int, error) {
	if s.scratch == nil {
		s.scratch = make([]byte, maxDatagram)
	}

	if err := s.conn.SetReadDeadline(time.Now().Add(peekWait)); err != nil {
		return 0, err
	}
	n, err := s.conn.Read(s.scratch)
	s.conn.SetReadDeadline(time.Time{})
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return 0, nil
		}
		return 0, err
	}

	s.pending = append(s.pending[:0], s.scratch[:n]...)
	return n, nil
}
