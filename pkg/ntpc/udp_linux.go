package ntpc

import (
	"golang.org/x/sys/unix"
)

// available asks the kernel for the size of the next queued datagram.
// TIOCINQ is FIONREAD on Linux.
func (s *UDPSocket) available() (int, error) {
	raw, err := s.conn.SyscallConn()
	if err != nil {
		return 0, err
	}

	var n int
	var ioctlErr error
	err = raw.Control(func(fd uintptr) {
		n, ioctlErr = unix.IoctlGetInt(int(fd), unix.TIOCINQ)
	})
	if err != nil {
		return 0, err
	}
	return n, ioctlErr
}
