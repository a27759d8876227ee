//go:build !linux

package ntpc

func (s *UDPSocket) available() (int, error) {
	return s.peekAvailable()
}
