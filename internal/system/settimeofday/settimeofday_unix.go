//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package settimeofday

import (
	"time"

	"golang.org/x/sys/unix"
)

// Settimeofday steps the system clock to t. It needs CAP_SYS_TIME on Linux
// and root elsewhere.
func Settimeofday(t time.Time) error {
	timeVal := unix.NsecToTimeval(t.UnixNano())
	return unix.Settimeofday(&timeVal)
}
