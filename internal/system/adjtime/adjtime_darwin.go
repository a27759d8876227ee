package adjtime

import (
	"time"

	"golang.org/x/sys/unix"
)

// Adjtime slews the system clock by offset.
func Adjtime(offset time.Duration) error {
	timeVal := unix.NsecToTimeval(offset.Nanoseconds())
	return unix.Adjtime(&timeVal, nil)
}
