//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package settimeofday

import (
	"errors"
	"time"
)

func Settimeofday(t time.Time) error {
	return errors.ErrUnsupported
}
