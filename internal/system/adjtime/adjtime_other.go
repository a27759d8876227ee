//go:build !linux && !darwin

package adjtime

import (
	"errors"
	"time"
)

func Adjtime(offset time.Duration) error {
	return errors.ErrUnsupported
}
