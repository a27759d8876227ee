package ntpc

import (
	"fmt"
	"time"

	"github.com/AndrewLester/ntpc/internal/system/adjtime"
	"github.com/AndrewLester/ntpc/internal/system/settimeofday"
)

// SetSystemTime steps the system clock to epoch seconds. The error wraps
// ErrClockSet and the platform error, usually a syscall.Errno.
func SetSystemTime(epoch int64) error {
	target := time.Unix(epoch, 0)
	info("CURRENT:", time.Now(), "STEPPING TO:", target)
	if err := settimeofday.Settimeofday(target); err != nil {
		return fmt.Errorf("%w: %w", ErrClockSet, err)
	}
	return nil
}

// AdjustSystemTime applies the offset between epoch seconds and the system
// clock through adjtime. Darwin slews; Linux applies it at once with
// ADJ_SETOFFSET.
func AdjustSystemTime(epoch int64) error {
	offset := time.Until(time.Unix(epoch, 0))
	if offset == 0 {
		return nil
	}
	info("Adjust time:", offset)
	if err := adjtime.Adjtime(offset); err != nil {
		return fmt.Errorf("%w: %w", ErrClockSet, err)
	}
	return nil
}
