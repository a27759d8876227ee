package ntpc

import "errors"

var (
	ErrNoTransport    = errors.New("no transport attached")
	ErrUnresolvable   = errors.New("host has no IPv4 address")
	ErrBind           = errors.New("could not bind transport")
	ErrSend           = errors.New("request not sent")
	ErrReceiveTimeout = errors.New("server did not respond")
	ErrShortRead      = errors.New("reply shorter than an NTP packet")
	ErrNotDue         = errors.New("refresh not due yet")
	ErrClockSet       = errors.New("could not set system time")
	ErrNotBound       = errors.New("transport not bound")
)

// Result is the outcome of one refresh cycle.
type Result uint8

const (
	Success Result = iota
	Error
	Timeout // not due yet, nothing was sent
)

func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case Timeout:
		return "timeout"
	}
	return "error"
}

// ResultOf folds the error returned by Refresh or ForceRefresh into a Result.
func ResultOf(err error) Result {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, ErrNotDue):
		return Timeout
	}
	return Error
}
