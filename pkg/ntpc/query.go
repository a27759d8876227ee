package ntpc

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	ntpq "github.com/beevik/ntp"
)

type QueryResult struct {
	Offset  time.Duration
	Err     time.Duration // bound on the error of Offset
	RTT     time.Duration
	Stratum uint8
	Time    time.Time
}

var ErrNoSync = errors.New("server is not synchronized")

const queryTimeout = time.Second

// queryFunc is swapped in tests.
var queryFunc = ntpq.QueryWithOptions

// Query measures the offset of the local clock against address with a full
// four-timestamp exchange, sending messages requests and keeping the one
// with the smallest round trip. A value is sent on progress, when it is not
// nil, after every request.
func Query(address string, port uint16, messages int, progress chan<- struct{}) (*QueryResult, error) {
	host := net.JoinHostPort(address, strconv.Itoa(int(port)))

	var best *ntpq.Response
	for i := 0; i < messages; i++ {
		response, err := queryFunc(host, ntpq.QueryOptions{Timeout: queryTimeout})
		if progress != nil {
			progress <- struct{}{}
		}
		if err != nil {
			debug("Query", host, "failed:", err)
			continue
		}

		// Exit early if the server is not synced
		if response.Leap == ntpq.LeapNotInSync {
			return nil, ErrNoSync
		}
		if err := response.Validate(); err != nil {
			return nil, fmt.Errorf("invalid reply from %s: %w", host, err)
		}

		if best == nil || response.RTT < best.RTT {
			best = response
		}
	}

	if best == nil {
		return nil, ErrReceiveTimeout
	}

	// lambda is error in a given sample's offset
	lambda := best.RootDelay/2 + best.RootDispersion + best.RTT

	return &QueryResult{
		Offset:  best.ClockOffset,
		Err:     lambda,
		RTT:     best.RTT,
		Stratum: best.Stratum,
		Time:    best.Time,
	}, nil
}
