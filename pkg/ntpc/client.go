package ntpc

import (
	"fmt"
	"time"

	"github.com/AndrewLester/ntpc/internal/ntp"
)

const (
	retryDelay   = 10 * time.Millisecond
	pollAttempts = 100 // retryDelay * pollAttempts = 1 s
)

// Client runs SNTP exchanges against one server. It is not safe for
// concurrent use; query several servers with one Client each.
type Client struct {
	host      string
	port      uint16
	transport Transport

	updateInterval time.Duration
	lastUpdate     time.Time // zero until the first successful exchange

	now   func() time.Time
	sleep func(time.Duration)
}

// NewClient returns a client for host:port that exchanges packets over
// transport. The client takes ownership of the transport.
func NewClient(host string, port uint16, transport Transport) *Client {
	return &Client{
		host:           host,
		port:           port,
		transport:      transport,
		updateInterval: ntp.DefaultPoll * time.Second,
		now:            time.Now,
		sleep:          time.Sleep,
	}
}

func (c *Client) Host() string { return c.host }
func (c *Client) Port() uint16 { return c.port }

// UpdateInterval is the time between polls advertised by the server in its
// last reply.
func (c *Client) UpdateInterval() time.Duration { return c.updateInterval }

// LastUpdate is when the last successful exchange completed.
func (c *Client) LastUpdate() time.Time { return c.lastUpdate }

// SetTransport replaces the transport, closing the previous one.
func (c *Client) SetTransport(transport Transport) {
	if c.transport != nil {
		c.transport.Close()
	}
	c.transport = transport
}

// Close releases the transport.
func (c *Client) Close() error {
	if c.transport == nil {
		return nil
	}
	return c.transport.Close()
}

// Refresh queries the server if the update interval has passed since the
// last successful exchange, or if there never was one. Otherwise it either
// sleeps out the remainder when autowait is set, or returns ErrNotDue
// without touching the transport.
func (c *Client) Refresh(autowait bool) (int64, error) {
	elapsed := c.now().Sub(c.lastUpdate)
	if c.lastUpdate.IsZero() || elapsed >= c.updateInterval {
		return c.ForceRefresh()
	}

	if !autowait {
		return 0, ErrNotDue
	}

	wait := c.updateInterval - elapsed
	debug("Waiting", wait, "before polling", c.host)
	c.sleep(wait)
	return c.ForceRefresh()
}

// ForceRefresh performs one exchange and returns the server's transmit time
// in seconds since the Unix epoch. The transport is closed on return.
func (c *Client) ForceRefresh() (int64, error) {
	if c.transport == nil {
		return 0, ErrNoTransport
	}
	defer c.transport.Close()

	if c.transport.Valid() {
		c.transport.Close()
	}

	if err := c.transport.Bind(c.host, c.port); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBind, err)
	}

	c.transport.Flush()

	if err := c.sendPacket(); err != nil {
		return 0, err
	}

	if c.awaitReply() == 0 {
		return 0, ErrReceiveTimeout
	}

	buffer := make([]byte, ntp.PacketSize)
	n, err := c.transport.Read(buffer)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrShortRead, err)
	}
	if n != ntp.PacketSize {
		return 0, fmt.Errorf("%w: %d bytes", ErrShortRead, n)
	}

	packet, err := ntp.DecodePacket(buffer)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrShortRead, err)
	}

	epoch := ntp.NTPSecondsToUnix(packet.TransmitSeconds())
	c.updateInterval = ntp.PollInterval(packet.Poll)
	c.lastUpdate = c.now()

	info("Reply from", c.host, "stratum:", packet.Stratum, "poll:", packet.Poll, "epoch:", epoch)
	return epoch, nil
}

func (c *Client) sendPacket() error {
	request := ntp.NewRequest(c.transport.IPv4()).Encode()
	n, err := c.transport.Write(request)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSend, err)
	}
	if n != len(request) {
		return fmt.Errorf("%w: wrote %d of %d bytes", ErrSend, n, len(request))
	}
	return nil
}

// awaitReply polls the transport until a datagram shows up or the attempts
// run out, in which case it returns 0.
func (c *Client) awaitReply() int {
	for attempt := 0; attempt < pollAttempts; attempt++ {
		c.sleep(retryDelay)
		if size := c.transport.ParsePacket(); size > 0 {
			return size
		}
	}
	return 0
}
