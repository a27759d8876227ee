package ntpc

// Transport is a datagram channel bound to a single remote endpoint. A Client
// owns exactly one and rebinds it for every exchange.
type Transport interface {
	// Bind resolves host to an IPv4 address and associates the transport
	// with it. An existing binding is closed first.
	Bind(host string, port uint16) error
	// IPv4 is the address of the current binding as a big-endian integer,
	// or 0 when unbound.
	IPv4() uint32
	Valid() bool
	// Close releases the binding. Closing an unbound transport is a no-op.
	Close() error
	Write(b []byte) (int, error)
	Read(b []byte) (int, error)
	ReadByte() (byte, error)
	// Available reports the bytes that can be read without blocking.
	Available() (int, error)
	// Flush discards everything queued for reading.
	Flush()
	// ParsePacket reports the bytes available right now. Bytes left over
	// from the previous call are drained first, so a non-zero result
	// signals newly arrived data. Errors report 0.
	ParsePacket() int
}
