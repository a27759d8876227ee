package ntpc

import (
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"net/netip"
	"time"
)

const resolveTimeout = 5 * time.Second

var lookupNetIP = net.DefaultResolver.LookupNetIP

// ResolveIPv4 returns the first IPv4 address of host, which may be a name or
// a literal address. Nothing is synthesized: a host with only IPv6 addresses
// is unresolvable.
func ResolveIPv4(host string) (netip.Addr, error) {
	if host == "" {
		return netip.Addr{}, fmt.Errorf("%w: empty host", ErrUnresolvable)
	}

	if addr, err := netip.ParseAddr(host); err == nil {
		addr = addr.Unmap()
		if !addr.Is4() {
			return netip.Addr{}, fmt.Errorf("%w: %s", ErrUnresolvable, host)
		}
		return addr, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()

	addrs, err := lookupNetIP(ctx, "ip4", host)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%w: %v", ErrUnresolvable, err)
	}
	for _, addr := range addrs {
		if addr = addr.Unmap(); addr.Is4() {
			debug(host, "resolved to:", addr)
			return addr, nil
		}
	}
	return netip.Addr{}, fmt.Errorf("%w: %s", ErrUnresolvable, host)
}

func ipToRefID(addr netip.Addr) uint32 {
	if !addr.Is4() {
		return 0
	}
	ip := addr.As4()
	return binary.BigEndian.Uint32(ip[:])
}
