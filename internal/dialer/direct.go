package dialer

import (
	"context"
	"fmt"
	"net"

	"github.com/cssivision/socksd/internal/resolver"
)

type directDialer struct {
	cfg Config
}

// NewDirectDialer returns a Dialer that resolves the destination and opens a
// TCP connection to it.
func NewDirectDialer(cfg Config) Dialer {
	if cfg.Resolver == nil {
		cfg.Resolver = resolver.New("")
	}
	return &directDialer{cfg: cfg}
}

// DialContext resolves address's host if it is a domain name, then dials the
// first resolved address. A failed connect is reported as-is; no alternate
// addresses are tried.
func (d *directDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return nil, fmt.Errorf("dial %s %s: %w", network, address, err)
	}

	if net.ParseIP(host) == nil {
		ips, err := d.cfg.Resolver.LookupIP(ctx, host)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", host, err)
		}
		address = net.JoinHostPort(ips[0].String(), port)
	}

	dd := net.Dialer{Timeout: d.cfg.DialTimeout}
	conn, err := dd.DialContext(ctx, network, address)
	if err != nil {
		return nil, fmt.Errorf("dial %s %s: %w", network, address, err)
	}

	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetKeepAliveConfig(d.cfg.KeepAlive)
	}

	return conn, nil
}
