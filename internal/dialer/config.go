package dialer

import (
	"net"
	"time"

	"github.com/cssivision/socksd/internal/resolver"
)

type Config struct {
	DialTimeout        time.Duration
	NegotiationTimeout time.Duration
	KeepAlive          net.KeepAliveConfig

	// Resolver is used by the direct dialer to resolve domain names before
	// connecting. If nil, the system resolver is used.
	Resolver *resolver.Resolver
}
