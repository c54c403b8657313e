package proxy

import (
	"net"
	"time"

	"github.com/cssivision/socksd/internal/dialer"
)

type Config struct {
	// NegotiationTimeout bounds the whole handshake, from the first
	// greeting byte to the connect reply. Zero means no limit.
	NegotiationTimeout time.Duration

	KeepAlive net.KeepAliveConfig

	// Dialer opens the outbound connection for each CONNECT request.
	Dialer dialer.Dialer
}
