// Package proxy implements the SOCKS5 server side: the listener that fans
// accepted connections out to independent sessions, the per-session
// handshake state machine, and the bidirectional relay that moves bytes
// between client and destination once the handshake succeeds.
//
// Sessions share nothing: each one owns its two sockets and its buffers,
// and an error in one session never disturbs another or stops the accept
// loop.
package proxy
