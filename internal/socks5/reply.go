package socks5

import (
	"errors"
	"fmt"
	"net"
)

// Reply codes from RFC 1928 section 6.
const (
	ReplySucceeded            = 0x00
	ReplyGeneralFailure       = 0x01
	ReplyNotAllowed           = 0x02
	ReplyNetworkUnreachable   = 0x03
	ReplyHostUnreachable      = 0x04
	ReplyConnectionRefused    = 0x05
	ReplyTTLExpired           = 0x06
	ReplyCommandNotSupported  = 0x07
	ReplyAddrTypeNotSupported = 0x08
)

// ReplyError carries a non-success reply code as an error.
type ReplyError byte

func (r ReplyError) Error() string {
	switch byte(r) {
	case ReplySucceeded:
		return "succeeded"
	case ReplyGeneralFailure:
		return "general SOCKS server failure"
	case ReplyNotAllowed:
		return "connection not allowed by ruleset"
	case ReplyNetworkUnreachable:
		return "network unreachable"
	case ReplyHostUnreachable:
		return "host unreachable"
	case ReplyConnectionRefused:
		return "connection refused"
	case ReplyTTLExpired:
		return "TTL expired"
	case ReplyCommandNotSupported:
		return "command not supported"
	case ReplyAddrTypeNotSupported:
		return "address type not supported"
	default:
		return fmt.Sprintf("reply code %#02x", byte(r))
	}
}

// ReplyForError maps a protocol or dial error onto the closest reply code.
// DNS failures count as host unreachable; timeouts as TTL expired; transport
// errno values are classified per platform.
func ReplyForError(err error) byte {
	var (
		addrErr AddrTypeError
		cmdErr  CommandError
		dnsErr  *net.DNSError
		netErr  net.Error
	)

	switch {
	case err == nil:
		return ReplySucceeded
	case errors.As(err, &addrErr):
		return ReplyAddrTypeNotSupported
	case errors.As(err, &cmdErr):
		return ReplyCommandNotSupported
	case errors.As(err, &dnsErr):
		return ReplyHostUnreachable
	case errors.As(err, &netErr) && netErr.Timeout():
		return ReplyTTLExpired
	}

	if code, ok := replyForErrno(err); ok {
		return code
	}
	return ReplyGeneralFailure
}
