//go:build unix

package socks5

import (
	"errors"

	"golang.org/x/sys/unix"
)

func replyForErrno(err error) (byte, bool) {
	switch {
	case errors.Is(err, unix.ECONNREFUSED):
		return ReplyConnectionRefused, true
	case errors.Is(err, unix.ENETUNREACH), errors.Is(err, unix.ENETDOWN):
		return ReplyNetworkUnreachable, true
	case errors.Is(err, unix.EHOSTUNREACH), errors.Is(err, unix.EHOSTDOWN):
		return ReplyHostUnreachable, true
	case errors.Is(err, unix.ETIMEDOUT):
		return ReplyTTLExpired, true
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM):
		return ReplyNotAllowed, true
	}
	return 0, false
}
