//go:build unix

package socks5

import (
	"net"
	"os"
	"testing"

	"golang.org/x/sys/unix"
)

func TestReplyForErrnoClassification(t *testing.T) {
	t.Parallel()

	wrap := func(errno error) error {
		return &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", errno)}
	}

	tests := []struct {
		name string
		err  error
		want byte
	}{
		{name: "econnrefused", err: wrap(unix.ECONNREFUSED), want: ReplyConnectionRefused},
		{name: "enetunreach", err: wrap(unix.ENETUNREACH), want: ReplyNetworkUnreachable},
		{name: "enetdown", err: wrap(unix.ENETDOWN), want: ReplyNetworkUnreachable},
		{name: "ehostunreach", err: wrap(unix.EHOSTUNREACH), want: ReplyHostUnreachable},
		{name: "etimedout", err: wrap(unix.ETIMEDOUT), want: ReplyTTLExpired},
		{name: "eacces", err: wrap(unix.EACCES), want: ReplyNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReplyForError(tt.err); got != tt.want {
				t.Fatalf("ReplyForError(%v) = %#02x, want %#02x", tt.err, got, tt.want)
			}
		})
	}
}
