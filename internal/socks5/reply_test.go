package socks5

import (
	"errors"
	"fmt"
	"net"
	"testing"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestReplyForError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want byte
	}{
		{name: "nil", err: nil, want: ReplySucceeded},
		{name: "bad_atyp", err: AddrTypeError(0x02), want: ReplyAddrTypeNotSupported},
		{name: "wrapped_atyp", err: errors.Join(errors.New("request"), AddrTypeError(0x02)), want: ReplyAddrTypeNotSupported},
		{name: "bad_command", err: CommandError(0x02), want: ReplyCommandNotSupported},
		{name: "dns_failure", err: &net.DNSError{Err: "no such host", Name: "x.invalid", IsNotFound: true}, want: ReplyHostUnreachable},
		{
			// The DNS server itself refusing the connection is still a
			// resolution failure; the DNSError must win over the errno
			// table.
			name: "dns_server_unreachable",
			err: fmt.Errorf("resolve example.org: %w", &net.DNSError{
				Err:    "read udp 198.51.100.1:53: connection refused",
				Name:   "example.org",
				Server: "198.51.100.1:53",
			}),
			want: ReplyHostUnreachable,
		},
		{name: "timeout", err: &net.OpError{Op: "dial", Err: timeoutError{}}, want: ReplyTTLExpired},
		{name: "unclassified", err: errors.New("boom"), want: ReplyGeneralFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReplyForError(tt.err); got != tt.want {
				t.Fatalf("ReplyForError(%v) = %#02x, want %#02x", tt.err, got, tt.want)
			}
		})
	}
}

func TestReplyErrorStrings(t *testing.T) {
	t.Parallel()

	if got := ReplyError(ReplyConnectionRefused).Error(); got != "connection refused" {
		t.Fatalf("got %q", got)
	}
	if got := ReplyError(0x42).Error(); got != "reply code 0x42" {
		t.Fatalf("got %q", got)
	}
}

var _ net.Error = timeoutError{}
