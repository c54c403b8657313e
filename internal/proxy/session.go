package proxy

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"slices"
	"time"

	"github.com/cssivision/socksd/internal/socks5"
)

// A session walks one accepted connection through the protocol:
//
//	greeting -> request -> connecting -> relaying
//
// Each state either returns the next transition or nil to stop, recording
// the failure in s.err. Replies are written whole before any transition, and
// no destination byte moves until the success reply is on the wire.
type stateFn func(*session) stateFn

type session struct {
	srv  *Server
	conn net.Conn // client side
	br   *bufio.Reader
	dst  net.Conn // destination side, nil until connected

	err error
}

func newSession(srv *Server, conn net.Conn) *session {
	return &session{
		srv:  srv,
		conn: conn,
		br:   bufio.NewReader(conn),
	}
}

// run drives the state machine to completion and returns the first error
// the session hit, if any.
func (s *session) run() error {
	for state := (*session).greeting; state != nil; {
		state = state(s)
	}
	if s.dst != nil {
		_ = s.dst.Close()
	}
	return s.err
}

func (s *session) fail(err error) stateFn {
	s.err = err
	return nil
}

// failReply writes the closest-matching reply for err, then stops. The
// reply is best effort; the session is failing either way.
func (s *session) failReply(err error) stateFn {
	_ = socks5.WriteReply(s.conn, socks5.Reply{Code: socks5.ReplyForError(err)})
	return s.fail(err)
}

func (s *session) greeting() stateFn {
	if t := s.srv.cfg.NegotiationTimeout; t > 0 {
		_ = s.conn.SetDeadline(time.Now().Add(t))
	}

	methods, err := socks5.ReadGreeting(s.br)
	if err != nil {
		// Unsupported version or truncated greeting: no reply format
		// is defined for this, so just drop the connection.
		return s.fail(err)
	}

	if !slices.Contains(methods, byte(socks5.MethodNone)) {
		if err := socks5.WriteMethodReply(s.conn, socks5.MethodNoAcceptable); err != nil {
			return s.fail(err)
		}
		return s.fail(fmt.Errorf("no acceptable auth method in %v", methods))
	}

	if err := socks5.WriteMethodReply(s.conn, socks5.MethodNone); err != nil {
		return s.fail(err)
	}
	return (*session).request
}

func (s *session) request() stateFn {
	req, err := socks5.ReadRequest(s.br)
	if err != nil {
		var verr socks5.VersionError
		if errors.As(err, &verr) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return s.fail(err)
		}
		return s.failReply(err)
	}

	if req.Cmd != socks5.CmdConnect {
		// BIND and UDP ASSOCIATE are recognized but not serviced.
		return s.failReply(socks5.CommandError(req.Cmd))
	}

	return s.connecting(req)
}

func (s *session) connecting(req socks5.Request) stateFn {
	return func(s *session) stateFn {
		dst, err := s.srv.cfg.Dialer.DialContext(s.srv.ctx, "tcp", req.Addr.HostPort(req.Port))
		if err != nil {
			return s.failReply(err)
		}
		s.dst = dst

		addr, port := socks5.AddrFromNetAddr(dst.LocalAddr())
		if err := socks5.WriteReply(s.conn, socks5.Reply{Code: socks5.ReplySucceeded, Addr: addr, Port: port}); err != nil {
			return s.fail(err)
		}

		_ = s.conn.SetDeadline(time.Time{})
		return (*session).relaying
	}
}

func (s *session) relaying() stateFn {
	// A pipelined client may have sent payload bytes right behind the
	// request; they are sitting in the handshake reader and must reach
	// the destination first.
	if n := s.br.Buffered(); n > 0 {
		early, err := s.br.Peek(n)
		if err != nil {
			return s.fail(err)
		}
		if _, err := s.dst.Write(early); err != nil {
			return s.fail(fmt.Errorf("early write: %w", err))
		}
		_, _ = s.br.Discard(n)
	}

	return s.fail(relay(s.srv.ctx, s.conn, s.dst, s.srv.pool))
}
