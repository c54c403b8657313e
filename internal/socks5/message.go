package socks5

import (
	"fmt"
	"io"
)

// Version is the only protocol version this package speaks.
const Version = 0x05

// Authentication methods from RFC 1928 section 3. Only MethodNone is
// serviced; MethodNoAcceptable is the rejection sentinel.
const (
	MethodNone         = 0x00
	MethodNoAcceptable = 0xFF
)

// Commands from RFC 1928 section 4.
const (
	CmdConnect      = 0x01
	CmdBind         = 0x02
	CmdUDPAssociate = 0x03
)

// VersionError is returned when the first byte of a greeting or request is
// not Version.
type VersionError byte

func (v VersionError) Error() string {
	return fmt.Sprintf("unsupported SOCKS version: %#02x", byte(v))
}

// CommandError is returned when a request carries a command other than
// CONNECT. It maps to ReplyCommandNotSupported.
type CommandError byte

func (c CommandError) Error() string {
	return fmt.Sprintf("unsupported command: %#02x", byte(c))
}

// ReadGreeting reads `[VER][NMETHODS][METHODS...]` and returns the offered
// methods. NMETHODS of zero yields an empty, non-nil slice; the caller
// rejects it because MethodNone is absent.
func ReadGreeting(r io.Reader) ([]byte, error) {
	var hdr [2]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("read greeting: %w", err)
	}
	if hdr[0] != Version {
		return nil, VersionError(hdr[0])
	}

	methods := make([]byte, int(hdr[1]))
	if _, err := io.ReadFull(r, methods); err != nil {
		return nil, fmt.Errorf("read methods: %w", err)
	}
	return methods, nil
}

// WriteMethodReply writes the `[VER][METHOD]` greeting reply.
func WriteMethodReply(w io.Writer, method byte) error {
	if _, err := w.Write([]byte{Version, method}); err != nil {
		return fmt.Errorf("write method reply: %w", err)
	}
	return nil
}

// Request is a parsed `[VER][CMD][RSV][ATYP][ADDR][PORT]` message.
type Request struct {
	Cmd  byte
	Addr Addr
	Port uint16
}

// ReadRequest parses a command request. Version, reserved-byte, and
// address-type violations come back as typed errors so the session can pick
// the closest reply code before terminating.
func ReadRequest(r io.Reader) (Request, error) {
	var hdr [3]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Request{}, fmt.Errorf("read request: %w", err)
	}
	if hdr[0] != Version {
		return Request{}, VersionError(hdr[0])
	}
	if hdr[2] != 0 {
		return Request{}, fmt.Errorf("nonzero reserved byte: %#02x", hdr[2])
	}

	addr, port, err := ReadAddrPort(r)
	if err != nil {
		return Request{}, err
	}

	return Request{Cmd: hdr[1], Addr: addr, Port: port}, nil
}

// Reply is a `[VER][REP][RSV][ATYP][BND.ADDR][BND.PORT]` message.
type Reply struct {
	Code byte
	Addr Addr
	Port uint16
}

// WriteReply writes rp as one complete message.
func WriteReply(w io.Writer, rp Reply) error {
	buf := make([]byte, 0, 3+1+256+2)
	buf = append(buf, Version, rp.Code, 0x00)

	addr := rp.Addr
	if addr.Type == 0 {
		addr = Addr{Type: AddrIPv4, IP: make([]byte, 4)}
	}
	buf, err := AppendAddrPort(buf, addr, rp.Port)
	if err != nil {
		return err
	}

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write reply: %w", err)
	}
	return nil
}
