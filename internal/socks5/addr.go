package socks5

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"strconv"
)

// AddrType is the SOCKS5 ATYP field.
type AddrType byte

const (
	AddrIPv4   AddrType = 0x01
	AddrDomain AddrType = 0x03
	AddrIPv6   AddrType = 0x04
)

// AddrTypeError is returned when a message carries an ATYP outside the three
// values RFC 1928 defines. It maps to ReplyAddrTypeNotSupported.
type AddrTypeError byte

func (a AddrTypeError) Error() string {
	return fmt.Sprintf("unsupported address type: %#02x", byte(a))
}

// Addr is a SOCKS5 destination or bound address: either an IP literal or a
// not-yet-resolved domain name, per the ATYP tag.
type Addr struct {
	Type   AddrType
	IP     net.IP // AddrIPv4 (4 bytes) or AddrIPv6 (16 bytes)
	Domain string // AddrDomain, 1-255 bytes
}

func (a Addr) String() string {
	if a.Type == AddrDomain {
		return a.Domain
	}
	return a.IP.String()
}

// HostPort joins the address with port into the host:port form accepted by
// net.Dial.
func (a Addr) HostPort(port uint16) string {
	return net.JoinHostPort(a.String(), strconv.Itoa(int(port)))
}

// ReadAddrPort consumes exactly one ATYP byte, the type-specific payload,
// and a 2-byte big-endian port.
func ReadAddrPort(r io.Reader) (Addr, uint16, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return Addr{}, 0, fmt.Errorf("read atyp: %w", err)
	}

	addr := Addr{Type: AddrType(b[0])}
	switch addr.Type {
	case AddrIPv4:
		ip := make(net.IP, net.IPv4len)
		if _, err := io.ReadFull(r, ip); err != nil {
			return Addr{}, 0, fmt.Errorf("read ipv4: %w", err)
		}
		addr.IP = ip
	case AddrIPv6:
		ip := make(net.IP, net.IPv6len)
		if _, err := io.ReadFull(r, ip); err != nil {
			return Addr{}, 0, fmt.Errorf("read ipv6: %w", err)
		}
		addr.IP = ip
	case AddrDomain:
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return Addr{}, 0, fmt.Errorf("read domain length: %w", err)
		}
		if b[0] == 0 {
			return Addr{}, 0, fmt.Errorf("empty domain name")
		}
		name := make([]byte, int(b[0]))
		if _, err := io.ReadFull(r, name); err != nil {
			return Addr{}, 0, fmt.Errorf("read domain: %w", err)
		}
		addr.Domain = string(name)
	default:
		return Addr{}, 0, AddrTypeError(b[0])
	}

	var pb [2]byte
	if _, err := io.ReadFull(r, pb[:]); err != nil {
		return Addr{}, 0, fmt.Errorf("read port: %w", err)
	}

	return addr, binary.BigEndian.Uint16(pb[:]), nil
}

// AppendAddrPort is the exact inverse of ReadAddrPort: ATYP, payload, then
// the port in network byte order.
func AppendAddrPort(dst []byte, a Addr, port uint16) ([]byte, error) {
	switch a.Type {
	case AddrIPv4:
		ip := a.IP.To4()
		if ip == nil {
			return dst, fmt.Errorf("not an ipv4 address: %s", a.IP)
		}
		dst = append(dst, byte(AddrIPv4))
		dst = append(dst, ip...)
	case AddrIPv6:
		ip := a.IP.To16()
		if ip == nil {
			return dst, fmt.Errorf("not an ipv6 address: %s", a.IP)
		}
		dst = append(dst, byte(AddrIPv6))
		dst = append(dst, ip...)
	case AddrDomain:
		if len(a.Domain) == 0 || len(a.Domain) > 255 {
			return dst, fmt.Errorf("invalid domain length: %d", len(a.Domain))
		}
		dst = append(dst, byte(AddrDomain), byte(len(a.Domain)))
		dst = append(dst, a.Domain...)
	default:
		return dst, AddrTypeError(a.Type)
	}

	return binary.BigEndian.AppendUint16(dst, port), nil
}

// AddrFromNetAddr converts the local address of an outbound socket into the
// BND.ADDR/BND.PORT of a reply. Anything that is not a *net.TCPAddr becomes
// the zero IPv4 address.
func AddrFromNetAddr(na net.Addr) (Addr, uint16) {
	ta, ok := na.(*net.TCPAddr)
	if !ok || ta.IP == nil {
		return Addr{Type: AddrIPv4, IP: net.IPv4zero.To4()}, 0
	}
	if ip4 := ta.IP.To4(); ip4 != nil {
		return Addr{Type: AddrIPv4, IP: ip4}, uint16(ta.Port)
	}
	return Addr{Type: AddrIPv6, IP: ta.IP.To16()}, uint16(ta.Port)
}
