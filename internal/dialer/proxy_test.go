package dialer

import (
	"bufio"
	"context"
	"encoding/binary"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cssivision/socksd/internal/testutil"
)

// serveSOCKS5Connect is a minimal no-auth SOCKS5 upstream: it negotiates,
// dials the requested IPv4 destination, and relays.
func serveSOCKS5Connect(c net.Conn) {
	br := bufio.NewReader(c)

	hdr := make([]byte, 2)
	if _, err := io.ReadFull(br, hdr); err != nil || hdr[0] != 0x05 {
		return
	}
	methods := make([]byte, int(hdr[1]))
	if _, err := io.ReadFull(br, methods); err != nil {
		return
	}
	if _, err := c.Write([]byte{0x05, 0x00}); err != nil {
		return
	}

	req := make([]byte, 4)
	if _, err := io.ReadFull(br, req); err != nil || req[1] != 0x01 || req[3] != 0x01 {
		return
	}
	addr := make([]byte, 6)
	if _, err := io.ReadFull(br, addr); err != nil {
		return
	}
	dst := &net.TCPAddr{IP: net.IP(addr[:4]), Port: int(binary.BigEndian.Uint16(addr[4:]))}

	up, err := net.Dial("tcp", dst.String())
	if err != nil {
		_, _ = c.Write([]byte{0x05, 0x05, 0x00, 0x01, 0, 0, 0, 0, 0, 0})
		return
	}
	defer up.Close()

	if _, err := c.Write([]byte{0x05, 0x00, 0x00, 0x01, 0, 0, 0, 0, 0, 0}); err != nil {
		return
	}

	var g errgroup.Group
	g.Go(func() error { defer up.Close(); _, err := io.Copy(up, br); return err })
	g.Go(func() error { defer c.Close(); _, err := io.Copy(c, up); return err })
	_ = g.Wait()
}

func TestSOCKS5ProxyDialer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	echoLn := testutil.StartEchoTCPServer(t, ctx)
	defer echoLn.Close()

	upLn, waitUp := testutil.StartSingleAcceptServer(t, ctx, serveSOCKS5Connect)

	d := NewSOCKS5ProxyDialer(Config{DialTimeout: 2 * time.Second}, upLn.Addr().String(), "", "")
	c, err := d.DialContext(ctx, "tcp", echoLn.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	testutil.AssertEcho(t, c, c, []byte("via socks5 upstream"))

	_ = c.Close()
	waitUp()
}

// serveHTTPConnect is a minimal CONNECT-only HTTP upstream.
func serveHTTPConnect(c net.Conn) {
	br := bufio.NewReader(c)
	req, err := http.ReadRequest(br)
	if err != nil || req.Method != http.MethodConnect {
		return
	}

	up, err := net.Dial("tcp", req.Host)
	if err != nil {
		_, _ = io.WriteString(c, "HTTP/1.1 502 Bad Gateway\r\n\r\n")
		return
	}
	defer up.Close()

	if _, err := io.WriteString(c, "HTTP/1.1 200 Connection established\r\n\r\n"); err != nil {
		return
	}

	var g errgroup.Group
	g.Go(func() error { defer up.Close(); _, err := io.Copy(up, br); return err })
	g.Go(func() error { defer c.Close(); _, err := io.Copy(c, up); return err })
	_ = g.Wait()
}

func TestHTTPProxyDialer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	echoLn := testutil.StartEchoTCPServer(t, ctx)
	defer echoLn.Close()

	upLn, waitUp := testutil.StartSingleAcceptServer(t, ctx, serveHTTPConnect)

	d, err := New(Config{DialTimeout: 2 * time.Second, NegotiationTimeout: 2 * time.Second}, "http://"+upLn.Addr().String())
	if err != nil {
		t.Fatal(err)
	}

	c, err := d.DialContext(ctx, "tcp", echoLn.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	testutil.AssertEcho(t, c, c, []byte("via http upstream"))

	_ = c.Close()
	waitUp()
}

func TestDirectDialerResolveFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	d := NewDirectDialer(Config{DialTimeout: time.Second})
	if _, err := d.DialContext(ctx, "tcp", "host.invalid:80"); err == nil {
		t.Fatal("expected resolution failure")
	}
}
