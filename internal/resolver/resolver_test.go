package resolver

import (
	"context"
	"errors"
	"net"
	"os"
	"syscall"
	"testing"

	"github.com/miekg/dns"
)

func fakeExchange(t *testing.T, r *Resolver, answers map[uint16][]dns.RR, calls *int) {
	t.Helper()

	r.exchange = func(ctx context.Context, m *dns.Msg, addr string) (*dns.Msg, error) {
		*calls++
		resp := new(dns.Msg)
		resp.SetReply(m)
		resp.Answer = answers[m.Question[0].Qtype]
		return resp, nil
	}
}

func aRecord(name string, ttl uint32, ip string) dns.RR {
	return &dns.A{
		Hdr: dns.RR_Header{Name: dns.Fqdn(name), Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: ttl},
		A:   net.ParseIP(ip).To4(),
	}
}

func aaaaRecord(name string, ttl uint32, ip string) dns.RR {
	return &dns.AAAA{
		Hdr:  dns.RR_Header{Name: dns.Fqdn(name), Rrtype: dns.TypeAAAA, Class: dns.ClassINET, Ttl: ttl},
		AAAA: net.ParseIP(ip),
	}
}

func TestLookupIPLiteralPassthrough(t *testing.T) {
	t.Parallel()

	r := New("")
	ips, err := r.LookupIP(context.Background(), "192.0.2.7")
	if err != nil {
		t.Fatal(err)
	}
	if len(ips) != 1 || !ips[0].Equal(net.ParseIP("192.0.2.7")) {
		t.Fatalf("got %v", ips)
	}
}

func TestLookupIPQueriesBothFamilies(t *testing.T) {
	t.Parallel()

	r := New("198.51.100.1:53")
	calls := 0
	fakeExchange(t, r, map[uint16][]dns.RR{
		dns.TypeA:    {aRecord("example.org", 300, "192.0.2.1")},
		dns.TypeAAAA: {aaaaRecord("example.org", 300, "2001:db8::1")},
	}, &calls)

	ips, err := r.LookupIP(context.Background(), "example.org")
	if err != nil {
		t.Fatal(err)
	}
	if len(ips) != 2 {
		t.Fatalf("got %v", ips)
	}
	if !ips[0].Equal(net.ParseIP("192.0.2.1")) || !ips[1].Equal(net.ParseIP("2001:db8::1")) {
		t.Fatalf("got %v", ips)
	}
	if calls != 2 {
		t.Fatalf("exchange calls = %d, want 2", calls)
	}
}

func TestLookupIPCachesAnswers(t *testing.T) {
	t.Parallel()

	r := New("198.51.100.1:53")
	calls := 0
	fakeExchange(t, r, map[uint16][]dns.RR{
		dns.TypeA: {aRecord("example.org", 300, "192.0.2.1")},
	}, &calls)

	for range 3 {
		if _, err := r.LookupIP(context.Background(), "example.org"); err != nil {
			t.Fatal(err)
		}
	}
	// One A and one AAAA query on the first lookup, nothing after.
	if calls != 2 {
		t.Fatalf("exchange calls = %d, want 2", calls)
	}
}

func TestLookupIPExchangeFailure(t *testing.T) {
	t.Parallel()

	r := New("198.51.100.1:53")
	r.exchange = func(ctx context.Context, m *dns.Msg, addr string) (*dns.Msg, error) {
		return nil, &net.OpError{
			Op:  "read",
			Net: "udp",
			Err: os.NewSyscallError("read", syscall.ECONNREFUSED),
		}
	}

	// A refused or unreachable DNS server is a resolution failure, not a
	// connect failure: it must surface as a DNSError so callers classify
	// it as host unreachable rather than by the transport errno.
	_, err := r.LookupIP(context.Background(), "example.org")
	var dnsErr *net.DNSError
	if !errors.As(err, &dnsErr) {
		t.Fatalf("err = %v (%T), want *net.DNSError", err, err)
	}
	if dnsErr.IsTimeout {
		t.Fatalf("err = %v, unexpectedly a timeout", dnsErr)
	}
}

func TestLookupIPNoAnswers(t *testing.T) {
	t.Parallel()

	r := New("198.51.100.1:53")
	calls := 0
	fakeExchange(t, r, nil, &calls)

	_, err := r.LookupIP(context.Background(), "missing.example")
	var dnsErr *net.DNSError
	if !errors.As(err, &dnsErr) || !dnsErr.IsNotFound {
		t.Fatalf("err = %v, want not-found DNSError", err)
	}
}
