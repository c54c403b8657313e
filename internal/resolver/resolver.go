package resolver

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/miekg/dns"
	"github.com/patrickmn/go-cache"
)

const (
	// TTL bounds for cached answers. Zero-TTL records are still kept
	// briefly so a burst of connects to one host costs one query.
	minTTL = 5 * time.Second
	maxTTL = 10 * time.Minute

	cleanupInterval = time.Minute
)

// Resolver resolves domain names for outbound connects. With a configured
// server it speaks DNS directly and caches positive answers by their TTL;
// without one it defers to the system resolver.
type Resolver struct {
	server string // host:port of the DNS server, empty for system resolver
	client *dns.Client
	cache  *cache.Cache
	system *net.Resolver

	// exchange is swappable for tests.
	exchange func(ctx context.Context, m *dns.Msg, addr string) (*dns.Msg, error)
}

// New returns a Resolver querying server (host:port), or the system
// resolver if server is empty.
func New(server string) *Resolver {
	r := &Resolver{
		server: server,
		client: &dns.Client{Timeout: 5 * time.Second},
		cache:  cache.New(maxTTL, cleanupInterval),
		system: net.DefaultResolver,
	}
	r.exchange = func(ctx context.Context, m *dns.Msg, addr string) (*dns.Msg, error) {
		resp, _, err := r.client.ExchangeContext(ctx, m, addr)
		return resp, err
	}
	return r
}

// LookupIP resolves host to one or more IP addresses. IP literals pass
// through without a query.
func (r *Resolver) LookupIP(ctx context.Context, host string) ([]net.IP, error) {
	if ip := net.ParseIP(host); ip != nil {
		return []net.IP{ip}, nil
	}

	if r.server == "" {
		ips, err := r.system.LookupIP(ctx, "ip", host)
		if err != nil {
			return nil, err
		}
		if len(ips) == 0 {
			return nil, noSuchHost(host)
		}
		return ips, nil
	}

	if v, ok := r.cache.Get(host); ok {
		return v.([]net.IP), nil
	}

	ips, ttl, err := r.query(ctx, host)
	if err != nil {
		return nil, err
	}
	if len(ips) == 0 {
		return nil, noSuchHost(host)
	}

	r.cache.Set(host, ips, ttl)
	return ips, nil
}

func (r *Resolver) query(ctx context.Context, host string) ([]net.IP, time.Duration, error) {
	ttl := maxTTL
	var ips []net.IP

	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		m := new(dns.Msg)
		m.SetQuestion(dns.Fqdn(host), qtype)
		m.RecursionDesired = true

		resp, err := r.exchange(ctx, m, r.server)
		if err != nil {
			// A transport error on the A query is fatal; a missing
			// AAAA answer is not. Callers classify failures by
			// *net.DNSError, so the transport error is folded into
			// one rather than wrapped.
			if qtype == dns.TypeA {
				var ne net.Error
				return nil, 0, &net.DNSError{
					Err:    err.Error(),
					Name:   host,
					Server: r.server,
					IsTimeout: errors.Is(err, context.DeadlineExceeded) ||
						(errors.As(err, &ne) && ne.Timeout()),
				}
			}
			continue
		}

		for _, rr := range resp.Answer {
			var ip net.IP
			switch a := rr.(type) {
			case *dns.A:
				ip = a.A
			case *dns.AAAA:
				ip = a.AAAA
			default:
				continue
			}
			ips = append(ips, ip)
			if t := time.Duration(rr.Header().Ttl) * time.Second; t < ttl {
				ttl = t
			}
		}
	}

	if ttl < minTTL {
		ttl = minTTL
	}
	return ips, ttl, nil
}

func noSuchHost(host string) error {
	return &net.DNSError{Err: "no such host", Name: host, IsNotFound: true}
}
