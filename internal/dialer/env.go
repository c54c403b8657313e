package dialer

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"sync"
)

// proxyEnv reads a proxy variable by name. The all-lowercase form takes
// precedence over the all-uppercase one.
func proxyEnv(name string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return os.Getenv(strings.ToUpper(name))
}

// noProxyHost reports whether no_proxy exempts host from proxying. The
// value is a comma- or space-separated list of host/domain suffixes, or a
// single "*" meaning proxying is disabled for all hosts.
func noProxyHost(host string) bool {
	noProxy := proxyEnv("no_proxy")
	if noProxy == "" {
		return false
	}
	if noProxy == "*" {
		return true
	}

	for _, elem := range strings.FieldsFunc(noProxy, func(c rune) bool {
		return c == ',' || c == ' '
	}) {
		if strings.HasSuffix(host, elem) {
			return true
		}
	}
	return false
}

// ProxyForURL returns the proxy URL to use for rawURL, determined by the
// http_proxy, https_proxy, ftp_proxy, and all_proxy environment variables,
// with per-scheme fallbacks. It returns false if rawURL is unparseable, the
// host matches no_proxy, or no applicable variable is set to a usable URL.
// A proxy URL without an explicit port gets port 8080.
func ProxyForURL(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "", false
	}

	if noProxyHost(u.Hostname()) {
		return "", false
	}

	var value string
	switch strings.ToLower(u.Scheme) {
	case "https":
		value = firstEnv("https_proxy", "http_proxy", "all_proxy")
	case "http":
		value = firstEnv("http_proxy", "all_proxy")
	case "ftp":
		value = firstEnv("ftp_proxy", "http_proxy", "all_proxy")
	default:
		value = proxyEnv("all_proxy")
	}
	if value == "" {
		return "", false
	}

	pu, err := url.Parse(value)
	if err != nil || pu.Hostname() == "" {
		return "", false
	}
	if pu.Port() == "" {
		pu.Host = net.JoinHostPort(pu.Hostname(), "8080")
		return pu.String(), true
	}
	return value, true
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := proxyEnv(name); v != "" {
			return v
		}
	}
	return ""
}

// envDialer picks a route per destination: hosts exempted by no_proxy (or
// with no applicable proxy variable) are dialed directly, the rest through
// the proxy the environment names.
type envDialer struct {
	cfg    Config
	direct Dialer

	mu      sync.Mutex
	proxies map[string]Dialer // keyed by proxy URL
}

func NewEnvDialer(cfg Config) Dialer {
	return &envDialer{
		cfg:     cfg,
		direct:  NewDirectDialer(cfg),
		proxies: make(map[string]Dialer),
	}
}

func (d *envDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return nil, fmt.Errorf("env dial %s %s: %w", network, address, err)
	}

	proxyURL, ok := ProxyForURL(fmt.Sprintf("%s://%s", schemeForPort(port), net.JoinHostPort(host, port)))
	if !ok {
		return d.direct.DialContext(ctx, network, address)
	}

	pd, err := d.proxyDialer(proxyURL)
	if err != nil {
		return nil, err
	}
	return pd.DialContext(ctx, network, address)
}

func (d *envDialer) proxyDialer(proxyURL string) (Dialer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if pd, ok := d.proxies[proxyURL]; ok {
		return pd, nil
	}

	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("env proxy url: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "socks5":
	default:
		return nil, fmt.Errorf("env proxy url scheme: %q", u.Scheme)
	}

	pd, err := New(d.cfg, proxyURL)
	if err != nil {
		return nil, err
	}
	d.proxies[proxyURL] = pd
	return pd, nil
}

// schemeForPort guesses the destination protocol from its port so the
// conventional per-protocol proxy variables keep working behind a SOCKS
// front end. Unknown ports fall through to all_proxy.
func schemeForPort(port string) string {
	switch port {
	case "80":
		return "http"
	case "443":
		return "https"
	case "21":
		return "ftp"
	default:
		return "tcp"
	}
}
