// Package dialer provides the outbound half of the proxy: resolving and
// connecting to destinations either directly or through an upstream proxy
// (HTTP CONNECT or SOCKS5), selected by an upstream URL or by the
// conventional proxy environment variables.
package dialer
