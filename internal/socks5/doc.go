// Package socks5 implements the SOCKS5 wire protocol (RFC 1928): address
// encoding, the version/method greeting, and the CONNECT request/reply
// exchange.
//
// It contains no I/O policy beyond reading and writing complete protocol
// messages; connection handling, dialing, and relaying live in
// internal/proxy and internal/dialer. Messages are always written whole, so
// a reply is either fully on the wire or the write error is surfaced to the
// caller.
package socks5
