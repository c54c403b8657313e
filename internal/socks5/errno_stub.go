//go:build !unix

package socks5

func replyForErrno(err error) (byte, bool) {
	return 0, false
}
