package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"golang.org/x/sync/errgroup"
)

type closeWriter interface {
	CloseWrite() error
}

// relay pumps bytes between client and dst, one goroutine per direction,
// until both directions have ended. When one direction sees EOF or an
// error, the peer's write side is half-closed so it observes end-of-stream
// promptly; the opposite direction keeps running. Both sockets are closed
// once the directions have joined, or immediately if ctx is canceled.
func relay(ctx context.Context, client, dst net.Conn, pool *bufferPool) error {
	closeBoth := func() {
		_ = client.Close()
		_ = dst.Close()
	}
	stop := context.AfterFunc(ctx, closeBoth)
	defer stop()
	defer closeBoth()

	var g errgroup.Group
	g.Go(func() error {
		return copyDirection(dst, client, pool)
	})
	g.Go(func() error {
		return copyDirection(client, dst, pool)
	})

	err := g.Wait()
	if err == nil || errors.Is(err, net.ErrClosed) {
		return nil
	}
	return fmt.Errorf("relay: %w", err)
}

// copyDirection forwards src to dst until EOF or a transport error, then
// signals end-of-stream to dst's reader. Errors end this direction only;
// nothing is retried.
func copyDirection(dst, src net.Conn, pool *bufferPool) error {
	buf := pool.Get()
	defer pool.Put(buf)

	_, err := io.CopyBuffer(dst, src, buf)

	if cw, ok := dst.(closeWriter); ok {
		_ = cw.CloseWrite()
	} else {
		// No half-close on this transport; a full close is the only
		// way to deliver EOF promptly.
		_ = dst.Close()
	}
	return err
}
