package proxy

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"time"
)

// Server accepts SOCKS5 client connections and runs one session per
// connection.
type Server struct {
	ctx     context.Context
	cfg     Config
	verbose bool
	pool    *bufferPool
}

// NewServer returns a Server whose sessions stop when ctx is canceled.
func NewServer(ctx context.Context, cfg Config, verbose bool) *Server {
	return &Server{
		ctx:     ctx,
		cfg:     cfg,
		verbose: verbose,
		pool:    newBufferPool(relayBufferSize),
	}
}

// Serve accepts connections on ln until the listener is closed. Accept
// errors, including resource exhaustion like EMFILE, back off briefly and
// continue; a slow or broken session never blocks the loop.
func (s *Server) Serve(ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("accept: %w", err)
			}
			log.Printf("accept: %v (retrying)", err)
			time.Sleep(200 * time.Millisecond)
			continue
		}

		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	err := newSession(s, conn).run()
	if err != nil && s.verbose {
		log.Printf("session %s: %v", conn.RemoteAddr(), err)
	}
}
