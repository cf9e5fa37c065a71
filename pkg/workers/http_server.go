package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

const shutdownTimeout = 10 * time.Second

type httpServer struct {
	addr    string
	handler http.Handler

	// ready receives the bound address once listening; used by tests.
	ready chan<- string
}

func NewHTTPServer(addr string, handler http.Handler) (*httpServer, error) {
	if addr == "" {
		return nil, fmt.Errorf("http server address is empty")
	}
	return &httpServer{
		addr:    addr,
		handler: handler,
	}, nil
}

func (s *httpServer) Name() string { return "http_server" }

func (s *httpServer) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	slog.InfoContext(ctx, "HTTP server listening", "addr", ln.Addr().String())

	if s.ready != nil {
		s.ready <- ln.Addr().String()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
