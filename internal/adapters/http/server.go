// Package http is the Gin adapter exposing the catalog API.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-catalog/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-catalog/internal/platform/config"
)

// defaultShutdownTimeout applies when ServerConfig leaves it unset.
const defaultShutdownTimeout = 10 * time.Second

// Server owns the Gin engine and the listener serving it.
type Server struct {
	engine *gin.Engine
	srv    *http.Server
	cfg    *config.ServerConfig
	logger *slog.Logger
}

// New builds a Server from cfg. Bodies larger than cfg.MaxRequestSize are
// refused with 413 before routing.
func New(cfg *config.ServerConfig, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(limitBody(cfg.MaxRequestSize))

	return &Server{
		engine: engine,
		srv: &http.Server{
			Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			Handler:           engine,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		},
		cfg:    cfg,
		logger: logger,
	}
}

// Engine returns the Gin engine routes are registered on.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Config returns the server configuration.
func (s *Server) Config() *config.ServerConfig {
	return s.cfg
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.srv.Addr
}

// Run listens on the configured address and serves until ctx is done, then
// drains in-flight requests for up to ShutdownTimeout. ready, when not nil,
// receives the bound address once the listener is open.
func (s *Server) Run(ctx context.Context, ready func(net.Addr)) error {
	var lc net.ListenConfig

	ln, err := lc.Listen(ctx, "tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}

	s.logger.InfoContext(ctx, "serving catalog API",
		slog.String("addr", ln.Addr().String()),
		slog.Int64("max_request_size", s.cfg.MaxRequestSize),
	)

	if ready != nil {
		ready(ln.Addr())
	}

	serveErr := make(chan error, 1)

	go func() {
		serveErr <- s.srv.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	return s.drain()
}

func (s *Server) drain() error {
	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	s.logger.Info("draining catalog API", slog.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutting down: %w", err)
	}

	s.logger.Info("catalog API stopped")

	return nil
}

// limitBody rejects a declared Content-Length above maxBytes with 413 and
// caps the reader for chunked bodies, which fail once they cross it.
func limitBody(maxBytes int64) gin.HandlerFunc {
	tooLarge := fmt.Sprintf("request body exceeds %d bytes", maxBytes)

	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			dto.AbortWithErrorCode(c, dto.ErrorCodePayloadTooLarge, tooLarge)
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
