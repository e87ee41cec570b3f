package httpstream

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/net/netutil"

	"github.com/kbukum/streamgen/logger"
)

// Server is the HTTP listener serving a Handler.
type Server struct {
	httpServer *http.Server
	config     Config
	listener   net.Listener
	log        *logger.Logger
}

// NewServer creates a Server for handler. cfg should already have defaults applied.
func NewServer(cfg Config, handler *Handler, log *logger.Logger) *Server {
	// Set Gin mode based on global zerolog level.
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// h2c lets HTTP/2 clients multiplex several byte streams over one connection.
	streams := uint32(250)
	if cfg.MaxConns > 0 {
		streams = uint32(cfg.MaxConns)
	}
	h2s := &http2.Server{
		MaxConcurrentStreams: streams,
		IdleTimeout:          time.Duration(cfg.IdleTimeout) * time.Second,
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           h2c.NewHandler(handler.Engine(), h2s),
			ReadHeaderTimeout: time.Duration(cfg.ReadTimeout) * time.Second,
			ReadTimeout:       time.Duration(cfg.ReadTimeout) * time.Second,
			WriteTimeout:      time.Duration(cfg.WriteTimeout) * time.Second,
			IdleTimeout:       time.Duration(cfg.IdleTimeout) * time.Second,
		},
		config: cfg,
		log:    log.WithComponent("server"),
	}
}

// Start binds the port and begins serving. It returns once the listener is
// bound; serving continues in a goroutine.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}
	if s.config.MaxConns > 0 {
		listener = netutil.LimitListener(listener, s.config.MaxConns)
	}
	s.listener = listener

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("Server error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	s.log.Info("HTTP server started", map[string]interface{}{
		"addr":      listener.Addr().String(),
		"max_conns": s.config.MaxConns,
		"rate":      s.config.RateLimit,
	})
	return nil
}

// Stop gracefully shuts down the server with a 5-second deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	return nil
}

// Addr returns the bound address once started, else the configured one.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}
