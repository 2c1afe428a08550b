package sandbox

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/agenticauto/autobuilder/internal/logging"
)

// Config holds the sandbox configuration
type Config struct {
	Host        string
	Port        int    // 0 picks a free port
	CertPath    string // serve HTTPS when set together with KeyPath
	KeyPath     string
	Advertise   bool   // register over mDNS
	Instance    string // mDNS instance name; defaults to DefaultInstance()
	HostedLimit int    // 0 uses the free tier limit
	RequireAuth bool   // automation endpoints need a session token
}

// Server is an in-memory stand-in for the automation builder backend
type Server struct {
	config    *Config
	store     *Store
	hub       *Hub
	router    *gin.Engine
	tlsConfig *tls.Config

	httpServer *http.Server
	listener   net.Listener
	mdns       *zeroconf.Server
}

// New creates a sandbox. Nothing listens until Start.
func New(config *Config) (*Server, error) {
	if config == nil {
		config = &Config{}
	}

	var tlsConfig *tls.Config
	if config.CertPath != "" || config.KeyPath != "" {
		var err error
		tlsConfig, err = NewTLSConfig(config.CertPath, config.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
	}

	if gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	store := NewStore(config.HostedLimit)
	hub := NewHub()
	return &Server{
		config:    config,
		store:     store,
		hub:       hub,
		router:    NewRouter(store, hub, config.RequireAuth),
		tlsConfig: tlsConfig,
	}, nil
}

// Handler returns the HTTP handler, for embedding in httptest servers
func (s *Server) Handler() http.Handler {
	return s.router
}

// Store returns the backing store
func (s *Server) Store() *Store {
	return s.store
}

// Scheme returns "https" when TLS is configured, otherwise "http"
func (s *Server) Scheme() string {
	if s.tlsConfig != nil {
		return "https"
	}
	return "http"
}

// Listen binds the listener without serving. It is called by Start and
// may be called first to learn the port.
func (s *Server) Listen() error {
	if s.listener != nil {
		return nil
	}
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	if s.tlsConfig != nil {
		listener = tls.NewListener(listener, s.tlsConfig)
	}
	s.listener = listener
	return nil
}

// BaseURL returns the URL clients should use, once listening
func (s *Server) BaseURL() string {
	if s.listener == nil {
		return ""
	}
	host := s.config.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return fmt.Sprintf("%s://%s", s.Scheme(), net.JoinHostPort(host, strconv.Itoa(s.Port())))
}

// Port returns the bound port, or 0 before Listen
func (s *Server) Port() int {
	if s.listener == nil {
		return 0
	}
	if tcp, ok := s.listener.Addr().(*net.TCPAddr); ok {
		return tcp.Port
	}
	return s.config.Port
}

// Start serves until ctx is done, an interrupt arrives or serving fails
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}

	logging.Info("Starting sandbox backend",
		zap.String("addr", s.listener.Addr().String()),
		zap.String("url", s.BaseURL()),
		zap.Any("tls_info", GetTLSInfo(s.tlsConfig)),
		zap.Bool("require_auth", s.config.RequireAuth),
		zap.Int("hosted_limit", s.store.Limit()),
	)

	if s.config.Advertise {
		mdns, err := Advertise(s.config.Instance, s.Port(), s.Scheme())
		if err != nil {
			// serving still works without discovery
			logging.Warn("mDNS registration failed", zap.Error(err))
		}
		s.mdns = mdns
	}

	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.httpServer.Serve(s.listener)
	}()

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping sandbox...")
	case <-ctx.Done():
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown stops advertising, disconnects feed clients and drains requests
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down sandbox...")

	if s.mdns != nil {
		s.mdns.Shutdown()
		s.mdns = nil
	}
	s.hub.Close()

	if s.httpServer == nil {
		if s.listener != nil {
			return s.listener.Close()
		}
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		logging.Warn("Shutdown timeout, forcing close", zap.Error(err))
		return s.httpServer.Close()
	}

	logging.Sync()
	return nil
}
