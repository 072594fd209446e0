// Package server exposes resource runs over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/sonicctl/internal/auth"
	"github.com/danmuck/sonicctl/internal/config"
	"github.com/danmuck/sonicctl/internal/observability"
	"github.com/danmuck/sonicctl/internal/resources"
	"github.com/danmuck/sonicctl/internal/restconf"
)

// ErrBusy is returned when a run for the same device and resource is
// already in flight.
var ErrBusy = errors.New("server: resource busy")

// Connector opens a device transport by inventory name.
type Connector interface {
	Connect(name string) (resources.Target, error)
	Devices() []string
}

// InventoryConnector builds RESTCONF clients from an inventory.
type InventoryConnector struct {
	Inventory config.Inventory
}

func (ic InventoryConnector) Connect(name string) (resources.Target, error) {
	dev, err := ic.Inventory.Lookup(name)
	if err != nil {
		return resources.Target{}, err
	}
	cfg, err := dev.Transport()
	if err != nil {
		return resources.Target{}, err
	}
	naming, err := dev.Naming()
	if err != nil {
		return resources.Target{}, err
	}
	client, err := restconf.NewClient(cfg)
	if err != nil {
		return resources.Target{}, err
	}
	return resources.Target{Device: dev.Name, Transport: client, Naming: naming}, nil
}

func (ic InventoryConnector) Devices() []string {
	return ic.Inventory.Names()
}

type Options struct {
	Name        string
	CorsOrigins []string
	Validator   auth.Validator
}

type Server struct {
	Name     string
	Appeared time.Time

	router    *gin.Engine
	registry  *resources.Registry
	connector Connector
	validator auth.Validator

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func New(registry *resources.Registry, connector Connector, opts Options) *Server {
	observability.RegisterMetrics()
	if opts.Name == "" {
		opts.Name = "sonicctl"
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware(opts.Name))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(opts.CorsOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	return &Server{
		Name:      opts.Name,
		Appeared:  time.Now(),
		router:    r,
		registry:  registry,
		connector: connector,
		validator: opts.Validator,
		inFlight:  make(map[string]struct{}),
	}
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

// Serve runs the API on addr until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("service", s.Name).Msg("server.Serve listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		log.Info().Str("service", s.Name).Msg("server.Serve stopped")
		return nil
	}
}

// acquire marks device/resource busy. The returned release must be called.
func (s *Server) acquire(device, resource string) (func(), error) {
	key := device + "/" + resource
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[key]; busy {
		return nil, ErrBusy
	}
	s.inFlight[key] = struct{}{}
	return func() {
		s.mu.Lock()
		delete(s.inFlight, key)
		s.mu.Unlock()
	}, nil
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
