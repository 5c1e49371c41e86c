package api

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "api")

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	MaxConcurrent int
	CORSOrigin    string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(addr string) ServerConfig {
	return ServerConfig{
		Addr:          addr,
		ReadTimeout:   5 * time.Second,
		WriteTimeout:  5 * time.Second,
		MaxConcurrent: runtime.NumCPU() * 2,
	}
}

// NewServer creates an HTTP server with all routes and middleware.
func NewServer(cfg ServerConfig, handlers *Handlers) *http.Server {
	r := chi.NewRouter()

	if cfg.CORSOrigin != "" {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{cfg.CORSOrigin},
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"*"},
		}))
	}

	// Concurrency limiter shared by all routes.
	sem := make(chan struct{}, cfg.MaxConcurrent)
	r.Use(withMiddleware(sem))

	r.Get("/api/v1/intersections", handlers.HandleIntersections)
	r.Get("/api/v1/vehicles", handlers.HandleVehicles)
	r.Get("/api/v1/passengers", handlers.HandlePassengers)
	r.Get("/api/v1/stats", handlers.HandleStats)
	r.Get("/api/v1/health", handlers.HandleHealth)

	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

// Serve runs the server until the context is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// withMiddleware wraps handlers with security headers, a concurrency
// limiter, panic recovery and a request log.
func withMiddleware(sem chan struct{}) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Security headers.
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("Cache-Control", "no-store")

			// Concurrency limiter.
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			default:
				w.Header().Set("Retry-After", "1")
				http.Error(w, `{"error":"service_unavailable"}`, http.StatusServiceUnavailable)
				return
			}

			// Recovery.
			defer func() {
				if rec := recover(); rec != nil {
					log.Errorf("panic: %v", rec)
					http.Error(w, `{"error":"internal_error"}`, http.StatusInternalServerError)
				}
			}()

			start := time.Now()
			next.ServeHTTP(w, r)
			log.Debugf("%s %s %s", r.Method, r.URL.Path, time.Since(start).Round(time.Microsecond))
		})
	}
}
