// Package httpx holds the HTTP plumbing shared by the API process: the
// router with its middleware stack, JSON responses and the health endpoint.
package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"
)

const (
	defaultRateLimit      = 300
	defaultRequestTimeout = 15 * time.Second
	// Order and menu payloads are small; bulk template imports are the
	// largest bodies accepted.
	defaultBodyLimit int64 = 1 << 20
	shutdownTimeout        = 30 * time.Second
)

// ServerConfig holds the options for NewRouter. Zero values select defaults.
type ServerConfig struct {
	IsDevelopment bool
	// CORSAllowedOrigins is a comma-separated list; "*" allows any origin
	// but disables credentialed (cookie) requests.
	CORSAllowedOrigins string
	// RateLimit is requests per minute per client IP.
	RateLimit      int
	RequestTimeout time.Duration
	BodyLimit      int64
}

func (c ServerConfig) withDefaults() ServerConfig {
	if c.RateLimit <= 0 {
		c.RateLimit = defaultRateLimit
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	if c.BodyLimit <= 0 {
		c.BodyLimit = defaultBodyLimit
	}
	return c
}

// NewRouter returns a chi.Mux with the shared middleware stack. RequestID
// runs first so every outer middleware (recovery, sentry, otel, request log)
// sees the id; outer runs next in the order given, followed by RealIP, the
// per-IP rate limit, CORS, the body cap, the handler deadline and security
// headers.
func NewRouter(cfg ServerConfig, outer ...func(http.Handler) http.Handler) *chi.Mux {
	cfg = cfg.withDefaults()

	sec := secure.New(secure.Options{
		STSSeconds:            63072000,
		STSIncludeSubdomains:  true,
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		IsDevelopment:         cfg.IsDevelopment,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(outer...)
	r.Use(
		middleware.RealIP,
		RateLimit(cfg.RateLimit),
		CORSMiddleware(cfg.CORSAllowedOrigins),
		RequestBodyLimit(cfg.BodyLimit),
		middleware.Timeout(cfg.RequestTimeout),
		sec.Handler,
	)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		JSONError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		JSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// RateLimit allows perMinute requests per client IP and answers the excess
// with a JSON 429. Diners share a restaurant's public IP far less often than
// they poll, so the key is the IP alone.
func RateLimit(perMinute int) func(http.Handler) http.Handler {
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			JSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
		}),
	)
}

// CORSMiddleware restricts cross-origin requests to allowedOrigins.
// Credentials (the session cookie) are allowed only for explicit origins.
func CORSMiddleware(allowedOrigins string) func(http.Handler) http.Handler {
	origins := parseOrigins(allowedOrigins)
	wildcard := len(origins) == 1 && origins[0] == "*"
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: !wildcard,
		MaxAge:           600,
	})
}

func parseOrigins(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// RequestBodyLimit caps request bodies at maxBytes. Reads past the cap fail
// with *http.MaxBytesError.
func RequestBodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// NewServer returns an *http.Server whose write timeout leaves room for a
// handler running up to requestTimeout.
func NewServer(addr string, handler http.Handler, requestTimeout time.Duration) *http.Server {
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      requestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}

// Run serves srv until ctx is cancelled, then shuts down gracefully. It
// returns the listen error, or the shutdown error after cancellation.
func Run(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listen on %s: %w", srv.Addr, err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
