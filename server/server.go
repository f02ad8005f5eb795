package server

import (
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"

	"github.com/jrsteele09/course-session-gateway/auth"
	"github.com/jrsteele09/course-session-gateway/courses"
	"github.com/jrsteele09/course-session-gateway/internal/config"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

type Server struct {
	env     string // Environment (e.g., "DEV", "PROD")
	mux     *http.ServeMux
	handler http.Handler
	routes  []string
	config  config.Config
	auth    *auth.Service
	catalog *courses.Catalog
	uiFS    fs.FS

	rateStore   limiter.Store
	rateLimiter *stdlibmw.Middleware
}

// Option modifies a Server
type Option func(*Server)

// WithUIFS serves UI assets from fsys instead of the UI_DIR folder
func WithUIFS(fsys fs.FS) Option {
	return func(s *Server) {
		s.uiFS = fsys
	}
}

// WithRateLimitStore shares rate limit counters through store (e.g. Redis)
func WithRateLimitStore(store limiter.Store) Option {
	return func(s *Server) {
		s.rateStore = store
	}
}

func New(config config.Config, authService *auth.Service, options ...Option) (*Server, error) {
	if authService == nil {
		return nil, fmt.Errorf("[Server New] auth service is required")
	}

	s := &Server{
		env:     config.GetEnv(),
		mux:     http.NewServeMux(),
		config:  config,
		auth:    authService,
		catalog: courses.NewCatalog(authService.Client()),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.uiFS == nil {
		s.uiFS = os.DirFS(config.GetUIDir())
	}

	if config.GetEnableRateLimiting() {
		rate, err := limiter.NewRateFromFormatted(config.GetSignInRate())
		if err != nil {
			return nil, fmt.Errorf("[Server New] invalid sign in rate %q: %w", config.GetSignInRate(), err)
		}
		if s.rateStore == nil {
			s.rateStore = memory.NewStore()
		}
		instance := limiter.New(s.rateStore, rate, limiter.WithTrustForwardHeader(config.GetTrustProxyHeaders()))
		s.rateLimiter = stdlibmw.NewMiddleware(instance, stdlibmw.WithLimitReachedHandler(limitReached))
	}

	s.handler = cors.New(cors.Options{
		AllowedOrigins:   config.GetAllowedOrigins().List(),
		AllowedMethods:   config.GetAllowedMethods(),
		AllowedHeaders:   config.GetAllowedHeaders(),
		AllowCredentials: true,
		MaxAge:           86400,
	}).Handler(s.mux)

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	color, ok := methodColors[method]
	if !ok {
		color = Gray
	}
	log.Info().Msgf("[%s%s%s] %s", color, paddedMethod, ResetColor, path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
