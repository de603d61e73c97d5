package server

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/yamato758/mikupost/imagegen"
	"github.com/yamato758/mikupost/internal/config"
	"github.com/yamato758/mikupost/kvstore"
	"github.com/yamato758/mikupost/session"
	"github.com/yamato758/mikupost/tokenstore"
	"github.com/yamato758/mikupost/twitter"
)

type Server struct {
	env    string // Environment (e.g., "DEV", "PRODUCTION")
	mux    *http.ServeMux
	routes []string
	config config.Config

	sessions *session.Store
	tokens   *tokenstore.Store
	images   *imagegen.Generator
	twitter  *twitter.Client

	nowTime func() time.Time // injectable for testing
}

// Option modifies the Server instance.
type Option func(*Server)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Server) {
		s.nowTime = nowFunc
	}
}

func New(cfg config.Config, options ...Option) *Server {
	kv := kvstore.New(cfg)
	tokens := tokenstore.NewStore(kv, cfg)

	s := &Server{
		mux:      http.NewServeMux(),
		config:   cfg,
		sessions: session.NewStore(kv),
		tokens:   tokens,
		images:   imagegen.New(cfg),
		twitter:  twitter.NewClient(cfg, tokens),
		nowTime:  time.Now,
	}
	s.env = cfg.GetEnv()

	for _, opt := range options {
		opt(s)
	}

	s.initRoutes()
	s.logRoutes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
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
			log.Printf("[%-7s] %s\n", parts[0], parts[1])
		} else {
			log.Printf("[%-7s] %s\n", "", parts[0])
		}
	}
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

// externalBaseURL resolves the externally visible base URL of the
// application. The callback may run behind a proxy or edge network, so a
// configured URL wins, then forwarded headers, then the request host.
func (s *Server) externalBaseURL(r *http.Request) string {
	if base := s.config.GetBaseURL(); base != "" {
		return strings.TrimSuffix(base, "/")
	}
	host := r.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = r.Host
	}
	return fmt.Sprintf("%s://%s", getScheme(r), host)
}
