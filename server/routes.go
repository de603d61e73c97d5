package server

import "net/http"

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET /{$}", s.IndexHandler())

	// OAuth flow
	s.RegisterRouteFunc("GET "+RouteAuthTwitter, ChainMiddleware(s.AuthorizeHandler(), s.defaultMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteAuthTwitterCallback, ChainMiddleware(s.CallbackHandler(), s.defaultMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteAuthTwitterDisconnect, ChainMiddleware(s.DisconnectHandler(), s.defaultMiddleware()...))

	// API routes
	s.RegisterRouteFunc("GET "+RouteStatus, ChainMiddleware(s.StatusHandler(), s.defaultMiddleware()...))
	s.RegisterRouteFunc("POST "+RoutePost, ChainMiddleware(s.PostHandler(), s.defaultMiddleware()...))

	// Operational scaffolding, never exposed in production
	if s.env != "PRODUCTION" {
		s.RegisterRouteFunc("GET "+RouteDebug, ChainMiddleware(s.DebugHandler(), s.defaultMiddleware()...))
	}
}

// IndexHandler serves a placeholder page; the real UI is rendered by the
// frontend deployment and only consumes the success/error query
// parameters the handlers redirect with.
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<!doctype html><title>mikupost</title><p>mikupost server</p>"))
	}
}
