package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes
	RouteAuthTwitter           = "/api/auth/twitter"
	RouteAuthTwitterCallback   = "/api/auth/twitter/callback"
	RouteAuthTwitterDisconnect = "/api/auth/twitter/disconnect"

	// API Routes
	RouteStatus = "/api/status"
	RoutePost   = "/api/post"
	RouteDebug  = "/api/debug"
)
