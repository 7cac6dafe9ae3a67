package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Authorization flow
	RouteAuthorize = "/authorize"
	RouteCallback  = "/callback"

	// Operational
	RouteHealthz = "/healthz"
	RouteMetrics = "/metrics"
)
