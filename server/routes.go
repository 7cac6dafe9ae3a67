package server

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	// AUTHORIZATION FLOW
	s.RegisterRouteHandler("GET "+RouteAuthorize, ChainMiddleware(s.AuthorizeGetHandler(), s.FlowMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthorize, ChainMiddleware(s.AuthorizeSubmitHandler(), s.FlowMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteCallback, ChainMiddleware(s.CallbackHandler(), s.FlowMiddleware()...))

	// OPERATIONAL
	s.RegisterRouteFunc("GET "+RouteHealthz, s.HealthzHandler())
	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.Handler())
}
