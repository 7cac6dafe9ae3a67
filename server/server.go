package server

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/mcpbridge/consent-bridge/clients"
	"github.com/mcpbridge/consent-bridge/internal/config"
	"github.com/mcpbridge/consent-bridge/internal/metrics"
	"github.com/mcpbridge/consent-bridge/statestore"
	"github.com/mcpbridge/consent-bridge/token"
	"github.com/mcpbridge/consent-bridge/upstream"
)

type Server struct {
	env     string // Environment (e.g., "DEV", "production")
	mux     *http.ServeMux
	routes  []string
	config  config.Config
	clients clients.Repo
	state   statestore.Repo
	up      upstream.Provider
	minter  *token.Minter
	metrics *metrics.Metrics

	cookieSecret []byte
}

func New(cfg config.Config, clientRepo clients.Repo, stateRepo statestore.Repo, up upstream.Provider, m *metrics.Metrics) (*Server, error) {
	cookieSecret := cfg.GetCookieSecret()
	if cookieSecret == "" {
		return nil, fmt.Errorf("[Server New] COOKIE_SECRET is required")
	}

	minter, err := token.NewMinter(cfg.GetBaseURL(), []byte(cfg.GetSessionTokenKey()), cfg.GetSessionTokenExpiry())
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create token minter: %w", err)
	}

	s := &Server{
		mux:          http.NewServeMux(),
		config:       cfg,
		clients:      clientRepo,
		state:        stateRepo,
		up:           up,
		minter:       minter,
		metrics:      m,
		cookieSecret: []byte(cookieSecret),
	}
	s.env = cfg.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
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
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Printf("[%-19s] %s\n", displayMethod, path)
}
