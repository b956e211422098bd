package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-cinema-auth/flowstate"
	"github.com/jrsteele09/go-cinema-auth/internal/config"
	"github.com/jrsteele09/go-cinema-auth/session"
	"github.com/rs/zerolog/log"
)

// FederatedProvider is an identity provider that completes with a federated assertion.
type FederatedProvider interface {
	ID() string
	AuthCodeURL(state, nonce, codeVerifier string) string
	Exchange(ctx context.Context, code, codeVerifier, nonce string) (session.FederatedAssertion, error)
}

// Deps are the collaborators the server is built from.
type Deps struct {
	Manager *Manager
	Flows   flowstate.Repo
	// Google is nil when Google sign-in is not configured.
	Google FederatedProvider
}

type Server struct {
	env     string // Environment (e.g., "DEV", "PROD")
	baseURL string
	mux     *http.ServeMux
	routes  []string
	config  config.Config

	sessions *Manager
	flows    flowstate.Repo
	google   FederatedProvider
}

func New(cfg config.Config, deps Deps) (*Server, error) {
	if deps.Manager == nil {
		return nil, fmt.Errorf("[Server New] session manager is required")
	}
	if deps.Google != nil && deps.Flows == nil {
		return nil, fmt.Errorf("[Server New] flow state repo is required for federated sign-in")
	}

	s := &Server{
		env:      cfg.GetEnv(),
		baseURL:  cfg.GetBaseURL(),
		mux:      http.NewServeMux(),
		config:   cfg,
		sessions: deps.Manager,
		flows:    deps.Flows,
		google:   deps.Google,
	}

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
		return
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
	log.Info().Msgf("[%-19s] %s", displayMethod, path)
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
