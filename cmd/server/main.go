package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-cinema-auth/authapi"
	"github.com/jrsteele09/go-cinema-auth/flowstate"
	"github.com/jrsteele09/go-cinema-auth/internal/config"
	"github.com/jrsteele09/go-cinema-auth/provider"
	"github.com/jrsteele09/go-cinema-auth/server"
	"github.com/jrsteele09/go-cinema-auth/session"
	"github.com/jrsteele09/go-cinema-auth/sessionstore"
	"github.com/jrsteele09/go-cinema-auth/sessiontoken"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	setupLogger(c.GetEnv())
	displayAppname(c.GetAppName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler, closeFn, err := build(ctx, c)
	if err != nil {
		return err
	}
	defer closeFn()

	srv := &http.Server{Addr: c.GetPort(), Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- listenAndServe(srv)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	return shutdown(srv)
}

// build wires the session authority, its storage and the HTTP surface.
func build(ctx context.Context, c config.Config) (http.Handler, func(), error) {
	closeFn := func() {}

	api := authapi.New(c.GetAPIBaseURL(), &http.Client{Timeout: c.GetHTTPTimeout()})
	authority := session.NewAuthority(api)

	var repo sessionstore.Repo
	if addr := c.GetRedisAddr(); addr != "" {
		client, err := sessionstore.Connect(ctx, addr, c.GetRedisPassword())
		if err != nil {
			return nil, closeFn, fmt.Errorf("[build] %w", err)
		}
		closeFn = func() { _ = client.Close() }
		repo = sessionstore.NewRedisRepo(client, c.GetMaxSessionAge())
		log.Info().Str("addr", addr).Msg("Sessions stored in Redis")
	} else {
		log.Warn().Msg("REDIS_ADDR not set - sessions are kept in memory")
		memRepo := sessionstore.NewInMemoryRepo(c.GetMaxSessionAge())
		go sweepExpiredSessions(ctx, memRepo, time.Hour)
		repo = memRepo
	}

	tokens, err := sessiontoken.New(c.GetSessionSecret(), c.GetMaxSessionAge())
	if err != nil {
		return nil, closeFn, fmt.Errorf("[build] %w", err)
	}

	deps := server.Deps{
		Manager: server.NewManager(authority, repo, tokens),
		Flows:   flowstate.NewInMemoryRepo(c.GetFlowStateTimeout()),
	}
	if c.GoogleEnabled() {
		google, err := provider.NewGoogle(ctx, c.GetGoogleIssuer(), c.GetGoogleClientID(), c.GetGoogleClientSecret(), c.GetBaseURL()+server.RouteGoogleCallback)
		if err != nil {
			return nil, closeFn, fmt.Errorf("[build] %w", err)
		}
		deps.Google = google
	}

	log.Info().Stringer("origins", c.GetAllowedOrigins()).Msg("Allowed CORS origins")

	s, err := server.New(c, deps)
	if err != nil {
		return nil, closeFn, err
	}
	return s, closeFn, nil
}

// sweepExpiredSessions drops sessions nobody has read since they expired.
func sweepExpiredSessions(ctx context.Context, repo *sessionstore.InMemoryRepo, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := repo.DeleteExpired(); n > 0 {
				log.Debug().Int("removed", n).Msg("Expired sessions removed")
			}
		}
	}
}

func setupLogger(env string) {
	zerolog.TimeFieldFormat = time.RFC3339
	if env == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
