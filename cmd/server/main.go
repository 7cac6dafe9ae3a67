package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"

	"github.com/mcpbridge/consent-bridge/clients"
	"github.com/mcpbridge/consent-bridge/internal/config"
	"github.com/mcpbridge/consent-bridge/internal/metrics"
	"github.com/mcpbridge/consent-bridge/server"
	"github.com/mcpbridge/consent-bridge/statestore"
	"github.com/mcpbridge/consent-bridge/upstream"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatalf("Error running server: %s\n", err)
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Printf("Server stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	_ = godotenv.Load()

	c := config.New()
	displayAppname(c.GetAppName())

	stateRepo, err := newStateRepo(c)
	if err != nil {
		return fmt.Errorf("state repo: %w", err)
	}

	clientRepo, err := newClientRepo(c)
	if err != nil {
		return fmt.Errorf("client repo: %w", err)
	}

	ctx := context.Background()
	provider, err := upstream.NewOIDCProvider(ctx, c, c.GetBaseURL()+"/callback")
	if err != nil {
		return fmt.Errorf("upstream provider: %w", err)
	}

	bridge, err := server.New(c, clientRepo, stateRepo, provider, metrics.New())
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: bridge}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

// newStateRepo picks redis when configured, the in-memory store otherwise.
// The in-memory store is single-instance only; multi-instance deployments
// need redis so every instance sees the same pending requests.
func newStateRepo(c config.Config) (statestore.Repo, error) {
	if url := c.GetRedisURL(); url != "" {
		return statestore.NewRedisRepo(url, c.GetStateTTL())
	}
	return statestore.NewInMemoryRepo(c.GetStateTTL()), nil
}

func newClientRepo(c config.Config) (clients.Repo, error) {
	repo, err := clients.NewInMemoryRepoFromFile(c.GetDataFolder())
	if err != nil {
		return nil, err
	}

	if c.GetEnv() == "DEV" {
		if _, err := repo.Get("demo-client"); errors.Is(err, clients.ErrClientNotFound) {
			seedErr := repo.Upsert(&clients.Client{
				ID:           "demo-client",
				Name:         "Demo Client",
				ClientURI:    "http://localhost:3000",
				RedirectURIs: []string{"http://localhost:3000/callback"},
				Scopes:       []string{"read", "write"},
			})
			if seedErr != nil {
				return nil, seedErr
			}
		}
	}
	return repo, nil
}

func listenAndServe(server *http.Server) error {
	log.Printf("Server listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
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
