package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/janisto/crisphub/internal/config"
	"github.com/janisto/crisphub/internal/http/health"
	"github.com/janisto/crisphub/internal/http/v1/routes"
	applog "github.com/janisto/crisphub/internal/platform/logging"
	appmiddleware "github.com/janisto/crisphub/internal/platform/middleware"
	"github.com/janisto/crisphub/internal/platform/respond"
	analyticssvc "github.com/janisto/crisphub/internal/service/analytics"
	githubsvc "github.com/janisto/crisphub/internal/service/github"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		host   string
		port   int
		apiURL string
	)

	cmd := &cobra.Command{
		Use:           "crisphub",
		Short:         "Read-only GitHub analytics API",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				cfg.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("github-api-url") {
				cfg.GitHubAPIURL = apiURL
			}
			return run(cfg)
		},
	}

	cmd.Flags().StringVar(&host, "host", config.DefaultHost, "interface to bind (overrides HOST)")
	cmd.Flags().IntVar(&port, "port", config.DefaultPort, "port to listen on (overrides PORT)")
	cmd.Flags().StringVar(&apiURL, "github-api-url", config.DefaultGitHubAPIURL, "GitHub REST API base URL (overrides GITHUB_API_URL)")
	return cmd
}

func run(cfg config.Config) error {
	ctx := context.Background()
	if err := applog.SetLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	defer func() {
		if err := applog.Sync(); err != nil {
			applog.LogError(ctx, "logger sync error", err)
		}
	}()
	if err := applog.Err(); err != nil {
		applog.LogError(ctx, "logger init error", err)
	}
	if cfg.GitHubToken == "" {
		applog.LogWarn(ctx, "GITHUB_TOKEN not set; using unauthenticated GitHub API access")
	}

	gh := githubsvc.NewClient(
		&http.Client{Timeout: cfg.UpstreamTimeout},
		githubsvc.WithBaseURL(cfg.GitHubAPIURL),
		githubsvc.WithToken(cfg.GitHubToken),
	)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           newRouter(analyticssvc.New(gh)),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    64 << 10, // 64 KB
	}

	listenErr := make(chan error, 1)
	go func() {
		applog.LogInfo(ctx, "server listening",
			zap.String("addr", srv.Addr),
			zap.String("githubApiUrl", cfg.GitHubAPIURL),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-listenErr:
		applog.LogError(ctx, "listen failed", err, zap.String("addr", srv.Addr))
		return err
	case <-stop:
		applog.LogInfo(ctx, "shutdown signal received")
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		applog.LogError(shutdownCtx, "server shutdown error", err)
	}
	applog.LogInfo(ctx, "server exited")
	return nil
}

func newRouter(svc analyticssvc.Service) http.Handler {
	respond.Install()

	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	// Base middleware stack
	router.Use(
		appmiddleware.Security("/api-docs"),
		appmiddleware.Vary(),
		appmiddleware.CORS(),
		appmiddleware.RequestID(),
		// RealIP trusts X-Real-IP / X-Forwarded-For; run behind a trusted proxy.
		chimiddleware.RealIP,
		chimiddleware.RequestSize(1<<20), // 1 MB limit
		applog.RequestLogger(),
		applog.AccessLogger(),
		respond.Recoverer(),
	)

	router.Get("/health", health.Handler)

	cfg := huma.DefaultConfig("CrispHub GitHub Analytics API", Version)
	cfg.DocsPath = "/api-docs"
	// Responses are plain payloads without a $schema link.
	cfg.CreateHooks = nil
	api := humachi.New(router, cfg)

	// Add CBOR content type to OpenAPI responses
	api.OpenAPI().OnAddOperation = append(api.OpenAPI().OnAddOperation,
		func(_ *huma.OpenAPI, op *huma.Operation) {
			for _, resp := range op.Responses {
				if resp.Content == nil {
					continue
				}
				if jsonContent, ok := resp.Content["application/json"]; ok {
					resp.Content["application/cbor"] = jsonContent
				}
			}
		},
	)

	routes.Register(api, svc)
	return router
}
