package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/blogcms/blogcms/pkg/blogcms/api"
	"github.com/blogcms/blogcms/pkg/blogcms/config"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	serverConfig, err := config.Load()
	if err != nil {
		slog.Error("failed to load server configuration", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()
	services, err := serverConfig.BuildServices(ctx)
	if err != nil {
		slog.Error("failed to build services", "err", err)
		os.Exit(1)
	}
	defer services.Close()

	server := NewHTTPServer(services, serverConfig)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", serverConfig.Port),
		Handler: server.Routes(),
	}

	go func() {
		slog.Info("blog server starting",
			"port", serverConfig.Port,
			"env", serverConfig.Environment,
			"database", serverConfig.DatabaseType,
			"assets", serverConfig.AssetBackend)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "err", err)
		os.Exit(1)
	}

	slog.Info("server exiting")
}

// HTTPServer wires the service graph into the HTTP surface.
type HTTPServer struct {
	services *config.Services
	config   *config.ServerConfig
}

// NewHTTPServer creates a new HTTP server wrapper.
func NewHTTPServer(services *config.Services, serverConfig *config.ServerConfig) *HTTPServer {
	return &HTTPServer{
		services: services,
		config:   serverConfig,
	}
}

// Routes sets up the HTTP routes.
func (s *HTTPServer) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS for development
	if s.config.IsDevelopment() {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Access-Control-Allow-Origin", "*")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

				if r.Method == "OPTIONS" {
					w.WriteHeader(http.StatusOK)
					return
				}

				next.ServeHTTP(w, r)
			})
		})
	}

	r.Get("/health", s.handleHealth)

	handler := api.NewHandler(s.services.Posts, s.services.Auth)
	r.Mount("/", handler.Routes())

	// Uploaded images are served straight off disk when the asset store
	// is filesystem-backed. The memory backend holds assets in process and
	// the s3 backend serves them from the bucket, so neither gets a route.
	if s.config.AssetBackend == "fs" {
		prefix := s.config.PublicPrefix
		fileServer := http.StripPrefix(prefix, http.FileServer(http.Dir(s.config.UploadDir)))
		r.Get(prefix+"/*", fileServer.ServeHTTP)
	}

	return r
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
