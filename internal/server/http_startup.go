package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salaryscope/internal/cache"
	"salaryscope/internal/config"
	"salaryscope/internal/observability"
	"salaryscope/internal/pipeline"
)

// Start starts the HTTP server with all configured components
func (s *Server) Start() error {
	om, err := s.initializeObservability()
	if err != nil {
		return err
	}
	defer s.shutdownObservability(om)

	prompts, promptWatcher, err := s.setupPromptStore()
	if err != nil {
		return err
	}

	analysisCache, err := cache.New(s.AppConfig.Cache, s.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize analysis cache: %w", err)
	}

	s.Pipeline, err = pipeline.NewService(s.AppConfig, analysisCache, prompts, om, s.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize analysis pipeline: %w", err)
	}

	httpServer := s.setupHTTPServer(om)

	s.displayServerInfo()

	return s.startWithGracefulShutdown(httpServer, analysisCache, promptWatcher)
}

// initializeObservability sets up observability components
func (s *Server) initializeObservability() (*observability.ObservabilityManager, error) {
	obsConfig := observability.GetObservabilityConfig(s.AppConfig, s.Version)

	om, err := observability.NewObservabilityManager(obsConfig, s.AppConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}

	return om, nil
}

// shutdownObservability handles observability cleanup
func (s *Server) shutdownObservability(om *observability.ObservabilityManager) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := om.Shutdown(ctx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown observability")
	}
}

// setupPromptStore loads prompt overrides and starts the hot-reload
// watcher when a prompts directory is configured.
func (s *Server) setupPromptStore() (*config.PromptStore, *config.PromptWatcher, error) {
	if s.AppConfig.Pipeline.PromptsDir == "" {
		return nil, nil, nil
	}

	prompts, err := config.NewPromptStore(s.AppConfig.Pipeline.PromptsDir, s.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load prompt overrides: %w", err)
	}

	watcher, err := config.NewPromptWatcher(prompts, s.Logger)
	if err != nil {
		// Overrides still work without hot reload
		s.Logger.LogError(err, "Prompt watcher unavailable, overrides load once at startup")
		return prompts, nil, nil
	}
	watcher.Start()

	return prompts, watcher, nil
}

// setupHTTPServer creates and configures the HTTP server
func (s *Server) setupHTTPServer(om *observability.ObservabilityManager) *http.Server {
	mux := s.setupRoutes(om)
	handler := om.HTTPMiddleware()(mux)
	addr := fmt.Sprintf("%s:%s", s.Host, s.Port)

	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
		IdleTimeout:  s.IdleTimeout,
	}
}

// startWithGracefulShutdown starts the HTTP server and handles graceful shutdown
func (s *Server) startWithGracefulShutdown(server *http.Server, analysisCache *cache.AnalysisCache, promptWatcher *config.PromptWatcher) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	tlsEnabled := s.TLSConfig.Mode == "server"

	go func() {
		s.Logger.Info("Starting HTTP server",
			"address", server.Addr,
			"tls_enabled", tlsEnabled)

		var err error
		if tlsEnabled {
			err = server.ListenAndServeTLS(s.TLSConfig.CertFile, s.TLSConfig.KeyFile)
		} else {
			err = server.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server failed to start: %w", err)
	case sig := <-quit:
		s.Logger.Info("Received shutdown signal, starting graceful shutdown",
			"signal", sig.String())

		return s.performGracefulShutdown(server, analysisCache, promptWatcher)
	}
}

// performGracefulShutdown handles the graceful shutdown process
func (s *Server) performGracefulShutdown(server *http.Server, analysisCache *cache.AnalysisCache, promptWatcher *config.PromptWatcher) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if promptWatcher != nil {
		promptWatcher.Stop()
	}

	s.cleanupRateLimiter()

	s.Logger.Info("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown server gracefully, forcing close")
		return server.Close()
	}

	if s.Pipeline != nil {
		if err := s.Pipeline.Close(); err != nil {
			s.Logger.LogError(err, "Failed to close analysis pipeline")
		}
	}
	if err := analysisCache.Close(); err != nil {
		s.Logger.LogError(err, "Failed to close analysis cache")
	}

	s.Logger.Info("Server shutdown completed successfully")
	return nil
}

// cleanupRateLimiter cleans up the rate limiter resources
func (s *Server) cleanupRateLimiter() {
	if s.RateLimiter != nil {
		s.RateLimiter.Close()
		s.Logger.Info("Rate limiter cleaned up")
	}
}
