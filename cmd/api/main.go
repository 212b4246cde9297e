package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookcatalog/internal/catalog"
	"bookcatalog/internal/config"
	"bookcatalog/internal/httpx"
	"bookcatalog/internal/platform/logging"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, closeSource := openCatalog(ctx, cfg, logger)
	defer closeSource()

	limiter := httpx.NewRateLimitMiddleware(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst)
	go limiter.RunCleanup(ctx)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      newRouter(svc, cfg, limiter, logger),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("starting server", zap.String("addr", cfg.Addr))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}

// openCatalog loads the catalog before the server starts listening. A
// failed load is logged and the server still starts, answering with the
// load failure message.
func openCatalog(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*catalog.Service, func()) {
	src, closeSource, err := catalog.OpenSource(ctx, cfg.CatalogSource, catalog.SourceOptions{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.HTTPTimeout,
		Logger:    logger,
	})
	if err != nil {
		logger.Error("cannot open catalog source", zap.Error(err))
		return catalog.NewService(unavailableSource{err: err}, logger), func() {}
	}

	svc := catalog.NewService(src, logger)
	_ = svc.Load(ctx)
	return svc, closeSource
}

// unavailableSource stands in for a source that could not be opened.
type unavailableSource struct {
	err error
}

func (s unavailableSource) Load(context.Context) ([]catalog.Book, error) {
	return nil, s.err
}

func (s unavailableSource) String() string {
	return "unavailable"
}

func newRouter(svc *catalog.Service, cfg *config.Config, limiter *httpx.RateLimitMiddleware, logger *zap.Logger) http.Handler {
	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !svc.Loaded() {
			http.Error(w, "catalog not loaded", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	catalog.NewHTTPHandler(svc, logger).Register(router)

	return httpx.Chain(router,
		httpx.RequestIDMiddleware,
		httpx.RecoveryMiddleware(logger),
		httpx.AccessLogMiddleware(logger),
		httpx.SecurityHeadersMiddleware(cfg.HTTP.EnableHSTS),
		httpx.CORSMiddleware(cfg.HTTP.CORSAllowedOrigins),
		limiter.Middleware,
	)
}
