package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ent0n29/shakti/internal/calllog"
	"github.com/ent0n29/shakti/internal/config"
	"github.com/ent0n29/shakti/internal/httpapi"
	"github.com/ent0n29/shakti/internal/observability"
	"github.com/ent0n29/shakti/internal/retell"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf(".env load failed: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	shutdownTracing, err := observability.InitTracing("shakti", cfg.TraceExporter)
	if err != nil {
		log.Fatalf("tracing init failed: %v", err)
	}

	ctx := context.Background()
	var calls calllog.Store
	if cfg.CallLogEnabled {
		calls, err = calllog.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("call log init failed: %v", err)
		}
		defer calls.Close()
	}

	if cfg.RetellAPIKey == "" {
		log.Printf("RETELL_API_KEY is not set; retell-call requests will fail until it is configured")
	}
	if cfg.RetellFromNumber == "" {
		log.Printf("RETELL_FROM_NUMBER is not set; create-phone-call is unavailable")
	}
	vendor := retell.NewClient(cfg.RetellBaseURL, cfg.RetellAPIKey, cfg.RetellHTTPTimeout)

	api := httpapi.New(cfg, vendor, calls, metrics)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Printf("tracing shutdown failed: %v", err)
	}

	log.Printf("shutdown complete")
}
