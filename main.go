package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"photostore/internal/artifact"
	"photostore/internal/catalog"
	"photostore/internal/config"
	"photostore/internal/handlers"
	"photostore/internal/ingest"
	"photostore/internal/logging"
	"photostore/internal/metrics"
	"photostore/internal/middleware"
	"photostore/internal/startup"

	"github.com/gorilla/mux"
)

func main() {
	startTime := time.Now()

	cfg, err := startup.LoadConfig()
	if err != nil {
		logging.Fatal("Configuration error: %v", err)
	}

	store, err := config.Load(cfg.AppDir)
	if err != nil {
		logging.Fatal("Failed to load configuration document: %v", err)
	}

	root, err := store.StorageRoot()
	if err != nil {
		logging.Fatal("Failed to resolve storage root: %v", err)
	}

	cat := catalog.New(root)
	records, err := cat.ListAll()
	if err != nil {
		logging.Fatal("Failed to read catalog: %v", err)
	}
	metrics.CatalogRecords.Set(float64(len(records)))
	startup.LogStorageInit(root, len(records))

	if err := artifact.InitVips(); err != nil {
		logging.Warn("libvips initialization failed: %v", err)
	}
	defer artifact.ShutdownVips()
	startup.LogPipelineInit(artifact.IsVipsAvailable())

	if err := artifact.EnsurePlaceholder(root); err != nil {
		logging.Fatal("Failed to create placeholder thumbnail: %v", err)
	}

	pipeline := ingest.NewPipeline(cat, artifact.NewGenerator(root))
	h := handlers.New(cat, pipeline, store, cfg.UploadTmpDir)

	router := mux.NewRouter()
	h.RegisterRoutes(router)
	startup.LogHTTPRoutes(router, cfg.LogHealthChecks)

	metrics.InitializeMetrics()

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = cfg.LogHealthChecks
	handler := middleware.Logger(loggingConfig)(router)
	handler = middleware.Metrics(middleware.DefaultMetricsConfig())(handler)
	handler = middleware.Compression()(handler)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	var metricsSrv *http.Server
	if cfg.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", h.MetricsHandler())
		metricsSrv = &http.Server{
			Addr:        ":" + cfg.MetricsPort,
			Handler:     metricsMux,
			ReadTimeout: 15 * time.Second,
		}

		go func() {
			if err := metricsSrv.ListenAndServe(); err != http.ErrServerClosed {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	go handleShutdown(srv, metricsSrv)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            cfg.Port,
		MetricsPort:     cfg.MetricsPort,
		MetricsEnabled:  cfg.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})

	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logging.Fatal("Server error: %v", err)
	}
}

func handleShutdown(srv, metricsSrv *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Shutting down libvips")
	artifact.ShutdownVips()
	startup.LogShutdownStepComplete("libvips stopped")

	startup.LogShutdownComplete()
}
