package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"proformacli/internal/config"
	"proformacli/internal/decoder"
	"proformacli/internal/errors"
	"proformacli/internal/exporter"
	"proformacli/internal/files"
	"proformacli/internal/infrastructure"
	custommw "proformacli/internal/middleware"
	"proformacli/internal/services"
	transporthttp "proformacli/internal/transport/http"
	"proformacli/internal/validation"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer infrastructure.CloseLogFile()
	slog.SetDefault(logger)

	providers, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	otelMW, err := custommw.NewOTelMiddleware(providers)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry middleware: %w", err)
	}

	manager, err := files.NewManager(cfg.Paths.UploadDir, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize upload storage: %w", err)
	}

	validator := validation.NewFileValidator(cfg.Upload, logger)
	excelDecoder := decoder.NewExcelDecoder(logger)

	uploadSvc := services.NewUploadService(manager, validator, logger).
		WithPreview(excelDecoder)
	analysisSvc := services.NewAnalysisService(excelDecoder, cfg.Attendance, logger).
		WithMetrics(otelMW.Metrics())

	healthSvc := services.NewHealthService(infrastructure.ServiceVersion, cfg.Paths, logger)
	reportExporter := exporter.NewExcelExporter(logger)

	includeStack := os.Getenv("ENVIRONMENT") == "development"
	errorHandler := errors.NewErrorHandler(logger, includeStack)

	router := transporthttp.NewRouter(cfg.Server, transporthttp.RouterDeps{
		Uploads:      transporthttp.NewUploadHandler(uploadSvc, logger, errorHandler),
		Analyses:     transporthttp.NewAnalysisHandler(uploadSvc, analysisSvc, reportExporter, logger, errorHandler),
		Health:       transporthttp.NewHealthHandler(healthSvc, logger),
		ErrorHandler: errorHandler,
		OTel:         otelMW,
		Metrics:      providers.PrometheusHTTP,
		Logger:       logger,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting",
			slog.String("addr", srv.Addr),
			slog.String("version", infrastructure.ServiceVersion))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigCh:
		logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}

	if err := providers.Shutdown(shutdownCtx); err != nil {
		logger.Error("Telemetry shutdown failed", "error", err)
	}

	logger.Info("Server stopped")
	return nil
}
