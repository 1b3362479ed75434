package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"financial_insights/pkg/api/insights"
	"financial_insights/pkg/config"
	"financial_insights/pkg/core/fetch"
	"financial_insights/pkg/core/llm"
	"financial_insights/pkg/core/pipeline"
	"financial_insights/pkg/core/prompt"
	"financial_insights/pkg/core/ratio"
	"financial_insights/pkg/core/store"
	"financial_insights/pkg/core/synthesis"
)

func main() {
	godotenv.Load()

	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	path := "config/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal("config load failed", zap.Error(err))
	}

	// Prompt overrides are optional; compiled-in defaults always exist.
	if err := prompt.LoadFromDirectory(cfg.Resources); err != nil {
		log.Warn("prompt overrides not loaded, using defaults", zap.Error(err))
	} else {
		log.Info("prompt library ready", zap.Int("templates", prompt.Get().Count()))
	}

	ctx := context.Background()

	clients, err := llm.NewClients(ctx, llm.Settings{
		GeminiAPIKey:    cfg.GeminiAPIKey,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		GeminiModel:     cfg.Models.Gemini,
		ClaudeModel:     cfg.Models.Claude,
		ExtractionMode:  cfg.Pipeline.ExtractionMode,
		ThinkingBudget:  cfg.Models.ThinkingBudget,
	})
	if err != nil {
		log.Fatal("model clients init failed", zap.Error(err))
	}

	fetcher := fetch.NewFetcher(
		time.Duration(cfg.Download.TimeoutSeconds)*time.Second,
		cfg.Download.MaxRetries,
	)

	orch := pipeline.NewOrchestrator(clients, fetcher, pipeline.Options{
		EnableSearch:     cfg.Pipeline.EnableSearch,
		SupplementalWait: time.Duration(cfg.Pipeline.SupplementalWaitSeconds) * time.Second,
		Tolerance:        cfg.Pipeline.Tolerance,
	})
	orch.Log = log
	if c, ok := orch.Compute.(*ratio.Computer); ok {
		c.Precision = cfg.Pipeline.RatioPrecision
	}
	if s, ok := orch.Synthesize.(*synthesis.Synthesizer); ok {
		s.Variant = cfg.Pipeline.SynthesisVariant
	}

	if cfg.Registry.Enabled {
		if err := store.InitDB(ctx); err != nil {
			log.Warn("company registry unavailable", zap.Error(err))
		} else {
			defer store.Close()
			orch.Registry = store.NewCompanyRegistry()
			orch.Insights = store.NewInsightsRepo()
		}
	}

	if cfg.Minio.Enabled {
		blobs, err := store.NewBlobStore(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.Bucket,
			cfg.Minio.UseSSL,
			cfg.Minio.Public,
		)
		if err != nil {
			log.Warn("artifact archive unavailable", zap.Error(err))
		} else {
			orch.Blobs = blobs
		}
	}

	handler := insights.NewHandler(orch, log)

	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))
	mux.Mount("/", handler.Routes())

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
		// No write timeout: a full analysis legitimately runs for minutes.
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown error", zap.Error(err))
	}
}
