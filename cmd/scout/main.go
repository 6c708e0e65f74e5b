package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cryptoscout/internal/application"
	"cryptoscout/internal/application/consensus"
	"cryptoscout/internal/application/scout"
	"cryptoscout/internal/config"
	"cryptoscout/internal/domain/analysis"
	"cryptoscout/internal/domain/projects"
	"cryptoscout/internal/infra/ai/ollama"
	"cryptoscout/internal/infra/ai/openaicompat"
	"cryptoscout/internal/infra/ai/prompt"
	"cryptoscout/internal/infra/db/sqlite"
	"cryptoscout/internal/infra/httpserver"
	"cryptoscout/internal/infra/notify"
	"cryptoscout/internal/infra/scanner"
	minioStore "cryptoscout/internal/infra/storage"
	"cryptoscout/internal/middleware"
	"cryptoscout/internal/scheduler"
)

func main() {
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config invalid: %v", err)
	}

	ctx := context.Background()

	db, err := sqlite.Connect(ctx, cfg.Database.SQLitePath)
	if err != nil {
		log.Fatalf("sqlite connect error: %v", err)
	}
	defer db.Close()

	projectRepo := sqlite.NewProjectRepository(db)
	analysisRepo := sqlite.NewAnalysisRepository(db)

	backends := make([]analysis.Backend, 0, len(cfg.LLM.Backends))
	for _, b := range cfg.LLM.Backends {
		switch b.Type {
		case "ollama":
			backends = append(backends, ollama.New(b.ID, b.BaseURL, b.Model, b.Temp, b.MaxTokens))
		default:
			backends = append(backends, openaicompat.New(b.ID, b.BaseURL, b.APIKey, b.Model, b.Temp, b.MaxTokens))
		}
	}

	var archive analysis.Archive
	if cfg.Archive.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Archive.Endpoint,
			cfg.Archive.Region,
			cfg.Archive.Bucket,
			cfg.Archive.AccessKey,
			cfg.Archive.SecretKey,
			cfg.Archive.UseSSL,
		)
		if err != nil {
			log.Fatalf("archive init error: %v", err)
		}
		archive = store
	}

	engine := &consensus.Service{
		Backends: backends,
		Prompt:   prompt.Builder{},
		Timeout:  time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
		Archive:  archive,
		Clock:    application.SystemClock{},
	}

	var notifier scout.Notifier
	if cfg.Telegram.Enabled {
		notifier = notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	}

	svc := &scout.Service{
		Projects:       projectRepo,
		Analyses:       analysisRepo,
		Analyzer:       engine,
		Sources:        []projects.Source{scanner.NewDefiLlama(cfg.Scanner.ListedWithinDays)},
		Notifier:       notifier,
		Clock:          application.SystemClock{},
		AlertThreshold: cfg.Telegram.AlertThreshold,
	}

	sched := scheduler.New(svc)
	if err := sched.RegisterAll(cfg.Schedule.ScanCron, cfg.Schedule.AnalyzeCron); err != nil {
		log.Fatalf("scheduler init error: %v", err)
	}
	sched.Start()

	if os.Getenv("RUN_ON_START") == "true" {
		go func() {
			if err := sched.RunCycleNow(context.Background()); err != nil {
				log.Printf("[ERROR] startup cycle: %v", err)
			}
		}()
	}

	limiter := middleware.NewRateLimiter(60, 1)
	mux := httpserver.NewRouter(svc, limiter)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // sync analyze waits on the full council
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("[INFO] server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("[INFO] shutting down...")

	sched.Stop()

	ctx2, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("[WARN] shutdown error: %v", err)
	}
}
