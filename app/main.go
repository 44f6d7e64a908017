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

	"github.com/lysyi3m/alpha-scanner/app/analysis"
	"github.com/lysyi3m/alpha-scanner/app/api"
	"github.com/lysyi3m/alpha-scanner/app/cfg"
	"github.com/lysyi3m/alpha-scanner/app/collector"
	"github.com/lysyi3m/alpha-scanner/app/config"
	"github.com/lysyi3m/alpha-scanner/app/database"
	"github.com/lysyi3m/alpha-scanner/app/notify"
	"github.com/lysyi3m/alpha-scanner/app/scheduler"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Alpha Scanner", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	sources, err := config.NewLoader(appCfg.SourcesFile).Load()
	if err != nil {
		slog.Error("Failed to load source configuration", "path", appCfg.SourcesFile, "error", err)
		os.Exit(1)
	}

	projectRepo := database.NewProjectRepository(db)
	logRepo := database.NewCollectionLogRepository(db)

	httpClient := &http.Client{
		Timeout: time.Duration(appCfg.RequestTimeout) * time.Second,
	}

	collectors := []collector.Collector{
		collector.NewGithubCollector(httpClient, sources, appCfg.GithubToken, appCfg.UserAgent),
		collector.NewDefillamaCollector(httpClient, sources, appCfg.UserAgent),
	}
	if appCfg.GithubToken == "" {
		slog.Warn("GITHUB_TOKEN not set, GitHub collection will hit the unauthenticated rate limit quickly")
	}

	runner := scheduler.NewRunner(collectors, projectRepo, logRepo)

	var notifier scheduler.Notifier
	if appCfg.TelegramBotToken != "" && appCfg.TelegramChatID != 0 {
		telegramNotifier, err := notify.NewTelegramNotifier(appCfg.TelegramBotToken, appCfg.TelegramChatID)
		if err != nil {
			slog.Error("Failed to initialize telegram notifier", "error", err)
			os.Exit(1)
		}
		notifier = telegramNotifier
		slog.Info("Telegram notifications enabled", "chat_id", appCfg.TelegramChatID)
	}

	sched := scheduler.New(runner, projectRepo, notifier,
		time.Duration(appCfg.GithubIntervalHours)*time.Hour,
		time.Duration(appCfg.DefillamaIntervalHours)*time.Hour)
	sched.Start()
	defer sched.Stop()

	var analyzer *analysis.Analyzer
	if appCfg.OpenAIAPIKey != "" {
		analyzer = analysis.NewAnalyzer(appCfg.OpenAIAPIKey, appCfg.OpenAIModel)
		slog.Info("OpenAI analyzer enabled", "model", appCfg.OpenAIModel)
	}

	handler := api.NewHandler(projectRepo, logRepo, runner, sched, analyzer, appCfg.Version)
	server := api.NewServer(handler, appCfg.AdminAPIKey, appCfg.CORSOrigins)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}
