package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tiktok-stats/internal/adapters/history"
	"tiktok-stats/internal/adapters/metrics"
	"tiktok-stats/internal/adapters/reader"
	"tiktok-stats/internal/adapters/scraper"
	"tiktok-stats/internal/adapters/web"
	"tiktok-stats/internal/classifier"
	"tiktok-stats/internal/config"
	"tiktok-stats/internal/extractor"
	"tiktok-stats/internal/usecases"
	"tiktok-stats/pkg/log"
	"tiktok-stats/pkg/log/transporters"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg := config.Load()

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = log.Info
	}
	logger := log.New(level, transporters.NewStdout())
	log.SetDefault(logger)

	if err := run(cfg); err != nil {
		logger.Error("server stopped", "error", err)
		logger.Close()
		os.Exit(1)
	}
	logger.Close()
}

func run(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	locale, err := classifier.ParseLocale(cfg.Server.DefaultLocale)
	if err != nil {
		log.GlobalWarn("unsupported default locale, using zh", "locale", cfg.Server.DefaultLocale)
	}

	// Extraction rules, optionally from a hot-reloaded labels file
	statsExtractor := extractor.New()
	if cfg.Labels.File != "" {
		watcher, err := extractor.LoadLabels(statsExtractor, cfg.Labels.File)
		if err != nil {
			return fmt.Errorf("load labels %s: %w", cfg.Labels.File, err)
		}
		go watcher.Watch(ctx)
	}

	errorClassifier := classifier.New(locale)

	fetcher, closeFetcher, err := newFetcher(cfg.Fetch)
	if err != nil {
		return err
	}
	defer closeFetcher()

	store, pinger, closeStore, err := newHistoryStore(ctx, cfg.History)
	if err != nil {
		return err
	}
	defer closeStore()

	queryMetrics := metrics.New()

	// Initialize use cases
	saveHistoryUC := usecases.NewSaveHistoryUseCase(store)
	listHistoryUC := usecases.NewListHistoryUseCase(store, cfg.History.Limit)
	queryUC := usecases.NewQueryProfileUseCase(fetcher, statsExtractor, errorClassifier).
		WithRecorder(queryMetrics)
	if cfg.History.AutoSave {
		queryUC.WithAutoSave(saveHistoryUC)
	}

	// Initialize web handlers
	handlers := web.NewHandlers(queryUC, saveHistoryUC, listHistoryUC, errorClassifier, locale).
		WithQueryTimeout(cfg.Fetch.Timeout + 5*time.Second)
	if pinger != nil {
		handlers.WithPinger(pinger)
	}

	app := web.NewApp(web.AppConfig{
		Name:          "TikTok Stats",
		DefaultLocale: locale,
		Classifier:    errorClassifier,
		Metrics:       queryMetrics.Handler(),
	}, handlers)

	listenErr := make(chan error, 1)
	go func() {
		log.GlobalInfo("starting server",
			"port", cfg.Server.Port,
			"engine", cfg.Fetch.Engine,
			"persistent_history", cfg.History.DatabaseURL != "",
			"auto_save", cfg.History.AutoSave,
		)
		listenErr <- app.Listen(":" + cfg.Server.Port)
	}()

	select {
	case err := <-listenErr:
		return err
	case <-ctx.Done():
	}

	log.GlobalInfo("shutting down")
	return app.ShutdownWithTimeout(shutdownTimeout)
}

func newFetcher(cfg config.FetchConfig) (usecases.ContentFetcher, func(), error) {
	if cfg.Engine == config.EngineBrowser {
		pool, err := newBrowserPool(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("start browser: %w", err)
		}
		return scraper.NewBrowserFetcher(pool, cfg.ProfileBaseURL, cfg.Timeout), pool.Close, nil
	}

	client := reader.New(reader.Config{
		BaseURL:        cfg.ReaderBaseURL,
		ProfileBaseURL: cfg.ProfileBaseURL,
		Timeout:        cfg.Timeout,
	})
	return client, func() {}, nil
}

// newBrowserPool attaches to a remote Chrome when CHROME_WS_URL is set and
// launches a local one otherwise.
func newBrowserPool(cfg config.FetchConfig) (*scraper.BrowserPool, error) {
	if cfg.ChromeWSURL != "" {
		log.GlobalInfo("browser engine attaching to remote chrome", "ws_url", cfg.ChromeWSURL)
		return scraper.NewRemoteBrowserPool(cfg.ChromeWSURL)
	}
	return scraper.NewBrowserPool(cfg.ChromePath)
}

func newHistoryStore(ctx context.Context, cfg config.HistoryConfig) (usecases.HistoryStore, web.Pinger, func(), error) {
	if cfg.DatabaseURL == "" {
		store := history.NewMemoryStore(cfg.Retention)
		return store, nil, func() { _ = store.Close() }, nil
	}

	if cfg.RunMigrations {
		if err := history.RunMigrations(cfg.DatabaseURL); err != nil {
			return nil, nil, nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	store, err := history.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open history database: %w", err)
	}
	return store, store, func() { _ = store.Close() }, nil
}
