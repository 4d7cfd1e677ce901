package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"equity-screener/internal/api"
	"equity-screener/internal/datasource"
	"equity-screener/internal/extract"
	"equity-screener/internal/interfaces"
	"equity-screener/internal/logger"
	"equity-screener/internal/runlog"
	"equity-screener/internal/screening"
	"equity-screener/internal/screening/screeningobs"
	"equity-screener/internal/store"
	"equity-screener/internal/trace"
)

// initializeSystem loads .env and starts logging and tracing
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	logger.Debug(context.Background(), "System initialized", "tracing", trace.Enabled())

	return nil
}

// shutdownSystem flushes pending spans
func shutdownSystem() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = trace.Shutdown(ctx)
	_ = logger.Shutdown(ctx)
}

// loadConfig reads path, falling back to built-in defaults when the file
// does not exist
func loadConfig(ctx context.Context, path string) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn(ctx, "Config file not found, using defaults", "path", path)
		return store.Default(), nil
	}
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// heuristicsFromConfig applies config overrides on top of the built-in
// page heuristics
func heuristicsFromConfig(cfg *store.Config) extract.Heuristics {
	h := extract.DefaultHeuristics()
	if len(cfg.Heuristics.SectorKeywords) > 0 {
		h.SectorKeywords = cfg.Heuristics.SectorKeywords
	}
	if len(cfg.Heuristics.PeerTitles) > 0 {
		h.PeerTitles = cfg.Heuristics.PeerTitles
	}
	if len(cfg.Heuristics.QuarterlyTitles) > 0 {
		h.QuarterlyTitles = cfg.Heuristics.QuarterlyTitles
	}
	if len(cfg.Heuristics.AnnualTitles) > 0 {
		h.AnnualTitles = cfg.Heuristics.AnnualTitles
	}
	return h
}

// scoreTableFromConfig loads the optional scoring file
func scoreTableFromConfig(ctx context.Context, cfg *store.Config) (screening.ScoreTable, error) {
	if cfg.Heuristics.ScoringFile == "" {
		return screening.DefaultScoreTable(), nil
	}
	table, err := screening.LoadScoreTable(cfg.Heuristics.ScoringFile)
	if err != nil {
		return screening.ScoreTable{}, err
	}
	logger.Info(ctx, "Loaded score table", "path", cfg.Heuristics.ScoringFile, "version", table.Version)
	return table, nil
}

// criteriaFromConfig converts the config defaults into screening criteria
func criteriaFromConfig(cfg *store.Config) screening.Criteria {
	return screening.Criteria{
		MaxPEG:                   cfg.Criteria.MaxPEG,
		MinPE:                    cfg.Criteria.MinPE,
		MaxPE:                    cfg.Criteria.MaxPE,
		MaxDebtToEquity:          cfg.Criteria.MaxDebtToEquity,
		MinSalesGrowth:           cfg.Criteria.MinSalesGrowth,
		MinProfitGrowth:          cfg.Criteria.MinProfitGrowth,
		RequireMarginImprovement: cfg.Criteria.RequireMarginImprovement,
		MaxResults:               cfg.Criteria.MaxResults,
	}
}

// initializeCache opens the document cache and drops expired entries
func initializeCache(ctx context.Context, cfg *store.Config, refresh bool) *datasource.Cache {
	cache, err := datasource.NewCache(cfg.Cache.Dir, time.Duration(cfg.Cache.TTLHours)*time.Hour)
	if err != nil {
		logger.Warn(ctx, "Document cache disabled", "error", err.Error())
		return nil
	}

	if refresh {
		if err := cache.Clear(); err != nil {
			logger.Warn(ctx, "Failed to clear document cache", "error", err.Error())
		}
		return cache
	}

	if removed, err := cache.CleanupExpired(); err != nil {
		logger.Warn(ctx, "Failed to clean document cache", "error", err.Error())
	} else if removed > 0 {
		logger.Debug(ctx, "Removed expired cache entries", "count", removed)
	}
	return cache
}

// initializeJournal opens the run journal and archives old days
func initializeJournal(ctx context.Context, cfg *store.Config) *runlog.Journal {
	j := runlog.New(cfg.Journal.Dir)
	n, err := j.CompressOlder(cfg.Journal.RetentionDays)
	if err != nil {
		logger.Warn(ctx, "Failed to archive run journal", "dir", j.Dir(), "error", err.Error())
	} else if n > 0 {
		logger.Debug(ctx, "Archived run journal files", "count", n)
	}
	return j
}

// initializeScreener wires sources, extractor and scorer into an engine
// with observability
func initializeScreener(ctx context.Context, cfg *store.Config, cache *datasource.Cache) (interfaces.Screener, error) {
	limiter := datasource.NewMultiRateLimiter()
	limiter.AddLimiter(datasource.SourceScreener, time.Duration(cfg.Screener.PacingMs)*time.Millisecond)
	limiter.AddLimiter(datasource.SourceSecondary, time.Duration(cfg.Screener.BackfillPacingMs)*time.Millisecond)
	limiter.AddLimiter(datasource.SourceKite, time.Duration(cfg.Screener.BackfillPacingMs)*time.Millisecond)

	timeout := time.Duration(cfg.Screener.RequestTimeoutSeconds) * time.Second
	docs := datasource.NewScreenerClient(datasource.ScreenerConfig{
		BaseURL:   cfg.Screener.BaseURL,
		UserAgent: cfg.Screener.UserAgent,
		Timeout:   timeout,
		Retry: &api.RetryConfig{
			MaxAttempts: cfg.Screener.Retry.MaxAttempts,
			InitialWait: time.Duration(cfg.Screener.Retry.InitialWaitMs) * time.Millisecond,
			MaxWait:     time.Duration(cfg.Screener.Retry.MaxWaitMs) * time.Millisecond,
		},
	}, limiter, cache)

	table, err := scoreTableFromConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	opts := []screening.Option{
		screening.WithOverallTimeout(time.Duration(cfg.Screener.OverallTimeoutSeconds) * time.Second),
		screening.WithResultCache(screening.NewResultCache(time.Duration(cfg.Cache.ResultsTTLMinutes) * time.Minute)),
	}

	if cfg.Secondary.Enabled {
		opts = append(opts, screening.WithSecondary(
			datasource.NewYahooClient(cfg.Secondary.BaseURL, cfg.Secondary.Suffix, timeout, limiter),
		))
		logger.Info(ctx, "PEG backfill enabled", "base_url", cfg.Secondary.BaseURL)
	}

	if cfg.Kite.Enabled {
		apiKey, token := os.Getenv(cfg.Kite.APIKeyEnv), os.Getenv(cfg.Kite.AccessTokenEnv)
		if apiKey == "" || token == "" {
			logger.Warn(ctx, "Kite enabled but credentials missing, price backfill disabled",
				"api_key_env", cfg.Kite.APIKeyEnv, "access_token_env", cfg.Kite.AccessTokenEnv)
		} else {
			opts = append(opts, screening.WithPrices(
				datasource.NewKiteClient(apiKey, token, cfg.Kite.Exchange, limiter),
			))
			logger.Info(ctx, "Price backfill enabled", "exchange", cfg.Kite.Exchange)
		}
	}

	h := heuristicsFromConfig(cfg)
	logger.Debug(ctx, "Using page heuristics", "version", h.Version, "score_table", table.Version)

	engine := screening.NewEngine(
		docs,
		extract.NewExtractor(h),
		screening.NewScorer(table),
		screening.NewUniverse(cfg.Universe.Static, cfg.Universe.ScanLimit),
		opts...,
	)
	return screeningobs.Wrap(engine), nil
}
