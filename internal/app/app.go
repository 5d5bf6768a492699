// Package app wires configuration, clients, storage and services into a
// runnable application.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jwchung/apexrank/internal/clients/gemini"
	"github.com/jwchung/apexrank/internal/clients/logodev"
	"github.com/jwchung/apexrank/internal/clients/quotes"
	"github.com/jwchung/apexrank/internal/common"
	"github.com/jwchung/apexrank/internal/harvest"
	"github.com/jwchung/apexrank/internal/interfaces"
	"github.com/jwchung/apexrank/internal/services/ranking"
	"github.com/jwchung/apexrank/internal/services/trend"
	"github.com/jwchung/apexrank/internal/storage/surrealdb"
)

// App holds all initialized clients, storage and services. It is the shared
// core used by cmd/apexrank-server.
type App struct {
	Config         *common.Config
	Logger         *common.Logger
	Storage        interfaces.StorageManager
	QuoteClient    interfaces.QuoteClient
	RankingService interfaces.RankingService
	TrendService   interfaces.TrendService
	StartupTime    time.Time

	schedulerCancel context.CancelFunc
}

// NewApp initializes everything from configuration. configPath may be empty,
// in which case APEXRANK_CONFIG and then config/apexrank.toml are tried.
func NewApp(configPath string) (*App, error) {
	if configPath == "" {
		configPath = os.Getenv("APEXRANK_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join("config", "apexrank.toml")
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLogger(config.Logging.Level)

	storageManager, err := surrealdb.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	quoteClient := quotes.NewClient(
		quotes.WithBaseURL(config.Clients.Quotes.BaseURL),
		quotes.WithRateLimit(config.Clients.Quotes.RateLimit),
		quotes.WithTimeout(config.Clients.Quotes.GetTimeout()),
		quotes.WithLogger(logger),
	)

	var logoClient interfaces.LogoClient = logodev.NewClient(config.Clients.Logo.Token,
		logodev.WithBaseURL(config.Clients.Logo.BaseURL),
		logodev.WithTimeout(config.Clients.Logo.GetTimeout()),
		logodev.WithLogger(logger),
	)

	var aiClient interfaces.AIClient
	if config.Clients.Gemini.APIKey != "" {
		client, err := gemini.NewClient(context.Background(), config.Clients.Gemini.APIKey,
			gemini.WithModel(config.Clients.Gemini.Model),
			gemini.WithLogger(logger),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Gemini client unavailable, trend commentary disabled")
		} else {
			aiClient = client
		}
	} else {
		logger.Info().Msg("No Gemini API key configured, trend commentary disabled")
	}

	pageFetcher := harvest.NewCachingFetcher(
		harvest.NewHTTPFetcher(config.Clients.Quotes.GetTimeout(), logger),
		config.Collect.GetPageCacheTTL(),
	)
	harvester := harvest.NewHarvester(pageFetcher, nil, logger)

	fetcher := ranking.NewFetcher(quoteClient,
		config.Collect.BatchSize,
		config.Collect.GetBatchPause(),
		config.Collect.TopN,
		logger,
	)

	rankingService := ranking.NewService(harvester, fetcher, storageManager, logoClient, config.Collect.TopN, logger)
	trendService := trend.NewService(storageManager, aiClient, logger)

	return &App{
		Config:         config,
		Logger:         logger,
		Storage:        storageManager,
		QuoteClient:    quoteClient,
		RankingService: rankingService,
		TrendService:   trendService,
		StartupTime:    time.Now(),
	}, nil
}

// StartSchedulers launches the background collection loops.
func (a *App) StartSchedulers() {
	ctx, cancel := context.WithCancel(context.Background())
	a.schedulerCancel = cancel

	go startRankingScheduler(ctx, a.RankingService, a.TrendService, a.Logger, a.Config.Collect.GetRankingInterval())
	go startPriceScheduler(ctx, a.RankingService, a.Logger, a.Config.Collect.GetPriceInterval())
}

// Close stops the schedulers and releases resources.
func (a *App) Close() error {
	if a.schedulerCancel != nil {
		a.schedulerCancel()
	}
	return a.Storage.Close()
}
