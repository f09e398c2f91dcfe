package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/akoutras/medpress/internal/cache/memory"
	"github.com/akoutras/medpress/internal/config"
	"github.com/akoutras/medpress/internal/domain"
	"github.com/akoutras/medpress/internal/llm"
	"github.com/akoutras/medpress/internal/llm/anthropic"
	llmmock "github.com/akoutras/medpress/internal/llm/mock"
	"github.com/akoutras/medpress/internal/llm/openrouter"
	"github.com/akoutras/medpress/internal/metrics"
	"github.com/akoutras/medpress/internal/notify"
	"github.com/akoutras/medpress/internal/quality"
	"github.com/akoutras/medpress/internal/ratelimit"
	"github.com/akoutras/medpress/internal/repository/postgres"
	"github.com/akoutras/medpress/internal/retry"
	"github.com/akoutras/medpress/internal/rules"
	"github.com/akoutras/medpress/internal/search"
	searchmock "github.com/akoutras/medpress/internal/search/mock"
	"github.com/akoutras/medpress/internal/search/perplexity"
	"github.com/akoutras/medpress/internal/server"
	"github.com/akoutras/medpress/internal/service"
)

var serveCmd = &cobra.Command{
	Use:          "serve",
	Short:        "Run the HTTP API with the full article pipeline",
	RunE:         runServe,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	db, err := postgres.New(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	runs := postgres.NewRunRepo(db)
	knowledge := postgres.NewKnowledgeRepo(db)

	llmClient := buildLLMClient(cfg, logger)
	searchClient := buildSearchClient(cfg, logger)

	var (
		ruleSet domain.RuleSet
		watcher *rules.Watcher
	)
	if cfg.Rules.Path != "" {
		watcher, err = rules.NewWatcher(cfg.Rules.Path, logger)
		if err != nil {
			return fmt.Errorf("load rules: %w", err)
		}
		ruleSet = watcher.RuleSet()
	} else {
		logger.Warn("RULES_PATH not set, pattern validation runs without editorial rules")
	}

	engine := quality.NewEngine(quality.EngineConfig{
		PassThreshold:          cfg.Quality.PassThreshold,
		WordCountFailThreshold: cfg.Quality.WordCountFailThreshold,
	}, logger)

	// The mock provider answers with canned text the judge cannot
	// parse, so the judge is wired only for real providers.
	var judge llm.Client
	if cfg.LLM.Provider != "mock" {
		judge = llmClient
	}

	evaluator, err := service.NewEvaluator(service.EvaluatorDeps{
		Engine:   engine,
		Rules:    ruleSet,
		LLM:      judge,
		Provider: cfg.LLM.Provider,
		Logger:   logger,
		Metrics:  m,
	})
	if err != nil {
		return fmt.Errorf("build evaluator: %w", err)
	}
	if watcher != nil {
		watcher.OnReload = func(rs domain.RuleSet) {
			if err := evaluator.SetRules(rs); err != nil {
				logger.Error("rules rejected by validator", zap.Error(err))
			}
		}
	}

	research := service.NewResearchService(service.ResearchDeps{
		Search:    searchClient,
		Knowledge: knowledge,
		Cache:     memory.NewWithContext(ctx),
		Logger:    logger,
		Metrics:   m,
		Config:    service.ResearchConfig{CacheTTL: cfg.Cache.TTL},
	})

	generator := service.NewGenerator(service.GeneratorDeps{
		LLM:      llmClient,
		Logger:   logger,
		Metrics:  m,
		Provider: cfg.LLM.Provider,
	})

	retries, err := retry.New(retry.Config{
		MaxRetries: cfg.Retry.MaxRetries,
		Delays:     cfg.Retry.Delays,
	}, logger)
	if err != nil {
		return fmt.Errorf("build retry handler: %w", err)
	}

	var notifier notify.Notifier
	if cfg.Telegram.Token != "" {
		tg, err := notify.NewTelegram(notify.TelegramConfig{
			Token:  cfg.Telegram.Token,
			ChatID: cfg.Telegram.ChatID,
		}, logger)
		if err != nil {
			return fmt.Errorf("connect telegram: %w", err)
		}
		notifier = tg
	} else {
		logger.Warn("TELEGRAM_BOT_TOKEN not set, editorial notifications disabled")
	}

	publisher := service.NewPublisher(service.PublisherDeps{
		Runs:                  runs,
		Notifier:              notifier,
		Logger:                logger,
		Metrics:               m,
		ForcePublishThreshold: cfg.Quality.ForcePublishThreshold,
	})

	workflow := service.NewWorkflow(service.WorkflowDeps{
		Research:  research,
		Generator: generator,
		Evaluator: evaluator,
		Publisher: publisher,
		Retries:   retries,
		Runs:      runs,
		Logger:    logger,
		Metrics:   m,
	})

	srv := server.New(server.Deps{
		Evaluator: evaluator,
		Workflow:  workflow,
		Runs:      runs,
		Limiter:   ratelimit.New(ratelimit.Config{RequestsPerMinute: cfg.RateLimit.RequestsPerMinute}),
		Logger:    logger,
		Metrics:   m,
		Addr:      cfg.HTTP.Addr,
	})

	g, ctx := errgroup.WithContext(ctx)
	if watcher != nil {
		g.Go(func() error {
			if err := watcher.Watch(ctx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		return srv.Start(ctx)
	})

	logger.Info("medpress started",
		zap.String("addr", cfg.HTTP.Addr),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.Int("pass_threshold", cfg.Quality.PassThreshold),
	)
	return g.Wait()
}

func buildLLMClient(cfg *config.Config, logger *zap.Logger) llm.Client {
	switch cfg.LLM.Provider {
	case "openrouter":
		return openrouter.New(openrouter.Config{
			APIKey:  cfg.LLM.OpenRouter.APIKey,
			Model:   cfg.LLM.OpenRouter.Model,
			BaseURL: cfg.LLM.OpenRouter.BaseURL,
		}, logger)
	case "anthropic":
		return anthropic.New(anthropic.Config{
			APIKey: cfg.LLM.Anthropic.APIKey,
			Model:  cfg.LLM.Anthropic.Model,
		}, logger)
	default:
		logger.Warn("using mock LLM client", zap.String("provider", cfg.LLM.Provider))
		return llmmock.New()
	}
}

func buildSearchClient(cfg *config.Config, logger *zap.Logger) search.Client {
	if cfg.Perplexity.APIKey == "" {
		logger.Warn("PERPLEXITY_API_KEY not set, research runs without web search")
		return searchmock.New()
	}
	return perplexity.New(perplexity.Config{
		APIKey:  cfg.Perplexity.APIKey,
		Model:   cfg.Perplexity.Model,
		BaseURL: cfg.Perplexity.BaseURL,
		Timeout: cfg.Perplexity.Timeout,
	}, logger)
}
