package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"fitserver/internal/adapter/repo"
	"fitserver/internal/infra"
	"fitserver/internal/providers/openai"
	"fitserver/internal/validate"
	"fitserver/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	runner := infra.NewSQLRunner(dbpool, logger)
	jobs := repo.NewJobStore(runner)
	prompts := repo.NewPromptRegistry(runner)

	if err := repo.SeedPrompts(ctx, prompts); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed prompts")
	}

	provider, err := openai.New(openai.Options{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		BaseURL: cfg.OpenAIBaseURL,
		Org:     cfg.OpenAIOrg,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build openai client")
	}

	committer := repo.NewCommitter(dbpool, provider.Model())
	validator := validate.New()
	validator.MealTolerancePct = cfg.MealTolerancePct
	validator.CoachMaxWords = cfg.CoachMaxWords

	wcfg := worker.Config{
		PollInterval:    cfg.PollInterval,
		Lease:           cfg.JobLease,
		ProviderTimeout: cfg.ProviderTimeout,
		Retry: worker.RetryPolicy{
			MaxAttempts: cfg.MaxAttempts,
			Backoff:     worker.BackoffSchedule(cfg.RetryBackoff, cfg.MaxAttempts),
		},
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < cfg.WorkerCount; i++ {
		wlogger := logger.With().Str("worker", fmt.Sprintf("w%d", i)).Logger()
		w := worker.New(wcfg, jobs, prompts, provider, validator, committer, wlogger)
		g.Go(func() error {
			return w.Run(gctx)
		})
	}

	logger.Info().Int("workers", cfg.WorkerCount).Msg("worker pool started")
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker pool failed")
	}
	logger.Info().Msg("worker pool stopped")
}
