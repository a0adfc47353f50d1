package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/wellbeing-index/internal/domain/wellbeing"
	"github.com/yanqian/wellbeing-index/internal/infra/conditionstore"
	"github.com/yanqian/wellbeing-index/internal/infra/config"
	"github.com/yanqian/wellbeing-index/internal/infra/historyrepo"
	"github.com/yanqian/wellbeing-index/internal/infra/llm/chatgpt"
	"github.com/yanqian/wellbeing-index/internal/infra/openweather"
	"github.com/yanqian/wellbeing-index/internal/infra/uv/datagov"
	"github.com/yanqian/wellbeing-index/pkg/metrics"
)

func provideWellbeingConfig(cfg *config.Config) (wellbeing.Config, error) {
	out := wellbeing.Config{
		Model:        cfg.LLM.Model,
		Temperature:  cfg.LLM.Temperature,
		SystemPrompt: cfg.Wellbeing.SystemPrompt,
		FetchTimeout: cfg.Wellbeing.FetchTimeout,
		CacheTTL:     cfg.Wellbeing.CacheTTL,
	}
	if path := strings.TrimSpace(cfg.Wellbeing.PromptPath); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return wellbeing.Config{}, fmt.Errorf("read summary prompt: %w", err)
		}
		out.PromptTemplate = string(data)
	}
	return out, nil
}

func provideOpenWeatherClient(cfg *config.Config) (*openweather.Client, error) {
	return openweather.NewClient(cfg.OpenWeather.APIKey, cfg.OpenWeather.BaseURL, cfg.OpenWeather.Timeout)
}

func provideProviders(cfg *config.Config, ow *openweather.Client, logger *slog.Logger) wellbeing.Providers {
	providers := wellbeing.Providers{
		Pollution: ow,
		Weather:   ow,
		UV:        ow,
	}
	if cfg.UV.Provider == config.UVProviderDataGov {
		logger.Info("uv readings served by data.gov.sg", "url", cfg.UV.DataGovURL)
		providers.UV = datagov.NewClient(cfg.UV.DataGovURL, cfg.OpenWeather.Timeout)
	}
	return providers
}

func provideCitations(cfg *config.Config, logger *slog.Logger) (wellbeing.CitationTable, error) {
	table, err := wellbeing.LoadCitations(cfg.Wellbeing.CitationsPath)
	if err != nil {
		return nil, err
	}
	logger.Info("citations loaded", "profiles", len(table), "path", cfg.Wellbeing.CitationsPath)
	return table, nil
}

func provideCalculator(citations wellbeing.CitationTable) *wellbeing.Calculator {
	return wellbeing.NewCalculator(citations, nil)
}

func provideChatClient(cfg *config.Config, logger *slog.Logger) (wellbeing.ChatClient, error) {
	if strings.TrimSpace(cfg.LLM.APIKey) == "" {
		logger.Warn("llm api key not set, narrative summaries disabled")
		return chatgpt.Unconfigured{}, nil
	}
	return chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Timeout)
}

func provideTokenCounter(cfg *config.Config, logger *slog.Logger) *metrics.TokenCounter {
	return metrics.NewTokenCounter(cfg.LLM.Model, logger)
}

func provideHistoryRepository(cfg *config.Config, logger *slog.Logger) wellbeing.HistoryRepository {
	fallback := historyrepo.NewMemoryRepository(cfg.History.MemoryLimit)
	dsn := strings.TrimSpace(cfg.History.Postgres.DSN)
	if dsn == "" {
		logger.Info("history postgres dsn not set, using memory repository")
		return fallback
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repository", "error", err)
		return fallback
	}
	if cfg.History.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.History.Postgres.MaxConns
	}
	if cfg.History.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.History.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repository", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repository", "error", err)
		pool.Close()
		return fallback
	}
	repo := historyrepo.NewPostgresRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Error("history schema setup failed, using memory repository", "error", err)
		pool.Close()
		return fallback
	}
	logger.Info("history postgres repository enabled")
	return repo
}

func provideConditionStore(cfg *config.Config, logger *slog.Logger) wellbeing.ConditionStore {
	if cfg.Cache.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg.Cache.Valkey.Addr)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
			return conditionstore.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory store", "error", err)
			return conditionstore.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory store", "error", err)
			client.Close()
		} else {
			logger.Info("conditions valkey store enabled", "addr", cfg.Cache.Valkey.Addr)
			return conditionstore.NewValkeyStore(client, "conditions")
		}
	}
	return conditionstore.NewMemoryStore()
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}
