//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/wellbeing-index/internal/bootstrap"
	"github.com/yanqian/wellbeing-index/internal/domain/wellbeing"
	"github.com/yanqian/wellbeing-index/internal/infra/config"
	"github.com/yanqian/wellbeing-index/internal/infra/geotz"
	httpiface "github.com/yanqian/wellbeing-index/internal/interface/http"
	"github.com/yanqian/wellbeing-index/pkg/logger"
	"github.com/yanqian/wellbeing-index/pkg/metrics"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		metrics.NewRegistry,
		provideWellbeingConfig,
		provideOpenWeatherClient,
		provideProviders,
		provideCitations,
		provideCalculator,
		provideChatClient,
		provideTokenCounter,
		provideHistoryRepository,
		provideConditionStore,
		geotz.NewResolver,
		wire.Bind(new(wellbeing.ClockResolver), new(*geotz.Resolver)),
		wire.Bind(new(wellbeing.TokenCounter), new(*metrics.TokenCounter)),
		wire.Bind(new(wellbeing.Recorder), new(*metrics.Registry)),
		wellbeing.NewService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
