package wellbeing

import (
	"context"
	"time"

	"github.com/yanqian/wellbeing-index/internal/infra/llm/chatgpt"
)

// Service exposes wellbeing index capabilities.
type Service interface {
	Assess(ctx context.Context, req AssessmentRequest) (Assessment, error)
	Summarize(ctx context.Context, req SummaryRequest) (SummaryResponse, error)
	AssessWithSummary(ctx context.Context, req AssessmentRequest) (FullSummaryResponse, error)
	Get(ctx context.Context, id string) (Assessment, error)
}

type PollutionProvider interface {
	Pollution(ctx context.Context, lat, lon float64) (Pollution, error)
}

type WeatherProvider interface {
	Weather(ctx context.Context, lat, lon float64) (Weather, error)
}

type UVProvider interface {
	CurrentUV(ctx context.Context, lat, lon float64) (float64, error)
}

// Providers groups the upstream data sources.
type Providers struct {
	Pollution PollutionProvider
	Weather   WeatherProvider
	UV        UVProvider
}

// ClockResolver finds the current local hour at a coordinate.
type ClockResolver interface {
	LocalHour(lat, lon float64) (int, error)
}

type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

// ConditionStore caches upstream conditions per coordinate key.
type ConditionStore interface {
	Get(ctx context.Context, key string) (Conditions, bool, error)
	Save(ctx context.Context, key string, c Conditions, ttl time.Duration) error
}

// HistoryRepository keeps computed assessments.
type HistoryRepository interface {
	Save(ctx context.Context, a Assessment) error
	Find(ctx context.Context, id string) (Assessment, bool, error)
}

type TokenCounter interface {
	Count(text string) int
}

// Recorder receives domain level metrics.
type Recorder interface {
	ObserveAssessment(level string, degraded bool)
	ObserveSummary(ok bool)
	ObserveCache(hit bool)
}
