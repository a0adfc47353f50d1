package wellbeing

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/yanqian/wellbeing-index/internal/infra/llm/chatgpt"
	apperrors "github.com/yanqian/wellbeing-index/pkg/errors"
	"github.com/yanqian/wellbeing-index/pkg/metrics"
)

//go:embed summary_prompt.tmpl
var defaultPromptTemplate string

const (
	defaultSystemPrompt = "You are a friendly wellbeing coach. You turn environmental scores into short, practical advice."
	defaultLevel        = "Favorable"
)

// DaySegment names the part of the day for a local hour.
func DaySegment(hour int) string {
	switch {
	case hour >= 5 && hour < 12:
		return "morning"
	case hour >= 12 && hour < 17:
		return "afternoon"
	case hour >= 17 && hour < 21:
		return "evening"
	default:
		return "night"
	}
}

// narrative is the data rendered into the prompt template.
type narrative struct {
	Scores    ScoreSet
	Profile   string
	Level     string
	LocalHour int
	Moment    string
}

func parsePrompt(text string, logger *slog.Logger) *template.Template {
	if strings.TrimSpace(text) != "" {
		tmpl, err := template.New("summary").Option("missingkey=error").Parse(text)
		if err == nil {
			return tmpl
		}
		logger.Error("summary prompt template invalid, using default", "error", err)
	}
	return template.Must(template.New("summary").Option("missingkey=error").Parse(defaultPromptTemplate))
}

func renderPrompt(tmpl *template.Template, n narrative) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, n); err != nil {
		return "", fmt.Errorf("render summary prompt: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func (s *service) Summarize(ctx context.Context, req SummaryRequest) (SummaryResponse, error) {
	if err := validateScores(req.Scores); err != nil {
		return SummaryResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, err.Error(), nil)
	}
	level := strings.TrimSpace(req.Level)
	if level == "" {
		level = defaultLevel
	}

	hour := defaultHour
	if req.Lat != nil && req.Lon != nil {
		if h, err := s.clock.LocalHour(*req.Lat, *req.Lon); err != nil {
			s.logger.Warn("local time unavailable for summary", "lat", *req.Lat, "lon", *req.Lon, "error", err)
		} else {
			hour = h
		}
	}
	moment := strings.TrimSpace(req.Moment)
	if moment == "" {
		moment = DaySegment(hour)
	}

	summary, usage, err := s.narrate(ctx, narrative{
		Scores:    req.Scores,
		Profile:   ParseProfile(req.Profile).String(),
		Level:     level,
		LocalHour: hour,
		Moment:    moment,
	})
	if err != nil {
		return SummaryResponse{}, err
	}
	return SummaryResponse{
		Summary:    summary,
		LocalHour:  hour,
		Moment:     moment,
		TokenUsage: usage,
	}, nil
}

// narrate renders the prompt and asks the chat model for a summary.
func (s *service) narrate(ctx context.Context, n narrative) (string, *metrics.TokenUsage, error) {
	prompt, err := renderPrompt(s.prompt, n)
	if err != nil {
		s.recorder.ObserveSummary(false)
		return "", nil, apperrors.Wrap(apperrors.CodeLLM, "summary prompt could not be rendered", err)
	}
	system := strings.TrimSpace(s.cfg.SystemPrompt)
	if system == "" {
		system = defaultSystemPrompt
	}

	completion, err := s.chat.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model: s.cfg.Model,
		Messages: []chatgpt.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		s.recorder.ObserveSummary(false)
		return "", nil, apperrors.Wrap(apperrors.CodeLLM, "chat completion request failed", err)
	}
	if len(completion.Choices) == 0 {
		s.recorder.ObserveSummary(false)
		return "", nil, apperrors.Wrap(apperrors.CodeLLM, "chat completion returned no choices", nil)
	}
	summary := strings.TrimSpace(completion.Choices[0].Message.Content)
	if summary == "" {
		s.recorder.ObserveSummary(false)
		return "", nil, apperrors.Wrap(apperrors.CodeLLM, "chat completion returned an empty summary", nil)
	}
	s.recorder.ObserveSummary(true)
	s.logger.Debug("narrative summary generated", "profile", n.Profile, "level", n.Level, "moment", n.Moment)

	usage := metrics.TokenUsage{
		PromptTokens:     completion.Usage.PromptTokens,
		CompletionTokens: completion.Usage.CompletionTokens,
		TotalTokens:      completion.Usage.TotalTokens,
	}
	if usage.IsZero() {
		usage = metrics.EstimateUsage(s.tokens, summary, system, prompt)
	}
	return summary, &usage, nil
}

func validateScores(s ScoreSet) error {
	values := []struct {
		name  string
		value float64
	}{
		{"pollution", s.Pollution},
		{"temp", s.Temperature},
		{"noise", s.Noise},
		{"humidity", s.Humidity},
		{"pressure", s.Pressure},
		{"sun", s.Sun},
		{"wind", s.Wind},
		{"uv", s.UV},
	}
	for _, v := range values {
		if v.value < 0 || v.value > 1 {
			return errors.New("score " + v.name + " must be within [0, 1]")
		}
	}
	return nil
}
