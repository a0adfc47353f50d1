package wellbeing

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/wellbeing-index/internal/infra/llm/chatgpt"
	apperrors "github.com/yanqian/wellbeing-index/pkg/errors"
	"github.com/yanqian/wellbeing-index/pkg/metrics"
)

func TestDaySegment(t *testing.T) {
	cases := map[int]string{
		0: "night", 4: "night", 5: "morning", 11: "morning",
		12: "afternoon", 16: "afternoon", 17: "evening", 20: "evening",
		21: "night", 23: "night",
	}
	for hour, want := range cases {
		require.Equal(t, want, DaySegment(hour), "hour=%d", hour)
	}
}

func TestRenderDefaultPrompt(t *testing.T) {
	tmpl := parsePrompt("", slog.New(slog.NewTextHandler(io.Discard, nil)))
	s := allOnes()
	s.Pollution = 0.75

	prompt, err := renderPrompt(tmpl, narrative{Scores: s, Profile: "Standard asthmatic", Level: "Favorable", LocalHour: 8, Moment: "morning"})
	require.NoError(t, err)
	require.Contains(t, prompt, `"Standard asthmatic"`)
	require.Contains(t, prompt, "8h local time, during the morning")
	require.Contains(t, prompt, "air quality: 0.75")
	require.Contains(t, prompt, `"Favorable"`)
}

func TestParsePromptFallsBackOnInvalidTemplate(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	custom := parsePrompt("{{.Profile}} at {{.Moment}}", logger)
	prompt, err := renderPrompt(custom, narrative{Profile: "Sportif", Moment: "night"})
	require.NoError(t, err)
	require.Equal(t, "Sportif at night", prompt)

	broken := parsePrompt("{{.Profile", logger)
	prompt, err = renderPrompt(broken, narrative{Profile: "Sportif", Moment: "night"})
	require.NoError(t, err)
	require.Contains(t, prompt, "wellbeing note")
}

func TestSummarizeUsesReportedUsage(t *testing.T) {
	f := newFixture(t, stubClock{hour: 14})
	reply := chatReply("  Enjoy the afternoon sun.  ")
	reply.Usage = chatgpt.Usage{PromptTokens: 120, CompletionTokens: 30, TotalTokens: 150}
	f.chat.resp = reply

	got, err := f.svc.Summarize(context.Background(), SummaryRequest{
		Scores:  allOnes(),
		Profile: "sportif",
		Level:   "Excellent",
		Lat:     ptr(48.85),
		Lon:     ptr(2.35),
	})
	require.NoError(t, err)
	require.Equal(t, "Enjoy the afternoon sun.", got.Summary)
	require.Equal(t, 14, got.LocalHour)
	require.Equal(t, "afternoon", got.Moment)
	require.Equal(t, &metrics.TokenUsage{PromptTokens: 120, CompletionTokens: 30, TotalTokens: 150}, got.TokenUsage)

	req := f.chat.reqs[0]
	require.Equal(t, "gpt-4o-mini", req.Model)
	require.Equal(t, "system", req.Messages[0].Role)
	require.Equal(t, defaultSystemPrompt, req.Messages[0].Content)
	require.Contains(t, req.Messages[1].Content, `"Sportif"`)
	require.Equal(t, 1, f.recorder.summaries[true])
}

func TestSummarizeEstimatesUsageWhenMissing(t *testing.T) {
	f := newFixture(t, stubClock{err: errors.New("unused")})
	f.chat.resp = chatReply("Short.")

	got, err := f.svc.Summarize(context.Background(), SummaryRequest{Scores: allOnes(), Moment: "evening"})
	require.NoError(t, err)
	require.Equal(t, 12, got.LocalHour)
	require.Equal(t, "evening", got.Moment)
	require.NotNil(t, got.TokenUsage)
	require.Equal(t, len("Short."), got.TokenUsage.CompletionTokens)
	require.Equal(t, got.TokenUsage.PromptTokens+got.TokenUsage.CompletionTokens, got.TokenUsage.TotalTokens)
	require.Contains(t, f.chat.reqs[0].Messages[1].Content, `"Favorable"`)
}

func TestSummarizeFailures(t *testing.T) {
	f := newFixture(t, stubClock{hour: 10})

	_, err := f.svc.Summarize(context.Background(), SummaryRequest{Scores: ScoreSet{Sun: 1.5}})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	require.ErrorContains(t, err, "sun")
	require.Empty(t, f.chat.reqs)

	f.chat.resp = chatgpt.ChatCompletionResponse{}
	_, err = f.svc.Summarize(context.Background(), SummaryRequest{Scores: allOnes()})
	require.True(t, apperrors.IsCode(err, apperrors.CodeLLM))

	f.chat.resp = chatReply("   ")
	_, err = f.svc.Summarize(context.Background(), SummaryRequest{Scores: allOnes()})
	require.True(t, apperrors.IsCode(err, apperrors.CodeLLM))

	f.chat.err = chatgpt.ErrNotConfigured
	_, err = f.svc.Summarize(context.Background(), SummaryRequest{Scores: allOnes()})
	require.True(t, apperrors.IsCode(err, apperrors.CodeLLM))
	require.ErrorIs(t, err, chatgpt.ErrNotConfigured)
	require.Equal(t, 3, f.recorder.summaries[false])
}
