package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/wellbeing-index/internal/domain/wellbeing"
	"github.com/yanqian/wellbeing-index/internal/infra/config"
	apperrors "github.com/yanqian/wellbeing-index/pkg/errors"
	"github.com/yanqian/wellbeing-index/pkg/metrics"
)

func TestRouter_Health(t *testing.T) {
	recorder := performRequest(http.MethodGet, "/api/test", "", newRouterUnderTest(t, &stubService{}))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.JSONEq(t, `{"message":"backend connection ok"}`, recorder.Body.String())
}

func TestRouter_IndexSuccess(t *testing.T) {
	svc := &stubService{
		assessFn: func(ctx context.Context, req wellbeing.AssessmentRequest) (wellbeing.Assessment, error) {
			return wellbeing.Assessment{ID: "abc", IB: 82, Level: "Excellent", Profile: req.Profile, LocalHour: *req.Hour}, nil
		},
	}
	server := newRouterUnderTest(t, svc)

	for _, path := range []string{
		"/api/v1/index?lat=48.85&lon=2.35&noise_level=3&profile=Sportif&hour=14",
		"/calculate_ib?lat=48.85&lon=2.35&noise_level=3&profile=Sportif&hour=14",
	} {
		recorder := performRequest(http.MethodGet, path, "", server)
		require.Equal(t, http.StatusOK, recorder.Code, path)

		var got wellbeing.Assessment
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
		require.Equal(t, 82, got.IB)
		require.Equal(t, "Sportif", got.Profile)
		require.Equal(t, 14, got.LocalHour)
	}

	require.Len(t, svc.assessCalls, 2)
	req := svc.assessCalls[0]
	require.InDelta(t, 48.85, *req.Lat, 1e-9)
	require.InDelta(t, 2.35, *req.Lon, 1e-9)
	require.Equal(t, 3, *req.NoiseLevel)
}

func TestRouter_IndexMissingCoordinates(t *testing.T) {
	svc := &stubService{}

	recorder := performRequest(http.MethodGet, "/api/v1/index?noise_level=3&profile=Standard", "", newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
	require.Empty(t, svc.assessCalls)
}

func TestRouter_IndexErrorMapping(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"invalid input", apperrors.Wrap(apperrors.CodeInvalidInput, "noise_level must be within [0, 10]", nil), http.StatusBadRequest, "invalid_input", "noise_level must be within [0, 10]"},
		{"upstream", apperrors.Wrap(apperrors.CodeUpstream, "failed to fetch environmental data", errors.New("GET https://x/?appid=secret: timeout")), http.StatusBadGateway, "upstream_error", "failed to fetch environmental data"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "internal_error", "boom"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubService{
				assessFn: func(ctx context.Context, req wellbeing.AssessmentRequest) (wellbeing.Assessment, error) {
					return wellbeing.Assessment{}, tc.err
				},
			}
			recorder := performRequest(http.MethodGet, "/api/v1/index?lat=1&lon=2&noise_level=0&profile=Standard", "", newRouterUnderTest(t, svc))
			require.Equal(t, tc.status, recorder.Code)

			errBody := decodeErrorBody(t, recorder.Body.Bytes())
			require.Equal(t, tc.code, errBody["error"]["code"])
			require.Equal(t, tc.message, errBody["error"]["message"])
		})
	}
}

func TestRouter_SummarizeSuccess(t *testing.T) {
	resp := wellbeing.SummaryResponse{Summary: "A calm afternoon.", LocalHour: 14, Moment: "afternoon"}
	svc := &stubService{
		summarizeFn: func(ctx context.Context, req wellbeing.SummaryRequest) (wellbeing.SummaryResponse, error) {
			require.Equal(t, "Standard", req.Profile)
			require.Equal(t, 0.75, req.Scores.Pollution)
			return resp, nil
		},
	}

	body := `{"scores":{"pollution":0.75,"temp":1,"noise":0.7,"humidity":1,"pressure":1,"sun":0.6,"wind":1,"uv":1},"profile":"Standard","level":"Excellent"}`
	recorder := performRequest(http.MethodPost, "/api/v1/summaries", body, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusOK, recorder.Code)

	var got wellbeing.SummaryResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, resp, got)
}

func TestRouter_SummarizeInvalidJSON(t *testing.T) {
	recorder := performRequest(http.MethodPost, "/api/v1/summaries", `{"scores":"high"}`, newRouterUnderTest(t, &stubService{}))
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
	require.NotEmpty(t, errBody["error"]["message"])
}

func TestRouter_SummarizeRetriesBadGateway(t *testing.T) {
	attempts := 0
	svc := &stubService{
		summarizeFn: func(ctx context.Context, req wellbeing.SummaryRequest) (wellbeing.SummaryResponse, error) {
			attempts++
			if attempts == 1 {
				return wellbeing.SummaryResponse{}, apperrors.Wrap(apperrors.CodeLLM, "chat completion request failed", nil)
			}
			return wellbeing.SummaryResponse{Summary: "ok"}, nil
		},
	}
	cfg := testConfig()
	cfg.HTTP.Retry = config.RetryConfig{Enabled: true, MaxAttempts: 2, BaseBackoff: time.Millisecond}

	recorder := performRequest(http.MethodPost, "/api/v1/summaries", `{"profile":"Standard"}`, newRouterWithConfig(t, svc, cfg))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, 2, attempts)
}

func TestRouter_SummarizeRetryStopsAtWriteDeadline(t *testing.T) {
	attempts := 0
	svc := &stubService{
		summarizeFn: func(ctx context.Context, req wellbeing.SummaryRequest) (wellbeing.SummaryResponse, error) {
			attempts++
			time.Sleep(30 * time.Millisecond)
			return wellbeing.SummaryResponse{}, apperrors.Wrap(apperrors.CodeLLM, "chat completion request failed", nil)
		},
	}
	cfg := testConfig()
	cfg.HTTP.WriteTimeout = 50 * time.Millisecond
	cfg.HTTP.Retry = config.RetryConfig{Enabled: true, MaxAttempts: 3, BaseBackoff: time.Millisecond}

	recorder := performRequest(http.MethodPost, "/api/v1/summaries", `{"profile":"Standard"}`, newRouterWithConfig(t, svc, cfg))
	require.Equal(t, http.StatusBadGateway, recorder.Code)
	require.Equal(t, "1", recorder.Header().Get("X-Attempts"))
	require.Equal(t, 1, attempts)
}

func TestRouter_FullSummaryExcludedFromRetry(t *testing.T) {
	attempts := 0
	svc := &stubService{
		fullFn: func(ctx context.Context, req wellbeing.AssessmentRequest) (wellbeing.FullSummaryResponse, error) {
			attempts++
			return wellbeing.FullSummaryResponse{}, apperrors.Wrap(apperrors.CodeUpstream, "weather provider failed", nil)
		},
	}
	cfg := testConfig()
	cfg.HTTP.Retry = config.RetryConfig{
		Enabled:     true,
		MaxAttempts: 3,
		BaseBackoff: time.Millisecond,
		Exclude:     []string{"/api/v1/summaries/full"},
	}

	recorder := performRequest(http.MethodPost, "/api/v1/summaries/full?lat=1.29&lon=103.85&noise_level=5", "", newRouterWithConfig(t, svc, cfg))
	require.Equal(t, http.StatusBadGateway, recorder.Code)
	require.Equal(t, 1, attempts)
}

func TestRouter_FullSummary(t *testing.T) {
	svc := &stubService{
		fullFn: func(ctx context.Context, req wellbeing.AssessmentRequest) (wellbeing.FullSummaryResponse, error) {
			return wellbeing.FullSummaryResponse{IB: 64, Level: "Favorable", SummaryError: "summary unavailable"}, nil
		},
	}

	recorder := performRequest(http.MethodPost, "/api/v1/summaries/full?lat=1.29&lon=103.85&noise_level=5&profile=Standard", "", newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusOK, recorder.Code)

	var got wellbeing.FullSummaryResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, 64, got.IB)
	require.Empty(t, got.Summary)
	require.Equal(t, "summary unavailable", got.SummaryError)
}

func TestRouter_GetAssessmentNotFound(t *testing.T) {
	svc := &stubService{
		getFn: func(ctx context.Context, id string) (wellbeing.Assessment, error) {
			require.Equal(t, "4f1c3c8e-2f55-4d5e-9f0a-3a3b1d6c7e11", id)
			return wellbeing.Assessment{}, apperrors.Wrap(apperrors.CodeNotFound, "assessment not found", nil)
		},
	}

	recorder := performRequest(http.MethodGet, "/api/v1/assessments/4f1c3c8e-2f55-4d5e-9f0a-3a3b1d6c7e11", "", newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusNotFound, recorder.Code)
	require.Equal(t, "not_found", decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	server := newRouterUnderTest(t, &stubService{})
	performRequest(http.MethodGet, "/api/test", "", server)

	recorder := performRequest(http.MethodGet, "/metrics", "", server)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), `http_requests_total{route="/api/test",status="200"} 1`)
}

func TestRouter_CORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/summaries", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	newRouterUnderTest(t, &stubService{}).Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 1}
	server := newRouterWithConfig(t, &stubService{}, cfg)

	path := "/api/v1/index?lat=1&lon=2&noise_level=0&profile=Standard"
	require.Equal(t, http.StatusOK, performRequest(http.MethodGet, path, "", server).Code)

	recorder := performRequest(http.MethodGet, path, "", server)
	require.Equal(t, http.StatusTooManyRequests, recorder.Code)
	require.Equal(t, "rate_limit_exceeded", decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])
}

func performRequest(method, path, body string, server *http.Server) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func testConfig() *config.Config {
	return &config.Config{
		HTTP: config.HTTPConfig{
			Address:        ":0",
			ReadTimeout:    time.Second,
			WriteTimeout:   time.Second,
			AllowedOrigins: []string{"http://localhost:5173"},
		},
	}
}

func newRouterUnderTest(t *testing.T, svc wellbeing.Service) *http.Server {
	return newRouterWithConfig(t, svc, testConfig())
}

func newRouterWithConfig(t *testing.T, svc wellbeing.Service, cfg *config.Config) *http.Server {
	t.Helper()
	handler := NewHandler(svc, newTestLogger())
	return NewRouter(cfg, handler, metrics.NewRegistry())
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type stubService struct {
	assessFn    func(ctx context.Context, req wellbeing.AssessmentRequest) (wellbeing.Assessment, error)
	summarizeFn func(ctx context.Context, req wellbeing.SummaryRequest) (wellbeing.SummaryResponse, error)
	fullFn      func(ctx context.Context, req wellbeing.AssessmentRequest) (wellbeing.FullSummaryResponse, error)
	getFn       func(ctx context.Context, id string) (wellbeing.Assessment, error)

	assessCalls []wellbeing.AssessmentRequest
}

func (s *stubService) Assess(ctx context.Context, req wellbeing.AssessmentRequest) (wellbeing.Assessment, error) {
	s.assessCalls = append(s.assessCalls, req)
	if s.assessFn != nil {
		return s.assessFn(ctx, req)
	}
	return wellbeing.Assessment{}, nil
}

func (s *stubService) Summarize(ctx context.Context, req wellbeing.SummaryRequest) (wellbeing.SummaryResponse, error) {
	if s.summarizeFn != nil {
		return s.summarizeFn(ctx, req)
	}
	return wellbeing.SummaryResponse{}, nil
}

func (s *stubService) AssessWithSummary(ctx context.Context, req wellbeing.AssessmentRequest) (wellbeing.FullSummaryResponse, error) {
	if s.fullFn != nil {
		return s.fullFn(ctx, req)
	}
	return wellbeing.FullSummaryResponse{}, nil
}

func (s *stubService) Get(ctx context.Context, id string) (wellbeing.Assessment, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return wellbeing.Assessment{}, nil
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
