package http

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/yanqian/wellbeing-index/internal/infra/config"
)

const (
	retryBodyLimit     = 64 << 10
	retryAttemptHeader = "X-Attempts"
)

var errBodyTooLarge = errors.New("request body exceeds retry limit")

// withRetry replays POST requests whose response was a gateway failure. Only
// narrative summaries are POSTs here, and a flaky chat provider is the usual
// cause of a 502. A replay is skipped when another attempt like the last one
// would not finish inside budget (the server write timeout), so the client
// gets the failure instead of a dropped connection.
func withRetry(next http.Handler, cfg config.RetryConfig, budget time.Duration, logger *slog.Logger) http.Handler {
	if !cfg.Enabled || cfg.MaxAttempts <= 1 {
		return next
	}
	skip := make(map[string]bool, len(cfg.Exclude))
	for _, path := range cfg.Exclude {
		skip[path] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || skip[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}
		body, err := bufferBody(r)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, errBodyTooLarge) {
				status = http.StatusRequestEntityTooLarge
			}
			http.Error(w, err.Error(), status)
			return
		}

		start := time.Now()
		for attempt := 1; ; attempt++ {
			attemptStart := time.Now()
			buf := newBufferedResponse()
			replay := r.Clone(r.Context())
			replay.Body = io.NopCloser(bytes.NewReader(body))
			replay.ContentLength = int64(len(body))
			next.ServeHTTP(buf, replay)

			if !isGatewayFailure(buf.status) || attempt == cfg.MaxAttempts {
				buf.header.Set(retryAttemptHeader, strconv.Itoa(attempt))
				buf.flushTo(w)
				return
			}
			backoff := cfg.BaseBackoff << (attempt - 1)
			if budget > 0 && time.Since(start)+backoff+time.Since(attemptStart) >= budget {
				logger.Warn("gateway failure, retry budget exhausted", "path", r.URL.Path, "status", buf.status, "attempt", attempt)
				buf.header.Set(retryAttemptHeader, strconv.Itoa(attempt))
				buf.flushTo(w)
				return
			}
			logger.Warn("gateway failure, retrying request", "path", r.URL.Path, "status", buf.status, "attempt", attempt)

			timer := time.NewTimer(backoff)
			select {
			case <-r.Context().Done():
				timer.Stop()
				buf.header.Set(retryAttemptHeader, strconv.Itoa(attempt))
				buf.flushTo(w)
				return
			case <-timer.C:
			}
		}
	})
}

func isGatewayFailure(status int) bool {
	return status == http.StatusBadGateway || status == http.StatusServiceUnavailable || status == http.StatusGatewayTimeout
}

func bufferBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()
	data, err := io.ReadAll(io.LimitReader(r.Body, retryBodyLimit+1))
	if err != nil {
		return nil, err
	}
	if len(data) > retryBodyLimit {
		return nil, errBodyTooLarge
	}
	return data, nil
}

// bufferedResponse holds one attempt's response until we know whether it is
// final.
type bufferedResponse struct {
	header http.Header
	body   bytes.Buffer
	status int
	wrote  bool
}

func newBufferedResponse() *bufferedResponse {
	return &bufferedResponse{header: make(http.Header), status: http.StatusOK}
}

func (b *bufferedResponse) Header() http.Header { return b.header }

func (b *bufferedResponse) WriteHeader(status int) {
	if b.wrote {
		return
	}
	b.status = status
	b.wrote = true
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	b.wrote = true
	return b.body.Write(p)
}

func (b *bufferedResponse) flushTo(w http.ResponseWriter) {
	dst := w.Header()
	for k, v := range b.header {
		dst[k] = append([]string(nil), v...)
	}
	w.WriteHeader(b.status)
	if b.body.Len() > 0 {
		_, _ = w.Write(b.body.Bytes())
	}
}
