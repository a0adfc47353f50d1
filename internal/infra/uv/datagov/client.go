package datagov

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

const defaultBaseURL = "https://api-open.data.gov.sg/v2/real-time/api/uv"

// Client fetches hourly UV values from data.gov.sg. The feed only covers
// Singapore, so coordinates are ignored.
type Client struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

// Series is a day worth of UV readings ordered by hour.
type Series struct {
	Date      string
	Readings  []Sample
	UpdatedAt time.Time
}

// Sample is an individual hourly UV value.
type Sample struct {
	Hour  time.Time
	Value float64
}

// NewClient builds an API client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	url := strings.TrimSpace(baseURL)
	if url == "" {
		url = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(url, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		now: time.Now,
	}
}

// CurrentUV returns the most recent reading published at or before now.
func (c *Client) CurrentUV(ctx context.Context, _, _ float64) (float64, error) {
	series, err := c.Fetch(ctx)
	if err != nil {
		return 0, err
	}
	return latestValue(series.Readings, c.now())
}

// Fetch retrieves today's UV series.
func (c *Client) Fetch(ctx context.Context) (Series, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return Series{}, fmt.Errorf("build uv request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Series{}, fmt.Errorf("uv request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return Series{}, fmt.Errorf("uv request error: status=%d body=%s", resp.StatusCode, string(payload))
	}

	var raw apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return Series{}, fmt.Errorf("decode uv response: %w", err)
	}
	if raw.Code != 0 {
		return Series{}, fmt.Errorf("uv api error: %s", raw.ErrorMsg)
	}
	return normalizeRecords(raw.Data.Records), nil
}

type apiResponse struct {
	Code     int     `json:"code"`
	ErrorMsg string  `json:"errorMsg"`
	Data     apiData `json:"data"`
}

type apiData struct {
	Records []record `json:"records"`
}

type record struct {
	Date             string       `json:"date"`
	UpdatedTimestamp string       `json:"updatedTimestamp"`
	Index            []indexEntry `json:"index"`
}

type indexEntry struct {
	Hour  string  `json:"hour"`
	Value float64 `json:"value"`
}

func normalizeRecords(records []record) Series {
	points := make([]Sample, 0, len(records)*2)
	seen := make(map[string]struct{})
	var (
		date    string
		updated time.Time
	)

	for _, rec := range records {
		if date == "" && rec.Date != "" {
			date = rec.Date
		}
		if ts := parseTime(rec.UpdatedTimestamp); !ts.IsZero() && ts.After(updated) {
			updated = ts
		}
		for _, idx := range rec.Index {
			if _, ok := seen[idx.Hour]; ok {
				continue
			}
			seen[idx.Hour] = struct{}{}

			ts := parseTime(idx.Hour)
			if ts.IsZero() {
				continue
			}
			points = append(points, Sample{Hour: ts, Value: idx.Value})
		}
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Hour.Before(points[j].Hour)
	})

	return Series{Date: date, Readings: points, UpdatedAt: updated}
}

// latestValue picks the last sample not in the future. Samples must be sorted.
func latestValue(points []Sample, now time.Time) (float64, error) {
	if len(points) == 0 {
		return 0, errors.New("no uv readings available")
	}
	value := points[0].Value
	for _, pt := range points {
		if pt.Hour.After(now) {
			break
		}
		value = pt.Value
	}
	return value, nil
}

func parseTime(value string) time.Time {
	if strings.TrimSpace(value) == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return ts
}
