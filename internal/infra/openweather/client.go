package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yanqian/wellbeing-index/internal/domain/wellbeing"
)

const (
	defaultBaseURL = "https://api.openweathermap.org"
	// OpenWeather reports wind in m/s with metric units.
	msToKmh = 3.6
)

// Client fetches air pollution, current weather and UV from OpenWeather.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient builds an API client.
func NewClient(apiKey, baseURL string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("openweather api key cannot be empty")
	}
	base := strings.TrimSpace(baseURL)
	if base == "" {
		base = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(base, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Pollution returns the current AQI (1..5) and PM2.5 concentration.
func (c *Client) Pollution(ctx context.Context, lat, lon float64) (wellbeing.Pollution, error) {
	var raw pollutionResponse
	if err := c.get(ctx, "/data/2.5/air_pollution", lat, lon, nil, &raw); err != nil {
		return wellbeing.Pollution{}, err
	}
	if len(raw.List) == 0 {
		return wellbeing.Pollution{}, errors.New("air pollution response has no entries")
	}
	entry := raw.List[0]
	if entry.Main.AQI == nil {
		return wellbeing.Pollution{}, errors.New("air pollution response missing aqi")
	}
	return wellbeing.Pollution{
		AQI:  *entry.Main.AQI,
		PM25: entry.Components.PM25,
	}, nil
}

// Weather returns the current conditions with wind converted to km/h.
func (c *Client) Weather(ctx context.Context, lat, lon float64) (wellbeing.Weather, error) {
	var raw weatherResponse
	if err := c.get(ctx, "/data/2.5/weather", lat, lon, url.Values{"units": {"metric"}}, &raw); err != nil {
		return wellbeing.Weather{}, err
	}
	if raw.Main.Temp == nil || raw.Main.Humidity == nil || raw.Main.Pressure == nil {
		return wellbeing.Weather{}, errors.New("weather response missing main readings")
	}
	if raw.Wind.Speed == nil {
		return wellbeing.Weather{}, errors.New("weather response missing wind speed")
	}
	return wellbeing.Weather{
		Temperature: *raw.Main.Temp,
		Humidity:    *raw.Main.Humidity,
		Pressure:    *raw.Main.Pressure,
		CloudCover:  raw.Clouds.All,
		WindSpeed:   *raw.Wind.Speed * msToKmh,
	}, nil
}

// CurrentUV returns the current UV index, or 0 when the provider omits it.
func (c *Client) CurrentUV(ctx context.Context, lat, lon float64) (float64, error) {
	var raw oneCallResponse
	query := url.Values{
		"exclude": {"minutely,hourly,daily,alerts"},
		"units":   {"metric"},
	}
	if err := c.get(ctx, "/data/3.0/onecall", lat, lon, query, &raw); err != nil {
		return 0, err
	}
	if raw.Current.UVI == nil {
		return 0, nil
	}
	return *raw.Current.UVI, nil
}

func (c *Client) get(ctx context.Context, path string, lat, lon float64, extra url.Values, out any) error {
	query := url.Values{}
	for k, v := range extra {
		query[k] = v
	}
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	query.Set("appid", c.apiKey)
	endpoint := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build openweather request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error quotes the full URL, appid included.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fmt.Errorf("openweather request %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("openweather request %s error: status=%d body=%s", path, resp.StatusCode, string(excerpt))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode openweather %s response: %w", path, err)
	}
	return nil
}

type pollutionResponse struct {
	List []struct {
		Main struct {
			AQI *int `json:"aqi"`
		} `json:"main"`
		Components struct {
			PM25 float64 `json:"pm2_5"`
		} `json:"components"`
	} `json:"list"`
}

type weatherResponse struct {
	Main struct {
		Temp     *float64 `json:"temp"`
		Humidity *float64 `json:"humidity"`
		Pressure *float64 `json:"pressure"`
	} `json:"main"`
	Clouds struct {
		All *float64 `json:"all"`
	} `json:"clouds"`
	Wind struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
}

type oneCallResponse struct {
	Current struct {
		UVI *float64 `json:"uvi"`
	} `json:"current"`
}
