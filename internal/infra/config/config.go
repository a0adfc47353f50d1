package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Log         LogConfig         `yaml:"log"`
	OpenWeather OpenWeatherConfig `yaml:"openWeather"`
	UV          UVConfig          `yaml:"uv"`
	LLM         LLMConfig         `yaml:"llm"`
	Wellbeing   WellbeingConfig   `yaml:"wellbeing"`
	Cache       CacheConfig       `yaml:"cache"`
	History     HistoryConfig     `yaml:"history"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for summary requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// OpenWeatherConfig holds OpenWeatherMap credentials.
type OpenWeatherConfig struct {
	APIKey  string        `yaml:"apiKey"`
	BaseURL string        `yaml:"baseUrl"`
	Timeout time.Duration `yaml:"timeout"`
}

// UVConfig selects where the UV index comes from.
type UVConfig struct {
	Provider   string `yaml:"provider"`
	DataGovURL string `yaml:"dataGovUrl"`
}

// LLMConfig contains ChatGPT/OpenAI compatible settings.
type LLMConfig struct {
	APIKey      string        `yaml:"apiKey"`
	BaseURL     string        `yaml:"baseUrl"`
	Model       string        `yaml:"model"`
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// WellbeingConfig controls index computation and narrative summaries.
type WellbeingConfig struct {
	CitationsPath string        `yaml:"citationsPath"`
	PromptPath    string        `yaml:"promptPath"`
	SystemPrompt  string        `yaml:"systemPrompt"`
	FetchTimeout  time.Duration `yaml:"fetchTimeout"`
	CacheTTL      time.Duration `yaml:"cacheTtl"`
}

// CacheConfig configures the upstream conditions cache.
type CacheConfig struct {
	Valkey ValkeyConfig `yaml:"valkey"`
}

// ValkeyConfig contains connection information for cache storage.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// HistoryConfig configures where computed assessments are kept.
type HistoryConfig struct {
	MemoryLimit int            `yaml:"memoryLimit"`
	Postgres    PostgresConfig `yaml:"postgres"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

const (
	UVProviderOpenWeather = "openweather"
	UVProviderDataGov     = "datagov"
)

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	setString("HTTP_ADDRESS", &cfg.HTTP.Address)
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	setBool("HTTP_RATE_LIMIT_ENABLED", &cfg.HTTP.RateLimit.Enabled)
	setInt("HTTP_RATE_LIMIT_RPM", &cfg.HTTP.RateLimit.RequestsPerMinute)
	setInt("HTTP_RATE_LIMIT_BURST", &cfg.HTTP.RateLimit.Burst)
	setBool("HTTP_RETRY_ENABLED", &cfg.HTTP.Retry.Enabled)
	setInt("HTTP_RETRY_MAX_ATTEMPTS", &cfg.HTTP.Retry.MaxAttempts)
	setDuration("HTTP_RETRY_BASE_BACKOFF", &cfg.HTTP.Retry.BaseBackoff)
	if v := os.Getenv("HTTP_RETRY_EXCLUDE"); v != "" {
		cfg.HTTP.Retry.Exclude = splitList(v)
	}

	setString("LOG_LEVEL", &cfg.Log.Level)
	setString("LOG_FORMAT", &cfg.Log.Format)

	setString("OPENWEATHER_API_KEY", &cfg.OpenWeather.APIKey)
	setString("OPENWEATHER_BASE_URL", &cfg.OpenWeather.BaseURL)
	setDuration("OPENWEATHER_TIMEOUT", &cfg.OpenWeather.Timeout)

	setString("UV_PROVIDER", &cfg.UV.Provider)
	setString("UV_API_BASE_URL", &cfg.UV.DataGovURL)

	setString("LLM_API_KEY", &cfg.LLM.APIKey)
	setString("LLM_BASE_URL", &cfg.LLM.BaseURL)
	setString("LLM_MODEL", &cfg.LLM.Model)
	setDuration("LLM_TIMEOUT", &cfg.LLM.Timeout)
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}

	setString("WELLBEING_CITATIONS_PATH", &cfg.Wellbeing.CitationsPath)
	setString("WELLBEING_PROMPT_PATH", &cfg.Wellbeing.PromptPath)
	setString("WELLBEING_SYSTEM_PROMPT", &cfg.Wellbeing.SystemPrompt)
	setDuration("WELLBEING_FETCH_TIMEOUT", &cfg.Wellbeing.FetchTimeout)
	setDuration("WELLBEING_CACHE_TTL", &cfg.Wellbeing.CacheTTL)

	setBool("CACHE_VALKEY_ENABLED", &cfg.Cache.Valkey.Enabled)
	setString("CACHE_VALKEY_ADDR", &cfg.Cache.Valkey.Addr)

	setInt("HISTORY_MEMORY_LIMIT", &cfg.History.MemoryLimit)
	setString("HISTORY_POSTGRES_DSN", &cfg.History.Postgres.DSN)
	if v := os.Getenv("HISTORY_POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.History.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("HISTORY_POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.History.Postgres.MinConns = int32(parsed)
		}
	}
}

func setString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "1" || strings.EqualFold(v, "true")
	}
}

func setInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func setDuration(key string, dst *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:        ":8080",
			ReadTimeout:    5 * time.Second,
			WriteTimeout:   30 * time.Second,
			AllowedOrigins: []string{"http://localhost:5173"},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 2,
				BaseBackoff: 200 * time.Millisecond,
				// Replaying a full summary reruns the assessment and stores it twice.
				Exclude: []string{"/api/v1/summaries/full"},
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		OpenWeather: OpenWeatherConfig{
			BaseURL: "https://api.openweathermap.org",
			Timeout: 10 * time.Second,
		},
		UV: UVConfig{
			Provider:   UVProviderOpenWeather,
			DataGovURL: "https://api-open.data.gov.sg/v2/real-time/api/uv",
		},
		LLM: LLMConfig{
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-4o-mini",
			Temperature: 0.7,
			Timeout:     20 * time.Second,
		},
		Wellbeing: WellbeingConfig{
			FetchTimeout: 8 * time.Second,
			CacheTTL:     10 * time.Minute,
		},
		History: HistoryConfig{
			MemoryLimit: 1000,
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "json", "text":
	default:
		return fmt.Errorf("log.format %q must be json or text", c.Log.Format)
	}
	if strings.TrimSpace(c.OpenWeather.BaseURL) == "" {
		return errors.New("openWeather.baseUrl cannot be empty")
	}
	switch c.UV.Provider {
	case UVProviderOpenWeather:
	case UVProviderDataGov:
		if strings.TrimSpace(c.UV.DataGovURL) == "" {
			return errors.New("uv.dataGovUrl cannot be empty when uv.provider is datagov")
		}
	default:
		return fmt.Errorf("uv.provider %q must be %s or %s", c.UV.Provider, UVProviderOpenWeather, UVProviderDataGov)
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model cannot be empty")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.New("llm.temperature must be between 0 and 2")
	}
	if c.Wellbeing.FetchTimeout <= 0 {
		return errors.New("wellbeing.fetchTimeout must be positive")
	}
	if c.Wellbeing.CacheTTL < 0 {
		return errors.New("wellbeing.cacheTtl cannot be negative")
	}
	if c.Cache.Valkey.Enabled && strings.TrimSpace(c.Cache.Valkey.Addr) == "" {
		return errors.New("cache.valkey.addr cannot be empty when valkey cache is enabled")
	}
	if c.History.MemoryLimit < 0 {
		return errors.New("history.memoryLimit cannot be negative")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	return nil
}
