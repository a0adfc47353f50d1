package wellbeing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/yanqian/wellbeing-index/pkg/errors"
)

const defaultHour = 12

type service struct {
	cfg       Config
	providers Providers
	clock     ClockResolver
	calc      *Calculator
	chat      ChatClient
	store     ConditionStore
	history   HistoryRepository
	tokens    TokenCounter
	recorder  Recorder
	prompt    *template.Template
	logger    *slog.Logger
	now       func() time.Time
}

// NewService wires up the wellbeing domain.
func NewService(
	cfg Config,
	providers Providers,
	clock ClockResolver,
	calc *Calculator,
	chat ChatClient,
	store ConditionStore,
	history HistoryRepository,
	tokens TokenCounter,
	recorder Recorder,
	logger *slog.Logger,
) Service {
	log := logger.With("component", "wellbeing.service")
	return &service{
		cfg:       cfg,
		providers: providers,
		clock:     clock,
		calc:      calc,
		chat:      chat,
		store:     store,
		history:   history,
		tokens:    tokens,
		recorder:  recorder,
		prompt:    parsePrompt(cfg.PromptTemplate, log),
		logger:    log,
		now:       time.Now,
	}
}

func (s *service) Assess(ctx context.Context, req AssessmentRequest) (Assessment, error) {
	lat, lon, err := validateAssessment(req)
	if err != nil {
		return Assessment{}, apperrors.Wrap(apperrors.CodeInvalidInput, err.Error(), nil)
	}

	cond, err := s.conditions(ctx, lat, lon)
	if err != nil {
		return Assessment{}, apperrors.Wrap(apperrors.CodeUpstream, "failed to fetch environmental data", err)
	}

	hour, known := s.localHour(req.Hour, lat, lon)
	in := Input{
		Reading: Reading{
			Temperature: cond.Temperature,
			Humidity:    cond.Humidity,
			Pressure:    cond.Pressure,
			CloudCover:  cond.CloudCover,
			WindSpeed:   cond.WindSpeed,
			AQI:         cond.AQI,
			UVIndex:     cond.UVIndex,
			NoiseLevel:  float64(*req.NoiseLevel),
		},
		Profile: req.Profile,
	}
	if known {
		in.LocalHour = &hour
	}

	res := s.calc.Compute(in)
	s.logger.Info("wellbeing index computed",
		"profile", res.Profile.String(),
		"ib", res.IB,
		"level", res.Tier.String(),
		"local_hour", hour,
		"night", res.Night,
		"degraded", !known,
	)

	assessment := buildAssessment(uuid.NewString(), in, cond, res, hour, !known, s.now().UTC())
	if err := s.history.Save(ctx, assessment); err != nil {
		s.logger.Warn("assessment history save failed", "id", assessment.ID, "error", err)
	}
	s.recorder.ObserveAssessment(assessment.Level, assessment.Degraded)
	return assessment, nil
}

func (s *service) Get(ctx context.Context, id string) (Assessment, error) {
	id = strings.TrimSpace(id)
	if _, err := uuid.Parse(id); err != nil {
		return Assessment{}, apperrors.Wrap(apperrors.CodeInvalidInput, "assessment id must be a uuid", err)
	}
	a, ok, err := s.history.Find(ctx, id)
	if err != nil {
		return Assessment{}, apperrors.Wrap(apperrors.CodeHistory, "assessment lookup failed", err)
	}
	if !ok {
		return Assessment{}, apperrors.Wrap(apperrors.CodeNotFound, "assessment not found", nil)
	}
	return a, nil
}

func (s *service) AssessWithSummary(ctx context.Context, req AssessmentRequest) (FullSummaryResponse, error) {
	a, err := s.Assess(ctx, req)
	if err != nil {
		return FullSummaryResponse{}, err
	}
	out := FullSummaryResponse{
		IB:           a.IB,
		Level:        a.Level,
		Message:      a.Message,
		LocalHour:    a.LocalHour,
		AssessmentID: a.ID,
	}
	summary, _, err := s.narrate(ctx, narrative{
		Scores:    a.Scores,
		Profile:   a.Profile,
		Level:     a.Level,
		LocalHour: a.LocalHour,
		Moment:    DaySegment(a.LocalHour),
	})
	if err != nil {
		s.logger.Warn("narrative summary unavailable", "assessment_id", a.ID, "error", err)
		out.SummaryError = "summary unavailable"
		return out, nil
	}
	out.Summary = summary
	return out, nil
}

// conditions serves cached readings when fresh, otherwise fetches all three
// sources concurrently.
func (s *service) conditions(ctx context.Context, lat, lon float64) (Conditions, error) {
	key := conditionKey(lat, lon)
	if cached, ok, err := s.store.Get(ctx, key); err != nil {
		s.logger.Warn("conditions cache lookup failed", "key", key, "error", err)
	} else if ok {
		s.recorder.ObserveCache(true)
		return cached, nil
	}
	s.recorder.ObserveCache(false)

	fetchCtx := ctx
	if s.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.cfg.FetchTimeout)
		defer cancel()
	}

	var (
		pollution Pollution
		weather   Weather
		uvi       float64
	)
	g, gctx := errgroup.WithContext(fetchCtx)
	g.Go(func() error {
		var err error
		if pollution, err = s.providers.Pollution.Pollution(gctx, lat, lon); err != nil {
			return fmt.Errorf("pollution: %w", err)
		}
		if pollution.AQI < 1 || pollution.AQI > 5 {
			return fmt.Errorf("pollution: aqi %d outside 1..5", pollution.AQI)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if weather, err = s.providers.Weather.Weather(gctx, lat, lon); err != nil {
			return fmt.Errorf("weather: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if uvi, err = s.providers.UV.CurrentUV(gctx, lat, lon); err != nil {
			return fmt.Errorf("uv: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Conditions{}, err
	}

	cond := Conditions{
		AQI:         pollution.AQI,
		PM25:        pollution.PM25,
		Temperature: weather.Temperature,
		Humidity:    weather.Humidity,
		Pressure:    weather.Pressure,
		CloudCover:  weather.CloudCover,
		WindSpeed:   weather.WindSpeed,
		UVIndex:     uvi,
		FetchedAt:   s.now().UTC(),
	}
	s.logger.Info("environmental data fetched", "lat", lat, "lon", lon, "aqi", cond.AQI, "temp", cond.Temperature, "uvi", cond.UVIndex)
	if err := s.store.Save(ctx, key, cond, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("conditions cache save failed", "key", key, "error", err)
	}
	return cond, nil
}

// localHour prefers the explicit override, then the timezone lookup. The
// boolean is false when neither produced an hour.
func (s *service) localHour(override *int, lat, lon float64) (int, bool) {
	if override != nil {
		return *override, true
	}
	hour, err := s.clock.LocalHour(lat, lon)
	if err != nil {
		s.logger.Warn("local time unavailable, sun score left unadjusted", "lat", lat, "lon", lon, "error", err)
		return defaultHour, false
	}
	return hour, true
}

func validateAssessment(req AssessmentRequest) (float64, float64, error) {
	if req.Lat == nil || req.Lon == nil {
		return 0, 0, errors.New("lat and lon are required")
	}
	lat, lon := *req.Lat, *req.Lon
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return 0, 0, errors.New("lat and lon must be numbers")
	}
	if lat < -90 || lat > 90 {
		return 0, 0, errors.New("lat must be within [-90, 90]")
	}
	if lon < -180 || lon > 180 {
		return 0, 0, errors.New("lon must be within [-180, 180]")
	}
	if req.NoiseLevel == nil {
		return 0, 0, errors.New("noise_level is required")
	}
	if *req.NoiseLevel < 0 || *req.NoiseLevel > 10 {
		return 0, 0, errors.New("noise_level must be within [0, 10]")
	}
	if req.Hour != nil && (*req.Hour < 0 || *req.Hour > 23) {
		return 0, 0, errors.New("hour must be within [0, 23]")
	}
	return lat, lon, nil
}

func conditionKey(lat, lon float64) string {
	return fmt.Sprintf("%.3f:%.3f", lat, lon)
}

var units = map[string]string{
	"pollution": "AQI",
	"temp":      "°C",
	"pressure":  "hPa",
	"humidity":  "%",
	"noise":     "dB",
	"sun":       "%",
	"wind":      "km/h",
	"uv":        "",
}

func buildAssessment(id string, in Input, cond Conditions, res Result, hour int, degraded bool, createdAt time.Time) Assessment {
	cloud := 0.0
	if cond.CloudCover != nil {
		cloud = *cond.CloudCover
	}
	unitCopy := make(map[string]string, len(units))
	for k, v := range units {
		unitCopy[k] = v
	}
	return Assessment{
		ID:      id,
		Profile: res.Profile.String(),
		IB:      res.Percent,
		Scores: ScoreSet{
			Pollution:   Round2(res.Scores.Pollution),
			Temperature: Round2(res.Scores.Temperature),
			Noise:       Round2(res.Scores.Noise),
			Humidity:    Round2(res.Scores.Humidity),
			Pressure:    Round2(res.Scores.Pressure),
			Sun:         Round2(res.Scores.Sun),
			Wind:        Round2(res.Scores.Wind),
			UV:          Round2(res.Scores.UV),
		},
		RawValues: map[string]float64{
			"pollution": float64(cond.AQI),
			"temp":      cond.Temperature,
			"pressure":  cond.Pressure,
			"humidity":  cond.Humidity,
			"noise":     in.Reading.NoiseLevel,
			"sun":       cloud,
			"wind":      cond.WindSpeed,
			"uv":        cond.UVIndex,
		},
		Units:        unitCopy,
		Level:        res.Tier.String(),
		Message:      res.Message,
		PM25:         cond.PM25,
		Temperature:  cond.Temperature,
		Humidity:     cond.Humidity,
		Pressure:     cond.Pressure,
		WindSpeedKmh: cond.WindSpeed,
		UVI:          cond.UVIndex,
		LocalHour:    hour,
		Degraded:     degraded,
		CreatedAt:    createdAt,
	}
}
