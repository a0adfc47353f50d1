package wellbeing

import (
	"time"

	"github.com/yanqian/wellbeing-index/pkg/metrics"
)

// Reading is one environmental snapshot for a point. WindSpeed is km/h.
type Reading struct {
	Temperature float64
	Humidity    float64
	Pressure    float64
	CloudCover  *float64
	WindSpeed   float64
	AQI         int
	UVIndex     float64
	NoiseLevel  float64
}

// Input is everything the calculator needs for a single computation.
type Input struct {
	Reading Reading
	// Profile is the free-text profile as typed by the user.
	Profile string
	// LocalHour is nil when the local time could not be resolved.
	LocalHour *int
}

// ScoreSet holds the normalized factor scores, each within [0,1].
type ScoreSet struct {
	Pollution   float64 `json:"pollution"`
	Temperature float64 `json:"temp"`
	Noise       float64 `json:"noise"`
	Humidity    float64 `json:"humidity"`
	Pressure    float64 `json:"pressure"`
	Sun         float64 `json:"sun"`
	Wind        float64 `json:"wind"`
	UV          float64 `json:"uv"`
}

// Result is the output of the calculator.
type Result struct {
	IB      float64
	Percent int
	Tier    Tier
	Profile Profile
	Scores  ScoreSet
	// Night reports that the sun score was forced to zero.
	Night   bool
	Message string
}

// Conditions is what the upstream providers report for a coordinate.
type Conditions struct {
	AQI         int       `json:"aqi"`
	PM25        float64   `json:"pm25"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Pressure    float64   `json:"pressure"`
	CloudCover  *float64  `json:"cloudCover,omitempty"`
	WindSpeed   float64   `json:"windSpeedKmh"`
	UVIndex     float64   `json:"uvi"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

// Pollution is the air-quality provider payload.
type Pollution struct {
	AQI  int
	PM25 float64
}

// Weather is the weather provider payload with wind already in km/h.
type Weather struct {
	Temperature float64
	Humidity    float64
	Pressure    float64
	CloudCover  *float64
	WindSpeed   float64
}

// AssessmentRequest captures the payload accepted by the index endpoint.
type AssessmentRequest struct {
	Lat        *float64 `form:"lat" binding:"required"`
	Lon        *float64 `form:"lon" binding:"required"`
	NoiseLevel *int     `form:"noise_level" binding:"required"`
	Profile    string   `form:"profile" binding:"required"`
	Hour       *int     `form:"hour"`
}

// Assessment is serialized back to API consumers.
type Assessment struct {
	ID           string             `json:"id"`
	Profile      string             `json:"profile"`
	IB           int                `json:"ib"`
	Scores       ScoreSet           `json:"scores"`
	RawValues    map[string]float64 `json:"rawValues"`
	Units        map[string]string  `json:"units"`
	Level        string             `json:"level"`
	Message      string             `json:"message"`
	PM25         float64            `json:"pm25"`
	Temperature  float64            `json:"temperature"`
	Humidity     float64            `json:"humidity"`
	Pressure     float64            `json:"pressure"`
	WindSpeedKmh float64            `json:"windSpeedKmh"`
	UVI          float64            `json:"uvi"`
	LocalHour    int                `json:"localHour"`
	Degraded     bool               `json:"degraded"`
	CreatedAt    time.Time          `json:"createdAt"`
}

// SummaryRequest carries caller supplied scores for a narrative summary.
type SummaryRequest struct {
	Scores  ScoreSet `json:"scores"`
	Profile string   `json:"profile"`
	Level   string   `json:"level"`
	Moment  string   `json:"moment,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lon     *float64 `json:"lon,omitempty"`
}

// SummaryResponse is returned by the summary endpoint.
type SummaryResponse struct {
	Summary    string              `json:"summary"`
	LocalHour  int                 `json:"localHour"`
	Moment     string              `json:"moment"`
	TokenUsage *metrics.TokenUsage `json:"tokenUsage,omitempty"`
}

// FullSummaryResponse combines the index with a best-effort narrative.
type FullSummaryResponse struct {
	Summary      string `json:"summary"`
	SummaryError string `json:"summaryError,omitempty"`
	IB           int    `json:"ib"`
	Level        string `json:"level"`
	Message      string `json:"message"`
	LocalHour    int    `json:"localHour"`
	AssessmentID string `json:"assessmentId"`
}

// Config wires runtime knobs for the wellbeing domain.
type Config struct {
	Model          string
	Temperature    float32
	SystemPrompt   string
	PromptTemplate string
	FetchTimeout   time.Duration
	CacheTTL       time.Duration
}
