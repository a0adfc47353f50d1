package wellbeing

import "math"

// Factor weights. Accumulated smallest first so that a perfect reading sums
// to exactly 1.
const (
	weightPollution   = 0.25
	weightTemperature = 0.20
	weightNoise       = 0.10
	weightHumidity    = 0.10
	weightPressure    = 0.10
	weightSun         = 0.10
	weightWind        = 0.075
	weightUV          = 0.075

	sportifPenalty        = 0.15
	sportifTempThreshold  = 0.8
	asthmaticPenaltyScale = 0.20
)

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// ScoreSun rates sunshine from cloud cover in percent. Unknown cover scores 0.
func ScoreSun(cloudCover *float64) float64 {
	if cloudCover == nil {
		return 0
	}
	return clamp01(1 - *cloudCover/100)
}

// ScorePollution maps an AQI on the 1..5 scale. Callers must supply a valid AQI.
func ScorePollution(aqi int) float64 {
	return 1 - float64(aqi-1)/4
}

// ScorePressure rates atmospheric pressure in hPa.
func ScorePressure(hPa float64) float64 {
	switch {
	case hPa >= 1013 && hPa <= 1020:
		return 1
	case hPa < 1013:
		return math.Max(0, (hPa-980)/33)
	default:
		return math.Max(0, (1040-hPa)/20)
	}
}

// ScoreTemperature rates air temperature in °C.
func ScoreTemperature(celsius float64) float64 {
	switch {
	case celsius >= 18 && celsius <= 24:
		return 1
	case celsius < 18:
		return math.Max(0, (celsius-5)/13)
	default:
		return math.Max(0, (30-celsius)/6)
	}
}

// ScoreNoise rates the user supplied noise level on a 0..10 scale.
func ScoreNoise(level float64) float64 {
	return clamp01(1 - level/10)
}

// ScoreHumidity rates relative humidity in percent.
func ScoreHumidity(pct float64) float64 {
	switch {
	case pct >= 40 && pct <= 60:
		return 1
	case pct < 40:
		return math.Max(0, (pct-20)/20)
	default:
		return math.Max(0, (80-pct)/20)
	}
}

// ScoreWind rates wind speed in km/h.
func ScoreWind(kmh float64) float64 {
	switch {
	case kmh < 5:
		return 0.5
	case kmh <= 20:
		return 1.0
	case kmh <= 35:
		return 0.6
	default:
		return 0.3
	}
}

// ScoreUV rates the UV index. Values strictly between 2 and 3 fall into the
// last band, matching the historical scale.
func ScoreUV(index float64) float64 {
	switch {
	case index == 0:
		return 0.0
	case index <= 2:
		return 0.3
	case index >= 3 && index <= 6:
		return 1.0
	case index > 6 && index <= 8:
		return 0.6
	default:
		return 0.3
	}
}

// IsNight reports whether the sun score must be forced to zero at this hour.
func IsNight(hour int) bool {
	return hour < 6 || hour > 20
}

// Score derives every factor score from a reading. When localHour is known and
// falls at night the sun score is zeroed and night is true.
func Score(r Reading, localHour *int) (scores ScoreSet, night bool) {
	scores = ScoreSet{
		Pollution:   ScorePollution(r.AQI),
		Temperature: ScoreTemperature(r.Temperature),
		Noise:       ScoreNoise(r.NoiseLevel),
		Humidity:    ScoreHumidity(r.Humidity),
		Pressure:    ScorePressure(r.Pressure),
		Sun:         ScoreSun(r.CloudCover),
		Wind:        ScoreWind(r.WindSpeed),
		UV:          ScoreUV(r.UVIndex),
	}
	if localHour != nil && IsNight(*localHour) {
		scores.Sun = 0
		night = true
	}
	return scores, night
}

// BaseIndex is the weighted sum of the factor scores before any penalty.
// Terms are added smallest weight first; that order makes all-ones scores
// sum to exactly 1.0.
func BaseIndex(s ScoreSet) float64 {
	terms := [...]float64{
		float64(weightUV * s.UV),
		float64(weightWind * s.Wind),
		float64(weightSun * s.Sun),
		float64(weightPressure * s.Pressure),
		float64(weightHumidity * s.Humidity),
		float64(weightNoise * s.Noise),
		float64(weightTemperature * s.Temperature),
		float64(weightPollution * s.Pollution),
	}
	var ib float64
	for _, term := range terms {
		ib += term
	}
	return ib
}

// Composite applies the profile penalties to the base index. The result is not
// floored and may be negative.
func Composite(s ScoreSet, profileText string) float64 {
	ib := BaseIndex(s)
	sportif, asthmatic := penalties(profileText)
	if sportif && s.Temperature < sportifTempThreshold {
		ib -= sportifPenalty
	}
	if asthmatic {
		ib -= float64(asthmaticPenaltyScale * (1 - s.Pollution))
	}
	return ib
}

// Percent converts an IB into the displayed integer percentage.
func Percent(ib float64) int {
	return int(math.RoundToEven(ib * 100))
}

// Round2 rounds a score to two decimals for display.
func Round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
