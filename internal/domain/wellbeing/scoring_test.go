package wellbeing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func allOnes() ScoreSet {
	return ScoreSet{Pollution: 1, Temperature: 1, Noise: 1, Humidity: 1, Pressure: 1, Sun: 1, Wind: 1, UV: 1}
}

func TestScoreSunBoundedAndNonIncreasing(t *testing.T) {
	prev := 2.0
	for cloud := 0.0; cloud <= 100; cloud += 0.5 {
		got := ScoreSun(ptr(cloud))
		require.GreaterOrEqual(t, got, 0.0)
		require.LessOrEqual(t, got, 1.0)
		require.LessOrEqual(t, got, prev, "cloud=%v", cloud)
		prev = got
	}
	require.Zero(t, ScoreSun(nil))
	require.Zero(t, ScoreSun(ptr(140.0)))
	require.Equal(t, 1.0, ScoreSun(ptr(-5.0)))
}

func TestFactorBoundaries(t *testing.T) {
	cases := []struct {
		name string
		got  float64
		want float64
	}{
		{"pressure 1013", ScorePressure(1013), 1},
		{"pressure 1020", ScorePressure(1020), 1},
		{"pressure 980", ScorePressure(980), 0},
		{"pressure 1040", ScorePressure(1040), 0},
		{"pressure 950", ScorePressure(950), 0},
		{"pressure 1030", ScorePressure(1030), 0.5},
		{"temp 18", ScoreTemperature(18), 1},
		{"temp 24", ScoreTemperature(24), 1},
		{"temp 5", ScoreTemperature(5), 0},
		{"temp 30", ScoreTemperature(30), 0},
		{"temp -10", ScoreTemperature(-10), 0},
		{"temp 27", ScoreTemperature(27), 0.5},
		{"humidity 40", ScoreHumidity(40), 1},
		{"humidity 60", ScoreHumidity(60), 1},
		{"humidity 20", ScoreHumidity(20), 0},
		{"humidity 80", ScoreHumidity(80), 0},
		{"humidity 30", ScoreHumidity(30), 0.5},
		{"noise 0", ScoreNoise(0), 1},
		{"noise 10", ScoreNoise(10), 0},
		{"noise 12", ScoreNoise(12), 0},
		{"pollution 1", ScorePollution(1), 1},
		{"pollution 3", ScorePollution(3), 0.5},
		{"pollution 5", ScorePollution(5), 0},
		{"wind 4.9", ScoreWind(4.9), 0.5},
		{"wind 5", ScoreWind(5), 1.0},
		{"wind 20", ScoreWind(20), 1.0},
		{"wind 20.1", ScoreWind(20.1), 0.6},
		{"wind 35", ScoreWind(35), 0.6},
		{"wind 35.1", ScoreWind(35.1), 0.3},
		{"uv 0", ScoreUV(0), 0.0},
		{"uv 1", ScoreUV(1), 0.3},
		{"uv 2", ScoreUV(2), 0.3},
		{"uv 2.5", ScoreUV(2.5), 0.3},
		{"uv 3", ScoreUV(3), 1.0},
		{"uv 6", ScoreUV(6), 1.0},
		{"uv 8", ScoreUV(8), 0.6},
		{"uv 9", ScoreUV(9), 0.3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.InDelta(t, tc.want, tc.got, 1e-12)
		})
	}
}

func TestScoreNightOverride(t *testing.T) {
	r := Reading{Temperature: 21, Humidity: 50, Pressure: 1015, CloudCover: ptr(10.0), WindSpeed: 10, AQI: 1, UVIndex: 4}

	night, isNight := Score(r, ptr(3))
	require.True(t, isNight)
	require.Zero(t, night.Sun)

	day, isNight := Score(r, ptr(13))
	require.False(t, isNight)
	require.InDelta(t, 0.9, day.Sun, 1e-12)

	unknown, isNight := Score(r, nil)
	require.False(t, isNight)
	require.InDelta(t, 0.9, unknown.Sun, 1e-12)
}

func TestIsNight(t *testing.T) {
	for hour := 0; hour < 24; hour++ {
		require.Equal(t, hour < 6 || hour > 20, IsNight(hour), "hour=%d", hour)
	}
}

func TestCompositeAllOnesIsExactlyOne(t *testing.T) {
	ib := Composite(allOnes(), "Standard")
	require.Equal(t, 1.0, ib)
	require.Equal(t, TierExcellent, TierFor(ib))
	require.Equal(t, 100, Percent(ib))
}

func TestCompositeSportifPenalty(t *testing.T) {
	s := allOnes()
	s.Temperature = 0.5

	base := BaseIndex(s)
	require.InDelta(t, 0.9, base, 1e-12)
	require.Equal(t, base-0.15, Composite(s, "Sportif"))
	require.InDelta(t, 0.75, Composite(s, "Sportif"), 1e-12)

	s.Temperature = 0.8
	require.Equal(t, BaseIndex(s), Composite(s, "Sportif"))
}

func TestCompositeAsthmaticPenalty(t *testing.T) {
	s := allOnes()
	s.Pollution = 0.4

	base := BaseIndex(s)
	require.InDelta(t, 0.85, base, 1e-12)
	for _, profile := range []string{"Standard asthmatique", "standard ASTHMATIC"} {
		require.InDelta(t, base-0.12, Composite(s, profile), 1e-12, profile)
		require.InDelta(t, 0.73, Composite(s, profile), 1e-12, profile)
	}
}

func TestCompositePenaltiesStack(t *testing.T) {
	s := allOnes()
	s.Temperature = 0.5
	s.Pollution = 0.5

	want := BaseIndex(s) - 0.15 - 0.10
	require.InDelta(t, want, Composite(s, "Sportif asthmatique"), 1e-12)
}

func TestCompositeMayGoNegative(t *testing.T) {
	ib := Composite(ScoreSet{}, "Sportif asthmatique")
	require.InDelta(t, -0.35, ib, 1e-12)
	require.Equal(t, -35, Percent(ib))
	require.Equal(t, TierUnfavorable, TierFor(ib))
}

func TestPercentRoundsHalfToEven(t *testing.T) {
	require.Equal(t, 82, Percent(0.825))
	require.Equal(t, 75, Percent(0.7499999999999999))
	require.Equal(t, 73, Percent(0.73))
	require.Equal(t, 0, Percent(0.004))
}

func TestRound2(t *testing.T) {
	require.Equal(t, 0.67, Round2(2.0/3.0))
	require.Equal(t, 0.5, Round2(0.5))
	require.Equal(t, 1.0, Round2(1))
}
