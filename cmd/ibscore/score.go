package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/yanqian/wellbeing-index/internal/domain/wellbeing"
)

type scoreOptions struct {
	temperature float64
	humidity    float64
	pressure    float64
	clouds      float64
	wind        float64
	aqi         int
	uv          float64
	noise       float64
	profile     string
	hour        int
	citations   string
	seed        uint64
	format      string
}

// scoreOutput is the CLI view of a computed index.
type scoreOutput struct {
	IB      float64            `json:"ib"`
	Percent int                `json:"percent"`
	Level   string             `json:"level"`
	Profile string             `json:"profile"`
	Night   bool               `json:"night"`
	Scores  wellbeing.ScoreSet `json:"scores"`
	Message string             `json:"message"`
}

func newRootCmd() *cobra.Command {
	opts := &scoreOptions{}
	cmd := &cobra.Command{
		Use:   "ibscore",
		Short: "Score raw environmental readings into a wellbeing index",
		Long: `Score raw environmental readings into a wellbeing index without calling
any upstream service.

Examples:
  ibscore --temp 21 --humidity 50 --pressure 1015 --clouds 20 --wind 10 --aqi 1 --uv 4 --noise 2
  ibscore --aqi 3 --noise 6 --profile "Sportif asthmatique" --hour 23
  ibscore --aqi 2 --format human --seed 7`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScore(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&opts.temperature, "temp", 21, "Air temperature in °C")
	flags.Float64Var(&opts.humidity, "humidity", 50, "Relative humidity in %")
	flags.Float64Var(&opts.pressure, "pressure", 1015, "Atmospheric pressure in hPa")
	flags.Float64Var(&opts.clouds, "clouds", 0, "Cloud cover in % (omit when unknown)")
	flags.Float64Var(&opts.wind, "wind", 10, "Wind speed in km/h")
	flags.IntVar(&opts.aqi, "aqi", 1, "Air quality index (1 best .. 5 worst)")
	flags.Float64Var(&opts.uv, "uv", 3, "UV index")
	flags.Float64Var(&opts.noise, "noise", 0, "Perceived noise level (0 quiet .. 10 loud)")
	flags.StringVar(&opts.profile, "profile", "Standard", "User profile")
	flags.IntVar(&opts.hour, "hour", 12, "Local hour 0-23 (omit to leave the sun score unadjusted)")
	flags.StringVar(&opts.citations, "citations", "", "Citation table JSON (defaults to the built-in table)")
	flags.Uint64Var(&opts.seed, "seed", 0, "Seed for citation selection")
	flags.StringVar(&opts.format, "format", "json", "Output format (json, human)")
	return cmd
}

func runScore(cmd *cobra.Command, opts *scoreOptions) error {
	if opts.aqi < 1 || opts.aqi > 5 {
		return fmt.Errorf("aqi must be within [1, 5], got %d", opts.aqi)
	}
	if opts.format != "json" && opts.format != "human" {
		return fmt.Errorf("unknown format %q", opts.format)
	}

	table, err := wellbeing.LoadCitations(opts.citations)
	if err != nil {
		return err
	}
	var rnd wellbeing.Rand
	if cmd.Flags().Changed("seed") {
		rnd = rand.New(rand.NewPCG(opts.seed, opts.seed))
	}

	in := wellbeing.Input{
		Reading: wellbeing.Reading{
			Temperature: opts.temperature,
			Humidity:    opts.humidity,
			Pressure:    opts.pressure,
			WindSpeed:   opts.wind,
			AQI:         opts.aqi,
			UVIndex:     opts.uv,
			NoiseLevel:  opts.noise,
		},
		Profile: opts.profile,
	}
	if cmd.Flags().Changed("clouds") {
		clouds := opts.clouds
		in.Reading.CloudCover = &clouds
	}
	if cmd.Flags().Changed("hour") {
		if opts.hour < 0 || opts.hour > 23 {
			return fmt.Errorf("hour must be within [0, 23], got %d", opts.hour)
		}
		hour := opts.hour
		in.LocalHour = &hour
	}

	res := wellbeing.NewCalculator(table, rnd).Compute(in)
	out := scoreOutput{
		IB:      res.IB,
		Percent: res.Percent,
		Level:   res.Tier.String(),
		Profile: res.Profile.String(),
		Night:   res.Night,
		Scores:  res.Scores,
		Message: res.Message,
	}
	if opts.format == "human" {
		return writeHuman(cmd.OutOrStdout(), out)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeHuman(w io.Writer, out scoreOutput) error {
	s := out.Scores
	_, err := fmt.Fprintf(w, `Wellbeing index: %d%% (%s, %s)
  pollution %.2f  temp %.2f  noise %.2f  humidity %.2f
  pressure  %.2f  sun  %.2f  wind  %.2f  uv       %.2f

%s
`, out.Percent, out.Level, out.Profile,
		s.Pollution, s.Temperature, s.Noise, s.Humidity,
		s.Pressure, s.Sun, s.Wind, s.UV,
		out.Message)
	return err
}
