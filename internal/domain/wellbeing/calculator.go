package wellbeing

import (
	"fmt"
	"math/rand/v2"
)

// Rand is the source used to draw citations.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Calculator turns a reading into an index, tier and message. It holds no
// mutable state and is safe for concurrent use as long as its Rand is.
type Calculator struct {
	citations CitationTable
	rand      Rand
}

// NewCalculator builds a calculator. A nil rnd uses the process-wide source.
func NewCalculator(citations CitationTable, rnd Rand) *Calculator {
	if rnd == nil {
		rnd = globalRand{}
	}
	if citations == nil {
		citations = CitationTable{}
	}
	return &Calculator{citations: citations, rand: rnd}
}

// Compute scores the input and classifies the result.
func (c *Calculator) Compute(in Input) Result {
	scores, night := Score(in.Reading, in.LocalHour)
	profile := ParseProfile(in.Profile)
	ib := Composite(scores, in.Profile)
	tier := TierFor(ib)
	return Result{
		IB:      ib,
		Percent: Percent(ib),
		Tier:    tier,
		Profile: profile,
		Scores:  scores,
		Night:   night,
		Message: c.Message(profile, tier),
	}
}

// Message composes the advice line and a random citation.
func (c *Calculator) Message(p Profile, t Tier) string {
	citation := c.citations.Pick(p, c.rand)
	return fmt.Sprintf("%s\n\nReflection: \"%s\" – %s", MessageFor(p, t), citation.Text, citation.Author)
}
