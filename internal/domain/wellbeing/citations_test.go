package wellbeing

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type fixedRand int

func (f fixedRand) IntN(n int) int { return int(f) % n }

func TestLoadCitationsEmbedded(t *testing.T) {
	table, err := LoadCitations("")
	require.NoError(t, err)
	require.Len(t, table, 4)
	require.Len(t, table[ProfileStandard], 3)
	require.Len(t, table[ProfileStandardAsthmatic], 2)
	require.Len(t, table[ProfileSportif], 3)
	require.Len(t, table[ProfileSportifAsthmatic], 2)
	require.Equal(t, "Albert Einstein", table[ProfileStandard][0].Author)
}

func TestLoadCitationsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "citations.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"Sportif asthmatic": [{"text": " Breathe. ", "author": ""}, {"text": "  ", "author": "Nobody"}]
	}`), 0o600))

	table, err := LoadCitations(path)
	require.NoError(t, err)
	require.Equal(t, []Citation{{Text: "Breathe.", Author: "Unknown"}}, table[ProfileSportifAsthmatic])
	require.Empty(t, table[ProfileStandard])
}

func TestLoadCitationsErrors(t *testing.T) {
	_, err := LoadCitations(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	_, err = ParseCitations([]byte(`["not", "an", "object"]`))
	require.Error(t, err)
}

func TestPickFallsBackWhenProfileHasNoCitations(t *testing.T) {
	table := CitationTable{ProfileSportif: {{Text: "Go.", Author: "A"}}}
	require.Equal(t, fallbackCitation, table.Pick(ProfileStandard, fixedRand(0)))
	require.Equal(t, Citation{Text: "Go.", Author: "A"}, table.Pick(ProfileSportif, fixedRand(5)))
}

func TestPickDrawsFromProfileOnly(t *testing.T) {
	table, err := LoadCitations("")
	require.NoError(t, err)

	rnd := rand.New(rand.NewPCG(1, 2))
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		c := table.Pick(ProfileSportifAsthmatic, rnd)
		require.Contains(t, table[ProfileSportifAsthmatic], c)
		seen[c.Text] = true
	}
	require.Len(t, seen, 2)
}
