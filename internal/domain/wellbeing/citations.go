package wellbeing

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

//go:embed citations.json
var defaultCitations []byte

// Citation is a quote appended to the advice message.
type Citation struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

// CitationTable maps each profile to its quotes. It is read-only once loaded.
type CitationTable map[Profile][]Citation

// LoadCitations reads the table from path, or the bundled set when path is empty.
func LoadCitations(path string) (CitationTable, error) {
	data := defaultCitations
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read citations file: %w", err)
		}
		data = raw
	}
	return ParseCitations(data)
}

// ParseCitations decodes a JSON object keyed by profile name. Keys go through
// ParseProfile, so French and English names are both accepted. Entries with
// empty text are dropped.
func ParseCitations(data []byte) (CitationTable, error) {
	var raw map[string][]Citation
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode citations: %w", err)
	}
	table := make(CitationTable, len(raw))
	for name, items := range raw {
		p := ParseProfile(name)
		for _, item := range items {
			item.Text = strings.TrimSpace(item.Text)
			item.Author = strings.TrimSpace(item.Author)
			if item.Text == "" {
				continue
			}
			if item.Author == "" {
				item.Author = fallbackCitation.Author
			}
			table[p] = append(table[p], item)
		}
	}
	return table, nil
}

// Pick draws one citation for the profile uniformly at random.
func (t CitationTable) Pick(p Profile, rnd Rand) Citation {
	items := t[p]
	if len(items) == 0 {
		return fallbackCitation
	}
	return items[rnd.IntN(len(items))]
}
