package wellbeing

import "strings"

// Profile is the user category used for messages and penalties.
type Profile int

const (
	ProfileStandard Profile = iota
	ProfileStandardAsthmatic
	ProfileSportif
	ProfileSportifAsthmatic
)

var profileNames = map[Profile]string{
	ProfileStandard:          "Standard",
	ProfileStandardAsthmatic: "Standard asthmatic",
	ProfileSportif:           "Sportif",
	ProfileSportifAsthmatic:  "Sportif asthmatic",
}

var profileAliases = map[string]Profile{
	"standard":             ProfileStandard,
	"standard asthmatique": ProfileStandardAsthmatic,
	"standard asthmatic":   ProfileStandardAsthmatic,
	"sportif":              ProfileSportif,
	"sportif asthmatique":  ProfileSportifAsthmatic,
	"sportif asthmatic":    ProfileSportifAsthmatic,
}

func (p Profile) String() string {
	if name, ok := profileNames[p]; ok {
		return name
	}
	return profileNames[ProfileStandard]
}

// ParseProfile maps free text onto a known profile, falling back to Standard.
func ParseProfile(raw string) Profile {
	key := strings.Join(strings.Fields(strings.ToLower(raw)), " ")
	if p, ok := profileAliases[key]; ok {
		return p
	}
	return ProfileStandard
}

// penalties reports which profile penalties the raw text triggers. Both can
// apply at once.
func penalties(raw string) (sportif, asthmatic bool) {
	lower := strings.ToLower(raw)
	sportif = strings.Contains(lower, "sportif")
	asthmatic = strings.Contains(lower, "asthmatique") || strings.Contains(lower, "asthmatic")
	return sportif, asthmatic
}

// Tier is the qualitative band of an IB value.
type Tier int

const (
	TierUnfavorable Tier = iota
	TierModerate
	TierFavorable
	TierExcellent
)

func (t Tier) String() string {
	switch t {
	case TierExcellent:
		return "Excellent"
	case TierFavorable:
		return "Favorable"
	case TierModerate:
		return "Moderate"
	default:
		return "Unfavorable"
	}
}

// TierFor classifies an IB value. Bands are evaluated high to low.
func TierFor(ib float64) Tier {
	switch {
	case ib >= 0.79:
		return TierExcellent
	case ib >= 0.59:
		return TierFavorable
	case ib >= 0.39:
		return TierModerate
	default:
		return TierUnfavorable
	}
}
