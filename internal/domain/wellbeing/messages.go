package wellbeing

const defaultMessage = "Enjoy your day!"

var fallbackCitation = Citation{Text: "Enjoy your day!", Author: "Unknown"}

var messageTable = map[Profile]map[Tier]string{
	ProfileStandard: {
		TierExcellent:   "The environment is ideal today.",
		TierFavorable:   "Conditions are good, make the most of them.",
		TierModerate:    "Keep an eye on some of today's conditions.",
		TierUnfavorable: "Take care of yourself, conditions are not very favorable.",
	},
	ProfileStandardAsthmatic: {
		TierExcellent:   "You can breathe freely today.",
		TierFavorable:   "The air is acceptable for sensitive people.",
		TierModerate:    "Consider limiting prolonged effort.",
		TierUnfavorable: "Avoid long outings if you can.",
	},
	ProfileSportif: {
		TierExcellent:   "Ideal conditions for exercise.",
		TierFavorable:   "It's a good day to get moving.",
		TierModerate:    "Favor gentle activities.",
		TierUnfavorable: "Rest or train indoors today.",
	},
	ProfileSportifAsthmatic: {
		TierExcellent:   "Moving outdoors is a pleasure today.",
		TierFavorable:   "Conditions suit a moderate effort.",
		TierModerate:    "Be careful if you train outside.",
		TierUnfavorable: "Rest or an indoor session is advised.",
	},
}

// MessageFor returns the advice line for a profile and tier.
func MessageFor(p Profile, t Tier) string {
	byTier, ok := messageTable[p]
	if !ok {
		return defaultMessage
	}
	msg, ok := byTier[t]
	if !ok {
		return defaultMessage
	}
	return msg
}
