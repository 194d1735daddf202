package scoring

import "strings"

// RiskLevel classifies how urgent a safety concern is.
type RiskLevel string

const (
	RiskNone     RiskLevel = "none"
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskImminent RiskLevel = "imminent"
)

// Rank orders risk levels so callers can compare them.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskLow:
		return 1
	case RiskModerate:
		return 2
	case RiskHigh:
		return 3
	case RiskImminent:
		return 4
	default:
		return 0
	}
}

var (
	highRiskPhrases = []string{
		"suicide", "kill myself", "end my life", "better off dead",
		"want to die", "going to die", "planning to die", "end it all",
	}
	moderateRiskPhrases = []string{
		"hurt myself", "harm myself", "overdose", "hanging", "jumping",
		"worthless", "hopeless", "no point living",
	}
	methodPhrases = []string{
		"pills", "rope", "bridge", "gun", "knife", "cutting",
	}
	protectivePhrases = []string{
		"family", "children", "future", "hope", "help", "support",
	}
)

// SuicideRisk scores text for suicide risk indicators. High-risk phrases
// add 3 points, moderate indicators and method references add 2, and
// protective factors subtract 1. The score never goes below 0 and is
// capped at 10.
func SuicideRisk(text string) int {
	lower := strings.ToLower(text)
	score := 0

	for _, p := range highRiskPhrases {
		if strings.Contains(lower, p) {
			score += 3
		}
	}
	for _, p := range moderateRiskPhrases {
		if strings.Contains(lower, p) {
			score += 2
		}
	}
	for _, p := range methodPhrases {
		if strings.Contains(lower, p) {
			score += 2
		}
	}
	for _, p := range protectivePhrases {
		if strings.Contains(lower, p) {
			score--
			if score < 0 {
				score = 0
			}
		}
	}

	if score > 10 {
		score = 10
	}
	return score
}

// RiskLevelForScore maps a suicide risk score to a risk level.
func RiskLevelForScore(score int) RiskLevel {
	switch {
	case score >= 7:
		return RiskImminent
	case score >= 5:
		return RiskHigh
	case score >= 3:
		return RiskModerate
	case score >= 1:
		return RiskLow
	default:
		return RiskNone
	}
}
