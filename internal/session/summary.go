// Package session aggregates per-attempt results into session verdicts.
package session

import (
	"github.com/abhisek/earlyedge/internal/risk"
)

// Summary is the session-level verdict for a multi-attempt screen.
type Summary struct {
	TotalCorrect      int
	AverageTime       float64
	OverallRisk       string
	OverallTier       risk.Tier
	SpeedCategory     string
	RiskCount         int
	TotalAttempts     int
	AssessmentQuality string
}

// Summarize tallies attempts and builds the summary.
func Summarize(attempts []Attempt) *Summary {
	var t Tally
	for _, a := range attempts {
		t.Record(a)
	}
	return BuildSummary(&t)
}

// BuildSummary creates a Summary from a tally. A session without
// mistakes is "No risk"; otherwise the share of at-risk attempts picks
// the tier.
func BuildSummary(t *Tally) *Summary {
	s := &Summary{
		TotalCorrect:      t.Correct,
		AverageTime:       t.AverageTime(),
		SpeedCategory:     t.SpeedCategory(),
		RiskCount:         t.AtRisk,
		TotalAttempts:     t.Attempts,
		AssessmentQuality: AssessmentQuality(t.Attempts),
	}
	if t.Correct == t.Attempts {
		s.OverallRisk = risk.NoRisk
		s.OverallTier = risk.TierNone
		return s
	}
	r := risk.SessionRatio.Classify(float64(t.AtRisk) / float64(t.Attempts))
	s.OverallRisk = r.Label
	s.OverallTier = r.Tier
	return s
}

// AssessmentQuality rates how reliable a session of n attempts is.
func AssessmentQuality(n int) string {
	switch {
	case n == 3:
		return "Minimal (fast screening)"
	case n == 4:
		return "Moderate (balanced reliability)"
	case n >= 5:
		return "Ideal (optimal for ML pattern detection)"
	default:
		return "Insufficient attempts"
	}
}
