package session

import "github.com/abhisek/earlyedge/internal/risk"

// SpellingSummary is the verdict over a set of spelling attempts.
type SpellingSummary struct {
	Attempts           int
	AverageProbability float64
	OverallRisk        string
	OverallTier        risk.Tier
	AssessmentQuality  string
}

// SummarizeSpelling averages the per-attempt incorrect probabilities.
func SummarizeSpelling(probs []float64) *SpellingSummary {
	s := &SpellingSummary{
		Attempts:          len(probs),
		AssessmentQuality: AssessmentQuality(len(probs)),
	}
	if len(probs) == 0 {
		s.OverallRisk = "No attempts made"
		return s
	}
	sum := 0.0
	for _, p := range probs {
		sum += p
	}
	s.AverageProbability = sum / float64(len(probs))
	r := risk.SpellingSession.Classify(s.AverageProbability)
	s.OverallRisk = r.Label
	s.OverallTier = r.Tier
	return s
}
