package risk

// Spelling tiers the probability that a spelling attempt was incorrect.
var Spelling = NewLadder(
	Rung{Tier: TierMinimal, Label: "Low"},
	Rung{Floor: 0.7, Tier: TierStrong, Label: "High"},
	Rung{Floor: 0.4, Tier: TierEmerging, Label: "Medium"},
)

// Handwriting tiers the confidence of the top handwriting class.
var Handwriting = NewLadder(
	Rung{Tier: TierNone, Label: "No significant impairment detected"},
	Rung{Floor: 0.76, Tier: TierStrong, Label: "Strong Indicators"},
	Rung{Floor: 0.26, Tier: TierEmerging, Label: "Emerging Indicators"},
	Rung{Floor: 0.01, Tier: TierMinimal, Label: "Minimal Indicators"},
)

// NumberSpeed tiers the response time, in seconds, of a number
// comparison.
var NumberSpeed = NewLadder(
	Rung{
		Tier:    TierMinimal,
		Label:   "Minimal Indicators",
		Message: "The child responded quickly. This may indicate good number recognition.",
	},
	Rung{
		Floor:   above(6),
		Tier:    TierStrong,
		Label:   "Strong Indicators",
		Message: "The child took longer to respond. This might indicate difficulty in understanding numbers.",
	},
	Rung{
		Floor:   3,
		Tier:    TierEmerging,
		Label:   "Emerging Indicators",
		Message: "The response time is within a normal range.",
	},
)

// SessionRatio tiers the share of attempts scored at risk in a session
// that had at least one mistake.
var SessionRatio = NewLadder(
	Rung{Tier: TierMinimal, Label: "Minimal Indicators (denoting Low Risk)"},
	Rung{Floor: 0.66, Tier: TierStrong, Label: "Strong Indicators (denoting High Risk)"},
	Rung{Floor: 0.33, Tier: TierEmerging, Label: "Emerging Indicators (denoting Moderate Risk)"},
)

// SpellingSession tiers the mean incorrect probability over a spelling
// session.
var SpellingSession = NewLadder(
	Rung{Tier: TierMinimal, Label: "Minimal indicators"},
	Rung{Floor: 0.7, Tier: TierStrong, Label: "Strong indicators"},
	Rung{Floor: 0.4, Tier: TierEmerging, Label: "Emerging indicators"},
)

// NoRisk labels a session without mistakes.
const NoRisk = "No risk"

var phonoLevels = []Rung{
	{Tier: TierMinimal, Label: "Minimal"},
	{Tier: TierEmerging, Label: "Emerging"},
	{Tier: TierStrong, Label: "Strong_Indicators"},
}

// PhonoLevels is the number of classes a speech model must have.
func PhonoLevels() int { return len(phonoLevels) }

// Phono maps a predicted speech class index to its level.
func Phono(class int) (Rung, bool) {
	if class < 0 || class >= len(phonoLevels) {
		return Rung{}, false
	}
	return phonoLevels[class], true
}

const (
	// TracingMinConfidence is the confidence below which a tracing label
	// is withheld.
	TracingMinConfidence = 0.7
	// TracingUncertain replaces low-confidence tracing labels.
	TracingUncertain = "uncertain"
)

// TracingLabel returns label, or TracingUncertain when confidence is too
// low to report it.
func TracingLabel(label string, confidence float64) string {
	if confidence < TracingMinConfidence {
		return TracingUncertain
	}
	return label
}

// ArithmeticThreshold is the at-risk probability above which an
// arithmetic attempt counts as at risk.
const ArithmeticThreshold = 0.5

// ArithmeticAtRisk applies the threshold, then overrides to not at risk
// when the answer was correct (userChoice 0).
func ArithmeticAtRisk(p float64, userChoice int) bool {
	if userChoice == 0 {
		return false
	}
	return p > ArithmeticThreshold
}

// HandwritingLabels names the handwriting model classes by index.
var HandwritingLabels = []string{"Dysgraphic", "Non-Dysgraphic"}

// HandwritingLabel returns the label of class i, or "Unknown
// Classification" past the known labels.
func HandwritingLabel(i int) string {
	if i < 0 || i >= len(HandwritingLabels) {
		return "Unknown Classification"
	}
	return HandwritingLabels[i]
}
