package pipeline

import (
	"errors"

	"github.com/abhisek/earlyedge/internal/config"
	"github.com/abhisek/earlyedge/internal/features/numeric"
	"github.com/abhisek/earlyedge/internal/model"
	"github.com/abhisek/earlyedge/internal/risk"
	"github.com/abhisek/earlyedge/internal/session"
)

// Arithmetic screens a session of arithmetic answers.
type Arithmetic struct {
	model *model.Model
	ops   *model.LabelEncoder
}

func NewArithmetic(m *model.Model) (*Arithmetic, error) {
	if err := checkModel(config.Arithmetic, m, numeric.ArithmeticWidth, 2); err != nil {
		return nil, err
	}
	ops, err := requireEncoder(config.Arithmetic, m, "operation")
	if err != nil {
		return nil, err
	}
	return &Arithmetic{model: m, ops: ops}, nil
}

func (a *Arithmetic) Name() string        { return config.Arithmetic }
func (a *Arithmetic) Model() *model.Model { return a.model }
func (a *Arithmetic) FeatureWidth() int   { return numeric.ArithmeticWidth }

// ArithmeticSummary is the session verdict.
type ArithmeticSummary struct {
	TotalCorrect      int     `json:"total_correct"`
	AverageTime       float64 `json:"average_time"`
	OverallRisk       string  `json:"overall_risk"`
	SpeedCategory     string  `json:"speed_category"`
	RiskCount         int     `json:"risk_count"`
	TotalAttempts     int     `json:"total_attempts"`
	AssessmentQuality string  `json:"assessment_quality"`
}

// Summarize validates and encodes every attempt before scoring any, so a
// bad attempt anywhere rejects the whole session.
func (a *Arithmetic) Summarize(attempts []numeric.Arithmetic) (ArithmeticSummary, error) {
	rows := make([][]float64, len(attempts))
	for i, at := range attempts {
		if err := binary("user_choice", at.UserChoice); err != nil {
			return ArithmeticSummary{}, err
		}
		if err := nonNegative("response_time", at.ResponseTime); err != nil {
			return ArithmeticSummary{}, err
		}
		row, err := numeric.ArithmeticRow(at, a.ops)
		if err != nil {
			return ArithmeticSummary{}, fromCategoryError(err)
		}
		rows[i] = row
	}

	var tally session.Tally
	for i, at := range attempts {
		p, err := score(a.model, rows[i])
		if err != nil {
			return ArithmeticSummary{}, err
		}
		tally.Record(session.Attempt{
			Correct:      at.UserChoice == 0,
			ResponseTime: at.ResponseTime,
			AtRisk:       risk.ArithmeticAtRisk(p.Probability(1), at.UserChoice),
		})
	}
	s := session.BuildSummary(&tally)
	return ArithmeticSummary{
		TotalCorrect:      s.TotalCorrect,
		AverageTime:       s.AverageTime,
		OverallRisk:       s.OverallRisk,
		SpeedCategory:     s.SpeedCategory,
		RiskCount:         s.RiskCount,
		TotalAttempts:     s.TotalAttempts,
		AssessmentQuality: s.AssessmentQuality,
	}, nil
}

func fromCategoryError(err error) error {
	var uce *numeric.UnknownCategoryError
	if errors.As(err, &uce) {
		return InvalidChoice(uce.Field, uce.Value, uce.Allowed)
	}
	return Extraction("encode features", err)
}
