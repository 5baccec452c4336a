package pipeline

import (
	"gonum.org/v1/gonum/floats"

	"github.com/abhisek/earlyedge/internal/config"
	"github.com/abhisek/earlyedge/internal/features/numeric"
	"github.com/abhisek/earlyedge/internal/model"
	"github.com/abhisek/earlyedge/internal/session"
)

// LetterConfusion screens letter discrimination answers.
type LetterConfusion struct {
	model *model.Model
	types *model.LabelEncoder
}

func NewLetterConfusion(m *model.Model) (*LetterConfusion, error) {
	if err := checkModel(config.LetterConfusion, m, numeric.LetterConfusionWidth, 0); err != nil {
		return nil, err
	}
	types, err := requireEncoder(config.LetterConfusion, m, "question_type")
	if err != nil {
		return nil, err
	}
	return &LetterConfusion{model: m, types: types}, nil
}

func (l *LetterConfusion) Name() string        { return config.LetterConfusion }
func (l *LetterConfusion) Model() *model.Model { return l.model }
func (l *LetterConfusion) FeatureWidth() int   { return numeric.LetterConfusionWidth }

// QuestionTypes lists the accepted question types.
func (l *LetterConfusion) QuestionTypes() []string { return l.types.Classes() }

// LetterConfusionResult is the verdict over a set of answers.
type LetterConfusionResult struct {
	Prediction        string  `json:"prediction"`
	Confidence        float64 `json:"confidence"`
	Attempts          int     `json:"attempts"`
	AssessmentQuality string  `json:"assessment_quality"`
}

// Submit scores every answer and reports the class with the highest mean
// probability across them.
func (l *LetterConfusion) Submit(answers []numeric.LetterAnswer) (LetterConfusionResult, error) {
	if len(answers) == 0 {
		return LetterConfusionResult{}, Validation("answers", "at least one answer is required")
	}
	rows := make([][]float64, len(answers))
	for i, a := range answers {
		if err := nonNegative("response_time_ms", a.ResponseTimeMs); err != nil {
			return LetterConfusionResult{}, err
		}
		row, err := numeric.LetterConfusionRow(a, l.types)
		if err != nil {
			return LetterConfusionResult{}, fromCategoryError(err)
		}
		rows[i] = row
	}

	mean := make([]float64, len(l.model.Classes()))
	for _, row := range rows {
		p, err := score(l.model, row)
		if err != nil {
			return LetterConfusionResult{}, err
		}
		floats.Add(mean, p.Probabilities)
	}
	floats.Scale(1/float64(len(rows)), mean)

	best := floats.MaxIdx(mean)
	return LetterConfusionResult{
		Prediction:        l.model.Class(best),
		Confidence:        mean[best],
		Attempts:          len(answers),
		AssessmentQuality: session.AssessmentQuality(len(answers)),
	}, nil
}
