package pipeline

import (
	"github.com/abhisek/earlyedge/internal/config"
	"github.com/abhisek/earlyedge/internal/dataset"
	"github.com/abhisek/earlyedge/internal/features/numeric"
	"github.com/abhisek/earlyedge/internal/model"
	"github.com/abhisek/earlyedge/internal/risk"
)

// NumberSense screens number comparison answers and their timing.
type NumberSense struct {
	model     *model.Model
	questions []dataset.NumberQuestion
	pick      func(int) int
}

func NewNumberSense(m *model.Model, questions []dataset.NumberQuestion, pick func(int) int) (*NumberSense, error) {
	if err := checkModel(config.NumberSense, m, numeric.NumberSenseWidth, 2); err != nil {
		return nil, err
	}
	return &NumberSense{model: m, questions: questions, pick: pick}, nil
}

func (n *NumberSense) Name() string        { return config.NumberSense }
func (n *NumberSense) Model() *model.Model { return n.model }
func (n *NumberSense) FeatureWidth() int   { return numeric.NumberSenseWidth }

// NumberQuestion is a comparison item as served to the client.
type NumberQuestion struct {
	QuestionType  string `json:"question_type"`
	LeftNumber    int    `json:"left_number"`
	RightNumber   int    `json:"right_number"`
	CorrectAnswer string `json:"correct_answer"`
	AtRisk        int    `json:"at_risk"`
}

// RandomQuestion samples the bank.
func (n *NumberSense) RandomQuestion() (NumberQuestion, error) {
	if len(n.questions) == 0 {
		return NumberQuestion{}, NotFound("No number questions available.")
	}
	q := n.questions[n.pick(len(n.questions))]
	return NumberQuestion{
		QuestionType:  q.QuestionType,
		LeftNumber:    q.LeftNumber,
		RightNumber:   q.RightNumber,
		CorrectAnswer: q.CorrectAnswer,
		AtRisk:        q.AtRisk,
	}, nil
}

// NumberAnswer is one timed comparison answer.
type NumberAnswer struct {
	LeftNumber      float64
	RightNumber     float64
	ResponseTimeSec float64
	UserCorrect     int
}

// NumberResult is the verdict on one answer.
type NumberResult struct {
	AtRisk          int     `json:"at_risk"`
	Result          string  `json:"result"`
	Confidence      float64 `json:"confidence"`
	ResponseTimeSec float64 `json:"response_time_sec"`
	SpeedCategory   string  `json:"speed_category"`
	SpeedMessage    string  `json:"speed_message"`
}

// Predict scores the answer. Confidence is the at-risk probability; the
// speed category depends on response time alone.
func (n *NumberSense) Predict(a NumberAnswer) (NumberResult, error) {
	if err := nonNegative("response_time_sec", a.ResponseTimeSec); err != nil {
		return NumberResult{}, err
	}
	if err := binary("user_correct", a.UserCorrect); err != nil {
		return NumberResult{}, err
	}
	p, err := score(n.model, numeric.NumberSenseRow(a.LeftNumber, a.RightNumber, a.ResponseTimeSec, a.UserCorrect))
	if err != nil {
		return NumberResult{}, err
	}
	speed := risk.NumberSpeed.Classify(a.ResponseTimeSec)
	r := NumberResult{
		AtRisk:          p.Class,
		Result:          "Not At Risk",
		Confidence:      round(p.Probability(1), 4),
		ResponseTimeSec: a.ResponseTimeSec,
		SpeedCategory:   speed.Label,
		SpeedMessage:    speed.Message,
	}
	if p.Class != 0 {
		r.Result = "At Risk for Learning Difficulty"
	}
	return r, nil
}
