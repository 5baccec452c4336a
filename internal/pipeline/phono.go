package pipeline

import (
	"fmt"

	"github.com/abhisek/earlyedge/internal/config"
	"github.com/abhisek/earlyedge/internal/features/text"
	"github.com/abhisek/earlyedge/internal/model"
	"github.com/abhisek/earlyedge/internal/risk"
)

// Phono screens spoken or typed responses to phonological prompts.
type Phono struct {
	model     *model.Model
	text      *text.Extractor
	questions []string
	// questionsErr is returned by Questions when the bank could not be
	// read.
	questionsErr error
}

// NewPhono builds the screen. A nil questionsErr means questions were
// loaded.
func NewPhono(m *model.Model, questions []string, questionsErr error) (*Phono, error) {
	if m.Vectorizer() == nil {
		return nil, Configuration("phono model", fmt.Errorf("%s has no vectorizer", m.Name()))
	}
	ex := text.NewExtractor(m.Vectorizer())
	if err := checkModel(config.Phono, m, ex.Width(), risk.PhonoLevels()); err != nil {
		return nil, err
	}
	if err := requireScaledColumns(config.Phono, m, ex.PhonemeColumns()); err != nil {
		return nil, err
	}
	return &Phono{model: m, text: ex, questions: questions, questionsErr: questionsErr}, nil
}

func (p *Phono) Name() string        { return config.Phono }
func (p *Phono) Model() *model.Model { return p.model }
func (p *Phono) FeatureWidth() int   { return p.text.Width() }

// Questions returns the prompt bank.
func (p *Phono) Questions() ([]string, error) {
	if p.questionsErr != nil {
		return nil, p.questionsErr
	}
	return p.questions, nil
}

// PhonoResult is the verdict on one response.
type PhonoResult struct {
	RiskLevel  string  `json:"risk_level"`
	Confidence float64 `json:"confidence_score"`
}

func (p *Phono) Predict(question, response string) (PhonoResult, error) {
	pred, err := score(p.model, p.text.Extract(question, response))
	if err != nil {
		return PhonoResult{}, err
	}
	level, ok := risk.Phono(pred.Class)
	if !ok {
		return PhonoResult{}, Extraction("phono scoring", fmt.Errorf("class %d has no risk level", pred.Class))
	}
	return PhonoResult{RiskLevel: level.Label, Confidence: pred.Confidence()}, nil
}
