package pipeline

import (
	"math"

	"github.com/abhisek/earlyedge/internal/config"
	"github.com/abhisek/earlyedge/internal/features/numeric"
	"github.com/abhisek/earlyedge/internal/model"
	"github.com/abhisek/earlyedge/internal/risk"
)

// Tracing screens letter tracing by duration and accuracy.
type Tracing struct {
	model *model.Model
}

func NewTracing(m *model.Model) (*Tracing, error) {
	if err := checkModel(config.Tracing, m, numeric.TracingWidth, 0); err != nil {
		return nil, err
	}
	return &Tracing{model: m}, nil
}

func (t *Tracing) Name() string        { return config.Tracing }
func (t *Tracing) Model() *model.Model { return t.model }
func (t *Tracing) FeatureWidth() int   { return numeric.TracingWidth }

// TraceResult is the verdict on one traced letter.
type TraceResult struct {
	Label           string  `json:"label"`
	Confidence      float64 `json:"confidence"`
	DurationSeconds float64 `json:"duration_seconds"`
	Accuracy        float64 `json:"accuracy"`
}

// Trace scores a tracing. The drawing itself is not scored.
func (t *Tracing) Trace(duration, accuracy float64) (TraceResult, error) {
	if err := nonNegative("duration", duration); err != nil {
		return TraceResult{}, err
	}
	if math.IsNaN(accuracy) || accuracy < 0 || accuracy > 1 {
		return TraceResult{}, Validation("accuracy", "accuracy must lie in [0, 1], got %v", accuracy)
	}
	p, err := score(t.model, numeric.TracingRow(duration, accuracy))
	if err != nil {
		return TraceResult{}, err
	}
	c := p.Confidence()
	return TraceResult{
		Label:           risk.TracingLabel(t.model.Class(p.Class), c),
		Confidence:      c,
		DurationSeconds: duration,
		Accuracy:        accuracy,
	}, nil
}
