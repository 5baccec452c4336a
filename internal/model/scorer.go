package model

import (
	"fmt"
	"math"
)

// Prediction is the scorer output for one feature vector.
type Prediction struct {
	Probabilities []float64
	Class         int
	// Calibrated is false when Probabilities were synthesized from a hard
	// prediction.
	Calibrated bool
}

// Confidence is the probability of the predicted class.
func (p Prediction) Confidence() float64 {
	return p.Probability(p.Class)
}

// Probability returns the probability of class i, or 0 when out of range.
func (p Prediction) Probability(i int) float64 {
	if i < 0 || i >= len(p.Probabilities) {
		return 0
	}
	return p.Probabilities[i]
}

// Scorer turns a feature vector into class probabilities. Implementations
// hold no per-call state and are safe for concurrent use.
type Scorer interface {
	Score(x []float64) (Prediction, error)
	Calibrated() bool
}

// NewScorer picks the scorer variant once, from the classifier's
// capabilities. fallback gives the confidence assigned to each predicted
// class when probabilities are unavailable.
func NewScorer(clf Classifier, nClasses int, fallback []float64) (Scorer, error) {
	if pe, ok := clf.(ProbabilityEstimator); ok {
		return &probabilityScorer{est: pe, nClasses: nClasses}, nil
	}
	if fallback == nil {
		fallback = DefaultFallbackConfidence(nClasses)
	}
	if len(fallback) != nClasses {
		return nil, fmt.Errorf("fallback confidence has %d entries for %d classes", len(fallback), nClasses)
	}
	return &fallbackScorer{clf: clf, confidence: fallback}, nil
}

// DefaultFallbackConfidence returns 0.9 for the first class and 0.5 for
// the rest. For a binary at-risk model this yields P(at risk) = 0.5 on a
// positive prediction and 0.1 on a negative one.
func DefaultFallbackConfidence(nClasses int) []float64 {
	out := make([]float64, nClasses)
	for i := range out {
		out[i] = 0.5
	}
	if nClasses > 0 {
		out[0] = 0.9
	}
	return out
}

const probabilityTolerance = 1e-6

type probabilityScorer struct {
	est      ProbabilityEstimator
	nClasses int
}

func (s *probabilityScorer) Calibrated() bool { return true }

func (s *probabilityScorer) Score(x []float64) (Prediction, error) {
	p, err := s.est.PredictProba(x)
	if err != nil {
		return Prediction{}, err
	}
	if len(p) != s.nClasses {
		return Prediction{}, fmt.Errorf("classifier returned %d probabilities for %d classes", len(p), s.nClasses)
	}
	sum := 0.0
	for _, v := range p {
		if math.IsNaN(v) || v < -probabilityTolerance {
			return Prediction{}, fmt.Errorf("classifier returned invalid probability %v", v)
		}
		sum += v
	}
	if math.Abs(sum-1) > probabilityTolerance {
		return Prediction{}, fmt.Errorf("class probabilities sum to %v", sum)
	}
	return Prediction{Probabilities: p, Class: argmax(p), Calibrated: true}, nil
}

type fallbackScorer struct {
	clf        Classifier
	confidence []float64
}

func (s *fallbackScorer) Calibrated() bool { return false }

func (s *fallbackScorer) Score(x []float64) (Prediction, error) {
	class, err := s.clf.Predict(x)
	if err != nil {
		return Prediction{}, err
	}
	n := len(s.confidence)
	if class < 0 || class >= n {
		return Prediction{}, fmt.Errorf("classifier predicted class %d of %d", class, n)
	}
	conf := s.confidence[class]
	p := make([]float64, n)
	rest := (1 - conf) / float64(n-1)
	for i := range p {
		p[i] = rest
	}
	p[class] = conf
	return Prediction{Probabilities: p, Class: class}, nil
}
