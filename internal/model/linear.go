package model

import (
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

type linearSpec struct {
	Coef      [][]float64 `json:"coef"`
	Intercept []float64   `json:"intercept"`
}

// linear holds the decision function shared by logistic regression and
// hard-margin linear models.
type linear struct {
	coef      [][]float64
	intercept []float64
	nFeatures int
	nClasses  int
}

func parseLinear(in FactoryInput) (*linear, error) {
	var s linearSpec
	if err := json.Unmarshal(in.Spec, &s); err != nil {
		return nil, fmt.Errorf("decode linear model: %w", err)
	}
	rows := len(s.Coef)
	switch {
	case rows == 1 && in.NClasses == 2:
	case rows == in.NClasses && rows > 2:
	default:
		return nil, fmt.Errorf("linear model has %d coefficient rows for %d classes", rows, in.NClasses)
	}
	if len(s.Intercept) != rows {
		return nil, fmt.Errorf("linear model has %d intercepts for %d rows", len(s.Intercept), rows)
	}
	for i, row := range s.Coef {
		if len(row) != in.NFeatures {
			return nil, fmt.Errorf("coefficient row %d has %d values, want %d", i, len(row), in.NFeatures)
		}
	}
	return &linear{
		coef:      s.Coef,
		intercept: s.Intercept,
		nFeatures: in.NFeatures,
		nClasses:  in.NClasses,
	}, nil
}

func (l *linear) decision(x []float64) ([]float64, error) {
	if err := checkInput(x, l.nFeatures); err != nil {
		return nil, err
	}
	out := make([]float64, len(l.coef))
	for i, row := range l.coef {
		out[i] = floats.Dot(row, x) + l.intercept[i]
	}
	return out, nil
}

func (l *linear) Predict(x []float64) (int, error) {
	d, err := l.decision(x)
	if err != nil {
		return 0, err
	}
	if len(d) == 1 {
		if d[0] > 0 {
			return 1, nil
		}
		return 0, nil
	}
	return argmax(d), nil
}

// LogisticRegression estimates probabilities with a sigmoid (binary) or
// softmax (multinomial) over the linear decision function.
type LogisticRegression struct {
	*linear
}

func newLogisticRegression(in FactoryInput) (Classifier, error) {
	l, err := parseLinear(in)
	if err != nil {
		return nil, err
	}
	return &LogisticRegression{linear: l}, nil
}

func (m *LogisticRegression) PredictProba(x []float64) ([]float64, error) {
	d, err := m.decision(x)
	if err != nil {
		return nil, err
	}
	if len(d) == 1 {
		p := sigmoid(d[0])
		return []float64{1 - p, p}, nil
	}
	return softmax(d), nil
}

// HardLinear only exposes a decision, like a linear SVM without
// probability calibration.
type HardLinear struct {
	*linear
}

func newHardLinear(in FactoryInput) (Classifier, error) {
	l, err := parseLinear(in)
	if err != nil {
		return nil, err
	}
	return &HardLinear{linear: l}, nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

func softmax(z []float64) []float64 {
	out := make([]float64, len(z))
	m := floats.Max(z)
	for i, v := range z {
		out[i] = math.Exp(v - m)
	}
	floats.Scale(1/floats.Sum(out), out)
	return out
}
