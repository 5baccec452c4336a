package model

import (
	"encoding/json"
	"fmt"
)

// Classifier is a fitted estimator that can at least name a class.
type Classifier interface {
	Predict(x []float64) (int, error)
}

// ProbabilityEstimator is a Classifier that also reports calibrated class
// probabilities, index-aligned with the model's classes.
type ProbabilityEstimator interface {
	Classifier
	PredictProba(x []float64) ([]float64, error)
}

// FactoryInput carries what a classifier needs from the enclosing artifact.
type FactoryInput struct {
	Spec      json.RawMessage
	BaseDir   string // directory of the artifact, for sidecar files
	NFeatures int
	NClasses  int
}

// Factory builds a classifier of one type from its JSON spec.
type Factory func(in FactoryInput) (Classifier, error)

func builtinFactories() map[string]Factory {
	return map[string]Factory{
		"logistic_regression": newLogisticRegression,
		"random_forest":       newRandomForest,
		"hard_linear":         newHardLinear,
	}
}

func checkInput(x []float64, n int) error {
	if len(x) != n {
		return fmt.Errorf("feature vector has %d values, classifier expects %d", len(x), n)
	}
	return nil
}

// argmax returns the first index holding the maximum, matching numpy.
func argmax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
