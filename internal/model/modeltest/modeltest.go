// Package modeltest builds small in-memory artifacts for tests.
package modeltest

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/abhisek/earlyedge/internal/model"
)

// Logistic describes a logistic-regression artifact.
type Logistic struct {
	Name       string
	Classes    []string
	NFeatures  int
	Coef       [][]float64
	Intercept  []float64
	Scaler     *model.ScalerParams
	Encoders   map[string][]string
	Vectorizer *model.VectorizerParams
	Audio      *model.AudioParams
}

// Artifact renders the description as artifact JSON.
func (l Logistic) Artifact() []byte {
	a := model.Artifact{
		Format:     "1.0.0",
		Name:       l.Name,
		Classes:    l.Classes,
		NFeatures:  l.NFeatures,
		Scaler:     l.Scaler,
		Encoders:   l.Encoders,
		Vectorizer: l.Vectorizer,
		Audio:      l.Audio,
	}
	if a.Name == "" {
		a.Name = "test"
	}
	clf, _ := json.Marshal(map[string]any{
		"type":      "logistic_regression",
		"coef":      l.Coef,
		"intercept": l.Intercept,
	})
	a.Classifier = clf
	raw, _ := json.Marshal(a)
	return raw
}

// Build parses the artifact, failing the test on error.
func (l Logistic) Build(t testing.TB) *model.Model {
	t.Helper()
	m, err := model.Parse(l.Artifact(), "", model.LoadOptions{})
	if err != nil {
		t.Fatalf("build %s model: %v", l.Name, err)
	}
	return m
}

// Write stores the artifact as dir/file and returns its path.
func (l Logistic) Write(t testing.TB, dir, file string) string {
	t.Helper()
	path := filepath.Join(dir, file)
	if err := os.WriteFile(path, l.Artifact(), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return path
}

// Constant returns a binary model over nFeatures zero-weight inputs whose
// probability for class 1 is always p.
func Constant(name string, classes []string, nFeatures int, p float64) Logistic {
	return Logistic{
		Name:      name,
		Classes:   classes,
		NFeatures: nFeatures,
		Coef:      [][]float64{make([]float64, nFeatures)},
		Intercept: []float64{Logit(p)},
	}
}

// Logit is the inverse of the logistic sigmoid.
func Logit(p float64) float64 {
	return math.Log(p / (1 - p))
}
