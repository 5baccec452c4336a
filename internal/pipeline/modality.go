// Package pipeline wires extractors, scorers and risk policies into one
// screen per modality, held in an immutable Registry.
package pipeline

import (
	"fmt"
	"math"
	"slices"

	"github.com/abhisek/earlyedge/internal/model"
)

// Modality is one screening pipeline: a feature extractor of fixed width
// feeding a loaded model.
type Modality interface {
	Name() string
	Model() *model.Model
	// FeatureWidth is the length of every vector the extractor emits.
	FeatureWidth() int
}

// checkModel verifies at load time that the extractor and the model agree
// on the feature count and that the model has the classes the risk
// policy reads.
func checkModel(name string, m *model.Model, width, nClasses int) error {
	if m == nil {
		return Configuration(name+" model", fmt.Errorf("no model"))
	}
	if width != m.NumFeatures() {
		return Configuration(name+" model", fmt.Errorf("extractor emits %d features, %s was fit on %d", width, m.Name(), m.NumFeatures()))
	}
	if nClasses > 0 && len(m.Classes()) != nClasses {
		return Configuration(name+" model", fmt.Errorf("%s has %d classes, want %d", m.Name(), len(m.Classes()), nClasses))
	}
	return nil
}

func requireEncoder(name string, m *model.Model, field string) (*model.LabelEncoder, error) {
	enc, ok := m.Encoder(field)
	if !ok {
		return nil, Configuration(name+" model", fmt.Errorf("%s has no %q encoder", m.Name(), field))
	}
	return enc, nil
}

func requireScaledColumns(name string, m *model.Model, cols []int) error {
	s := m.Scaler()
	if s == nil {
		return Configuration(name+" model", fmt.Errorf("%s has no scaler", m.Name()))
	}
	if !slices.Equal(s.Columns(), cols) {
		return Configuration(name+" model", fmt.Errorf("%s scales columns %v, want %v", m.Name(), s.Columns(), cols))
	}
	return nil
}

func score(m *model.Model, x []float64) (model.Prediction, error) {
	p, err := m.Score(x)
	if err != nil {
		return model.Prediction{}, Extraction("scoring failed", err)
	}
	return p, nil
}

func round(v float64, places int) float64 {
	s := math.Pow(10, float64(places))
	return math.Round(v*s) / s
}

func nonNegative(field string, v float64) error {
	if math.IsNaN(v) || v < 0 {
		return Validation(field, "%s must be a non-negative number, got %v", field, v)
	}
	return nil
}

func binary(field string, v int) error {
	if v != 0 && v != 1 {
		return InvalidChoice(field, fmt.Sprint(v), []string{"0", "1"})
	}
	return nil
}
