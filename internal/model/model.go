package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Model is a loaded, immutable scoring artifact. It is shared by every
// request once loaded and never mutated.
type Model struct {
	name       string
	path       string
	kind       string
	classes    []string
	nFeatures  int
	scorer     Scorer
	scaler     *Scaler
	encoders   map[string]*LabelEncoder
	vectorizer *VectorizerParams
	audio      *AudioParams
}

// LoadOptions extends the classifier types a loader understands.
type LoadOptions struct {
	Factories map[string]Factory
}

// Load reads, validates and assembles the artifact at path.
func Load(path string, opts LoadOptions) (*Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	m, err := Parse(raw, filepath.Dir(path), opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	m.path = path
	return m, nil
}

// Parse assembles a model from artifact JSON. baseDir resolves sidecar
// files referenced by the classifier spec.
func Parse(raw []byte, baseDir string, opts LoadOptions) (*Model, error) {
	a, err := decodeArtifact(raw)
	if err != nil {
		return nil, err
	}

	var hdr classifierHeader
	if err := json.Unmarshal(a.Classifier, &hdr); err != nil {
		return nil, fmt.Errorf("decode classifier header: %w", err)
	}
	factories := builtinFactories()
	for k, f := range opts.Factories {
		factories[k] = f
	}
	factory, ok := factories[hdr.Type]
	if !ok {
		return nil, fmt.Errorf("unknown classifier type %q (known: %v)", hdr.Type, sortedKeys(factories))
	}
	clf, err := factory(FactoryInput{
		Spec:      a.Classifier,
		BaseDir:   baseDir,
		NFeatures: a.NFeatures,
		NClasses:  len(a.Classes),
	})
	if err != nil {
		return nil, fmt.Errorf("build %s classifier: %w", hdr.Type, err)
	}
	scorer, err := NewScorer(clf, len(a.Classes), a.FallbackConfidence)
	if err != nil {
		return nil, err
	}

	m := &Model{
		name:      a.Name,
		kind:      hdr.Type,
		classes:   append([]string(nil), a.Classes...),
		nFeatures: a.NFeatures,
		scorer:    scorer,
		encoders:  make(map[string]*LabelEncoder, len(a.Encoders)),
		audio:     a.Audio,
	}
	if a.Scaler != nil {
		if m.scaler, err = newScaler(a.Scaler, a.NFeatures); err != nil {
			return nil, err
		}
	}
	for name, classes := range a.Encoders {
		m.encoders[name] = NewLabelEncoder(classes)
	}
	if a.Vectorizer != nil {
		if err := checkVectorizer(a.Vectorizer); err != nil {
			return nil, err
		}
		m.vectorizer = a.Vectorizer
	}
	return m, nil
}

func checkVectorizer(v *VectorizerParams) error {
	if len(v.IDF) != len(v.Vocabulary) {
		return fmt.Errorf("vectorizer: %d idf weights for %d terms", len(v.IDF), len(v.Vocabulary))
	}
	for term, idx := range v.Vocabulary {
		if idx < 0 || idx >= len(v.IDF) {
			return fmt.Errorf("vectorizer: term %q has index %d", term, idx)
		}
	}
	if v.NgramRange == [2]int{} {
		v.NgramRange = [2]int{1, 1}
	}
	if v.NgramRange[0] < 1 || v.NgramRange[1] < v.NgramRange[0] {
		return fmt.Errorf("vectorizer: invalid ngram range %v", v.NgramRange)
	}
	return nil
}

func (m *Model) Name() string      { return m.name }
func (m *Model) Path() string      { return m.path }
func (m *Model) Kind() string      { return m.kind }
func (m *Model) NumFeatures() int  { return m.nFeatures }
func (m *Model) Calibrated() bool  { return m.scorer.Calibrated() }
func (m *Model) Classes() []string { return append([]string(nil), m.classes...) }

// Class returns the label of class i, or "" when out of range.
func (m *Model) Class(i int) string {
	if i < 0 || i >= len(m.classes) {
		return ""
	}
	return m.classes[i]
}

// Encoder returns the fitted categorical encoder for a named feature.
func (m *Model) Encoder(name string) (*LabelEncoder, bool) {
	e, ok := m.encoders[name]
	return e, ok
}

// Vectorizer returns the fitted TF-IDF parameters, if the artifact has them.
func (m *Model) Vectorizer() *VectorizerParams { return m.vectorizer }

// Audio returns the cepstral feature parameters, if the artifact has them.
func (m *Model) Audio() *AudioParams { return m.audio }

// Scaler returns the fitted scaler, or nil.
func (m *Model) Scaler() *Scaler { return m.scaler }

// Score scales x (when the artifact carries a scaler) and classifies it.
func (m *Model) Score(x []float64) (Prediction, error) {
	if len(x) != m.nFeatures {
		return Prediction{}, fmt.Errorf("model %s expects %d features, got %d", m.name, m.nFeatures, len(x))
	}
	if m.scaler != nil {
		x = m.scaler.Transform(x)
	}
	return m.scorer.Score(x)
}

func sortedKeys(m map[string]Factory) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
