// Package onnx scores artifacts whose classifier was exported to ONNX
// (skl2onnx with zipmap disabled and integer class labels).
package onnx

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/abhisek/earlyedge/internal/model"
)

// TypeName is the classifier "type" handled by this package.
const TypeName = "onnx"

type spec struct {
	Path              string `json:"path"`
	Input             string `json:"input"`
	LabelOutput       string `json:"label_output"`
	ProbabilityOutput string `json:"probability_output"`
}

// Init prepares the onnxruntime environment. It must run before any
// artifact with an onnx classifier is loaded.
func Init(sharedLibraryPath string) error {
	if ort.IsInitialized() {
		return nil
	}
	if sharedLibraryPath != "" {
		ort.SetSharedLibraryPath(sharedLibraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("initialize onnxruntime: %w", err)
	}
	return nil
}

// Shutdown releases the onnxruntime environment.
func Shutdown() error {
	if !ort.IsInitialized() {
		return nil
	}
	return ort.DestroyEnvironment()
}

// Factory returns a model.Factory for onnx classifiers.
func Factory() model.Factory {
	return func(in model.FactoryInput) (model.Classifier, error) {
		var s spec
		if err := json.Unmarshal(in.Spec, &s); err != nil {
			return nil, fmt.Errorf("decode onnx spec: %w", err)
		}
		if s.Path == "" {
			return nil, fmt.Errorf("onnx classifier needs a path")
		}
		if s.Input == "" {
			s.Input = "input"
		}
		if s.LabelOutput == "" {
			s.LabelOutput = "label"
		}
		path := s.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(in.BaseDir, path)
		}

		outputs := []string{s.LabelOutput}
		if s.ProbabilityOutput != "" {
			outputs = append(outputs, s.ProbabilityOutput)
		}
		session, err := ort.NewDynamicAdvancedSession(path, []string{s.Input}, outputs, nil)
		if err != nil {
			return nil, fmt.Errorf("open onnx session %s: %w", filepath.Base(path), err)
		}
		c := &Classifier{session: session, nFeatures: in.NFeatures, nClasses: in.NClasses, withProba: s.ProbabilityOutput != ""}
		if s.ProbabilityOutput == "" {
			return c, nil
		}
		return &ProbabilityClassifier{Classifier: c}, nil
	}
}

// Classifier runs an ONNX graph that emits a class label. Sessions are
// safe for concurrent Run calls; tensors are allocated per call.
type Classifier struct {
	session   *ort.DynamicAdvancedSession
	nFeatures int
	nClasses  int
	withProba bool // the session was opened with a probability output
}

func (c *Classifier) Predict(x []float64) (int, error) {
	label, _, err := c.run(x)
	return label, err
}

// Close destroys the underlying session.
func (c *Classifier) Close() error {
	return c.session.Destroy()
}

func (c *Classifier) run(x []float64) (int, []float64, error) {
	if len(x) != c.nFeatures {
		return 0, nil, fmt.Errorf("feature vector has %d values, onnx graph expects %d", len(x), c.nFeatures)
	}
	data := make([]float32, len(x))
	for i, v := range x {
		data[i] = float32(v)
	}
	input, err := ort.NewTensor(ort.NewShape(1, int64(c.nFeatures)), data)
	if err != nil {
		return 0, nil, fmt.Errorf("input tensor: %w", err)
	}
	defer input.Destroy()

	label, err := ort.NewEmptyTensor[int64](ort.NewShape(1))
	if err != nil {
		return 0, nil, fmt.Errorf("label tensor: %w", err)
	}
	defer label.Destroy()
	outputs := []ort.Value{label}

	var proba *ort.Tensor[float32]
	if c.withProba {
		proba, err = ort.NewEmptyTensor[float32](ort.NewShape(1, int64(c.nClasses)))
		if err != nil {
			return 0, nil, fmt.Errorf("probability tensor: %w", err)
		}
		defer proba.Destroy()
		outputs = append(outputs, proba)
	}

	if err := c.session.Run([]ort.Value{input}, outputs); err != nil {
		return 0, nil, fmt.Errorf("onnx run: %w", err)
	}

	class := int(label.GetData()[0])
	if proba == nil {
		return class, nil, nil
	}
	raw := proba.GetData()
	out := make([]float64, len(raw))
	for i, v := range raw {
		out[i] = float64(v)
	}
	return class, out, nil
}

// ProbabilityClassifier also reads the graph's probability output.
type ProbabilityClassifier struct {
	*Classifier
}

func (c *ProbabilityClassifier) PredictProba(x []float64) ([]float64, error) {
	_, p, err := c.run(x)
	return p, err
}
