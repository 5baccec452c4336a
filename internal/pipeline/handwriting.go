package pipeline

import (
	"fmt"
	"io"

	"github.com/abhisek/earlyedge/internal/config"
	"github.com/abhisek/earlyedge/internal/features/hog"
	"github.com/abhisek/earlyedge/internal/model"
	"github.com/abhisek/earlyedge/internal/risk"
)

// Handwriting screens handwriting samples by their gradient histograms.
type Handwriting struct {
	model    *model.Model
	maxFiles int
}

func NewHandwriting(m *model.Model, maxFiles int) (*Handwriting, error) {
	if err := checkModel(config.Handwriting, m, hog.Width, 0); err != nil {
		return nil, err
	}
	if maxFiles < 1 {
		return nil, Configuration("handwriting", fmt.Errorf("max files must be at least 1, got %d", maxFiles))
	}
	return &Handwriting{model: m, maxFiles: maxFiles}, nil
}

func (h *Handwriting) Name() string        { return config.Handwriting }
func (h *Handwriting) Model() *model.Model { return h.model }
func (h *Handwriting) FeatureWidth() int   { return hog.Width }
func (h *Handwriting) MaxFiles() int       { return h.maxFiles }

// ImageUpload is one submitted image.
type ImageUpload struct {
	Filename string
	Body     io.Reader
}

// HandwritingResult is the verdict on one image.
type HandwritingResult struct {
	Filename   string  `json:"Filename"`
	Prediction string  `json:"Prediction"`
	Confidence float64 `json:"Confidence"`
	Severity   string  `json:"Severity"`
}

// Predict scores each image independently and returns results in
// submission order.
func (h *Handwriting) Predict(files []ImageUpload) ([]HandwritingResult, error) {
	if len(files) < 1 || len(files) > h.maxFiles {
		return nil, Validation("files", "Please upload 1 to %d images.", h.maxFiles)
	}
	out := make([]HandwritingResult, 0, len(files))
	for _, f := range files {
		x, err := hog.Extract(f.Body)
		if err != nil {
			return nil, Extraction(fmt.Sprintf("image %q", f.Filename), err)
		}
		p, err := score(h.model, x)
		if err != nil {
			return nil, err
		}
		c := p.Confidence()
		out = append(out, HandwritingResult{
			Filename:   f.Filename,
			Prediction: risk.HandwritingLabel(p.Class),
			Confidence: c,
			Severity:   risk.Handwriting.Classify(c).Label,
		})
	}
	return out, nil
}
