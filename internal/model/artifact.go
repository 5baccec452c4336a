package model

import "encoding/json"

// Artifact is the on-disk JSON form of a fitted model bundle. Exporters
// write sklearn attribute names where one exists.
type Artifact struct {
	Format     string              `json:"format"`
	Name       string              `json:"name"`
	Classes    []string            `json:"classes"`
	NFeatures  int                 `json:"n_features"`
	Classifier json.RawMessage     `json:"classifier"`
	Scaler     *ScalerParams       `json:"scaler,omitempty"`
	Encoders   map[string][]string `json:"encoders,omitempty"`
	Vectorizer *VectorizerParams   `json:"vectorizer,omitempty"`
	Audio      *AudioParams        `json:"audio,omitempty"`

	// FallbackConfidence is the probability assigned to the predicted
	// class when the classifier cannot estimate probabilities. One entry
	// per class.
	FallbackConfidence []float64 `json:"fallback_confidence,omitempty"`
}

// ScalerParams mirrors a fitted StandardScaler. Columns selects which
// feature columns the scaler applies to; empty means all, in order.
type ScalerParams struct {
	Mean    []float64 `json:"mean"`
	Scale   []float64 `json:"scale"`
	Columns []int     `json:"columns,omitempty"`
}

// VectorizerParams mirrors a fitted TfidfVectorizer.
type VectorizerParams struct {
	Vocabulary   map[string]int `json:"vocabulary"`
	IDF          []float64      `json:"idf"`
	Lowercase    *bool          `json:"lowercase,omitempty"`
	StripAccents string         `json:"strip_accents,omitempty"`
	NgramRange   [2]int         `json:"ngram_range"`
	Norm         string         `json:"norm,omitempty"`
	SublinearTF  bool           `json:"sublinear_tf,omitempty"`
}

// LowercaseEnabled reports the sklearn default (true) when unset.
func (v *VectorizerParams) LowercaseEnabled() bool {
	return v.Lowercase == nil || *v.Lowercase
}

// AudioParams records how the cepstral features the model was fit on were
// built.
type AudioParams struct {
	SampleRate int  `json:"sample_rate"`
	NMFCC      int  `json:"n_mfcc"`
	Deltas     bool `json:"deltas"`
	Frames     int  `json:"frames"`
}

type classifierHeader struct {
	Type string `json:"type"`
}
