// Package text builds feature rows for prompt/response pairs.
package text

import "github.com/abhisek/earlyedge/internal/model"

// Extractor produces the TF-IDF of the joined pair followed by the
// phoneme features of the prompt and then the response. The phoneme
// columns are left unscaled; the model's scaler covers them.
type Extractor struct {
	vec *Vectorizer
}

func NewExtractor(p *model.VectorizerParams) *Extractor {
	return &Extractor{vec: NewVectorizer(p)}
}

// Width is vocabulary size plus 2 × PhonemeWidth.
func (e *Extractor) Width() int { return e.vec.Width() + 2*PhonemeWidth }

// PhonemeColumns lists the indices of the phoneme features.
func (e *Extractor) PhonemeColumns() []int {
	cols := make([]int, 2*PhonemeWidth)
	for i := range cols {
		cols[i] = e.vec.Width() + i
	}
	return cols
}

func (e *Extractor) Extract(prompt, response string) []float64 {
	out := make([]float64, 0, e.Width())
	out = append(out, e.vec.Transform(prompt+" "+response)...)
	p := PhonemeFeatures(prompt)
	r := PhonemeFeatures(response)
	out = append(out, p[:]...)
	out = append(out, r[:]...)
	return out
}
