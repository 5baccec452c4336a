package text

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/abhisek/earlyedge/internal/model"
)

// Vectorizer maps a document onto a fitted TF-IDF vocabulary. Terms
// outside the vocabulary are ignored.
type Vectorizer struct {
	vocab     map[string]int
	idf       []float64
	norm      string
	sublinear bool
	analyzer  analyzer
}

// NewVectorizer wraps fitted parameters. A missing norm means l2, the
// sklearn default.
func NewVectorizer(p *model.VectorizerParams) *Vectorizer {
	n := p.Norm
	if n == "" {
		n = "l2"
	}
	return &Vectorizer{
		vocab:     p.Vocabulary,
		idf:       p.IDF,
		norm:      n,
		sublinear: p.SublinearTF,
		analyzer:  newAnalyzer(p),
	}
}

// Width is the vocabulary size.
func (v *Vectorizer) Width() int { return len(v.idf) }

// Transform returns the dense TF-IDF row for doc.
func (v *Vectorizer) Transform(doc string) []float64 {
	out := make([]float64, len(v.idf))
	for _, term := range v.analyzer.analyze(doc) {
		if i, ok := v.vocab[term]; ok {
			out[i]++
		}
	}
	for i, tf := range out {
		if tf == 0 {
			continue
		}
		if v.sublinear {
			tf = 1 + math.Log(tf)
		}
		out[i] = tf * v.idf[i]
	}

	var n float64
	switch v.norm {
	case "l1":
		n = floats.Norm(out, 1)
	case "l2":
		n = floats.Norm(out, 2)
	}
	if n > 0 {
		floats.Scale(1/n, out)
	}
	return out
}
