package model

import "fmt"

// Scaler standardizes selected feature columns: (x - mean) / scale.
type Scaler struct {
	mean    []float64
	scale   []float64
	columns []int
}

func newScaler(p *ScalerParams, nFeatures int) (*Scaler, error) {
	if len(p.Mean) != len(p.Scale) {
		return nil, fmt.Errorf("scaler: %d means but %d scales", len(p.Mean), len(p.Scale))
	}
	columns := p.Columns
	if len(columns) == 0 {
		if len(p.Mean) != nFeatures {
			return nil, fmt.Errorf("scaler: fit on %d features, model expects %d", len(p.Mean), nFeatures)
		}
		columns = make([]int, nFeatures)
		for i := range columns {
			columns[i] = i
		}
	}
	if len(columns) != len(p.Mean) {
		return nil, fmt.Errorf("scaler: %d columns but %d means", len(columns), len(p.Mean))
	}
	seen := make(map[int]bool, len(columns))
	for _, c := range columns {
		if c < 0 || c >= nFeatures {
			return nil, fmt.Errorf("scaler: column %d out of range [0,%d)", c, nFeatures)
		}
		if seen[c] {
			return nil, fmt.Errorf("scaler: column %d listed twice", c)
		}
		seen[c] = true
	}

	// StandardScaler stores scale 1 for zero-variance features.
	scale := make([]float64, len(p.Scale))
	for i, s := range p.Scale {
		if s == 0 {
			s = 1
		}
		scale[i] = s
	}
	return &Scaler{
		mean:    append([]float64(nil), p.Mean...),
		scale:   scale,
		columns: columns,
	}, nil
}

// Width is the number of columns the scaler touches.
func (s *Scaler) Width() int { return len(s.columns) }

// Transform returns a scaled copy of x.
func (s *Scaler) Transform(x []float64) []float64 {
	out := append([]float64(nil), x...)
	for i, c := range s.columns {
		out[c] = (out[c] - s.mean[i]) / s.scale[i]
	}
	return out
}

// Columns returns the feature indices the scaler touches, in order.
func (s *Scaler) Columns() []int { return append([]int(nil), s.columns...) }
