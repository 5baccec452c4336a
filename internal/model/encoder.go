package model

// LabelEncoder maps categorical values to their fitted integer codes.
type LabelEncoder struct {
	classes []string
	index   map[string]int
}

// NewLabelEncoder indexes classes in order; the first occurrence of a
// duplicate wins.
func NewLabelEncoder(classes []string) *LabelEncoder {
	idx := make(map[string]int, len(classes))
	for i, c := range classes {
		if _, dup := idx[c]; !dup {
			idx[c] = i
		}
	}
	return &LabelEncoder{classes: append([]string(nil), classes...), index: idx}
}

// Transform returns the code for v. ok is false for values the encoder
// was never fit on.
func (e *LabelEncoder) Transform(v string) (code int, ok bool) {
	code, ok = e.index[v]
	return code, ok
}

// Classes returns the fitted values in code order.
func (e *LabelEncoder) Classes() []string {
	return append([]string(nil), e.classes...)
}
