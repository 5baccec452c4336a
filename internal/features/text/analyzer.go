package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/abhisek/earlyedge/internal/model"
)

// analyzer splits documents into word n-grams the way the fitted
// vectorizer did: optional lowercasing and accent stripping, then runs of
// two or more word characters.
type analyzer struct {
	lowercase bool
	strip     string
	minN      int
	maxN      int
}

func newAnalyzer(p *model.VectorizerParams) analyzer {
	a := analyzer{
		lowercase: p.LowercaseEnabled(),
		strip:     p.StripAccents,
		minN:      p.NgramRange[0],
		maxN:      p.NgramRange[1],
	}
	if a.minN < 1 {
		a.minN = 1
	}
	if a.maxN < a.minN {
		a.maxN = a.minN
	}
	return a
}

func (a analyzer) preprocess(doc string) string {
	if a.lowercase {
		doc = lower(doc)
	}
	switch a.strip {
	case "unicode":
		doc, _, _ = transform.String(transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn))), doc)
	case "ascii":
		doc, _, _ = transform.String(transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
			return r > unicode.MaxASCII
		}))), doc)
	}
	return doc
}

func (a analyzer) analyze(doc string) []string {
	tokens := tokenize(a.preprocess(doc))
	if a.minN == 1 && a.maxN == 1 {
		return tokens
	}
	var out []string
	for n := a.minN; n <= a.maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// tokenize returns maximal runs of word characters at least two long.
func tokenize(s string) []string {
	var out []string
	start := -1
	n := 0
	flush := func(end int) {
		if start >= 0 && n >= 2 {
			out = append(out, s[start:end])
		}
		start, n = -1, 0
	}
	for i, r := range s {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			n++
			continue
		}
		flush(i)
	}
	flush(len(s))
	return out
}

func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}
