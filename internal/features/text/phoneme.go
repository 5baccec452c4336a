package text

import (
	"strings"
	"unicode/utf8"
)

// PhonemeWidth is the number of proxy features per text.
const PhonemeWidth = 5

// PhonemeFeatures approximates the phonological load of s: vowel count,
// consonant count, vowel ratio, consonant ratio and character count.
// Only ASCII letters are counted; ratios are 0 for empty text.
func PhonemeFeatures(s string) [PhonemeWidth]float64 {
	var vowels, consonants int
	for _, r := range lower(s) {
		switch {
		case strings.ContainsRune("aeiou", r):
			vowels++
		case r >= 'a' && r <= 'z':
			consonants++
		}
	}
	total := utf8.RuneCountInString(s)
	f := [PhonemeWidth]float64{float64(vowels), float64(consonants), 0, 0, float64(total)}
	if total > 0 {
		f[2] = float64(vowels) / float64(total)
		f[3] = float64(consonants) / float64(total)
	}
	return f
}
