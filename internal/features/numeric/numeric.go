// Package numeric assembles feature rows for the answer-and-timing
// modalities. Scaling is left to the model.
package numeric

import (
	"fmt"
	"strings"

	"github.com/abhisek/earlyedge/internal/model"
)

const (
	ArithmeticWidth      = 5
	NumberSenseWidth     = 4
	TracingWidth         = 2
	LetterConfusionWidth = 3 + 23
)

// Letters is the multi-hot alphabet of letter-confusion rows, in column
// order. It groups commonly reversed and rotated shapes first.
var Letters = []string{
	"b", "d", "p", "q", "m", "n", "u", "t", "f", "c", "o", "h",
	"k", "v", "w", "x", "z", "y", "a", "e", "i", "l", "j",
}

// UnknownCategoryError reports a categorical value the encoder was never
// fit on.
type UnknownCategoryError struct {
	Field   string
	Value   string
	Allowed []string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("invalid %s: %s. Allowed: [%s]", e.Field, e.Value, strings.Join(e.Allowed, ", "))
}

// Encode maps value through enc.
func Encode(enc *model.LabelEncoder, field, value string) (float64, error) {
	code, ok := enc.Transform(value)
	if !ok {
		return 0, &UnknownCategoryError{Field: field, Value: value, Allowed: enc.Classes()}
	}
	return float64(code), nil
}

// Arithmetic is one answered arithmetic item. UserChoice is 0 when the
// answer was correct and 1 otherwise.
type Arithmetic struct {
	Op1          float64
	Op2          float64
	Operation    string
	UserChoice   int
	ResponseTime float64
}

// ArithmeticRow is [op1, op2, operation code, user_choice, response_time].
func ArithmeticRow(a Arithmetic, ops *model.LabelEncoder) ([]float64, error) {
	op, err := Encode(ops, "operation", a.Operation)
	if err != nil {
		return nil, err
	}
	return []float64{a.Op1, a.Op2, op, float64(a.UserChoice), a.ResponseTime}, nil
}

// NumberSenseRow is [left, right, response_time, user_correct].
func NumberSenseRow(left, right, responseTime float64, userCorrect int) []float64 {
	return []float64{left, right, responseTime, float64(userCorrect)}
}

// TracingRow is [duration, accuracy].
func TracingRow(duration, accuracy float64) []float64 {
	return []float64{duration, accuracy}
}

// LetterAnswer is one letter-confusion response.
type LetterAnswer struct {
	QuestionType   string
	ShownLetters   []string
	Correct        bool
	ResponseTimeMs float64
}

// LetterConfusionRow is [correct, response_time_ms, question type code]
// followed by the multi-hot of the shown letters over Letters.
func LetterConfusionRow(a LetterAnswer, types *model.LabelEncoder) ([]float64, error) {
	qt, err := Encode(types, "question_type", a.QuestionType)
	if err != nil {
		return nil, err
	}
	correct := 0.0
	if a.Correct {
		correct = 1
	}
	row := make([]float64, 0, LetterConfusionWidth)
	row = append(row, correct, a.ResponseTimeMs, qt)
	return append(row, MultiHot(a.ShownLetters, Letters)...), nil
}

// MultiHot marks each alphabet entry present in shown. Matching ignores
// case and surrounding space.
func MultiHot(shown []string, alphabet []string) []float64 {
	present := make(map[string]bool, len(shown))
	for _, s := range shown {
		present[strings.ToLower(strings.TrimSpace(s))] = true
	}
	out := make([]float64, len(alphabet))
	for i, l := range alphabet {
		if present[l] {
			out[i] = 1
		}
	}
	return out
}
