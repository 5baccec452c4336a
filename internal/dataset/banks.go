package dataset

import (
	"fmt"
	"strconv"
)

// SpellingItem is a playable spelling prompt.
type SpellingItem struct {
	AudioFile   string
	CorrectWord string
}

// LoadSpellingItems reads the prompt list (audio_file, correct_word).
func LoadSpellingItems(path string) ([]SpellingItem, error) {
	t, err := ReadCSV(path)
	if err != nil {
		return nil, err
	}
	cols, err := t.Columns("audio_file", "correct_word")
	if err != nil {
		return nil, err
	}
	items := make([]SpellingItem, 0, len(t.Rows))
	for _, row := range t.Rows {
		items = append(items, SpellingItem{
			AudioFile:   Cell(row, cols[0]),
			CorrectWord: Cell(row, cols[1]),
		})
	}
	return items, nil
}

// AnswerKey maps normalized audio paths to their correct spelling.
type AnswerKey struct {
	byFile map[string]string
}

// LoadAnswerKey reads the ground truth (audio_file, correct_spelling).
// The first row for a file wins.
func LoadAnswerKey(path string) (*AnswerKey, error) {
	t, err := ReadCSV(path)
	if err != nil {
		return nil, err
	}
	cols, err := t.Columns("audio_file", "correct_spelling")
	if err != nil {
		return nil, err
	}
	k := &AnswerKey{byFile: make(map[string]string, len(t.Rows))}
	for _, row := range t.Rows {
		file := Cell(row, cols[0])
		if _, seen := k.byFile[file]; !seen {
			k.byFile[file] = Cell(row, cols[1])
		}
	}
	return k, nil
}

// NewAnswerKey builds a key from a map.
func NewAnswerKey(m map[string]string) *AnswerKey {
	k := &AnswerKey{byFile: make(map[string]string, len(m))}
	for f, w := range m {
		k.byFile[f] = w
	}
	return k
}

func (k *AnswerKey) Lookup(audioFile string) (string, bool) {
	w, ok := k.byFile[audioFile]
	return w, ok
}

func (k *AnswerKey) Len() int { return len(k.byFile) }

// NumberQuestion is one number-comparison item.
type NumberQuestion struct {
	QuestionType  string
	LeftNumber    int
	RightNumber   int
	CorrectAnswer string
	AtRisk        int
}

// LoadNumberQuestions reads the number-understanding bank.
func LoadNumberQuestions(path string) ([]NumberQuestion, error) {
	t, err := ReadCSV(path)
	if err != nil {
		return nil, err
	}
	cols, err := t.Columns("question_type", "left_number", "right_number", "correct_answer", "at_risk")
	if err != nil {
		return nil, err
	}
	out := make([]NumberQuestion, 0, len(t.Rows))
	for i, row := range t.Rows {
		q := NumberQuestion{
			QuestionType:  Cell(row, cols[0]),
			CorrectAnswer: Cell(row, cols[3]),
		}
		ints := []*int{&q.LeftNumber, &q.RightNumber, &q.AtRisk}
		for j, c := range []int{cols[1], cols[2], cols[4]} {
			v, err := parseInt(Cell(row, c))
			if err != nil {
				return nil, fmt.Errorf("%s row %d: %w", t.Name, i+2, err)
			}
			*ints[j] = v
		}
		out = append(out, q)
	}
	return out, nil
}

// parseInt accepts integral floats such as "7.0", which pandas writes for
// integer columns with missing values.
func parseInt(s string) (int, error) {
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return int(f), nil
}

// LoadQuestions reads the distinct values of the Question column in
// first-seen order.
func LoadQuestions(path string) ([]string, error) {
	t, err := ReadCSV(path)
	if err != nil {
		return nil, err
	}
	cols, err := t.Columns("Question")
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	for _, row := range t.Rows {
		q := Cell(row, cols[0])
		if seen[q] {
			continue
		}
		seen[q] = true
		out = append(out, q)
	}
	return out, nil
}
