package pipeline

import (
	"bytes"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/earlyedge/internal/dataset"
	"github.com/abhisek/earlyedge/internal/features/numeric"
	"github.com/abhisek/earlyedge/internal/model/modeltest"
	"github.com/abhisek/earlyedge/internal/pipeline/pipelinetest"
)

func newSpelling(t *testing.T, p float64) (*Spelling, string) {
	t.Helper()
	dir := t.TempDir()
	pipelinetest.WriteTone(t, filepath.Join(dir, "cat.wav"))
	key := dataset.NewAnswerKey(map[string]string{
		"audio/correct/cat.wav":     "cat",
		"audio/correct/missing.wav": "dog",
		"audio/correct/../x.wav":    "x",
	})
	items := []dataset.SpellingItem{{AudioFile: "audio/correct/cat.wav", CorrectWord: "cat"}}
	s, err := NewSpelling(pipelinetest.Spelling(p).Build(t), items, key, dir, first)
	require.NoError(t, err)
	return s, dir
}

func TestSpelling_Validate(t *testing.T) {
	s, _ := newSpelling(t, 0.8)

	res, err := s.Validate(SpellingAnswer{UserAnswer: " Cat ", AudioFile: "cat.wav"})
	require.NoError(t, err)
	assert.True(t, res.IsCorrect)
	assert.Equal(t, "cat", res.CorrectWord)
	assert.Equal(t, " Cat ", res.UserAnswer)
	assert.InDelta(t, 0.8, res.IncorrectProb, 1e-9)
	assert.Equal(t, "High", res.Risk)
	assert.Equal(t, 1, res.AttemptNumber)

	res, err = s.Validate(SpellingAnswer{UserAnswer: "kat", AudioFile: "audio/correct/cat.wav", AttemptNumber: 3})
	require.NoError(t, err)
	assert.False(t, res.IsCorrect)
	assert.Equal(t, 3, res.AttemptNumber)
}

func TestSpelling_ValidateErrors(t *testing.T) {
	s, _ := newSpelling(t, 0.2)

	pe := requireKind(t, KindValidation, func() error {
		_, err := s.Validate(SpellingAnswer{AudioFile: "cat.wav"})
		return err
	}())
	assert.Equal(t, "user_answer", pe.Field)

	pe = requireKind(t, KindValidation, func() error {
		_, err := s.Validate(SpellingAnswer{UserAnswer: "cat"})
		return err
	}())
	assert.Equal(t, "audio_file", pe.Field)

	_, err := s.Validate(SpellingAnswer{UserAnswer: "cat", AudioFile: "nope.wav"})
	requireKind(t, KindNotFound, err)

	_, err = s.Validate(SpellingAnswer{UserAnswer: "dog", AudioFile: "missing.wav"})
	requireKind(t, KindExtraction, err)

	_, err = s.Validate(SpellingAnswer{UserAnswer: "x", AudioFile: "audio/correct/../x.wav"})
	requireKind(t, KindValidation, err)

	_, err = s.Validate(SpellingAnswer{UserAnswer: "cat", AudioFile: "cat.wav", AttemptNumber: -1})
	requireKind(t, KindValidation, err)
}

func TestSpelling_RandomAudio(t *testing.T) {
	s, _ := newSpelling(t, 0.5)
	got, err := s.RandomAudio()
	require.NoError(t, err)
	assert.Equal(t, AudioPrompt{AudioFile: "audio/correct/cat.wav", CorrectWord: "cat"}, got)

	empty, err := NewSpelling(pipelinetest.Spelling(0.5).Build(t), nil, dataset.NewAnswerKey(nil), "", first)
	require.NoError(t, err)
	_, err = empty.RandomAudio()
	requireKind(t, KindNotFound, err)
}

func TestSpelling_Summarize(t *testing.T) {
	s, _ := newSpelling(t, 0.5)

	sum, err := s.Summarize([]float64{0.9, 0.8, 0.7})
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Attempts)
	assert.InDelta(t, 0.8, sum.AverageProbability, 1e-9)
	assert.Equal(t, "Strong indicators", sum.OverallRisk)

	sum, err = s.Summarize(nil)
	require.NoError(t, err)
	assert.Equal(t, "No attempts made", sum.OverallRisk)

	_, err = s.Summarize([]float64{1.5})
	requireKind(t, KindValidation, err)
}

func TestNewSpelling_WidthMismatch(t *testing.T) {
	l := pipelinetest.Spelling(0.5)
	l.Audio = nil // default params emit 1300 features, model has 6
	_, err := NewSpelling(l.Build(t), nil, dataset.NewAnswerKey(nil), "", first)
	requireKind(t, KindConfiguration, err)
}

func TestHandwriting_Predict(t *testing.T) {
	h, err := NewHandwriting(pipelinetest.Handwriting(0.9).Build(t), 3)
	require.NoError(t, err)

	files := []ImageUpload{
		{Filename: "a.png", Body: bytes.NewReader(pipelinetest.StrokePNG(t, 64, 48))},
		{Filename: "b.png", Body: bytes.NewReader(pipelinetest.StrokePNG(t, 300, 200))},
	}
	res, err := h.Predict(files)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "a.png", res[0].Filename)
	assert.Equal(t, "b.png", res[1].Filename)
	for _, r := range res {
		assert.Equal(t, "Non-Dysgraphic", r.Prediction)
		assert.InDelta(t, 0.9, r.Confidence, 1e-9)
		assert.Equal(t, "Strong Indicators", r.Severity)
	}
}

func TestHandwriting_FileCount(t *testing.T) {
	h, err := NewHandwriting(pipelinetest.Handwriting(0.9).Build(t), 3)
	require.NoError(t, err)

	_, err = h.Predict(nil)
	pe := requireKind(t, KindValidation, err)
	assert.Equal(t, "files", pe.Field)
	assert.Equal(t, "Please upload 1 to 3 images.", pe.Msg)

	four := make([]ImageUpload, 4)
	for i := range four {
		four[i] = ImageUpload{Filename: "x.png", Body: bytes.NewReader(pipelinetest.StrokePNG(t, 8, 8))}
	}
	_, err = h.Predict(four)
	requireKind(t, KindValidation, err)
}

func TestHandwriting_BadImage(t *testing.T) {
	h, err := NewHandwriting(pipelinetest.Handwriting(0.9).Build(t), 3)
	require.NoError(t, err)
	_, err = h.Predict([]ImageUpload{{Filename: "notes.txt", Body: bytes.NewReader([]byte("hello"))}})
	requireKind(t, KindExtraction, err)
}

func TestPhono_Predict(t *testing.T) {
	p, err := NewPhono(pipelinetest.Phono().Build(t), []string{"Say cat"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 12, p.FeatureWidth())

	res, err := p.Predict("Say cat", "hat")
	require.NoError(t, err)
	assert.Equal(t, "Emerging", res.RiskLevel)
	assert.InDelta(t, math.E/(2+math.E), res.Confidence, 1e-9)

	qs, err := p.Questions()
	require.NoError(t, err)
	assert.Equal(t, []string{"Say cat"}, qs)
}

func TestPhono_MissingQuestions(t *testing.T) {
	p, err := NewPhono(pipelinetest.Phono().Build(t), nil, NotFound("Questions file not found"))
	require.NoError(t, err)
	_, err = p.Questions()
	requireKind(t, KindNotFound, err)
}

func TestNewPhono_RequiresScaledPhonemes(t *testing.T) {
	l := pipelinetest.Phono()
	l.Scaler = nil
	_, err := NewPhono(l.Build(t), nil, nil)
	requireKind(t, KindConfiguration, err)
}

func TestArithmetic_Scenario(t *testing.T) {
	a, err := NewArithmetic(pipelinetest.Arithmetic(0.9).Build(t))
	require.NoError(t, err)

	sum, err := a.Summarize([]numeric.Arithmetic{
		{Op1: 3, Op2: 4, Operation: "+", UserChoice: 0, ResponseTime: 0.9},
		{Op1: 9, Op2: 3, Operation: "/", UserChoice: 1, ResponseTime: 4.0},
		{Op1: 5, Op2: 2, Operation: "-", UserChoice: 0, ResponseTime: 2.0},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, sum.TotalCorrect)
	assert.Equal(t, 3, sum.TotalAttempts)
	assert.Equal(t, 1, sum.RiskCount)
	assert.Equal(t, "Moderate", sum.SpeedCategory)
	assert.InDelta(t, 2.3, sum.AverageTime, 1e-9)
	assert.NotEqual(t, "No risk", sum.OverallRisk)
	assert.Equal(t, "Emerging Indicators (denoting Moderate Risk)", sum.OverallRisk)
	assert.Equal(t, "Minimal (fast screening)", sum.AssessmentQuality)
}

func TestArithmetic_CorrectOverridesRisk(t *testing.T) {
	a, err := NewArithmetic(pipelinetest.Arithmetic(0.99).Build(t))
	require.NoError(t, err)

	sum, err := a.Summarize([]numeric.Arithmetic{
		{Op1: 1, Op2: 1, Operation: "*", UserChoice: 0, ResponseTime: 1},
		{Op1: 2, Op2: 2, Operation: "*", UserChoice: 0, ResponseTime: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, sum.RiskCount)
	assert.Equal(t, "No risk", sum.OverallRisk)
	assert.Equal(t, "Fast", sum.SpeedCategory)
}

func TestArithmetic_Rejects(t *testing.T) {
	a, err := NewArithmetic(pipelinetest.Arithmetic(0.5).Build(t))
	require.NoError(t, err)

	_, err = a.Summarize([]numeric.Arithmetic{{Operation: "%", ResponseTime: 1}})
	pe := requireKind(t, KindValidation, err)
	assert.Equal(t, "operation", pe.Field)
	assert.Equal(t, []string{"*", "+", "-", "/"}, pe.Allowed)
	assert.Contains(t, pe.Error(), "Invalid operation: %")

	_, err = a.Summarize([]numeric.Arithmetic{{Operation: "+", UserChoice: 2}})
	pe = requireKind(t, KindValidation, err)
	assert.Equal(t, "user_choice", pe.Field)

	_, err = a.Summarize([]numeric.Arithmetic{{Operation: "+", ResponseTime: -1}})
	requireKind(t, KindValidation, err)
}

func TestNewArithmetic_RequiresEncoder(t *testing.T) {
	l := pipelinetest.Arithmetic(0.5)
	l.Encoders = nil
	_, err := NewArithmetic(l.Build(t))
	requireKind(t, KindConfiguration, err)
}

func TestNumberSense_SpeedCategories(t *testing.T) {
	n, err := NewNumberSense(pipelinetest.NumberSense(0.8).Build(t), nil, first)
	require.NoError(t, err)

	tests := []struct {
		rt       float64
		category string
	}{
		{2, "Minimal Indicators"},
		{4, "Emerging Indicators"},
		{6, "Emerging Indicators"},
		{7, "Strong Indicators"},
	}
	for _, tt := range tests {
		res, err := n.Predict(NumberAnswer{LeftNumber: 3, RightNumber: 7, ResponseTimeSec: tt.rt, UserCorrect: 1})
		require.NoError(t, err)
		assert.Equal(t, tt.category, res.SpeedCategory, "rt=%v", tt.rt)
		assert.NotEmpty(t, res.SpeedMessage)
		assert.Equal(t, 1, res.AtRisk)
		assert.Equal(t, "At Risk for Learning Difficulty", res.Result)
		assert.Equal(t, 0.8, res.Confidence)
	}
}

func TestNumberSense_NotAtRisk(t *testing.T) {
	n, err := NewNumberSense(pipelinetest.NumberSense(0.123456).Build(t), nil, first)
	require.NoError(t, err)
	res, err := n.Predict(NumberAnswer{LeftNumber: 1, RightNumber: 2, ResponseTimeSec: 1, UserCorrect: 0})
	require.NoError(t, err)
	assert.Equal(t, 0, res.AtRisk)
	assert.Equal(t, "Not At Risk", res.Result)
	assert.Equal(t, 0.1235, res.Confidence)

	_, err = n.Predict(NumberAnswer{ResponseTimeSec: 1, UserCorrect: 5})
	requireKind(t, KindValidation, err)
}

func TestNumberSense_RandomQuestion(t *testing.T) {
	qs := []dataset.NumberQuestion{
		{QuestionType: "compare", LeftNumber: 4, RightNumber: 9, CorrectAnswer: "right", AtRisk: 0},
		{QuestionType: "compare", LeftNumber: 8, RightNumber: 2, CorrectAnswer: "left", AtRisk: 1},
	}
	n, err := NewNumberSense(pipelinetest.NumberSense(0.5).Build(t), qs, func(int) int { return 1 })
	require.NoError(t, err)
	q, err := n.RandomQuestion()
	require.NoError(t, err)
	assert.Equal(t, NumberQuestion{QuestionType: "compare", LeftNumber: 8, RightNumber: 2, CorrectAnswer: "left", AtRisk: 1}, q)
}

func TestTracing(t *testing.T) {
	uncertain, err := NewTracing(pipelinetest.Tracing(0.65).Build(t))
	require.NoError(t, err)
	res, err := uncertain.Trace(4.2, 0.5)
	require.NoError(t, err)
	assert.Equal(t, "uncertain", res.Label)
	assert.InDelta(t, 0.65, res.Confidence, 1e-9)
	assert.Equal(t, 4.2, res.DurationSeconds)
	assert.Equal(t, 0.5, res.Accuracy)

	sure, err := NewTracing(pipelinetest.Tracing(0.9).Build(t))
	require.NoError(t, err)
	res, err = sure.Trace(1, 0.2)
	require.NoError(t, err)
	assert.Equal(t, "poor", res.Label)
}

func TestTracing_Rejects(t *testing.T) {
	tr, err := NewTracing(pipelinetest.Tracing(0.9).Build(t))
	require.NoError(t, err)
	for _, c := range []struct{ d, a float64 }{{-1, 0.5}, {1, -0.1}, {1, 1.1}} {
		_, err := tr.Trace(c.d, c.a)
		requireKind(t, KindValidation, err)
	}
}

func TestLetterConfusion_Submit(t *testing.T) {
	lc, err := NewLetterConfusion(pipelinetest.LetterConfusion(0.3).Build(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"matching", "same_different"}, lc.QuestionTypes())

	res, err := lc.Submit([]numeric.LetterAnswer{
		{QuestionType: "matching", ShownLetters: []string{"b", "d"}, Correct: true, ResponseTimeMs: 1200},
		{QuestionType: "same_different", ShownLetters: []string{"p", "q"}, Correct: false, ResponseTimeMs: 2500},
		{QuestionType: "matching", ShownLetters: []string{"m"}, Correct: true, ResponseTimeMs: 900},
		{QuestionType: "matching", ShownLetters: []string{"u", "n"}, Correct: true, ResponseTimeMs: 1000},
	})
	require.NoError(t, err)
	assert.Equal(t, "0", res.Prediction)
	assert.InDelta(t, 0.7, res.Confidence, 1e-9)
	assert.Equal(t, 4, res.Attempts)
	assert.Equal(t, "Moderate (balanced reliability)", res.AssessmentQuality)
}

func TestLetterConfusion_Rejects(t *testing.T) {
	lc, err := NewLetterConfusion(pipelinetest.LetterConfusion(0.3).Build(t))
	require.NoError(t, err)

	_, err = lc.Submit(nil)
	requireKind(t, KindValidation, err)

	_, err = lc.Submit([]numeric.LetterAnswer{{QuestionType: "rhyme", ResponseTimeMs: 10}})
	pe := requireKind(t, KindValidation, err)
	assert.Equal(t, "question_type", pe.Field)
	assert.Equal(t, []string{"matching", "same_different"}, pe.Allowed)

	_, err = lc.Submit([]numeric.LetterAnswer{{QuestionType: "matching", ResponseTimeMs: -5}})
	requireKind(t, KindValidation, err)
}

func TestCheckModel_ClassCount(t *testing.T) {
	m := modeltest.Constant("tri", []string{"a", "b"}, numeric.NumberSenseWidth, 0.5)
	m.Classes = []string{"a", "b", "c"}
	m.Coef = [][]float64{make([]float64, 4), make([]float64, 4), make([]float64, 4)}
	m.Intercept = []float64{0, 0, 0}
	_, err := NewNumberSense(m.Build(t), nil, first)
	requireKind(t, KindConfiguration, err)
}
