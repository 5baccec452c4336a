package pipeline

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/abhisek/earlyedge/internal/config"
	"github.com/abhisek/earlyedge/internal/dataset"
	"github.com/abhisek/earlyedge/internal/features/audio"
	"github.com/abhisek/earlyedge/internal/model"
	"github.com/abhisek/earlyedge/internal/risk"
	"github.com/abhisek/earlyedge/internal/session"
)

// AudioPrefix is the dataset-relative directory of spelling recordings.
const AudioPrefix = "audio/correct/"

// NormalizeAudioPath prefixes bare file names with AudioPrefix.
func NormalizeAudioPath(f string) string {
	if strings.HasPrefix(f, AudioPrefix) {
		return f
	}
	return AudioPrefix + f
}

// Spelling scores a child's spelling of a dictated word by the acoustic
// features of the recording.
type Spelling struct {
	model    *model.Model
	audio    *audio.Extractor
	items    []dataset.SpellingItem
	key      *dataset.AnswerKey
	audioDir string
	pick     func(int) int
}

func NewSpelling(m *model.Model, items []dataset.SpellingItem, key *dataset.AnswerKey, audioDir string, pick func(int) int) (*Spelling, error) {
	ex, err := audio.New(audio.ParamsFrom(m.Audio()))
	if err != nil {
		return nil, Configuration("spelling extractor", err)
	}
	if err := checkModel(config.Spelling, m, ex.Width(), 2); err != nil {
		return nil, err
	}
	return &Spelling{model: m, audio: ex, items: items, key: key, audioDir: audioDir, pick: pick}, nil
}

func (s *Spelling) Name() string        { return config.Spelling }
func (s *Spelling) Model() *model.Model { return s.model }
func (s *Spelling) FeatureWidth() int   { return s.audio.Width() }

// AudioPrompt is a word to dictate.
type AudioPrompt struct {
	AudioFile   string `json:"audio_file"`
	CorrectWord string `json:"correct_word"`
}

// RandomAudio samples a prompt.
func (s *Spelling) RandomAudio() (AudioPrompt, error) {
	if len(s.items) == 0 {
		return AudioPrompt{}, NotFound("No spelling prompts available.")
	}
	it := s.items[s.pick(len(s.items))]
	return AudioPrompt{AudioFile: it.AudioFile, CorrectWord: it.CorrectWord}, nil
}

// SpellingAnswer is a typed answer to a prompt.
type SpellingAnswer struct {
	UserAnswer    string
	AudioFile     string
	AttemptNumber int
}

// SpellingResult is the verdict on one answer.
type SpellingResult struct {
	IsCorrect     bool    `json:"is_correct"`
	UserAnswer    string  `json:"user_answer"`
	CorrectWord   string  `json:"correct_word"`
	IncorrectProb float64 `json:"spelling_incorrect_prob"`
	Risk          string  `json:"spelling_risk"`
	AttemptNumber int     `json:"attempt_number"`
}

// Validate checks the answer against the key and scores the recording.
// AttemptNumber defaults to 1.
func (s *Spelling) Validate(a SpellingAnswer) (SpellingResult, error) {
	if strings.TrimSpace(a.UserAnswer) == "" {
		return SpellingResult{}, Validation("user_answer", "Missing user_answer in request.")
	}
	if a.AudioFile == "" {
		return SpellingResult{}, Validation("audio_file", "Missing audio_file in request.")
	}
	if a.AttemptNumber == 0 {
		a.AttemptNumber = 1
	}
	if a.AttemptNumber < 0 {
		return SpellingResult{}, Validation("attempt_number", "attempt_number must be positive, got %d", a.AttemptNumber)
	}

	path := NormalizeAudioPath(a.AudioFile)
	word, ok := s.key.Lookup(path)
	if !ok {
		return SpellingResult{}, NotFound("Audio file not found in dataset.")
	}
	rel := strings.TrimPrefix(path, AudioPrefix)
	if !filepath.IsLocal(filepath.FromSlash(rel)) {
		return SpellingResult{}, Validation("audio_file", "audio_file must name a file under %s", AudioPrefix)
	}

	x, err := s.audio.ExtractFile(filepath.Join(s.audioDir, filepath.FromSlash(rel)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return SpellingResult{}, Extraction("recording missing for "+path, err)
		}
		return SpellingResult{}, Extraction("audio feature extraction failed", err)
	}
	p, err := score(s.model, x)
	if err != nil {
		return SpellingResult{}, err
	}

	incorrect := p.Probability(1)
	return SpellingResult{
		IsCorrect:     normalizeWord(a.UserAnswer) == normalizeWord(word),
		UserAnswer:    a.UserAnswer,
		CorrectWord:   word,
		IncorrectProb: round(incorrect, 2),
		Risk:          risk.Spelling.Classify(incorrect).Label,
		AttemptNumber: a.AttemptNumber,
	}, nil
}

func normalizeWord(w string) string {
	return strings.ToLower(strings.TrimSpace(w))
}

// SpellingSummary is the session verdict over several answers.
type SpellingSummary struct {
	Attempts           int     `json:"attempts"`
	AverageProbability float64 `json:"average_probability"`
	OverallRisk        string  `json:"overall_risk"`
	AssessmentQuality  string  `json:"assessment_quality"`
}

// Summarize averages the incorrect probabilities returned by Validate.
func (s *Spelling) Summarize(probs []float64) (SpellingSummary, error) {
	for _, p := range probs {
		if !(p >= 0 && p <= 1) {
			return SpellingSummary{}, Validation("probabilities", "probabilities must lie in [0, 1], got %v", p)
		}
	}
	sum := session.SummarizeSpelling(probs)
	return SpellingSummary{
		Attempts:           sum.Attempts,
		AverageProbability: round(sum.AverageProbability, 2),
		OverallRisk:        sum.OverallRisk,
		AssessmentQuality:  sum.AssessmentQuality,
	}, nil
}
