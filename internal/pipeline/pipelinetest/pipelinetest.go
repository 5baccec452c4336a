// Package pipelinetest writes small but complete model and dataset
// layouts for tests.
package pipelinetest

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/abhisek/earlyedge/internal/config"
	"github.com/abhisek/earlyedge/internal/features/hog"
	"github.com/abhisek/earlyedge/internal/features/numeric"
	"github.com/abhisek/earlyedge/internal/model"
	"github.com/abhisek/earlyedge/internal/model/modeltest"
)

var binaryClasses = []string{"0", "1"}

// First always picks index 0.
func First(int) int { return 0 }

// Audio is a small spelling feature layout: 2 coefficients over 3
// frames of 8 kHz audio.
var Audio = &model.AudioParams{SampleRate: 8000, NMFCC: 2, Frames: 3}

// Spelling returns a spelling model whose incorrect probability is p.
func Spelling(p float64) modeltest.Logistic {
	l := modeltest.Constant("spelling", binaryClasses, 6, p)
	l.Audio = Audio
	return l
}

func Handwriting(p float64) modeltest.Logistic {
	return modeltest.Constant("handwriting", binaryClasses, hog.Width, p)
}

// Arithmetic encodes operations in sorted symbol order.
func Arithmetic(p float64) modeltest.Logistic {
	l := modeltest.Constant("arithmetic", binaryClasses, numeric.ArithmeticWidth, p)
	l.Encoders = map[string][]string{"operation": {"*", "+", "-", "/"}}
	return l
}

func NumberSense(p float64) modeltest.Logistic {
	return modeltest.Constant("number", binaryClasses, numeric.NumberSenseWidth, p)
}

func Tracing(p float64) modeltest.Logistic {
	return modeltest.Constant("tracing", []string{"good", "poor"}, numeric.TracingWidth, p)
}

func LetterConfusion(p float64) modeltest.Logistic {
	l := modeltest.Constant("letters", binaryClasses, numeric.LetterConfusionWidth, p)
	l.Encoders = map[string][]string{"question_type": {"matching", "same_different"}}
	l.Scaler = &model.ScalerParams{Mean: []float64{1500}, Scale: []float64{500}, Columns: []int{1}}
	return l
}

// Phono has a two-word vocabulary and always favours the middle class.
func Phono() modeltest.Logistic {
	width := 2 + 10
	cols := make([]int, 10)
	scale := make([]float64, 10)
	for i := range cols {
		cols[i] = 2 + i
		scale[i] = 1
	}
	return modeltest.Logistic{
		Name:      "phono",
		Classes:   []string{"0", "1", "2"},
		NFeatures: width,
		Coef:      [][]float64{make([]float64, width), make([]float64, width), make([]float64, width)},
		Intercept: []float64{0, 1, 0},
		Scaler:    &model.ScalerParams{Mean: make([]float64, 10), Scale: scale, Columns: cols},
		Vectorizer: &model.VectorizerParams{
			Vocabulary: map[string]int{"cat": 0, "hat": 1},
			IDF:        []float64{1, 1},
			NgramRange: [2]int{1, 1},
		},
	}
}

func WriteFile(t testing.TB, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// CSV joins rows into a file body.
func CSV(rows ...string) string {
	return strings.Join(rows, "\n") + "\n"
}

// WriteTone writes a half-second 440 Hz mono clip at 8 kHz.
func WriteTone(t testing.TB, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	const rate = 8000
	data := make([]int, rate/2)
	for i := range data {
		data[i] = int(8000 * math.Sin(2*math.Pi*440*float64(i)/rate))
	}
	enc := wav.NewEncoder(f, rate, 16, 1, 1)
	err = enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	})
	if err == nil {
		err = enc.Close()
	}
	if err != nil {
		t.Fatalf("encode wav: %v", err)
	}
}

// StrokePNG draws a dark vertical stroke on white.
func StrokePNG(t testing.TB, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			c := color.NRGBA{255, 255, 255, 255}
			if x > w/3 && x < w/2 {
				c = color.NRGBA{0, 0, 0, 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// Layout writes every artifact, dataset and one recording (cat.wav)
// under a temp dir and returns a config pointing at it.
func Layout(t testing.TB) config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.ModelsDir = filepath.Join(root, "models")
	cfg.DataDir = filepath.Join(root, "data")
	cfg.AudioDir = filepath.Join(root, "audio", "correct")

	if err := os.MkdirAll(cfg.ModelsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	Spelling(0.8).Write(t, cfg.ModelsDir, cfg.Models.Spelling)
	Handwriting(0.9).Write(t, cfg.ModelsDir, cfg.Models.Handwriting)
	Phono().Write(t, cfg.ModelsDir, cfg.Models.Phono)
	Arithmetic(0.9).Write(t, cfg.ModelsDir, cfg.Models.Arithmetic)
	NumberSense(0.8).Write(t, cfg.ModelsDir, cfg.Models.NumberSense)
	Tracing(0.9).Write(t, cfg.ModelsDir, cfg.Models.Tracing)
	LetterConfusion(0.3).Write(t, cfg.ModelsDir, cfg.Models.LetterConfusion)

	WriteFile(t, cfg.DataPath(cfg.Data.SpellingItems), CSV(
		"audio_file,correct_word",
		"audio/correct/cat.wav,cat",
	))
	WriteFile(t, cfg.DataPath(cfg.Data.SpellingKey), CSV(
		"audio_file,correct_spelling",
		"audio/correct/cat.wav,cat",
	))
	WriteFile(t, cfg.DataPath(cfg.Data.NumberQuestions), CSV(
		"question_type,left_number,right_number,correct_answer,at_risk",
		"compare,3,8,right,0",
	))
	WriteFile(t, cfg.DataPath(cfg.Data.PhonoQuestions), CSV(
		"Question,Response,Label",
		"Say cat,cat,0",
		"Say cat,kat,1",
		"Say hat,hat,0",
	))
	WriteTone(t, filepath.Join(cfg.AudioDir, "cat.wav"))
	return cfg
}
