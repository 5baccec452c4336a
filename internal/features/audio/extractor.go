// Package audio turns spoken-word recordings into fixed-length cepstral
// feature vectors.
package audio

import (
	"fmt"
	"os"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/abhisek/earlyedge/internal/model"
)

// Params control the feature layout. They come from the model artifact.
type Params struct {
	SampleRate int
	NMFCC      int
	Deltas     bool
	Frames     int
}

// DefaultParams matches the spelling model: 13 coefficients over 100
// frames of 16 kHz audio.
func DefaultParams() Params {
	return Params{SampleRate: 16000, NMFCC: 13, Frames: 100}
}

// ParamsFrom fills unset artifact fields with defaults.
func ParamsFrom(a *model.AudioParams) Params {
	p := DefaultParams()
	if a == nil {
		return p
	}
	if a.SampleRate > 0 {
		p.SampleRate = a.SampleRate
	}
	if a.NMFCC > 0 {
		p.NMFCC = a.NMFCC
	}
	if a.Frames > 0 {
		p.Frames = a.Frames
	}
	p.Deltas = a.Deltas
	return p
}

// Tracks is 3 with deltas (coefficients, delta, delta-delta), else 1.
func (p Params) Tracks() int {
	if p.Deltas {
		return 3
	}
	return 1
}

// Width is the length of every vector the extractor produces.
func (p Params) Width() int {
	return p.NMFCC * p.Tracks() * p.Frames
}

type fftWork struct {
	plan   *fourier.FFT
	frame  []float64
	coeffs []complex128
}

// Extractor is immutable after New and safe for concurrent use.
type Extractor struct {
	params Params
	window []float64
	mel    [][]float64
	dct    [][]float64
	ffts   sync.Pool
}

func New(p Params) (*Extractor, error) {
	if p.SampleRate <= 0 || p.NMFCC <= 0 || p.Frames <= 0 {
		return nil, fmt.Errorf("invalid audio params %+v", p)
	}
	if p.NMFCC > nMels {
		return nil, fmt.Errorf("n_mfcc %d exceeds %d mel bands", p.NMFCC, nMels)
	}
	e := &Extractor{
		params: p,
		window: hann(nFFT),
		mel:    melFilterBank(p.SampleRate, nFFT, nMels),
		dct:    dctMatrix(p.NMFCC, nMels),
	}
	e.ffts.New = func() any {
		return &fftWork{
			plan:   fourier.NewFFT(nFFT),
			frame:  make([]float64, nFFT),
			coeffs: make([]complex128, nFFT/2+1),
		}
	}
	return e, nil
}

func (e *Extractor) Params() Params { return e.params }
func (e *Extractor) Width() int     { return e.params.Width() }

// Extract resamples s and returns the flattened track × coefficient ×
// frame matrix. Longer clips are truncated and shorter ones zero-padded,
// so the length is always Width. An empty signal yields zeros.
func (e *Extractor) Extract(s Signal) []float64 {
	p := e.params
	out := make([]float64, p.Width())
	s = Resample(s, p.SampleRate)
	if len(s.Samples) == 0 {
		return out
	}

	coeffs := e.mfcc(s.Samples)
	tracks := [][][]float64{coeffs}
	if p.Deltas {
		tracks = append(tracks, delta(coeffs, 1), delta(coeffs, 2))
	}

	i := 0
	for _, track := range tracks {
		for _, row := range track {
			copy(out[i:i+p.Frames], row)
			i += p.Frames
		}
	}
	return out
}

// ExtractFile decodes the WAV file at path and extracts its features.
func (e *Extractor) ExtractFile(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := DecodeWAV(f)
	if err != nil {
		return nil, err
	}
	return e.Extract(s), nil
}
