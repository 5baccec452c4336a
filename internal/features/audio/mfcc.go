package audio

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	nFFT    = 2048
	hopSize = 512
	nMels   = 128
	topDB   = 80.0
	amin    = 1e-10
)

// hann returns a periodic Hann window of length n.
func hann(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	return w
}

// powerSpectrogram returns |STFT|² frames of the zero-padded, centered
// signal. Each frame holds nFFT/2+1 bins.
func (e *Extractor) powerSpectrogram(y []float64) [][]float64 {
	pad := nFFT / 2
	padded := make([]float64, len(y)+2*pad)
	copy(padded[pad:], y)

	nFrames := 1 + len(y)/hopSize
	fft := e.ffts.Get().(*fftWork)
	defer e.ffts.Put(fft)

	frames := make([][]float64, nFrames)
	for t := range frames {
		seg := padded[t*hopSize : t*hopSize+nFFT]
		floats.MulTo(fft.frame, seg, e.window)
		fft.coeffs = fft.plan.Coefficients(fft.coeffs, fft.frame)
		p := make([]float64, len(fft.coeffs))
		for k, c := range fft.coeffs {
			p[k] = real(c)*real(c) + imag(c)*imag(c)
		}
		frames[t] = p
	}
	return frames
}

// mfcc returns an n × frames matrix of cepstral coefficients.
func (e *Extractor) mfcc(y []float64) [][]float64 {
	spec := e.powerSpectrogram(y)
	nFrames := len(spec)

	// Log-mel energies, frame-major.
	logMel := make([][]float64, nFrames)
	peak := math.Inf(-1)
	for t, p := range spec {
		row := make([]float64, nMels)
		for m, filt := range e.mel {
			row[m] = 10 * math.Log10(math.Max(amin, floats.Dot(filt, p)))
		}
		if v := floats.Max(row); v > peak {
			peak = v
		}
		logMel[t] = row
	}
	floor := peak - topDB
	for _, row := range logMel {
		for m, v := range row {
			if v < floor {
				row[m] = floor
			}
		}
	}

	out := make([][]float64, len(e.dct))
	for k, basis := range e.dct {
		row := make([]float64, nFrames)
		for t := range logMel {
			row[t] = floats.Dot(basis, logMel[t])
		}
		out[k] = row
	}
	return out
}
