package audio

import "math"

// Slaney mel scale: linear below 1 kHz, logarithmic above.
const (
	melFSp      = 200.0 / 3
	melMinLogHz = 1000.0
	melMinLog   = melMinLogHz / melFSp
)

var melLogStep = math.Log(6.4) / 27

func hzToMel(f float64) float64 {
	if f >= melMinLogHz {
		return melMinLog + math.Log(f/melMinLogHz)/melLogStep
	}
	return f / melFSp
}

func melToHz(m float64) float64 {
	if m >= melMinLog {
		return melMinLogHz * math.Exp(melLogStep*(m-melMinLog))
	}
	return melFSp * m
}

// melFilterBank returns nMels triangular filters over the nFFT/2+1
// frequency bins, area-normalized, spanning 0 Hz to the Nyquist rate.
func melFilterBank(sampleRate, nFFT, nMels int) [][]float64 {
	nBins := nFFT/2 + 1
	fmax := float64(sampleRate) / 2

	fftFreqs := make([]float64, nBins)
	for i := range fftFreqs {
		fftFreqs[i] = fmax * float64(i) / float64(nBins-1)
	}

	hi := hzToMel(fmax)
	melF := make([]float64, nMels+2)
	for i := range melF {
		melF[i] = melToHz(hi * float64(i) / float64(nMels+1))
	}

	weights := make([][]float64, nMels)
	for i := range weights {
		row := make([]float64, nBins)
		lowWidth := melF[i+1] - melF[i]
		highWidth := melF[i+2] - melF[i+1]
		enorm := 2 / (melF[i+2] - melF[i])
		for k, f := range fftFreqs {
			lower := (f - melF[i]) / lowWidth
			upper := (melF[i+2] - f) / highWidth
			if w := math.Min(lower, upper); w > 0 {
				row[k] = w * enorm
			}
		}
		weights[i] = row
	}
	return weights
}

// dctMatrix returns the first n rows of the orthonormal DCT-II of size m.
func dctMatrix(n, m int) [][]float64 {
	out := make([][]float64, n)
	for k := range out {
		row := make([]float64, m)
		scale := math.Sqrt(2 / float64(m))
		if k == 0 {
			scale = math.Sqrt(1 / float64(m))
		}
		for j := range row {
			row[j] = scale * math.Cos(math.Pi*float64(k)*float64(2*j+1)/float64(2*m))
		}
		out[k] = row
	}
	return out
}
