package audio

import (
	"fmt"
	"io"
	"math"

	"github.com/go-audio/wav"
)

// Signal is a mono waveform with samples in [-1, 1].
type Signal struct {
	Samples    []float64
	SampleRate int
}

// Duration in seconds.
func (s Signal) Duration() float64 {
	if s.SampleRate <= 0 {
		return 0
	}
	return float64(len(s.Samples)) / float64(s.SampleRate)
}

const wavFormatPCM = 1

// DecodeWAV reads a PCM WAV stream and mixes it down to mono.
func DecodeWAV(r io.ReadSeeker) (Signal, error) {
	d := wav.NewDecoder(r)
	d.ReadInfo()
	if err := d.Err(); err != nil {
		return Signal{}, fmt.Errorf("read wav header: %w", err)
	}
	if d.WavAudioFormat != wavFormatPCM {
		return Signal{}, fmt.Errorf("unsupported wav encoding %d, want PCM", d.WavAudioFormat)
	}
	if d.NumChans == 0 || d.SampleRate == 0 {
		return Signal{}, fmt.Errorf("wav header has %d channels at %d Hz", d.NumChans, d.SampleRate)
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return Signal{}, fmt.Errorf("read wav samples: %w", err)
	}

	bits := int(d.BitDepth)
	if buf.SourceBitDepth > 0 {
		bits = buf.SourceBitDepth
	}
	chans := int(d.NumChans)
	full := float64(int64(1) << (bits - 1))
	// 8-bit PCM is unsigned.
	offset := 0.0
	if bits == 8 {
		offset = full
	}

	n := len(buf.Data) / chans
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := 0.0
		for c := 0; c < chans; c++ {
			sum += (float64(buf.Data[i*chans+c]) - offset) / full
		}
		out[i] = sum / float64(chans)
	}
	return Signal{Samples: out, SampleRate: int(d.SampleRate)}, nil
}

// Resample converts s to rate by linear interpolation.
func Resample(s Signal, rate int) Signal {
	if s.SampleRate == rate || len(s.Samples) == 0 || s.SampleRate <= 0 {
		return Signal{Samples: s.Samples, SampleRate: rate}
	}
	ratio := float64(s.SampleRate) / float64(rate)
	n := int(math.Ceil(float64(len(s.Samples)) / ratio))
	out := make([]float64, n)
	last := len(s.Samples) - 1
	for i := range out {
		pos := float64(i) * ratio
		j := int(pos)
		if j >= last {
			out[i] = s.Samples[last]
			continue
		}
		frac := pos - float64(j)
		out[i] = s.Samples[j]*(1-frac) + s.Samples[j+1]*frac
	}
	return Signal{Samples: out, SampleRate: rate}
}
