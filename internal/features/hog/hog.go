// Package hog computes histogram-of-oriented-gradients descriptors for
// handwriting samples.
package hog

import (
	"image"
	"io"
	"math"
)

const (
	Size         = 128
	Orientations = 8
	CellSize     = 16

	// Width is the descriptor length for a Size × Size image.
	Width = (Size / CellSize) * (Size / CellSize) * Orientations

	l2hysClip = 0.2
	l2hysEps  = 1e-5
)

// Extract decodes a raster image and returns its descriptor.
func Extract(r io.Reader) ([]float64, error) {
	img, _, err := Decode(r)
	if err != nil {
		return nil, err
	}
	return ExtractImage(img), nil
}

// ExtractImage returns the Width-long descriptor of img at any resolution.
func ExtractImage(img image.Image) []float64 {
	return Descriptor(Resize(Gray(img), Size))
}

// Descriptor computes the HOG of a square intensity grid whose side is a
// multiple of CellSize. Blocks are one cell, normalized with L2-Hys, and
// laid out row, column, orientation.
func Descriptor(pix [][]float64) []float64 {
	rows := len(pix)
	cols := 0
	if rows > 0 {
		cols = len(pix[0])
	}
	mag, ang := gradients(pix)

	cellRows, cellCols := rows/CellSize, cols/CellSize
	binWidth := 180.0 / Orientations
	area := float64(CellSize * CellSize)

	out := make([]float64, 0, cellRows*cellCols*Orientations)
	for cr := 0; cr < cellRows; cr++ {
		for cc := 0; cc < cellCols; cc++ {
			var hist [Orientations]float64
			for y := cr * CellSize; y < (cr+1)*CellSize; y++ {
				for x := cc * CellSize; x < (cc+1)*CellSize; x++ {
					bin := int(ang[y][x] / binWidth)
					if bin >= Orientations {
						bin = Orientations - 1
					}
					hist[bin] += mag[y][x]
				}
			}
			for i := range hist {
				hist[i] /= area
			}
			out = append(out, l2hys(hist[:])...)
		}
	}
	return out
}

// gradients uses central differences; the outermost rows and columns
// have zero gradient along their axis. Angles are unsigned, in [0, 180).
func gradients(pix [][]float64) (mag, ang [][]float64) {
	rows := len(pix)
	mag = make([][]float64, rows)
	ang = make([][]float64, rows)
	for y := 0; y < rows; y++ {
		cols := len(pix[y])
		mag[y] = make([]float64, cols)
		ang[y] = make([]float64, cols)
		for x := 0; x < cols; x++ {
			var gr, gc float64
			if y > 0 && y < rows-1 {
				gr = pix[y+1][x] - pix[y-1][x]
			}
			if x > 0 && x < cols-1 {
				gc = pix[y][x+1] - pix[y][x-1]
			}
			mag[y][x] = math.Hypot(gc, gr)
			a := math.Mod(math.Atan2(gr, gc)*180/math.Pi, 180)
			if a < 0 {
				a += 180
			}
			ang[y][x] = a
		}
	}
	return mag, ang
}

func l2hys(block []float64) []float64 {
	out := make([]float64, len(block))
	norm := func(v []float64) float64 {
		s := 0.0
		for _, x := range v {
			s += x * x
		}
		return math.Sqrt(s + l2hysEps*l2hysEps)
	}
	n := norm(block)
	for i, v := range block {
		out[i] = math.Min(v/n, l2hysClip)
	}
	n = norm(out)
	for i := range out {
		out[i] /= n
	}
	return out
}
