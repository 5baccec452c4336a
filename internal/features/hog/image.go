package hog

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode reads any registered raster format (png, jpeg, gif, bmp, tiff,
// webp) and returns the image and its format name.
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, "", fmt.Errorf("decode image: empty %s image", format)
	}
	return img, format, nil
}

// Luminance weights of ITU-R BT.709.
const (
	lumR = 0.2125
	lumG = 0.7154
	lumB = 0.0721
)

// Gray converts img to luminance. Alpha is dropped rather than composited,
// and color channels are quantized to 8 bits first.
func Gray(img image.Image) *image.Gray16 {
	b := img.Bounds()
	out := image.NewGray16(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			l := (lumR*float64(c.R) + lumG*float64(c.G) + lumB*float64(c.B)) / 255
			out.SetGray16(x-b.Min.X, y-b.Min.Y, color.Gray16{Y: uint16(l*0xffff + 0.5)})
		}
	}
	return out
}

// Resize scales g to size × size, ignoring aspect ratio, and returns the
// pixels as rows of intensities in [0, 1].
func Resize(g *image.Gray16, size int) [][]float64 {
	dst := image.NewGray16(image.Rect(0, 0, size, size))
	draw.BiLinear.Scale(dst, dst.Bounds(), g, g.Bounds(), draw.Src, nil)

	rows := make([][]float64, size)
	for y := range rows {
		row := make([]float64, size)
		for x := range row {
			row[x] = float64(dst.Gray16At(x, y).Y) / 0xffff
		}
		rows[y] = row
	}
	return rows
}
