// Package palette holds the colormaps used to render disparity and
// difference maps in false colour.
package palette

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"slices"
)

// Names lists the built-in colormaps.
var Names = []string{"jet", "hot", "gray"}

// Jet is the 256 entry blue-cyan-yellow-red ramp.
var Jet = build(func(v float64) (float64, float64, float64) {
	return 1.5 - math.Abs(4*v-3), 1.5 - math.Abs(4*v-2), 1.5 - math.Abs(4*v-1)
})

// Hot is the 256 entry black-red-yellow-white ramp.
var Hot = build(func(v float64) (float64, float64, float64) {
	return 3 * v, 3*v - 1, 3*v - 2
})

// Gray is the identity ramp.
var Gray = build(func(v float64) (float64, float64, float64) {
	return v, v, v
})

func build(f func(v float64) (r, g, b float64)) color.Palette {
	pal := make(color.Palette, 256)
	for i := range pal {
		r, g, b := f(float64(i) / 255)
		pal[i] = color.RGBA{R: channel(r), G: channel(g), B: channel(b), A: 0xFF}
	}
	return pal
}

func channel(v float64) uint8 {
	return uint8(math.Round(min(max(v, 0), 1) * 255))
}

// LoadPalette returns a built-in colormap by name, or the palette of the
// RIFF PAL file at that path.
func LoadPalette(name string) (color.Palette, error) {
	switch name {
	case "jet":
		return Jet, nil
	case "hot":
		return Hot, nil
	case "gray":
		return Gray, nil
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("unknown colormap %q, should be one of %v or a PAL file: %w", name, Names, err)
	}
	defer f.Close()

	pal, err := ReadColormap(f)
	if err != nil {
		return nil, fmt.Errorf("could not load palette %q: %w", name, err)
	}
	return pal, nil
}

// SavePalette writes pal to path as a RIFF PAL file.
func SavePalette(path string, pal color.Palette) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create palette file %q: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("could not close palette file %q: %w", path, closeErr)
		}
	}()

	if _, err = WriteColormap(f, pal); err != nil {
		return fmt.Errorf("could not save palette %q: %w", path, err)
	}
	return nil
}

// Apply renders a gray plane through pal. Palettes shorter than 256 entries
// are stretched over the full intensity range.
func Apply(img *image.Gray, pal color.Palette) *image.Paletted {
	r := image.Rect(0, 0, img.Rect.Dx(), img.Rect.Dy())
	dest := image.NewPaletted(r, slices.Clone(pal))

	n := len(pal)
	for row := range r.Dy() {
		for col := range r.Dx() {
			v := int(img.Pix[row*img.Stride+col])
			dest.Pix[row*dest.Stride+col] = uint8(min(v*n/256, n-1))
		}
	}
	return dest
}
