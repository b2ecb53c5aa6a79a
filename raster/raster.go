// Package raster loads, converts and stores the 8-bit grayscale planes the
// matcher works on.
package raster

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/vp8l"
	_ "golang.org/x/image/webp"
)

var ErrSizeMismatch = errors.New("image sizes differ")

// ToGray returns img as an 8-bit luma plane whose bounds start at (0, 0).
// Origin based *image.Gray values are returned as is.
func ToGray(img image.Image) *image.Gray {
	sr := img.Bounds()
	if g, ok := img.(*image.Gray); ok && sr.Min == (image.Point{}) {
		return g
	}

	dr := image.Rect(0, 0, sr.Dx(), sr.Dy())
	dest := image.NewGray(dr)
	draw.Draw(dest, dr, img, sr.Min, draw.Src)
	return dest
}

// Load decodes the image stored at path and converts it to grayscale.
// It also returns the name of the decoded format.
func Load(path string) (*image.Gray, string, error) {
	imgFile, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("could not open image %q: %w", path, err)
	}
	defer imgFile.Close()

	img, imgType, err := image.Decode(imgFile)
	if err != nil {
		return nil, "", fmt.Errorf("could not decode image %q: %w", path, err)
	}

	return ToGray(img), imgType, nil
}

// SameSize fails unless both planes have the same width and height.
func SameSize(a, b image.Image) error {
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Dx() != bb.Dx() || ab.Dy() != bb.Dy() {
		return fmt.Errorf("%w: %dx%d and %dx%d", ErrSizeMismatch, ab.Dx(), ab.Dy(), bb.Dx(), bb.Dy())
	}
	return nil
}
