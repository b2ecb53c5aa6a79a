package census

import (
	"image"
	"image/color"
)

// Codes is a plane of Census codes, one per pixel of the encoded image.
type Codes struct {
	// Pix holds the codes in row-major order. The code of (row, col) is at
	// Pix[row*Stride+col].
	Pix []uint32
	// Stride is the Pix stride between vertically adjacent codes.
	Stride int
	// Rect is the plane's bounds, always anchored at (0, 0).
	Rect image.Rectangle
	// Radius is the window radius the codes were computed with.
	Radius int
}

// NewCodes allocates a zeroed plane of width x height codes.
func NewCodes(width, height, radius int) *Codes {
	return &Codes{
		Pix:    make([]uint32, width*height),
		Stride: width,
		Rect:   image.Rect(0, 0, width, height),
		Radius: radius,
	}
}

func (c *Codes) Bounds() image.Rectangle { return c.Rect }

// Bits is the width of each code: 8 for radius 1 and 24 for radius 2.
func (c *Codes) Bits() int {
	side := WindowSize(c.Radius)
	return side*side - 1
}

// Border is the number of rows and columns on each side holding the zero
// sentinel instead of a code.
func (c *Codes) Border() int { return c.Radius }

// At returns the code of (row, col).
func (c *Codes) At(row, col int) uint32 {
	return c.Pix[row*c.Stride+col]
}

func (c *Codes) set(row, col int, code uint32) {
	c.Pix[row*c.Stride+col] = code
}

// Image renders the plane for inspection. 8-bit codes become gray levels,
// 24-bit codes are packed into the red (bits 16-23), green (8-15) and blue
// (0-7) channels of an opaque RGBA image.
func (c *Codes) Image() image.Image {
	h, w := c.Rect.Dy(), c.Rect.Dx()
	if c.Bits() <= 8 {
		img := image.NewGray(c.Rect)
		for row := range h {
			for col := range w {
				img.Pix[row*img.Stride+col] = uint8(c.At(row, col))
			}
		}
		return img
	}

	img := image.NewRGBA(c.Rect)
	for row := range h {
		for col := range w {
			code := c.At(row, col)
			img.SetRGBA(col, row, color.RGBA{
				R: uint8(code >> 16),
				G: uint8(code >> 8),
				B: uint8(code),
				A: 0xFF,
			})
		}
	}
	return img
}
