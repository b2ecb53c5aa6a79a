package census

import "image"

// WindowSize returns the side of the square window for radius.
func WindowSize(radius int) int {
	return 2*radius + 1
}

// Sample copies the window of the given radius centred on (row, col) into
// dst, rows from -radius to +radius and columns from -radius to +radius
// within each row, centre included. dst is grown when too small and the
// filled slice is returned. The second result is false, and nothing is
// copied, when the window does not lie entirely inside img.
func Sample(img *image.Gray, row, col, radius int, dst []uint8) ([]uint8, bool) {
	h, w := img.Rect.Dy(), img.Rect.Dx()
	if row-radius < 0 || row+radius >= h || col-radius < 0 || col+radius >= w {
		return dst[:0], false
	}

	side := WindowSize(radius)
	if cap(dst) < side*side {
		dst = make([]uint8, side*side)
	}
	dst = dst[:side*side]

	for i := range side {
		off := (row-radius+i)*img.Stride + col - radius
		copy(dst[i*side:(i+1)*side], img.Pix[off:off+side])
	}
	return dst, true
}
