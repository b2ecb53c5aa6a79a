// Package census implements the Census transform used by the stereo matcher
// and by the hardware reference trace.
//
// The bit order of a code is fixed: the window is walked row by row from the
// top-left corner, skipping the centre, and the k-th neighbour visited sets
// bit k when its intensity is greater than or equal to the centre intensity.
// A 3x3 window gives an 8-bit code and a 5x5 window a 24-bit code. RTL
// implementations must walk the window in the same order.
package census

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"stereocensus/parallel"
)

var ErrInvalidRadius = errors.New("invalid census window radius")

type Options struct {
	// Workers is the number of rows encoded concurrently. Values below 1
	// select GOMAXPROCS.
	Workers int
	// Progress, when set, is called once per encoded row from the worker
	// goroutines and must be safe for concurrent use.
	Progress func(row int)
	Logger   *slog.Logger
}

// ValidRadius reports whether radius selects a supported window.
func ValidRadius(radius int) error {
	if radius != 1 && radius != 2 {
		return fmt.Errorf("%w: %d (want 1 or 2)", ErrInvalidRadius, radius)
	}
	return nil
}

// Encode computes the Census code of every pixel of img whose window lies
// inside the image. Border pixels keep the zero sentinel.
func Encode(img *image.Gray, radius int, opts Options) (*Codes, error) {
	if err := ValidRadius(radius); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	h, w := img.Rect.Dy(), img.Rect.Dx()
	codes := NewCodes(w, h, radius)
	side := WindowSize(radius)
	logger.Debug("census transform", "window", fmt.Sprintf("%dx%d", side, side), "width", w, "height", h)

	parallel.Rows(opts.Workers, radius, h-radius, func(row int) {
		window := make([]uint8, side*side)
		for col := radius; col < w-radius; col++ {
			window, _ = Sample(img, row, col, radius, window)
			codes.set(row, col, EncodeWindow(window))
		}
		if opts.Progress != nil {
			opts.Progress(row)
		}
	})

	return codes, nil
}

// EncodeWindow computes the code of a square window in raster order with the
// centre pixel in the middle.
func EncodeWindow(window []uint8) uint32 {
	center := window[len(window)/2]

	var code uint32
	bit := 0
	for i, v := range window {
		if i == len(window)/2 {
			continue
		}
		if v >= center {
			code |= 1 << bit
		}
		bit++
	}
	return code
}
