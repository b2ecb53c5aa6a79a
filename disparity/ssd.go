package disparity

import (
	"fmt"
	"image"
	"math"

	"stereocensus/census"
	"stereocensus/parallel"
	"stereocensus/raster"
)

// SearchSSD is the intensity based oracle for Search. For every pixel it sums
// the squared differences between the window of side window around the left
// pixel and the window around the right pixel shifted by d, and keeps the
// first d with the smallest sum.
//
// With half = window/2, searched pixels are rows [half, H-half) and columns
// [MaxDisp+half, W-half).
func SearchSSD(left, right *image.Gray, window int, p Params, opts Options) (*image.Gray, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if window < 1 || window%2 == 0 {
		return nil, fmt.Errorf("%w: SSD window must be odd and positive, got %d", ErrPrecondition, window)
	}
	if err := raster.SameSize(left, right); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPrecondition, err)
	}

	logger := opts.logger()
	h, w := left.Rect.Dy(), left.Rect.Dx()
	half := window / 2

	out := image.NewGray(image.Rect(0, 0, w, h))
	logger.Debug("computing SSD", "window", fmt.Sprintf("%dx%d", window, window),
		"min_disp", p.MinDisp, "max_disp", p.MaxDisp)

	parallel.Rows(opts.Workers, half, h-half, func(row int) {
		lw := make([]uint8, window*window)
		rw := make([]uint8, window*window)
		for col := p.MaxDisp + half; col < w-half; col++ {
			lw, _ = census.Sample(left, row, col, half, lw)
			best, bestCost := p.MinDisp, math.MaxInt
			for d := p.MinDisp; d <= p.MaxDisp; d++ {
				if col-d < half {
					continue
				}
				rw, _ = census.Sample(right, row, col-d, half, rw)
				if cost := SSD(lw, rw); cost < bestCost {
					best, bestCost = d, cost
				}
			}
			out.Pix[row*out.Stride+col] = Scale(best, p.MaxDisp)
		}
		opts.rowDone(logger, row, h-half)
	})

	return out, nil
}

// SSD returns the sum of squared differences of two equally sized windows.
func SSD(a, b []uint8) int {
	sum := 0
	for i := range a {
		diff := int(a[i]) - int(b[i])
		sum += diff * diff
	}
	return sum
}
