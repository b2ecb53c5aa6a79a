package disparity

import (
	"fmt"
	"image"

	"stereocensus/census"
	"stereocensus/parallel"
)

// Search matches every interior pixel of the left code plane against the
// right plane shifted left by MinDisp..MaxDisp and keeps the shift with the
// smallest Hamming distance. Among equal distances the smallest shift wins.
//
// Searched pixels are rows [border, H-border) and columns [MaxDisp,
// W-border), where border is the Census radius. With StrictBorder no
// sentinel code is ever matched: left columns start at border too, shifts
// landing in the right plane's border are skipped, and a pixel left without
// any candidate keeps 0.
func Search(left, right *census.Codes, p Params, opts Options) (*image.Gray, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if left.Rect.Size() != right.Rect.Size() {
		return nil, fmt.Errorf("%w: code planes differ in size: %v and %v", ErrPrecondition, left.Rect.Size(), right.Rect.Size())
	}
	if left.Radius != right.Radius {
		return nil, fmt.Errorf("%w: code planes differ in radius: %d and %d", ErrPrecondition, left.Radius, right.Radius)
	}
	if err := census.ValidRadius(left.Radius); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPrecondition, err)
	}

	logger := opts.logger()
	h, w := left.Rect.Dy(), left.Rect.Dx()
	border := left.Border()
	ceiling := census.MaxDistance(left.Bits()) + 1
	minCol, startCol := 0, p.MaxDisp
	if opts.StrictBorder {
		minCol, startCol = border, max(p.MaxDisp, border)
	}

	out := image.NewGray(image.Rect(0, 0, w, h))
	logger.Debug("searching disparities", "min_disp", p.MinDisp, "max_disp", p.MaxDisp, "bits", left.Bits())

	parallel.Rows(opts.Workers, border, h-border, func(row int) {
		for col := startCol; col < w-border; col++ {
			code := left.At(row, col)
			best, bestCost := p.MinDisp, ceiling
			found := false
			for d := p.MinDisp; d <= p.MaxDisp; d++ {
				if col-d < minCol {
					continue
				}
				found = true
				if cost := census.Hamming(code, right.At(row, col-d)); cost < bestCost {
					best, bestCost = d, cost
				}
			}
			if !found {
				continue
			}
			out.Pix[row*out.Stride+col] = Scale(best, p.MaxDisp)
		}
		opts.rowDone(logger, row, h-border)
	})

	return out, nil
}
