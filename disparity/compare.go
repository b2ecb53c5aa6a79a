package disparity

import (
	"image"
	"math"

	"gonum.org/v1/gonum/stat"

	"stereocensus/raster"
)

// Divergence summarises how far two disparity maps are apart. It is a
// diagnostic, the Census and SSD maps are not expected to agree exactly.
type Divergence struct {
	// MeanA and MeanB are the means of the non-zero values of each map.
	MeanA float64
	MeanB float64
	// MeanAbsDiff is the mean absolute difference over all pixels.
	MeanAbsDiff float64
	// Correlation is the Pearson correlation over pixels set in both maps,
	// NaN when fewer than two such pixels exist or either side is constant.
	Correlation float64
	// Overlap counts the pixels set in both maps.
	Overlap int
}

// Compare computes the divergence between two disparity maps of equal size.
func Compare(a, b *image.Gray) (Divergence, error) {
	if err := raster.SameSize(a, b); err != nil {
		return Divergence{}, err
	}

	h, w := a.Rect.Dy(), a.Rect.Dx()
	var setA, setB, bothA, bothB, absDiff []float64
	absDiff = make([]float64, 0, w*h)
	for row := range h {
		for col := range w {
			va := a.Pix[row*a.Stride+col]
			vb := b.Pix[row*b.Stride+col]
			if va != 0 {
				setA = append(setA, float64(va))
			}
			if vb != 0 {
				setB = append(setB, float64(vb))
			}
			if va != 0 && vb != 0 {
				bothA = append(bothA, float64(va))
				bothB = append(bothB, float64(vb))
			}
			absDiff = append(absDiff, math.Abs(float64(va)-float64(vb)))
		}
	}

	div := Divergence{
		MeanA:       mean(setA),
		MeanB:       mean(setB),
		MeanAbsDiff: mean(absDiff),
		Correlation: math.NaN(),
		Overlap:     len(bothA),
	}
	if len(bothA) > 1 {
		div.Correlation = stat.Correlation(bothA, bothB, nil)
	}
	return div, nil
}

func mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return stat.Mean(x, nil)
}

// Diff returns the per-pixel absolute difference of two maps of equal size.
func Diff(a, b *image.Gray) (*image.Gray, error) {
	if err := raster.SameSize(a, b); err != nil {
		return nil, err
	}

	h, w := a.Rect.Dy(), a.Rect.Dx()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for row := range h {
		for col := range w {
			va := int(a.Pix[row*a.Stride+col])
			vb := int(b.Pix[row*b.Stride+col])
			if va > vb {
				out.Pix[row*out.Stride+col] = uint8(va - vb)
			} else {
				out.Pix[row*out.Stride+col] = uint8(vb - va)
			}
		}
	}
	return out, nil
}

// MeanNonZero is the mean of the pixels of img that hold a disparity.
func MeanNonZero(img *image.Gray) float64 {
	var set []float64
	for row := range img.Rect.Dy() {
		for _, v := range img.Pix[row*img.Stride : row*img.Stride+img.Rect.Dx()] {
			if v != 0 {
				set = append(set, float64(v))
			}
		}
	}
	return mean(set)
}
