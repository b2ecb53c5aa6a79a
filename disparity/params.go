// Package disparity searches a rectified stereo pair for the horizontal shift
// of every pixel, either on Census code planes (the primary matcher) or on
// raw intensities with a sum of squared differences (the cross-check oracle).
//
// Disparity maps store the winning shift d rescaled as floor(d*255/MaxDisp).
// Pixels outside the searchable interior are left at zero.
package disparity

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrPrecondition is wrapped by every parameter or input check failing before
// a search starts.
var ErrPrecondition = errors.New("precondition violated")

// Params bounds the disparity search, both ends included.
type Params struct {
	MinDisp int
	MaxDisp int
}

func (p Params) Validate() error {
	switch {
	case p.MaxDisp <= 0:
		return fmt.Errorf("%w: max disparity must be positive, got %d", ErrPrecondition, p.MaxDisp)
	case p.MinDisp < 0:
		return fmt.Errorf("%w: min disparity must not be negative, got %d", ErrPrecondition, p.MinDisp)
	case p.MinDisp > p.MaxDisp:
		return fmt.Errorf("%w: min disparity %d exceeds max disparity %d", ErrPrecondition, p.MinDisp, p.MaxDisp)
	}
	return nil
}

type Options struct {
	// Workers is the number of rows searched concurrently. Values below 1
	// select GOMAXPROCS.
	Workers int
	// Progress, when set, is called once per finished row from the worker
	// goroutines and must be safe for concurrent use.
	Progress func(row int)
	Logger   *slog.Logger
	// StrictBorder skips Census candidates whose right-image column falls in
	// the code border. Off, the search reads the zero sentinel there exactly
	// like the reference trace does.
	StrictBorder bool
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// rowDone reports a finished row to the progress callback and logs every
// twentieth row.
func (o Options) rowDone(logger *slog.Logger, row, rows int) {
	if row%20 == 0 {
		logger.Debug("processing row", "row", row, "rows", rows)
	}
	if o.Progress != nil {
		o.Progress(row)
	}
}

// Scale maps a disparity in [0, maxDisp] onto [0, 255] with integer
// truncation, as the hardware does.
func Scale(d, maxDisp int) uint8 {
	return uint8(d * 255 / maxDisp)
}
