package match

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"stereocensus/census"
	"stereocensus/disparity"
	"stereocensus/palette"
	"stereocensus/parallel"
	"stereocensus/raster"
	"stereocensus/vectors"

	"github.com/alecthomas/kong"
)

const (
	vectorsFile  = "census_test_vectors.txt"
	colormapFile = "colormap.pal"
)

type CLICmd struct {
	Left         string `arg:"" help:"Left image of the rectified pair" type:"existingfile"`
	Right        string `arg:"" help:"Right image of the rectified pair" type:"existingfile"`
	Dest         string `help:"Destination folder for results. Relative to the left image folder if not absolute." default:"results" env:"STEREO_DEST"`
	Radius       int    `help:"Census window radius, 1 for 3x3 (8-bit codes) or 2 for 5x5 (24-bit codes)" default:"1" env:"STEREO_RADIUS" group:"census"`
	MinDisp      int    `help:"Smallest disparity searched" default:"4" env:"STEREO_MIN_DISP" group:"census"`
	MaxDisp      int    `help:"Largest disparity searched" default:"10" env:"STEREO_MAX_DISP" group:"census"`
	StrictBorder bool   `help:"Skip candidates falling on the census border of the right image" default:"false" env:"STEREO_STRICT_BORDER" group:"census"`
	SSDWindow    int    `name:"ssd-window" help:"SSD oracle window side, odd, 0 disables the oracle" default:"7" env:"STEREO_SSD_WINDOW" group:"oracle"`
	Format       string `help:"Output format of the rendered maps" enum:"png,bmp,tiff" default:"png" env:"STEREO_FORMAT" group:"output"`
	Colormap     string `help:"Colormap name (jet, hot, gray) or PAL file in RIFF format for the pseudo-colored disparity" default:"jet" env:"STEREO_COLORMAP" group:"output"`
	SaveColormap bool   `help:"Also write the active colormap as a RIFF PAL file next to the outputs" default:"false" env:"STEREO_SAVE_COLORMAP" group:"output"`
	VectorRows   string `help:"Rows exported as test vectors, from:to" default:"10:20" group:"vectors"`
	VectorCols   string `help:"Columns exported as test vectors, from:to" default:"10:20" group:"vectors"`
	VectorHeader bool   `help:"Write the comment header to the test vector file" default:"true" negatable:"" group:"vectors"`

	Params  disparity.Params `kong:"-"`
	Rows    vectors.Range    `kong:"-"`
	Cols    vectors.Range    `kong:"-"`
	Palette color.Palette    `kong:"-"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	if err := census.ValidRadius(c.Radius); err != nil {
		return err
	}

	c.Params = disparity.Params{MinDisp: c.MinDisp, MaxDisp: c.MaxDisp}
	if err := c.Params.Validate(); err != nil {
		return err
	}

	if c.SSDWindow < 0 || (c.SSDWindow > 0 && c.SSDWindow%2 == 0) {
		return fmt.Errorf("invalid SSD window: %d, should be odd or 0", c.SSDWindow)
	}

	var err error
	if c.Rows, err = vectors.ParseRange(c.VectorRows); err != nil {
		return err
	}
	if c.Cols, err = vectors.ParseRange(c.VectorCols); err != nil {
		return err
	}

	if !slices.Contains(raster.Formats, c.Format) {
		return fmt.Errorf("unsupported output format: %s", c.Format)
	}

	if c.Palette, err = palette.LoadPalette(c.Colormap); err != nil {
		return err
	}

	if !filepath.IsAbs(c.Dest) {
		c.Dest = filepath.Join(filepath.Dir(c.Left), c.Dest)
	}
	if c.Dest, err = filepath.Abs(c.Dest); err != nil {
		return fmt.Errorf("invalid destination path %q: %w", c.Dest, err)
	}

	return nil
}

// result holds everything computed for one image pair before anything is
// written out.
type result struct {
	leftCodes  *census.Codes
	census     *image.Gray
	ssd        *image.Gray
	divergence disparity.Divergence
}

func (c *CLICmd) Run(pool *parallel.Pool) error {
	left, _, err := raster.Load(c.Left)
	if err != nil {
		return err
	}
	right, _, err := raster.Load(c.Right)
	if err != nil {
		return err
	}

	slog.Info("loaded images", "width", left.Rect.Dx(), "height", left.Rect.Dy())

	if c.Rows.To > left.Rect.Dy() || c.Cols.To > left.Rect.Dx() {
		return fmt.Errorf("test vector window rows %d:%d cols %d:%d exceeds image size %dx%d",
			c.Rows.From, c.Rows.To, c.Cols.From, c.Cols.To, left.Rect.Dx(), left.Rect.Dy())
	}

	res, err := c.compute(pool, left, right)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(c.Dest, 0o755); err != nil {
		return fmt.Errorf("unable to create destination folder %q: %w", c.Dest, err)
	}
	return c.save(left, res)
}

func (c *CLICmd) compute(pool *parallel.Pool, left, right *image.Gray) (*result, error) {
	if err := raster.SameSize(left, right); err != nil {
		return nil, fmt.Errorf("%w: %w", disparity.ErrPrecondition, err)
	}

	logger := slog.Default()
	opts := disparity.Options{
		Workers:      pool.Workers,
		Logger:       logger,
		StrictBorder: c.StrictBorder,
	}

	res := &result{}
	var censusErr, ssdErr error

	pool.Do(func() {
		censusOpts := opts
		censusOpts.Logger = logger.With("matcher", "census", "window", census.WindowSize(c.Radius))
		encOpts := census.Options{Workers: pool.Workers, Logger: censusOpts.Logger}

		var rightCodes *census.Codes
		if res.leftCodes, censusErr = census.Encode(left, c.Radius, encOpts); censusErr != nil {
			return
		}
		if rightCodes, censusErr = census.Encode(right, c.Radius, encOpts); censusErr != nil {
			return
		}
		censusOpts.Logger.Info("census transform done", "bits", res.leftCodes.Bits(),
			"sample", fmt.Sprintf("%0*b", res.leftCodes.Bits(), sampleCode(res.leftCodes)))

		if res.census, censusErr = disparity.Search(res.leftCodes, rightCodes, c.Params, censusOpts); censusErr == nil {
			censusOpts.Logger.Info("disparity search done")
		}
	})

	if c.SSDWindow > 0 {
		pool.Do(func() {
			ssdOpts := opts
			ssdOpts.Logger = logger.With("matcher", "ssd", "window", c.SSDWindow)
			if res.ssd, ssdErr = disparity.SearchSSD(left, right, c.SSDWindow, c.Params, ssdOpts); ssdErr == nil {
				ssdOpts.Logger.Info("SSD done")
			}
		})
	}

	pool.Wait(true)

	if censusErr != nil {
		return nil, fmt.Errorf("census matching failed: %w", censusErr)
	}
	if ssdErr != nil {
		return nil, fmt.Errorf("SSD matching failed: %w", ssdErr)
	}

	if res.ssd != nil {
		div, err := disparity.Compare(res.census, res.ssd)
		if err != nil {
			return nil, err
		}
		res.divergence = div
	}
	return res, nil
}

// sampleCode is the code logged as a quick sanity check, the one at (10, 10)
// when the image is large enough.
func sampleCode(codes *census.Codes) uint32 {
	row := min(10, codes.Rect.Dy()-1)
	col := min(10, codes.Rect.Dx()-1)
	if row < 0 || col < 0 {
		return 0
	}
	return codes.At(row, col)
}

type output struct {
	name string
	img  image.Image
}

func (c *CLICmd) save(left *image.Gray, res *result) error {
	side := census.WindowSize(c.Radius)
	suffix := fmt.Sprintf("%dx%d", side, side)

	outputs := []output{
		{"disparity_census_" + suffix, res.census},
		{"left_census_" + suffix, res.leftCodes.Image()},
		{"disparity_census_" + suffix + "_color", palette.Apply(res.census, c.Palette)},
	}
	if res.ssd != nil {
		diff, err := disparity.Diff(res.census, res.ssd)
		if err != nil {
			return err
		}
		outputs = append(outputs,
			output{fmt.Sprintf("disparity_ssd_%dx%d", c.SSDWindow, c.SSDWindow), res.ssd},
			output{"difference_census_ssd", palette.Apply(diff, palette.Hot)},
		)
	}

	for _, out := range outputs {
		if err := raster.Save(out.img, c.Format, c.Dest, out.name); err != nil {
			return err
		}
		slog.Info("saved", "file", filepath.Join(c.Dest, out.name+"."+c.Format))
	}

	if c.SaveColormap {
		name := filepath.Join(c.Dest, colormapFile)
		if err := palette.SavePalette(name, c.Palette); err != nil {
			return err
		}
		slog.Info("saved", "file", name, "colors", len(c.Palette))
	}

	if err := c.writeVectors(left, res.leftCodes); err != nil {
		return err
	}

	if res.ssd != nil {
		slog.Info("stats", "census_mean", res.divergence.MeanA, "ssd_mean", res.divergence.MeanB,
			"mean_abs_error", res.divergence.MeanAbsDiff, "correlation", res.divergence.Correlation)
	} else {
		slog.Info("stats", "census_mean", disparity.MeanNonZero(res.census))
	}

	return nil
}

func (c *CLICmd) writeVectors(left *image.Gray, codes *census.Codes) (err error) {
	name := filepath.Join(c.Dest, vectorsFile)
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("could not create test vector file %q: %w", name, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("could not close test vector file %q: %w", name, closeErr)
		}
	}()

	if err = vectors.Export(f, left, codes, c.Rows, c.Cols, vectors.ExportOptions{Header: c.VectorHeader}); err != nil {
		return fmt.Errorf("could not export test vectors: %w", err)
	}
	slog.Info("saved", "file", name, "rows", c.Rows, "cols", c.Cols)
	return nil
}
