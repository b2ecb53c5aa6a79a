package vectors

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
)

type CLICmd struct {
	Want      string `arg:"" help:"Reference test vector file" type:"existingfile"`
	Got       string `arg:"" help:"Test vector dump of the hardware simulation" type:"existingfile"`
	MaxReport int    `help:"Number of mismatches to log, 0 logs all" default:"20" env:"STEREO_VERIFY_MAX_REPORT"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	if c.MaxReport < 0 {
		return fmt.Errorf("invalid mismatch report limit: %d", c.MaxReport)
	}
	return nil
}

func (c *CLICmd) Run() error {
	want, err := readFile(c.Want)
	if err != nil {
		return err
	}
	got, err := readFile(c.Got)
	if err != nil {
		return err
	}

	mismatches := Compare(want, got)
	for i, m := range mismatches {
		if c.MaxReport > 0 && i >= c.MaxReport {
			slog.Warn("more mismatches not shown", "count", len(mismatches)-i)
			break
		}
		slog.Error("mismatch", "row", m.Row, "col", m.Col, "detail", m.String())
	}

	slog.Info("stats", "reference", len(want), "simulation", len(got), "mismatches", len(mismatches))
	if len(mismatches) > 0 {
		return fmt.Errorf("%d test vectors differ", len(mismatches))
	}
	return nil
}

func readFile(name string) ([]Record, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("could not open test vectors %q: %w", name, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Error("could not close test vectors", "name", name, "error", closeErr)
		}
	}()

	records, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("could not parse test vectors %q: %w", name, err)
	}
	return records, nil
}
