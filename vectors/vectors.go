// Package vectors writes and reads the Census test-vector trace compared
// against RTL simulation output.
//
// Every record is one line: row, column and pixel intensity right aligned in
// three characters, then the Census code as a zero padded binary string as
// wide as the code, all separated by single spaces:
//
//	 10  12  87 01101100
package vectors

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"io"
	"strconv"
	"strings"

	"stereocensus/census"
)

var ErrFormat = errors.New("malformed test vector")

// Header is written before the records when requested.
const Header = "// Census Transform Test Vectors\n// Format: row col left_pixel census_code_binary\n\n"

type Record struct {
	Row   int
	Col   int
	Pixel uint8
	Code  uint32
	// Bits is the width the code is rendered with.
	Bits int
}

func (r Record) String() string {
	return fmt.Sprintf("%3d %3d %3d %0*b", r.Row, r.Col, r.Pixel, r.Bits, r.Code)
}

// Range is a half-open interval [From, To).
type Range struct {
	From int
	To   int
}

// ParseRange reads "from:to".
func ParseRange(s string) (Range, error) {
	from, to, ok := strings.Cut(s, ":")
	if !ok {
		return Range{}, fmt.Errorf("invalid range %q, should be from:to", s)
	}
	f, err := strconv.Atoi(from)
	if err != nil {
		return Range{}, fmt.Errorf("invalid range start %q: %w", from, err)
	}
	t, err := strconv.Atoi(to)
	if err != nil {
		return Range{}, fmt.Errorf("invalid range end %q: %w", to, err)
	}
	if f < 0 || t < f {
		return Range{}, fmt.Errorf("invalid range %q", s)
	}
	return Range{From: f, To: t}, nil
}

type ExportOptions struct {
	// Header writes the comment header before the records.
	Header bool
}

// Records collects the records of every (row, col) in rows × cols, row by
// row.
func Records(img *image.Gray, codes *census.Codes, rows, cols Range) ([]Record, error) {
	if err := checkRange(img, codes, rows, cols); err != nil {
		return nil, err
	}

	res := make([]Record, 0, (rows.To-rows.From)*(cols.To-cols.From))
	for row := rows.From; row < rows.To; row++ {
		for col := cols.From; col < cols.To; col++ {
			res = append(res, Record{
				Row:   row,
				Col:   col,
				Pixel: img.Pix[row*img.Stride+col],
				Code:  codes.At(row, col),
				Bits:  codes.Bits(),
			})
		}
	}
	return res, nil
}

// Export writes the records of rows × cols to w.
func Export(w io.Writer, img *image.Gray, codes *census.Codes, rows, cols Range, opts ExportOptions) error {
	records, err := Records(img, codes, rows, cols)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	if opts.Header {
		if _, err := bw.WriteString(Header); err != nil {
			return fmt.Errorf("could not write header: %w", err)
		}
	}
	for _, r := range records {
		if _, err := bw.WriteString(r.String() + "\n"); err != nil {
			return fmt.Errorf("could not write record %d,%d: %w", r.Row, r.Col, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("could not flush test vectors: %w", err)
	}
	return nil
}

func checkRange(img *image.Gray, codes *census.Codes, rows, cols Range) error {
	h, w := img.Rect.Dy(), img.Rect.Dx()
	if codes.Rect.Dx() != w || codes.Rect.Dy() != h {
		return fmt.Errorf("code plane %v does not match image %dx%d", codes.Rect.Size(), w, h)
	}
	if rows.From < 0 || rows.To > h || rows.From > rows.To {
		return fmt.Errorf("row range [%d, %d) outside image height %d", rows.From, rows.To, h)
	}
	if cols.From < 0 || cols.To > w || cols.From > cols.To {
		return fmt.Errorf("column range [%d, %d) outside image width %d", cols.From, cols.To, w)
	}
	return nil
}
