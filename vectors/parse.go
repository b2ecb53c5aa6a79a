package vectors

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Parse reads records in the Export format. Blank lines and lines starting
// with "//" are skipped.
func Parse(r io.Reader) ([]Record, error) {
	var res []Record

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "//") {
			continue
		}

		rec, err := parseRecord(text)
		if err != nil {
			return res, fmt.Errorf("line %d: %w", line, err)
		}
		res = append(res, rec)
	}
	if err := sc.Err(); err != nil {
		return res, fmt.Errorf("could not read test vectors: %w", err)
	}

	return res, nil
}

func parseRecord(s string) (Record, error) {
	fields := strings.Fields(s)
	if len(fields) != 4 {
		return Record{}, fmt.Errorf("%w: want 4 fields, got %d", ErrFormat, len(fields))
	}

	row, err := strconv.Atoi(fields[0])
	if err != nil || row < 0 {
		return Record{}, fmt.Errorf("%w: invalid row %q", ErrFormat, fields[0])
	}
	col, err := strconv.Atoi(fields[1])
	if err != nil || col < 0 {
		return Record{}, fmt.Errorf("%w: invalid column %q", ErrFormat, fields[1])
	}
	pixel, err := strconv.ParseUint(fields[2], 10, 8)
	if err != nil {
		return Record{}, fmt.Errorf("%w: invalid pixel %q", ErrFormat, fields[2])
	}

	bits := len(fields[3])
	if bits != 8 && bits != 24 {
		return Record{}, fmt.Errorf("%w: census code %q is %d bits wide, want 8 or 24", ErrFormat, fields[3], bits)
	}
	code, err := strconv.ParseUint(fields[3], 2, bits)
	if err != nil {
		return Record{}, fmt.Errorf("%w: invalid census code %q", ErrFormat, fields[3])
	}

	return Record{
		Row:   row,
		Col:   col,
		Pixel: uint8(pixel),
		Code:  uint32(code),
		Bits:  bits,
	}, nil
}
