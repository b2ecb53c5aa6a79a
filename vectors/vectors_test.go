package vectors

import (
	"bytes"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stereocensus/census"
)

func testImage(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8((i * 37) % 251)
	}
	return img
}

func TestRecordString(t *testing.T) {
	assert.Equal(t, " 10  12  87 01101100", Record{Row: 10, Col: 12, Pixel: 87, Code: 0b0110_1100, Bits: 8}.String())
	assert.Equal(t, "  1   2   3 000000000000000000000101", Record{Row: 1, Col: 2, Pixel: 3, Code: 5, Bits: 24}.String())
	assert.Equal(t, "123 456 255 11111111", Record{Row: 123, Col: 456, Pixel: 255, Code: 0xFF, Bits: 8}.String())
}

func TestExport(t *testing.T) {
	img := testImage(24, 24)

	for _, radius := range []int{1, 2} {
		codes, err := census.Encode(img, radius, census.Options{})
		require.NoError(t, err)

		var buf bytes.Buffer
		err = Export(&buf, img, codes, Range{10, 12}, Range{10, 13}, ExportOptions{})
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
		require.Len(t, lines, 6)

		width := codes.Bits()
		for i, line := range lines {
			row, col := 10+i/3, 10+i%3
			require.Len(t, line, 12+width, line)
			assert.Equal(t, Record{Row: row, Col: col, Pixel: img.GrayAt(col, row).Y, Code: codes.At(row, col), Bits: width}.String(), line)
		}
	}
}

func TestExportHeader(t *testing.T) {
	img := testImage(5, 5)
	codes, err := census.Encode(img, 1, census.Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, img, codes, Range{2, 3}, Range{2, 3}, ExportOptions{Header: true}))

	want := Header + Record{Row: 2, Col: 2, Pixel: img.GrayAt(2, 2).Y, Code: codes.At(2, 2), Bits: 8}.String() + "\n"
	assert.Equal(t, want, buf.String())
}

func TestExportRejectsOutOfRange(t *testing.T) {
	img := testImage(8, 8)
	codes, err := census.Encode(img, 1, census.Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	assert.Error(t, Export(&buf, img, codes, Range{0, 9}, Range{0, 1}, ExportOptions{}))
	assert.Error(t, Export(&buf, img, codes, Range{0, 1}, Range{-1, 1}, ExportOptions{}))
	assert.Error(t, Export(&buf, img, census.NewCodes(7, 8, 1), Range{0, 1}, Range{0, 1}, ExportOptions{}))
	assert.Zero(t, buf.Len())
}

func TestParseRoundTrip(t *testing.T) {
	img := testImage(16, 16)
	codes, err := census.Encode(img, 2, census.Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, img, codes, Range{3, 8}, Range{4, 9}, ExportOptions{Header: true}))

	want, err := Records(img, codes, Range{3, 8}, Range{4, 9})
	require.NoError(t, err)
	got, err := Parse(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"too few fields", " 1   2   3\n"},
		{"bad row", "  x   2   3 00000000\n"},
		{"pixel overflow", "  1   2 256 00000000\n"},
		{"odd code width", "  1   2   3 0000000\n"},
		{"non binary code", "  1   2   3 00000002\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader("// header\n\n" + tt.input))
			require.ErrorIs(t, err, ErrFormat)
			assert.Contains(t, err.Error(), "line 3")
		})
	}
}

func TestCompare(t *testing.T) {
	want := []Record{
		{Row: 1, Col: 1, Pixel: 10, Code: 0x0F, Bits: 8},
		{Row: 1, Col: 2, Pixel: 11, Code: 0xF0, Bits: 8},
		{Row: 2, Col: 1, Pixel: 12, Code: 0xAA, Bits: 8},
	}
	got := []Record{
		{Row: 3, Col: 0, Pixel: 1, Code: 0, Bits: 8},
		{Row: 1, Col: 2, Pixel: 11, Code: 0xF1, Bits: 8},
		{Row: 1, Col: 1, Pixel: 10, Code: 0x0F, Bits: 8},
	}

	mismatches := Compare(want, got)
	require.Len(t, mismatches, 3)

	assert.Equal(t, 1, mismatches[0].Row)
	assert.Equal(t, 2, mismatches[0].Col)
	assert.Equal(t, uint32(0xF1), mismatches[0].Got.Code)

	assert.Equal(t, 2, mismatches[1].Row)
	assert.Nil(t, mismatches[1].Got)

	assert.Equal(t, 3, mismatches[2].Row)
	assert.Nil(t, mismatches[2].Want)

	assert.Empty(t, Compare(want, want))
}

func TestCompareReportsDuplicates(t *testing.T) {
	want := []Record{
		{Row: 1, Col: 1, Pixel: 10, Code: 0x0F, Bits: 8},
		{Row: 1, Col: 2, Pixel: 11, Code: 0xF0, Bits: 8},
	}
	got := []Record{
		{Row: 1, Col: 1, Pixel: 10, Code: 0x0F, Bits: 8},
		{Row: 1, Col: 2, Pixel: 11, Code: 0xF0, Bits: 8},
		{Row: 1, Col: 1, Pixel: 10, Code: 0x0F, Bits: 8},
	}

	mismatches := Compare(want, got)
	require.Len(t, mismatches, 1)
	assert.True(t, mismatches[0].Duplicate)
	assert.Equal(t, 1, mismatches[0].Col)
	assert.Same(t, &got[2], mismatches[0].Got)
	assert.Contains(t, mismatches[0].String(), "duplicate")

	mismatches = Compare(append(want, want[1]), want)
	require.Len(t, mismatches, 1)
	assert.True(t, mismatches[0].Duplicate)
	assert.Nil(t, mismatches[0].Got)
	assert.Equal(t, 2, mismatches[0].Col)
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange("10:20")
	require.NoError(t, err)
	assert.Equal(t, Range{From: 10, To: 20}, r)

	for _, s := range []string{"10", "a:2", "2:b", "5:4", "-1:3"} {
		_, err := ParseRange(s)
		assert.Error(t, err, s)
	}
}

func TestVerifyCommand(t *testing.T) {
	dir := t.TempDir()
	ref := filepath.Join(dir, "ref.txt")
	sim := filepath.Join(dir, "sim.txt")

	require.NoError(t, os.WriteFile(ref, []byte(Header+"  1   1  10 00001111\n"), 0o644))
	require.NoError(t, os.WriteFile(sim, []byte("  1   1  10 00001111\n"), 0o644))

	cmd := &CLICmd{Want: ref, Got: sim, MaxReport: 20}
	require.NoError(t, cmd.Run())

	require.NoError(t, os.WriteFile(sim, []byte("  1   1  10 00001110\n"), 0o644))
	assert.Error(t, cmd.Run())
}
