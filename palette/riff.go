package palette

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image/color"
	"io"

	"golang.org/x/image/riff"
)

// A PAL file is a RIFF form of type "PAL " whose "data" chunk holds a
// Windows LOGPALETTE: version 0x0300, entry count, then R, G, B and a flags
// byte per entry, all little endian.

// MaxEntries bounds a colormap: Apply indexes it with 8-bit intensities.
const MaxEntries = 256

const palVersion = 0x0300

var (
	palForm   = riff.FourCC{'P', 'A', 'L', ' '}
	dataChunk = riff.FourCC{'d', 'a', 't', 'a'}
)

// ErrNoColormap reports a PAL form without a data chunk.
var ErrNoColormap = errors.New("no colormap data chunk")

// ReadColormap decodes the first palette of a RIFF PAL stream. Other chunks,
// such as INFO lists, are skipped. The palette holds 1 to MaxEntries colors,
// all opaque.
func ReadColormap(r io.Reader) (color.Palette, error) {
	form, rd, err := riff.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("could not open RIFF stream: %w", err)
	} else if form != palForm {
		return nil, fmt.Errorf("unsupported RIFF form: %q", form[:])
	}

	for {
		id, size, chunk, err := rd.Next()
		if err == io.EOF {
			return nil, ErrNoColormap
		} else if err != nil {
			return nil, fmt.Errorf("could not read chunk: %w", err)
		}

		if id == dataChunk {
			return decodeLogPalette(chunk, size)
		}
	}
}

func decodeLogPalette(r io.Reader, size uint32) (color.Palette, error) {
	var head [4]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return nil, fmt.Errorf("could not read palette header: %w", err)
	}

	if ver := binary.LittleEndian.Uint16(head[0:]); ver != palVersion {
		return nil, fmt.Errorf("unsupported palette version: %#04x", ver)
	}

	count := int(binary.LittleEndian.Uint16(head[2:]))
	if count == 0 || count > MaxEntries {
		return nil, fmt.Errorf("palette holds %d colors, want 1 to %d", count, MaxEntries)
	}
	if int64(size) < int64(len(head)+4*count) {
		return nil, fmt.Errorf("palette chunk of %d bytes too short for %d colors", size, count)
	}

	entries := make([]byte, 4*count)
	if _, err := io.ReadFull(r, entries); err != nil {
		return nil, fmt.Errorf("could not read %d colors: %w", count, err)
	}

	pal := make(color.Palette, count)
	for i := range pal {
		e := entries[4*i:]
		pal[i] = color.RGBA{R: e[0], G: e[1], B: e[2], A: 0xFF}
	}
	return pal, nil
}

// WriteColormap stores pal as a RIFF PAL stream with a single data chunk.
// Alpha is dropped, the format has no room for it.
func WriteColormap(w io.Writer, pal color.Palette) (int64, error) {
	if len(pal) == 0 || len(pal) > MaxEntries {
		return 0, fmt.Errorf("cannot store %d colors, want 1 to %d", len(pal), MaxEntries)
	}

	data := binary.LittleEndian.AppendUint16(nil, palVersion)
	data = binary.LittleEndian.AppendUint16(data, uint16(len(pal)))
	for _, c := range pal {
		rgba := color.RGBAModel.Convert(c).(color.RGBA)
		data = append(data, rgba.R, rgba.G, rgba.B, 0)
	}

	// data is always even sized, no pad byte needed.
	out := make([]byte, 0, 20+len(data))
	out = append(out, "RIFF"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(palForm)+8+len(data)))
	out = append(out, palForm[:]...)
	out = append(out, dataChunk[:]...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(data)))
	out = append(out, data...)

	n, err := w.Write(out)
	if err != nil {
		return int64(n), fmt.Errorf("could not write palette: %w", err)
	}
	return int64(n), nil
}
