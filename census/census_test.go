package census

import (
	"image"
	"image/color"
	"math/rand/v2"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomGray(t *testing.T, w, h int, seed uint64) *image.Gray {
	t.Helper()
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(rng.IntN(256))
	}
	return img
}

func TestSample(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = uint8(i)
	}

	win, ok := Sample(img, 1, 1, 1, nil)
	require.True(t, ok)
	assert.Equal(t, []uint8{0, 1, 2, 4, 5, 6, 8, 9, 10}, win)

	win, ok = Sample(img, 2, 2, 1, win)
	require.True(t, ok)
	assert.Equal(t, []uint8{5, 6, 7, 9, 10, 11, 13, 14, 15}, win)

	for _, p := range []image.Point{{0, 0}, {0, 2}, {3, 1}, {1, 3}} {
		_, ok := Sample(img, p.Y, p.X, 1, win)
		assert.False(t, ok, "row %d col %d", p.Y, p.X)
	}

	_, ok = Sample(img, 2, 2, 2, nil)
	assert.False(t, ok)
}

func TestSampleSubImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 6, 6))
	for i := range img.Pix {
		img.Pix[i] = uint8(i)
	}
	sub := img.SubImage(image.Rect(2, 2, 6, 6)).(*image.Gray)

	win, ok := Sample(sub, 1, 1, 1, nil)
	require.True(t, ok)
	assert.Equal(t, []uint8{14, 15, 16, 20, 21, 22, 26, 27, 28}, win)
}

func TestEncodeWindowBitOrder(t *testing.T) {
	window := []uint8{
		9, 1, 1,
		1, 5, 1,
		1, 1, 5,
	}
	// Neighbour 0 (top-left) and neighbour 7 (bottom-right, equal to the centre).
	assert.Equal(t, uint32(0b1000_0001), EncodeWindow(window))

	window = []uint8{
		0, 0, 0, 0, 0,
		0, 0, 0, 0, 0,
		0, 0, 7, 0, 0,
		0, 0, 0, 0, 0,
		0, 0, 0, 0, 8,
	}
	assert.Equal(t, uint32(1<<23), EncodeWindow(window))

	window[0] = 7
	window[13] = 200
	assert.Equal(t, uint32(1<<23|1<<12|1), EncodeWindow(window))
}

func TestEncodeMatchesDefinition(t *testing.T) {
	img := randomGray(t, 17, 13, 1)

	for _, radius := range []int{1, 2} {
		codes, err := Encode(img, radius, Options{Workers: 3})
		require.NoError(t, err)
		assert.Equal(t, map[int]int{1: 8, 2: 24}[radius], codes.Bits())

		h, w := 13, 17
		for row := range h {
			for col := range w {
				code := codes.At(row, col)
				if row < radius || row >= h-radius || col < radius || col >= w-radius {
					assert.Zero(t, code, "border row %d col %d", row, col)
					continue
				}

				center := img.GrayAt(col, row).Y
				bit := 0
				for dr := -radius; dr <= radius; dr++ {
					for dc := -radius; dc <= radius; dc++ {
						if dr == 0 && dc == 0 {
							continue
						}
						want := img.GrayAt(col+dc, row+dr).Y >= center
						got := code&(1<<bit) != 0
						require.Equal(t, want, got, "radius %d row %d col %d bit %d", radius, row, col, bit)
						bit++
					}
				}
				assert.Zero(t, code>>bit, "bits above the code width must be clear")
			}
		}
	}
}

func TestEncodeFlatImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 9, 7))
	for i := range img.Pix {
		img.Pix[i] = 117
	}

	for radius, want := range map[int]uint32{1: 0xFF, 2: 0xFFFFFF} {
		codes, err := Encode(img, radius, Options{})
		require.NoError(t, err)
		for row := radius; row < 7-radius; row++ {
			for col := radius; col < 9-radius; col++ {
				assert.Equal(t, want, codes.At(row, col))
			}
		}
	}
}

func TestEncodeInvalidRadius(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for _, radius := range []int{-1, 0, 3} {
		_, err := Encode(img, radius, Options{})
		require.ErrorIs(t, err, ErrInvalidRadius)
	}
}

func TestEncodeSmallImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 2))
	codes, err := Encode(img, 1, Options{})
	require.NoError(t, err)
	assert.Equal(t, make([]uint32, 6), codes.Pix)
}

func TestEncodeProgress(t *testing.T) {
	img := randomGray(t, 12, 10, 2)

	var calls atomic.Int32
	_, err := Encode(img, 2, Options{Workers: 4, Progress: func(int) { calls.Add(1) }})
	require.NoError(t, err)
	assert.Equal(t, int32(10-4), calls.Load())
}

func TestEncodeWorkerCountDoesNotChangeCodes(t *testing.T) {
	img := randomGray(t, 40, 31, 3)

	serial, err := Encode(img, 2, Options{Workers: 1})
	require.NoError(t, err)
	concurrent, err := Encode(img, 2, Options{Workers: 8})
	require.NoError(t, err)
	assert.Equal(t, serial.Pix, concurrent.Pix)
}

func TestHamming(t *testing.T) {
	rng := rand.New(rand.NewPCG(4, 5))
	perm := rng.Perm(24)
	permute := func(v uint32) uint32 {
		var out uint32
		for i, p := range perm {
			if v&(1<<i) != 0 {
				out |= 1 << p
			}
		}
		return out
	}

	for range 1000 {
		a := rng.Uint32() & 0xFFFFFF
		b := rng.Uint32() & 0xFFFFFF
		assert.Zero(t, Hamming(a, a))
		assert.Equal(t, Hamming(a, b), Hamming(b, a))
		assert.Equal(t, Hamming(a, b), Hamming(permute(a), permute(b)))
		assert.LessOrEqual(t, Hamming(a, b), MaxDistance(24))
	}

	assert.Equal(t, 8, Hamming(0x00, 0xFF))
	assert.Equal(t, 24, Hamming(0, 0xFFFFFF))
	assert.Equal(t, 3, Hamming(0b1010_0001, 0b0000_0011))
}

func TestCodesImage(t *testing.T) {
	codes := NewCodes(3, 3, 1)
	codes.set(1, 1, 0xA5)
	img, ok := codes.Image().(*image.Gray)
	require.True(t, ok)
	assert.Equal(t, uint8(0xA5), img.GrayAt(1, 1).Y)

	codes = NewCodes(5, 5, 2)
	codes.set(2, 2, 0x123456)
	rgba, ok := codes.Image().(*image.RGBA)
	require.True(t, ok)
	assert.Equal(t, color.RGBA{R: 0x12, G: 0x34, B: 0x56, A: 0xFF}, rgba.RGBAAt(2, 2))
}
