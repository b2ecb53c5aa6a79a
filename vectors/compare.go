package vectors

import (
	"fmt"
	"image"
	"slices"
)

// Mismatch is one position where two vector sets disagree. Duplicate marks a
// position listed more than once on the side holding the record.
type Mismatch struct {
	Row       int
	Col       int
	Want      *Record
	Got       *Record
	Duplicate bool
}

func (m Mismatch) String() string {
	switch {
	case m.Duplicate && m.Got != nil:
		return fmt.Sprintf("%d,%d: duplicate %q", m.Row, m.Col, m.Got.String())
	case m.Duplicate:
		return fmt.Sprintf("%d,%d: duplicate expected %q", m.Row, m.Col, m.Want.String())
	case m.Got == nil:
		return fmt.Sprintf("%d,%d: missing, want %q", m.Row, m.Col, m.Want.String())
	case m.Want == nil:
		return fmt.Sprintf("%d,%d: unexpected %q", m.Row, m.Col, m.Got.String())
	default:
		return fmt.Sprintf("%d,%d: want %q, got %q", m.Row, m.Col, m.Want.String(), m.Got.String())
	}
}

// Compare matches records by position and returns every position whose
// pixel, code or code width differ, or that is present on one side only.
// A position repeated on either side is reported once per extra record, the
// first record is the one compared. Mismatches are ordered by row, then
// column.
func Compare(want, got []Record) []Mismatch {
	var res []Mismatch
	index := make(map[image.Point]*Record, len(got))
	for i := range got {
		g := &got[i]
		p := image.Pt(g.Col, g.Row)
		if _, dup := index[p]; dup {
			res = append(res, Mismatch{Row: g.Row, Col: g.Col, Got: g, Duplicate: true})
			continue
		}
		index[p] = g
	}

	seen := make(map[image.Point]bool, len(want))
	for i := range want {
		w := &want[i]
		p := image.Pt(w.Col, w.Row)
		if seen[p] {
			res = append(res, Mismatch{Row: w.Row, Col: w.Col, Want: w, Duplicate: true})
			continue
		}
		seen[p] = true

		g, ok := index[p]
		if !ok {
			res = append(res, Mismatch{Row: w.Row, Col: w.Col, Want: w})
			continue
		}
		if g.Pixel != w.Pixel || g.Code != w.Code || g.Bits != w.Bits {
			res = append(res, Mismatch{Row: w.Row, Col: w.Col, Want: w, Got: g})
		}
	}
	for p, g := range index {
		if !seen[p] {
			res = append(res, Mismatch{Row: g.Row, Col: g.Col, Got: g})
		}
	}

	slices.SortStableFunc(res, func(a, b Mismatch) int {
		if a.Row != b.Row {
			return a.Row - b.Row
		}
		return a.Col - b.Col
	})
	return res
}
