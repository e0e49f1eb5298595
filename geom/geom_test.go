package geom

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAxisPlane(t *testing.T) {
	table := []struct {
		a          Axis
		iDim, jDim int
		name       string
	}{
		{X, 1, 2, "yz"},
		{Y, 0, 2, "xz"},
		{Z, 0, 1, "xy"},
	}

	for i, test := range table {
		iDim, jDim := test.a.Plane()
		if iDim != test.iDim || jDim != test.jDim {
			t.Errorf("%d) Expected plane (%d, %d), got (%d, %d)",
				i, test.iDim, test.jDim, iDim, jDim)
		}
		if name := test.a.PlaneName(); name != test.name {
			t.Errorf("%d) Expected plane name %s, got %s", i, test.name, name)
		}
		if a, err := ParsePlane(test.name); err != nil || a != test.a {
			t.Errorf("%d) ParsePlane(%s) = %v, %v", i, test.name, a, err)
		}
		if a, err := ParseAxis(test.a.String()); err != nil || a != test.a {
			t.Errorf("%d) ParseAxis(%s) = %v, %v", i, test.a, a, err)
		}
	}
}

func TestParseErrors(t *testing.T) {
	for _, s := range []string{"", "w", "xyz"} {
		_, err := ParseAxis(s)
		assert.True(t, errors.Is(err, ErrAxis), s)
	}
	for _, s := range []string{"", "xx", "x"} {
		_, err := ParsePlane(s)
		assert.True(t, errors.Is(err, ErrAxis), s)
	}
	a, err := ParsePlane("ZX")
	assert.NoError(t, err)
	assert.Equal(t, Y, a)
}

func TestRangeOverlap(t *testing.T) {
	r := Range{0.25, 0.75}
	table := []struct {
		lo, hi, overlap float64
	}{
		{0, 1, 0.5},
		{0.5, 0.625, 0.125},
		{0, 0.25, 0},
		{0.75, 1, 0},
		{0.125, 0.5, 0.25},
	}

	for i, test := range table {
		if ov := r.Overlap(test.lo, test.hi); ov != test.overlap {
			t.Errorf("%d) Expected overlap %g, got %g", i, test.overlap, ov)
		}
	}

	assert.True(t, r.Contains(0.25))
	assert.False(t, r.Contains(0.75))
	assert.Equal(t, 0.5, r.Width())
}

func TestGridIdx(t *testing.T) {
	g := NewGrid([2]float64{0, 0}, [2]float64{0.25, 0.5}, [2]int{4, 2})
	assert.Equal(t, 8, g.Area)

	for idx := 0; idx < g.Area; idx++ {
		i, j := g.Coords(idx)
		if out, ok := g.IdxCheck(i, j); !ok || out != idx {
			t.Errorf("%d) Coords/IdxCheck round trip gave %d", idx, out)
		}
	}

	_, ok := g.IdxCheck(4, 0)
	assert.False(t, ok)
	_, ok = g.IdxCheck(0, -1)
	assert.False(t, ok)
	assert.Equal(t, [4]float64{0, 1, 0, 1}, g.Extent())
}

func TestGridSpan(t *testing.T) {
	g := NewGrid([2]float64{0.25, 0}, [2]float64{0.125, 0.125}, [2]int{4, 8})

	table := []struct {
		lo, hi      float64
		k           int
		first, last int
		ok          bool
	}{
		{0.25, 0.375, 0, 0, 0, true},
		{0.3, 0.45, 0, 0, 1, true},
		{0, 1, 0, 0, 3, true},
		{0, 0.25, 0, 0, -1, false},
		{0.75, 1, 0, 0, -1, false},
		{0.5, 0.5, 0, 0, -1, false},
		{0.5, 0.75, 1, 4, 5, true},
	}

	for i, test := range table {
		first, last, ok := g.Span(test.lo, test.hi, test.k)
		if ok != test.ok {
			t.Errorf("%d) Expected ok = %v, got %v", i, test.ok, ok)
		} else if ok && (first != test.first || last != test.last) {
			t.Errorf("%d) Expected span [%d, %d], got [%d, %d]",
				i, test.first, test.last, first, last)
		}
	}

	assert.InDelta(t, 0.075, g.Overlap(0.3, 0.45, 0, 0), 1e-15)
	assert.InDelta(t, 0.075, g.Overlap(0.3, 0.45, 1, 0), 1e-15)
}

func TestGridPixel(t *testing.T) {
	g := NewGrid([2]float64{0, 0}, [2]float64{0.1, 0.1}, [2]int{10, 10})

	table := []struct {
		x  float64
		i  int
		ok bool
	}{
		{0, 0, true},
		{0.05, 0, true},
		{0.15, 1, true},
		{0.999, 9, true},
		{1, -1, false},
		{-0.01, -1, false},
	}

	for i, test := range table {
		px, ok := g.Pixel(test.x, 0)
		if ok != test.ok || px != test.i {
			t.Errorf("%d) Expected (%d, %v), got (%d, %v)",
				i, test.i, test.ok, px, ok)
		}
	}
}
