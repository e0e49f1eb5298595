package geom

import (
	"math"
)

// Range is a half-open interval [Lo, Hi).
type Range struct {
	Lo, Hi float64
}

// Width returns Hi - Lo.
func (r Range) Width() float64 { return r.Hi - r.Lo }

// Contains returns true if x is in [Lo, Hi).
func (r Range) Contains(x float64) bool { return x >= r.Lo && x < r.Hi }

// Overlap returns the length of the intersection of [lo, hi] with r.
func (r Range) Overlap(lo, hi float64) float64 {
	if lo < r.Lo {
		lo = r.Lo
	}
	if hi > r.Hi {
		hi = r.Hi
	}
	if hi <= lo {
		return 0
	}
	return hi - lo
}

// Grid is a uniform two dimensional pixel grid laid over the image plane.
// Pixel (i, j) covers [Origin[0] + i*PixelWidth[0], ...) and is stored at
// flat index i*Width[1] + j.
type Grid struct {
	Origin     [2]float64
	PixelWidth [2]float64
	Width      [2]int
	Area       int

	uBounds [2]float64
}

// NewGrid returns a new Grid instance.
func NewGrid(origin, pixelWidth [2]float64, width [2]int) *Grid {
	g := &Grid{}
	g.Init(origin, pixelWidth, width)
	return g
}

// Init initializes a Grid instance.
func (g *Grid) Init(origin, pixelWidth [2]float64, width [2]int) {
	g.Origin = origin
	g.PixelWidth = pixelWidth
	g.Width = width
	g.Area = width[0] * width[1]

	for k := 0; k < 2; k++ {
		g.uBounds[k] = origin[k] + float64(width[k])*pixelWidth[k]
	}
}

// Idx returns the flat index of pixel (i, j).
func (g *Grid) Idx(i, j int) int { return i*g.Width[1] + j }

// IdxCheck returns an index and true if the given pixel is on the grid and
// false otherwise.
func (g *Grid) IdxCheck(i, j int) (idx int, ok bool) {
	if !g.BoundsCheck(i, j) {
		return -1, false
	}
	return g.Idx(i, j), true
}

// BoundsCheck returns true if pixel (i, j) is on the grid.
func (g *Grid) BoundsCheck(i, j int) bool {
	return i >= 0 && j >= 0 && i < g.Width[0] && j < g.Width[1]
}

// Coords returns the pixel coordinates of a flat index.
func (g *Grid) Coords(idx int) (i, j int) {
	return idx / g.Width[1], idx % g.Width[1]
}

// Range returns the extent of the grid along dimension k.
func (g *Grid) Range(k int) Range {
	return Range{g.Origin[k], g.uBounds[k]}
}

// Extent returns [xmin, xmax, ymin, ymax] of the grid.
func (g *Grid) Extent() [4]float64 {
	return [4]float64{g.Origin[0], g.uBounds[0], g.Origin[1], g.uBounds[1]}
}

// Edge returns the lower edge of pixel column i along dimension k. Edge(W, k)
// is the upper edge of the grid.
func (g *Grid) Edge(i, k int) float64 {
	if i == g.Width[k] {
		return g.uBounds[k]
	}
	return g.Origin[k] + float64(i)*g.PixelWidth[k]
}

// Span returns the first and last pixels along dimension k which overlap the
// segment [lo, hi]. ok is false if the segment misses the grid or has zero
// length.
func (g *Grid) Span(lo, hi float64, k int) (first, last int, ok bool) {
	if hi <= g.Origin[k] || lo >= g.uBounds[k] || hi <= lo {
		return 0, -1, false
	}

	pw := g.PixelWidth[k]
	first = int(math.Floor((lo - g.Origin[k]) / pw))
	last = int(math.Ceil((hi-g.Origin[k])/pw)) - 1

	if first < 0 {
		first = 0
	}
	if last >= g.Width[k] {
		last = g.Width[k] - 1
	}
	return first, last, first <= last
}

// Overlap returns the length of the part of [lo, hi] which falls inside
// pixel column i along dimension k.
func (g *Grid) Overlap(lo, hi float64, i, k int) float64 {
	return Range{g.Edge(i, k), g.Edge(i+1, k)}.Overlap(lo, hi)
}

// Pixel returns the column containing x along dimension k. ok is false if
// x is outside [Origin, Origin + Width*PixelWidth).
func (g *Grid) Pixel(x float64, k int) (i int, ok bool) {
	if x < g.Origin[k] || x >= g.uBounds[k] {
		return -1, false
	}
	i = int((x - g.Origin[k]) / g.PixelWidth[k])
	if i >= g.Width[k] {
		i = g.Width[k] - 1
	}
	return i, true
}
