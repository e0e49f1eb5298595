package goramses

import (
	"math"

	"github.com/ctessum/sparse"

	"github.com/phil-mansfield/goramses/geom"
)

// Map is a single projected image. Pixel (i, j) lies at position i along the
// first image axis and j along the second.
//
// The unit labels the variable, not the pixel. What a pixel holds depends on
// the mode:
//   - Sum, intensive variable (e.g. rho): the integral of the variable over
//     the pixel's column, with volumes in box fractions. Multiply by
//     boxlen^3 (boxlen^2 for 2D simulations) to get the integral in code
//     volume, so the pixel is a Unit times a code volume.
//   - Sum, extensive variable (e.g. mass): the total of the variable over
//     the rows overlapping the pixel, in Unit.
//   - Mean: the weighted mean in Unit, or NaN where nothing was deposited.
type Map struct {
	name, unit string
	mode       Mode
	maxLevel   int

	vals *sparse.DenseArray
}

// Name returns the variable name.
func (m *Map) Name() string { return m.name }

// Unit returns the unit symbol of the projected variable.
func (m *Map) Unit() string { return m.unit }

// Mode returns the aggregation mode.
func (m *Map) Mode() Mode { return m.mode }

// MaxLevel returns the finest level which deposited anything, or -1 if the
// map is empty.
func (m *Map) MaxLevel() int { return m.maxLevel }

// At returns pixel (i, j).
func (m *Map) At(i, j int) float64 { return m.vals.Get(i, j) }

// Shape returns the number of pixels along each image axis.
func (m *Map) Shape() [2]int { return [2]int{m.vals.Shape[0], m.vals.Shape[1]} }

// Values returns a copy of the pixel values.
func (m *Map) Values() *sparse.DenseArray {
	c := sparse.ZerosDense(append([]int(nil), m.vals.Shape...)...)
	copy(c.Elements, m.vals.Elements)
	return c
}

// Total returns the sum over all pixels, skipping NaNs.
func (m *Map) Total() float64 {
	sum := 0.0
	for _, x := range m.vals.Elements {
		if !math.IsNaN(x) {
			sum += x
		}
	}
	return sum
}

// FiniteFraction returns the fraction of pixels which are not NaN.
func (m *Map) FiniteFraction() float64 {
	n := 0
	for _, x := range m.vals.Elements {
		if !math.IsNaN(x) {
			n++
		}
	}
	return float64(n) / float64(len(m.vals.Elements))
}

// Bounds returns the smallest and largest non-NaN pixels. ok is false if
// every pixel is NaN.
func (m *Map) Bounds() (min, max float64, ok bool) {
	min, max = math.Inf(+1), math.Inf(-1)
	for _, x := range m.vals.Elements {
		if math.IsNaN(x) {
			continue
		}
		ok = true
		min, max = math.Min(min, x), math.Max(max, x)
	}
	return min, max, ok
}

// Result holds every map of one projection along with the geometry they
// share. Nothing in a Result changes after it is returned.
type Result struct {
	names []string
	maps  map[string]*Map
	box   Box
}

func newResult(box *Box, spaces []workspace) *Result {
	r := &Result{
		names: make([]string, len(spaces)),
		maps:  make(map[string]*Map, len(spaces)),
		box:   *box,
	}
	r.box.Grid = geom.NewGrid(box.Grid.Origin, box.Grid.PixelWidth, box.Grid.Width)

	for i := range spaces {
		w := &spaces[i]
		r.names[i] = w.v.Name
		r.maps[w.v.Name] = &Map{
			name:     w.v.Name,
			unit:     w.v.Unit,
			mode:     w.v.Mode,
			maxLevel: w.res.MaxLevel,
			vals:     w.res.Map,
		}
	}
	return r
}

// Map returns the named map, or nil if it wasn't requested.
func (r *Result) Map(name string) *Map { return r.maps[name] }

// Names returns the map names in request order.
func (r *Result) Names() []string { return append([]string{}, r.names...) }

// Len returns the number of maps.
func (r *Result) Len() int { return len(r.names) }

// ExtentBox returns [xmin, xmax, ymin, ymax] of the image in box fractions.
// x and y here are the first and second image axes.
func (r *Result) ExtentBox() [4]float64 { return r.box.Grid.Extent() }

// Extent returns the image extent in code length.
func (r *Result) Extent() [4]float64 {
	e := r.box.Grid.Extent()
	for k := range e {
		e[k] *= r.box.Boxlen
	}
	return e
}

// PixelSize returns the width of a pixel along both image axes in code
// length.
func (r *Result) PixelSize() [2]float64 {
	pw := r.box.Grid.PixelWidth
	return [2]float64{pw[0] * r.box.Boxlen, pw[1] * r.box.Boxlen}
}

// Resolution returns the number of pixels along both image axes.
func (r *Result) Resolution() [2]int { return r.box.Grid.Width }

// Ranges returns the selected x, y and z ranges in box fractions.
func (r *Result) Ranges() [3]geom.Range { return r.box.Ranges }

// Lmin returns the coarsest level in the table.
func (r *Result) Lmin() int { return r.box.Lmin }

// Lmax returns the level ceiling used for selection.
func (r *Result) Lmax() int { return r.box.Lmax }

// Direction returns the projection axis.
func (r *Result) Direction() geom.Axis { return r.box.Dir }

// Center returns the center used for relative ranges in box fractions. It is
// the box center if none was given.
func (r *Result) Center() [3]float64 { return r.box.Center }
