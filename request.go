package goramses

import (
	"github.com/sirupsen/logrus"

	"github.com/phil-mansfield/goramses/density"
	"github.com/phil-mansfield/goramses/geom"
	"github.com/phil-mansfield/goramses/vars"
)

// Mode is the aggregation rule applied when several rows land in one pixel.
type Mode = density.Mode

// Aggregation modes.
const (
	Sum  = density.Sum
	Mean = density.Mean
)

// Projection directions.
const (
	X = geom.X
	Y = geom.Y
	Z = geom.Z
)

// BoxUnit is the range unit for box-fraction coordinates in [0, 1].
const BoxUnit = "box"

// Var is one requested map.
type Var struct {
	Name, Unit string
	Mode       Mode
}

// Request is a complete description of one projection. Build it with
// NewRequest and don't modify it afterwards.
type Request struct {
	names []string
	units []string
	mode  Mode
	modes []Mode

	dir       geom.Axis
	dirSet    bool
	plane     string
	res       int
	resSet    bool
	pixels    [2]int
	pixelsSet bool

	pixelSize     [2]float64
	pixelSizeUnit string
	pixelSizeSet  bool

	ranges     [3][2]float64
	rangeSet   [3]bool
	rangeUnit  string
	center     [3]float64
	centerSet  bool
	centerUnit string

	lmax    int
	lmaxSet bool

	slabPos, slabThickness float64
	slabSet                bool

	mask       []bool
	weight     string
	weightUnit string

	workers  int
	log      logrus.FieldLogger
	progress func(done, total int)
}

// Option configures a Request.
type Option func(*Request)

// NewRequest returns a Request for the named variables. Alias names like
// "velocity" are expanded when the request is run.
func NewRequest(names []string, opts ...Option) *Request {
	req := &Request{
		names:      append([]string{}, names...),
		mode:       Sum,
		dir:        Z,
		rangeUnit:  BoxUnit,
		centerUnit: BoxUnit,
	}
	for _, opt := range opts {
		opt(req)
	}
	return req
}

// Units sets the output unit symbols. A single symbol applies to every
// variable. Otherwise give either one symbol per requested name, in which
// case an alias like "velocity" passes its symbol to every member, or one per
// expanded variable.
func Units(symbols ...string) Option {
	return func(r *Request) { r.units = append([]string{}, symbols...) }
}

// WithMode sets the aggregation mode of every variable. The default is Sum.
func WithMode(m Mode) Option {
	return func(r *Request) { r.mode = m }
}

// Modes sets the aggregation modes. They are matched to variables the same
// way as Units.
func Modes(ms ...Mode) Option {
	return func(r *Request) { r.modes = append([]Mode{}, ms...) }
}

// Direction sets the axis which is integrated out. The default is Z.
func Direction(a geom.Axis) Option {
	return func(r *Request) { r.dir, r.dirSet = a, true }
}

// Plane sets the image plane by name ("xy", "xz", "yz"). It must agree with
// Direction if both are given.
func Plane(name string) Option {
	return func(r *Request) { r.plane = name }
}

// Res requests n pixels along both image axes.
func Res(n int) Option {
	return func(r *Request) { r.res, r.resSet = n, true }
}

// Pixels requests an image with shape (a, b).
func Pixels(a, b int) Option {
	return func(r *Request) { r.pixels, r.pixelsSet = [2]int{a, b}, true }
}

// PixelSize requests pixels of (roughly) the given physical size. The
// resolution along each axis is the extent divided by the size, rounded.
func PixelSize(dx, dy float64, unit string) Option {
	return func(r *Request) {
		r.pixelSize, r.pixelSizeUnit, r.pixelSizeSet = [2]float64{dx, dy}, unit, true
	}
}

func axisRange(dim int, lo, hi float64) Option {
	return func(r *Request) {
		r.ranges[dim], r.rangeSet[dim] = [2]float64{lo, hi}, true
	}
}

// XRange limits the projection to lo <= x < hi.
func XRange(lo, hi float64) Option { return axisRange(0, lo, hi) }

// YRange limits the projection to lo <= y < hi.
func YRange(lo, hi float64) Option { return axisRange(1, lo, hi) }

// ZRange limits the projection to lo <= z < hi.
func ZRange(lo, hi float64) Option { return axisRange(2, lo, hi) }

// RangeUnit sets the unit of ranges, slabs and pixel sizes given without a
// unit. BoxUnit (the default) means fractions of the box length.
func RangeUnit(unit string) Option {
	return func(r *Request) { r.rangeUnit = unit }
}

// Center makes every range relative to (x, y, z).
func Center(x, y, z float64) Option {
	return func(r *Request) { r.center, r.centerSet = [3]float64{x, y, z}, true }
}

// BoxCenter makes every range relative to the center of the box.
func BoxCenter() Option {
	return func(r *Request) {
		r.center, r.centerSet = [3]float64{0.5, 0.5, 0.5}, true
		r.centerUnit = BoxUnit
	}
}

// CenterUnit sets the unit of Center.
func CenterUnit(unit string) Option {
	return func(r *Request) { r.centerUnit = unit }
}

// Lmax ignores cells above level l.
func Lmax(l int) Option {
	return func(r *Request) { r.lmax, r.lmaxSet = l, true }
}

// Slab restricts the depth axis to a slab of the given thickness centered
// on pos. It replaces any range given for that axis.
func Slab(pos, thickness float64) Option {
	return func(r *Request) {
		r.slabPos, r.slabThickness, r.slabSet = pos, thickness, true
	}
}

// Mask excludes every row i with m[i] false. len(m) must match the table.
func Mask(m []bool) Option {
	return func(r *Request) { r.mask = m }
}

// Weighting sets the variable used to weight Mean maps. It has no effect on
// Sum maps.
func Weighting(name, unit string) Option {
	return func(r *Request) { r.weight, r.weightUnit = name, unit }
}

// Workers sets the number of goroutines used by each deposition. Values
// below one mean runtime.NumCPU().
func Workers(n int) Option {
	return func(r *Request) { r.workers = n }
}

// Logger sets the logger. The default is logrus.StandardLogger().
func Logger(l logrus.FieldLogger) Option {
	return func(r *Request) { r.log = l }
}

// Progress registers a callback which is called from the calling goroutine
// after every finished map.
func Progress(f func(done, total int)) Option {
	return func(r *Request) { r.progress = f }
}

// Vars returns the expanded list of requested maps, with their units and
// modes.
func (r *Request) Vars() ([]Var, error) {
	names, origin := vars.ExpandIndex(r.names)
	if len(names) == 0 {
		return nil, errorf(ErrUnknownVariable, "no variables requested")
	}

	unitIdx, ok := r.matchList(len(r.units), names, origin)
	if !ok {
		return nil, errorf(ErrUnknownUnit,
			"%d units given for the variables %v (%d after expansion)",
			len(r.units), r.names, len(names))
	}
	modeIdx, ok := r.matchList(len(r.modes), names, origin)
	if !ok {
		return nil, errorf(ErrMode,
			"%d modes given for the variables %v (%d after expansion)",
			len(r.modes), r.names, len(names))
	}

	out := make([]Var, len(names))
	for i, name := range names {
		out[i] = Var{Name: name, Mode: r.mode}
		if unitIdx != nil {
			out[i].Unit = r.units[unitIdx[i]]
		}
		if modeIdx != nil {
			out[i].Mode = r.modes[modeIdx[i]]
		}
		if out[i].Mode != Sum && out[i].Mode != Mean {
			return nil, errorf(ErrMode, "variable '%s' has mode %s",
				name, out[i].Mode)
		}
	}
	return out, nil
}

// matchList returns, for each expanded variable, the index into a list of n
// units or modes. The list may have one entry, one per requested name or
// one per expanded variable. idx is nil if n is zero.
func (r *Request) matchList(n int, names []string, origin []int) (idx []int, ok bool) {
	if n == 0 {
		return nil, true
	}

	idx = make([]int, len(names))
	switch n {
	case 1:
	case len(r.names):
		copy(idx, origin)
	case len(names):
		for i := range idx {
			idx[i] = i
		}
	default:
		return nil, false
	}
	return idx, true
}
