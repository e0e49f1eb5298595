package goramses

import (
	"math"

	"github.com/phil-mansfield/goramses/data"
	"github.com/phil-mansfield/goramses/density"
	"github.com/phil-mansfield/goramses/geom"
	"github.com/phil-mansfield/goramses/units"
)

// Box is the geometry shared by every map in a single projection. All
// coordinates are fractions of the box length.
type Box struct {
	Dir              geom.Axis
	IDim, JDim, KDim int

	// Ranges are the selected intervals along x, y and z.
	Ranges [3]geom.Range
	Center [3]float64
	Grid   *geom.Grid

	Lmin, Lmax int
	Boxlen     float64
	Flat       bool
}

// newBox normalizes the ranges, center, slab and resolution of req. lmin and
// lmax are the coarsest and finest levels present in the table.
func newBox(info *data.Info, lmin, lmax int, req *Request) (*Box, error) {
	b := &Box{Boxlen: info.Boxlen, Flat: info.Ndim == 2, Lmin: lmin}

	if err := b.setDirection(req); err != nil {
		return nil, err
	}
	if err := b.setLevels(lmax, req); err != nil {
		return nil, err
	}
	if err := b.setRanges(info, req); err != nil {
		return nil, err
	}
	if err := b.setGrid(info, req); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Box) setDirection(req *Request) error {
	dir := req.dir
	if !dir.Valid() {
		return errorf(ErrDirection, "direction %d is not x, y or z", int(dir))
	}

	if req.plane != "" {
		normal, err := geom.ParsePlane(req.plane)
		if err != nil {
			return errorf(ErrDirection, "%s", err.Error())
		}
		if req.dirSet && normal != dir {
			return errorf(ErrDirection,
				"plane '%s' is not normal to direction %s", req.plane, dir)
		}
		dir = normal
	}

	if b.Flat && dir != Z {
		return errorf(ErrDirection,
			"2D simulations can only be projected along z, not %s", dir)
	}

	b.Dir = dir
	b.IDim, b.JDim = dir.Plane()
	b.KDim = int(dir)
	return nil
}

func (b *Box) setLevels(lmax int, req *Request) error {
	b.Lmax = lmax
	if req.lmaxSet {
		if req.lmax < 1 {
			return errorf(ErrLevel, "lmax = %d must be at least 1", req.lmax)
		}
		if req.lmax < b.Lmin {
			return errorf(ErrLevel, "lmax = %d is below lmin = %d",
				req.lmax, b.Lmin)
		}
		b.Lmax = req.lmax
	}
	return nil
}

// toBox converts a length in the named unit into a box fraction.
func toBox(info *data.Info, unit string, x float64) (float64, error) {
	if unit == "" || unit == BoxUnit {
		return x, nil
	}
	code, err := units.ToCode(info.Scales(), units.Length, unit, x)
	if err != nil {
		return 0, err
	}
	return code / info.Boxlen, nil
}

func (b *Box) setRanges(info *data.Info, req *Request) error {
	if req.centerSet {
		for k := 0; k < 3; k++ {
			c, err := toBox(info, req.centerUnit, req.center[k])
			if err != nil {
				return err
			}
			if !finite(c) {
				return errorf(ErrRange, "center %v is not finite", req.center)
			}
			b.Center[k] = c
		}
	} else {
		b.Center = [3]float64{0.5, 0.5, 0.5}
	}

	for k := 0; k < 3; k++ {
		b.Ranges[k] = geom.Range{Lo: 0, Hi: 1}
		if !req.rangeSet[k] {
			continue
		}

		r, err := b.userRange(info, req, req.ranges[k][0], req.ranges[k][1], k)
		if err != nil {
			return err
		}
		b.Ranges[k] = r
	}

	if req.slabSet {
		if !finite(req.slabPos, req.slabThickness) {
			return errorf(ErrRange, "slab at %g with thickness %g is not finite",
				req.slabPos, req.slabThickness)
		}
		if req.slabThickness <= 0 {
			return errorf(ErrRange, "slab thickness %g must be positive",
				req.slabThickness)
		}
		h := req.slabThickness / 2
		r, err := b.userRange(info, req, req.slabPos-h, req.slabPos+h, b.KDim)
		if err != nil {
			return err
		}
		b.Ranges[b.KDim] = r
	}

	return nil
}

func (b *Box) userRange(info *data.Info, req *Request, lo, hi float64, k int) (geom.Range, error) {
	name := geom.Axis(k).String()
	if !finite(lo, hi) {
		return geom.Range{}, errorf(ErrRange,
			"%srange = [%g, %g] is not finite", name, lo, hi)
	}
	if lo >= hi {
		return geom.Range{}, errorf(ErrRange,
			"%srange = [%g, %g] has lo >= hi", name, lo, hi)
	}

	var err error
	if lo, err = toBox(info, req.rangeUnit, lo); err != nil {
		return geom.Range{}, err
	}
	if hi, err = toBox(info, req.rangeUnit, hi); err != nil {
		return geom.Range{}, err
	}

	if req.centerSet {
		lo, hi = lo+b.Center[k], hi+b.Center[k]
	}
	if !finite(lo, hi) {
		return geom.Range{}, errorf(ErrRange,
			"%srange = [%g, %g] overflows in box units", name, lo, hi)
	}
	return geom.Range{Lo: lo, Hi: hi}, nil
}

func (b *Box) setGrid(info *data.Info, req *Request) error {
	set := 0
	for _, ok := range []bool{req.resSet, req.pixelsSet, req.pixelSizeSet} {
		if ok {
			set++
		}
	}
	if set > 1 {
		return errorf(ErrResolution,
			"only one of res, pixels and pixel size may be given")
	}

	extent := [2]float64{
		b.Ranges[b.IDim].Width(), b.Ranges[b.JDim].Width(),
	}
	var width [2]int

	switch {
	case req.resSet:
		if req.res < 1 {
			return errorf(ErrResolution, "res = %d must be positive", req.res)
		}
		width = [2]int{req.res, req.res}
	case req.pixelsSet:
		if req.pixels[0] < 1 || req.pixels[1] < 1 {
			return errorf(ErrResolution, "pixels = %v must be positive",
				req.pixels)
		}
		width = req.pixels
	case req.pixelSizeSet:
		for k := 0; k < 2; k++ {
			if !finite(req.pixelSize[k]) || req.pixelSize[k] <= 0 {
				return errorf(ErrResolution, "pixel size %v must be positive",
					req.pixelSize)
			}
			unit := req.pixelSizeUnit
			if unit == "" {
				unit = req.rangeUnit
			}
			dx, err := toBox(info, unit, req.pixelSize[k])
			if err != nil {
				return err
			}
			if !finite(dx) || dx <= 0 {
				return errorf(ErrResolution, "pixel size %g %s is not finite",
					req.pixelSize[k], unit)
			}
			width[k] = int(math.Round(extent[k] / dx))
			if width[k] < 1 {
				return errorf(ErrResolution,
					"pixel size %g %s is larger than the extent",
					req.pixelSize[k], unit)
			}
		}
	default:
		for k := 0; k < 2; k++ {
			width[k] = int(math.Round(math.Ldexp(extent[k], b.Lmax)))
			if width[k] < 1 {
				width[k] = 1
			}
		}
	}

	b.Grid = geom.NewGrid(
		[2]float64{b.Ranges[b.IDim].Lo, b.Ranges[b.JDim].Lo},
		[2]float64{extent[0] / float64(width[0]), extent[1] / float64(width[1])},
		width,
	)
	return nil
}

// selectCells returns which rows of tab have centers inside the ranges and
// levels no higher than Lmax.
func (b *Box) selectCells(tab *data.CellTable, mask []bool) []bool {
	sel := make([]bool, tab.Len())
	for i := range sel {
		if (mask != nil && !mask[i]) || tab.Level[i] > b.Lmax {
			continue
		}
		sel[i] = b.contains(func(k int) float64 { return tab.Center(i, k) })
	}
	return sel
}

// selectParticles is selectCells for particles. Rows without levels are
// never cut by Lmax.
func (b *Box) selectParticles(tab *data.ParticleTable, mask []bool) []bool {
	sel := make([]bool, tab.Len())
	for i := range sel {
		if mask != nil && !mask[i] {
			continue
		}
		if tab.Level != nil && tab.Level[i] > b.Lmax {
			continue
		}
		sel[i] = b.contains(func(k int) float64 {
			return tab.Coord(i, k) / b.Boxlen
		})
	}
	return sel
}

func (b *Box) contains(x func(k int) float64) bool {
	dims := 3
	if b.Flat {
		dims = 2
	}
	for k := 0; k < dims; k++ {
		if !b.Ranges[k].Contains(x(k)) {
			return false
		}
	}
	return true
}

func (b *Box) cellGeometry(tab *data.CellTable) *density.CellGeometry {
	geo := &density.CellGeometry{Level: tab.Level, Flat: b.Flat}
	switch b.IDim {
	case 0:
		geo.I = tab.Cx
	case 1:
		geo.I = tab.Cy
	}
	switch b.JDim {
	case 1:
		geo.J = tab.Cy
	case 2:
		geo.J = tab.Cz
	}
	return geo
}

func (b *Box) particleGeometry(tab *data.ParticleTable) *density.ParticleGeometry {
	n := tab.Len()
	geo := &density.ParticleGeometry{
		I: make([]float64, n), J: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		geo.I[i] = tab.Coord(i, b.IDim) / b.Boxlen
		geo.J[i] = tab.Coord(i, b.JDim) / b.Boxlen
	}
	return geo
}

func finite(xs ...float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
