package density

import (
	"math"

	"github.com/phil-mansfield/goramses/geom"
)

// CellGeometry gives the position of every cell in the image plane. I and J
// are grid indices along the image axes at the cell's own level.
type CellGeometry struct {
	Level []int
	I, J  []int
	// Flat cells come from 2D simulations and have unit depth.
	Flat bool
}

type cellInterpolator struct {
	g    *geom.Grid
	geo  *CellGeometry
	mode Mode
	val  Field
	wt   Field
}

// Cells returns an Interpolator which deposits cells with exact
// area-weighting. A cell covering the square [I, I+1]x[J, J+1]/2^level adds
// to every pixel it overlaps in proportion to the overlap area A:
//
//	Sum, intensive:  value * A * depth
//	Sum, extensive:  value * A / area
//	Mean:            value * w, with weight w
//
// where w is A * depth by default, weight * A / area for an extensive
// weighting field and weight * A * depth for an intensive one. All lengths
// are in box-fraction units.
func Cells(g *geom.Grid, geo *CellGeometry, mode Mode, val, weight Field) Interpolator {
	return &cellInterpolator{g, geo, mode, val, weight}
}

func (c *cellInterpolator) Interpolate(buf *Buffer, level int, rows []int) {
	g := c.g
	size := math.Ldexp(1, -level)
	area := size * size
	depth := size
	if c.geo.Flat {
		depth = 1
	}

	num, wt := buf.Num.Elements, buf.Weight.Elements

	for _, r := range rows {
		numA, wtA, ok := c.perArea(r, depth, area)
		if !ok {
			continue
		}

		iLo := float64(c.geo.I[r]) * size
		jLo := float64(c.geo.J[r]) * size
		iHi, jHi := iLo+size, jLo+size

		i0, i1, ok := g.Span(iLo, iHi, 0)
		if !ok {
			continue
		}
		j0, j1, ok := g.Span(jLo, jHi, 1)
		if !ok {
			continue
		}

		if i0 == i1 && j0 == j1 {
			A := g.Overlap(iLo, iHi, i0, 0) * g.Overlap(jLo, jHi, j0, 1)
			if A > 0 {
				idx := g.Idx(i0, j0)
				num[idx] += numA * A
				wt[idx] += wtA * A
				buf.deposited(level)
			}
			continue
		}

		hit := false
		for i := i0; i <= i1; i++ {
			ovI := g.Overlap(iLo, iHi, i, 0)
			if ovI <= 0 {
				continue
			}
			row := g.Idx(i, 0)
			for j := j0; j <= j1; j++ {
				A := ovI * g.Overlap(jLo, jHi, j, 1)
				if A <= 0 {
					continue
				}
				num[row+j] += numA * A
				wt[row+j] += wtA * A
				hit = true
			}
		}
		if hit {
			buf.deposited(level)
		}
	}
}

// perArea returns the numerator and weight contributed per unit of overlap
// area by row r. ok is false for rows which must be skipped.
func (c *cellInterpolator) perArea(r int, depth, area float64) (numA, wtA float64, ok bool) {
	v := c.val.Values[r]
	if math.IsNaN(v) {
		return 0, 0, false
	}

	if c.mode == Sum {
		if c.val.Extensive {
			return v / area, depth, true
		}
		return v * depth, depth, true
	}

	wtA = depth
	if c.wt.Values != nil {
		w := c.wt.Values[r]
		if math.IsNaN(w) || w <= 0 {
			return 0, 0, false
		}
		if c.wt.Extensive {
			wtA = w / area
		} else {
			wtA = w * depth
		}
	}
	return v * wtA, wtA, true
}
