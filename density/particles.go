package density

import (
	"math"

	"github.com/phil-mansfield/goramses/geom"
)

// ParticleGeometry gives the position of every particle in the image plane
// in box-fraction units.
type ParticleGeometry struct {
	I, J []float64
}

type ngp struct {
	g    *geom.Grid
	geo  *ParticleGeometry
	mode Mode
	val  Field
	wt   Field
}

// NearestGridPoint returns an Interpolator which adds every particle to the
// single pixel containing it. Sum adds values directly. Mean weights each
// particle by one, or by the weighting field if one is given.
func NearestGridPoint(g *geom.Grid, geo *ParticleGeometry, mode Mode, val, weight Field) Interpolator {
	return &ngp{g, geo, mode, val, weight}
}

func (intr *ngp) Interpolate(buf *Buffer, level int, rows []int) {
	num, wt := buf.Num.Elements, buf.Weight.Elements

	for _, r := range rows {
		v := intr.val.Values[r]
		if math.IsNaN(v) {
			continue
		}

		i, ok := intr.g.Pixel(intr.geo.I[r], 0)
		if !ok {
			continue
		}
		j, ok := intr.g.Pixel(intr.geo.J[r], 1)
		if !ok {
			continue
		}

		w := 1.0
		if intr.wt.Values != nil {
			w = intr.wt.Values[r]
			if math.IsNaN(w) || w <= 0 {
				continue
			}
		}

		idx := intr.g.Idx(i, j)
		if intr.mode == Sum {
			num[idx] += v
		} else {
			num[idx] += v * w
		}
		wt[idx] += w
		buf.deposited(level)
	}
}
