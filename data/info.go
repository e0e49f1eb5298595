/*package data holds the in-memory tables of AMR cells and particles that the
projection engine reads, along with the simulation metadata needed to give
them physical meaning.
*/
package data

import (
	"errors"
	"fmt"
	"math"

	"github.com/phil-mansfield/goramses/units"
)

// ErrTable is returned when a table or its metadata is malformed.
var ErrTable = errors.New("malformed table")

const defaultGamma = 5.0 / 3

// Info is the subset of a RAMSES info file used by the analysis code. The
// unit scales are in cgs.
type Info struct {
	Boxlen             float64
	Levelmin, Levelmax int
	Ndim               int

	Time, Aexp          float64
	H0, OmegaM, OmegaL  float64
	UnitL, UnitD, UnitT float64
	Gamma               float64
}

// DefaultInfo returns metadata for a unit box in code units.
func DefaultInfo() *Info {
	return &Info{
		Boxlen: 1, Ndim: 3, Aexp: 1,
		UnitL: 1, UnitD: 1, UnitT: 1,
		Gamma: defaultGamma,
	}
}

// Check returns an error if the metadata cannot describe a simulation.
func (info *Info) Check() error {
	if info.Boxlen <= 0 {
		return fmt.Errorf("%w: boxlen must be positive, but is %g",
			ErrTable, info.Boxlen)
	} else if info.UnitL <= 0 || info.UnitD <= 0 || info.UnitT <= 0 {
		return fmt.Errorf(
			"%w: unit scales must be positive, got unit_l = %g, "+
				"unit_d = %g, unit_t = %g",
			ErrTable, info.UnitL, info.UnitD, info.UnitT,
		)
	} else if info.Ndim != 2 && info.Ndim != 3 {
		return fmt.Errorf("%w: ndim must be 2 or 3, but is %d",
			ErrTable, info.Ndim)
	} else if info.Levelmax > 0 && info.Levelmin > info.Levelmax {
		return fmt.Errorf("%w: levelmin = %d is above levelmax = %d",
			ErrTable, info.Levelmin, info.Levelmax)
	}
	return nil
}

// Scales returns the code unit scales.
func (info *Info) Scales() units.Scales {
	return units.Scales{Length: info.UnitL, Density: info.UnitD, Time: info.UnitT}
}

// UnitV returns the velocity unit in cm/s.
func (info *Info) UnitV() float64 { return info.UnitL / info.UnitT }

// UnitM returns the mass unit in g.
func (info *Info) UnitM() float64 {
	return info.UnitD * info.UnitL * info.UnitL * info.UnitL
}

// UnitP returns the pressure unit in Ba.
func (info *Info) UnitP() float64 {
	v := info.UnitV()
	return info.UnitD * v * v
}

// AdiabaticIndex returns gamma, falling back to a monatomic gas.
func (info *Info) AdiabaticIndex() float64 {
	if info.Gamma <= 0 {
		return defaultGamma
	}
	return info.Gamma
}

// CellSize returns the width of a cell at the given level in code length.
func (info *Info) CellSize(level int) float64 {
	return info.Boxlen * math.Ldexp(1, -level)
}

// CellVolume returns the volume of a cell at the given level in code units.
// In 2D simulations this is an area.
func (info *Info) CellVolume(level int) float64 {
	dx := info.CellSize(level)
	if info.Ndim == 2 {
		return dx * dx
	}
	return dx * dx * dx
}
