/*package units converts between RAMSES code units and named physical units.

Every physical unit is stored as a *unit.Unit holding its size in SI together
with its dimensions, so asking for a velocity in "Msol" fails instead of
silently returning a nonsense factor.
*/
package units

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ctessum/unit"
)

var (
	// ErrUnknownUnit is returned for symbols missing from the unit table.
	ErrUnknownUnit = errors.New("unknown unit")
	// ErrIncompatibleUnit is returned when a known symbol has the wrong
	// dimensions for the requested quantity.
	ErrIncompatibleUnit = errors.New("incompatible unit")
)

// Standard is the symbol for "leave values in code units".
const Standard = "standard"

// Quantity is the physical kind of a variable. It decides which code-unit
// scale applies to it.
type Quantity int

const (
	Dimensionless Quantity = iota
	Length
	Area
	Volume
	Mass
	Time
	Velocity
	Acceleration
	Density
	Pressure
	Temperature
	SpecificEnergy
	Energy
)

var quantityNames = []string{
	Dimensionless:  "dimensionless",
	Length:         "length",
	Area:           "area",
	Volume:         "volume",
	Mass:           "mass",
	Time:           "time",
	Velocity:       "velocity",
	Acceleration:   "acceleration",
	Density:        "density",
	Pressure:       "pressure",
	Temperature:    "temperature",
	SpecificEnergy: "specific energy",
	Energy:         "energy",
}

func (q Quantity) String() string {
	if q < 0 || int(q) >= len(quantityNames) {
		return fmt.Sprintf("Quantity(%d)", int(q))
	}
	return quantityNames[q]
}

// Physical constants in SI.
const (
	Parsec       = 3.08567758149e16
	AU           = 1.495978707e11
	LightYear    = 9.4607304725808e15
	SolarMass    = 1.98892e30
	Year         = 3.15576e7
	HydrogenMass = 1.6735575e-27
	Boltzmann    = 1.380649e-23
)

var (
	lengthDims       = unit.Dimensions{unit.LengthDim: 1}
	areaDims         = unit.Dimensions{unit.LengthDim: 2}
	volumeDims       = unit.Dimensions{unit.LengthDim: 3}
	massDims         = unit.Dimensions{unit.MassDim: 1}
	timeDims         = unit.Dimensions{unit.TimeDim: 1}
	velocityDims     = unit.Dimensions{unit.LengthDim: 1, unit.TimeDim: -1}
	accelerationDims = unit.Dimensions{unit.LengthDim: 1, unit.TimeDim: -2}
	densityDims      = unit.Dimensions{unit.MassDim: 1, unit.LengthDim: -3}
	pressureDims     = unit.Dimensions{
		unit.MassDim: 1, unit.LengthDim: -1, unit.TimeDim: -2,
	}
	temperatureDims    = unit.Dimensions{unit.TemperatureDim: 1}
	specificEnergyDims = unit.Dimensions{unit.LengthDim: 2, unit.TimeDim: -2}
	energyDims         = unit.Dimensions{
		unit.MassDim: 1, unit.LengthDim: 2, unit.TimeDim: -2,
	}
)

// table is built once and never written to afterwards.
var table = map[string]*unit.Unit{
	// length
	"m":   unit.New(1, lengthDims),
	"cm":  unit.New(1e-2, lengthDims),
	"km":  unit.New(1e3, lengthDims),
	"au":  unit.New(AU, lengthDims),
	"ly":  unit.New(LightYear, lengthDims),
	"pc":  unit.New(Parsec, lengthDims),
	"kpc": unit.New(1e3*Parsec, lengthDims),
	"Mpc": unit.New(1e6*Parsec, lengthDims),
	"Gpc": unit.New(1e9*Parsec, lengthDims),

	// area
	"m2":   unit.New(1, areaDims),
	"cm2":  unit.New(1e-4, areaDims),
	"pc2":  unit.New(Parsec*Parsec, areaDims),
	"kpc2": unit.New(1e6*Parsec*Parsec, areaDims),

	// volume
	"m3":   unit.New(1, volumeDims),
	"cm3":  unit.New(1e-6, volumeDims),
	"pc3":  unit.New(Parsec*Parsec*Parsec, volumeDims),
	"kpc3": unit.New(1e9*Parsec*Parsec*Parsec, volumeDims),

	// mass
	"kg":   unit.New(1, massDims),
	"g":    unit.New(1e-3, massDims),
	"Msol": unit.New(SolarMass, massDims),

	// time
	"s":   unit.New(1, timeDims),
	"yr":  unit.New(Year, timeDims),
	"kyr": unit.New(1e3*Year, timeDims),
	"Myr": unit.New(1e6*Year, timeDims),
	"Gyr": unit.New(1e9*Year, timeDims),

	// velocity
	"m_s":  unit.New(1, velocityDims),
	"cm_s": unit.New(1e-2, velocityDims),
	"km_s": unit.New(1e3, velocityDims),

	// acceleration
	"m_s2":  unit.New(1, accelerationDims),
	"cm_s2": unit.New(1e-2, accelerationDims),
	"km_s2": unit.New(1e3, accelerationDims),

	// density. nH counts hydrogen masses per cubic centimetre.
	"kg_m3":     unit.New(1, densityDims),
	"g_cm3":     unit.New(1e3, densityDims),
	"Msol_pc3":  unit.New(SolarMass/(Parsec*Parsec*Parsec), densityDims),
	"Msol_kpc3": unit.New(SolarMass/(1e9*Parsec*Parsec*Parsec), densityDims),
	"nH":        unit.New(HydrogenMass/1e-6, densityDims),

	// pressure. K_cm3 is P/k_B.
	"Pa":       unit.New(1, pressureDims),
	"Ba":       unit.New(0.1, pressureDims),
	"dyne_cm2": unit.New(0.1, pressureDims),
	"erg_cm3":  unit.New(0.1, pressureDims),
	"K_cm3":    unit.New(Boltzmann/1e-6, pressureDims),

	// temperature
	"K": unit.New(1, temperatureDims),

	// specific energy and gravitational potential
	"m2_s2":  unit.New(1, specificEnergyDims),
	"cm2_s2": unit.New(1e-4, specificEnergyDims),
	"km2_s2": unit.New(1e6, specificEnergyDims),
	"erg_g":  unit.New(1e-4, specificEnergyDims),

	// energy
	"J":   unit.New(1, energyDims),
	"erg": unit.New(1e-7, energyDims),
}

// Lookup returns the SI representation of a unit symbol.
func Lookup(symbol string) (*unit.Unit, bool) {
	u, ok := table[symbol]
	if !ok {
		return nil, false
	}
	return u.Clone(), true
}

// Symbols returns every known unit symbol in sorted order.
func Symbols() []string {
	out := make([]string, 0, len(table))
	for sym := range table {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// IsStandard returns true if symbol asks for code units.
func IsStandard(symbol string) bool {
	return symbol == "" || symbol == Standard
}

// Scales holds the three RAMSES scale factors (unit_l, unit_d, unit_t in
// cgs) from which every other code unit follows.
type Scales struct {
	Length, Density, Time float64
}

// Code returns one code unit of quantity q expressed in SI.
func (s Scales) Code(q Quantity) *unit.Unit {
	l, d, t := s.Length, s.Density, s.Time
	v := l / t

	// Everything below is in cgs until the final conversion factor.
	switch q {
	case Length:
		return unit.New(l*1e-2, lengthDims)
	case Area:
		return unit.New(l*l*1e-4, areaDims)
	case Volume:
		return unit.New(l*l*l*1e-6, volumeDims)
	case Mass:
		return unit.New(d*l*l*l*1e-3, massDims)
	case Time:
		return unit.New(t, timeDims)
	case Velocity:
		return unit.New(v*1e-2, velocityDims)
	case Acceleration:
		return unit.New(v/t*1e-2, accelerationDims)
	case Density:
		return unit.New(d*1e3, densityDims)
	case Pressure:
		return unit.New(d*v*v*0.1, pressureDims)
	case Temperature:
		return unit.New(1, temperatureDims)
	case SpecificEnergy:
		return unit.New(v*v*1e-4, specificEnergyDims)
	case Energy:
		return unit.New(d*l*l*l*v*v*1e-7, energyDims)
	}
	return unit.New(1, unit.Dimensions{})
}

// Factor returns the number which converts values of quantity q from code
// units into the unit named by symbol.
func Factor(s Scales, q Quantity, symbol string) (float64, error) {
	if IsStandard(symbol) {
		return 1, nil
	}

	u, ok := table[symbol]
	if !ok {
		return 0, fmt.Errorf("%w '%s'", ErrUnknownUnit, symbol)
	}

	code := s.Code(q)
	if !unit.DimensionsMatch(code, u) {
		return 0, fmt.Errorf(
			"%w: '%s' cannot express a %s", ErrIncompatibleUnit, symbol, q,
		)
	}

	return code.Value() / u.Value(), nil
}

// ToCode converts a value given in the unit named by symbol into code units.
func ToCode(s Scales, q Quantity, symbol string, x float64) (float64, error) {
	f, err := Factor(s, q, symbol)
	if err != nil {
		return 0, err
	}
	return x / f, nil
}
