/*package vars resolves variable names such as "rho", "T" or "mass" into
per-row value columns in a requested unit.

Every known variable lives in a registry built once at init. A Variable
records its physical quantity, whether it is extensive (mass-like) and a
function which fills a column from a Source. Fields present in a table but
absent from the registry resolve as dimensionless passthroughs.
*/
package vars

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/phil-mansfield/goramses/units"
)

// ErrUnknownVariable is returned when a name is neither registered nor a
// field of the table, or when a registered variable is missing the fields it
// is computed from.
var ErrUnknownVariable = errors.New("unknown variable")

// Kind says how a variable's values are obtained.
type Kind int

const (
	// Raw variables are table fields.
	Raw Kind = iota
	// Derived variables are arithmetic on raw fields.
	Derived
	// Geometric variables are computed from positions and levels.
	Geometric
)

func (k Kind) String() string {
	switch k {
	case Raw:
		return "raw"
	case Derived:
		return "derived"
	case Geometric:
		return "geometric"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Variable describes one resolvable quantity.
type Variable struct {
	Name     string
	Kind     Kind
	Quantity units.Quantity
	// Extensive variables are totals carried by a cell (mass, energy)
	// rather than densities sampled at it.
	Extensive bool

	eval func(src Source, out []float64) error
}

var registry = map[string]*Variable{}

func register(name string, kind Kind, q units.Quantity, ext bool,
	eval func(src Source, out []float64) error) {
	registry[name] = &Variable{name, kind, q, ext, eval}
}

func raw(name string, q units.Quantity) {
	register(name, Raw, q, false, field(name))
}

func init() {
	raw("rho", units.Density)
	raw("vx", units.Velocity)
	raw("vy", units.Velocity)
	raw("vz", units.Velocity)
	raw("p", units.Pressure)
	raw("epot", units.SpecificEnergy)
	raw("ax", units.Acceleration)
	raw("ay", units.Acceleration)
	raw("az", units.Acceleration)
	raw("age", units.Time)

	register("mass", Derived, units.Mass, true, evalMass)
	register("v", Derived, units.Velocity, false, magnitude("v"))
	register("a", Derived, units.Acceleration, false, magnitude("a"))
	register("cs", Derived, units.Velocity, false, evalSoundSpeed)
	register("T", Derived, units.Temperature, false, evalTemperature)
	register("mach", Derived, units.Dimensionless, false, evalMach)
	register("ekin", Derived, units.Energy, true, evalKinetic)

	register("x", Geometric, units.Length, false, position(0))
	register("y", Geometric, units.Length, false, position(1))
	register("z", Geometric, units.Length, false, position(2))
	register("cellsize", Geometric, units.Length, false, evalCellSize)
	register("volume", Geometric, units.Volume, true, evalVolume)
	register("level", Geometric, units.Dimensionless, false, evalLevel)
}

// Names returns the registered variable names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the Variable that name refers to for src. Registered names
// take precedence over table fields.
func Lookup(src Source, name string) (*Variable, error) {
	if v, ok := registry[name]; ok {
		return v, nil
	}
	if _, ok := src.Field(name); ok {
		return &Variable{name, Raw, units.Dimensionless, false, field(name)}, nil
	}
	return nil, fmt.Errorf("%w '%s'", ErrUnknownVariable, name)
}

// Resolve returns one value of the named variable per row of src, in the
// unit named by symbol. An empty symbol or units.Standard leaves values in
// code units.
func Resolve(src Source, name, symbol string) ([]float64, error) {
	v, err := Lookup(src, name)
	if err != nil {
		return nil, err
	}
	return v.Resolve(src, symbol)
}

// Resolve computes v for every row of src in the unit named by symbol.
func (v *Variable) Resolve(src Source, symbol string) ([]float64, error) {
	f, err := units.Factor(src.Info().Scales(), v.Quantity, symbol)
	if err != nil {
		return nil, fmt.Errorf("variable '%s': %w", v.Name, err)
	}

	out := make([]float64, src.Len())
	if err := v.eval(src, out); err != nil {
		return nil, err
	}
	if f != 1 {
		floats.Scale(f, out)
	}
	return out, nil
}

func need(src Source, variable, name string) ([]float64, error) {
	col, ok := src.Field(name)
	if !ok {
		return nil, fmt.Errorf("%w '%s': table has no '%s' field",
			ErrUnknownVariable, variable, name)
	}
	return col, nil
}

func field(name string) func(Source, []float64) error {
	return func(src Source, out []float64) error {
		col, err := need(src, name, name)
		if err != nil {
			return err
		}
		copy(out, col)
		return nil
	}
}

// components returns the x, y and (in 3D) z columns of a vector field.
func components(src Source, variable, prefix string) ([][]float64, error) {
	dims := []string{"x", "y", "z"}
	if src.Info().Ndim == 2 {
		dims = dims[:2]
	}

	cols := make([][]float64, len(dims))
	for k, d := range dims {
		col, err := need(src, variable, prefix+d)
		if err != nil {
			return nil, err
		}
		cols[k] = col
	}
	return cols, nil
}

func magnitude(prefix string) func(Source, []float64) error {
	return func(src Source, out []float64) error {
		cols, err := components(src, prefix, prefix)
		if err != nil {
			return err
		}
		for i := range out {
			sum := 0.0
			for _, col := range cols {
				sum += col[i] * col[i]
			}
			out[i] = math.Sqrt(sum)
		}
		return nil
	}
}

func evalSoundSpeed(src Source, out []float64) error {
	rho, err := need(src, "cs", "rho")
	if err != nil {
		return err
	}
	p, err := need(src, "cs", "p")
	if err != nil {
		return err
	}

	gamma := src.Info().AdiabaticIndex()
	for i := range out {
		out[i] = math.Sqrt(gamma * p[i] / rho[i])
	}
	return nil
}

// evalTemperature gives T/mu in Kelvin.
func evalTemperature(src Source, out []float64) error {
	rho, err := need(src, "T", "rho")
	if err != nil {
		return err
	}
	p, err := need(src, "T", "p")
	if err != nil {
		return err
	}

	v := src.Info().UnitV() * 1e-2
	scale := v * v * units.HydrogenMass / units.Boltzmann
	for i := range out {
		out[i] = p[i] / rho[i] * scale
	}
	return nil
}

func evalMach(src Source, out []float64) error {
	if err := magnitude("v")(src, out); err != nil {
		return err
	}
	cs := make([]float64, len(out))
	if err := evalSoundSpeed(src, cs); err != nil {
		return err
	}
	floats.Div(out, cs)
	return nil
}

// evalMass passes particle masses through and integrates cell densities.
func evalMass(src Source, out []float64) error {
	if col, ok := src.Field("mass"); ok {
		copy(out, col)
		return nil
	}

	rho, err := need(src, "mass", "rho")
	if err != nil {
		return err
	}
	if err := evalVolume(src, out); err != nil {
		return err
	}
	floats.Mul(out, rho)
	return nil
}

func evalKinetic(src Source, out []float64) error {
	if err := evalMass(src, out); err != nil {
		return err
	}
	v := make([]float64, len(out))
	if err := magnitude("v")(src, v); err != nil {
		return err
	}
	for i := range out {
		out[i] *= 0.5 * v[i] * v[i]
	}
	return nil
}

func position(dim int) func(Source, []float64) error {
	return func(src Source, out []float64) error {
		for i := range out {
			out[i] = src.Position(i, dim)
		}
		return nil
	}
}

func levels(src Source, variable string, f func(l int) float64,
	out []float64) error {
	for i := range out {
		l, ok := src.Level(i)
		if !ok {
			return fmt.Errorf("%w '%s': rows carry no refinement levels",
				ErrUnknownVariable, variable)
		}
		out[i] = f(l)
	}
	return nil
}

func evalCellSize(src Source, out []float64) error {
	return levels(src, "cellsize", src.Info().CellSize, out)
}

func evalVolume(src Source, out []float64) error {
	return levels(src, "volume", src.Info().CellVolume, out)
}

func evalLevel(src Source, out []float64) error {
	return levels(src, "level", func(l int) float64 { return float64(l) }, out)
}
