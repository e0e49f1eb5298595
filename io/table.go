/*package io reads projection config files and the ASCII cell and particle
tables they point to.
*/
package io

import (
	"fmt"
	"math"

	"github.com/phil-mansfield/table"

	"github.com/phil-mansfield/goramses/data"
)

// ReadCellTable reads an ASCII table whose columns are
//     level cx cy cz field[0] field[1] ...
// The first four columns must hold integers.
func ReadCellTable(fname string, info *data.Info, fields []string) (*data.CellTable, error) {
	cols, err := readColumns(fname, 4+len(fields))
	if err != nil {
		return nil, err
	}

	tab := &data.CellTable{Info: info, Fields: map[string][]float64{}}
	ints := []*[]int{&tab.Level, &tab.Cx, &tab.Cy, &tab.Cz}
	names := []string{"level", "cx", "cy", "cz"}
	for k := range ints {
		*ints[k], err = toInts(fname, names[k], cols[k])
		if err != nil {
			return nil, err
		}
	}
	for k, name := range fields {
		tab.Fields[name] = cols[4+k]
	}

	if err := tab.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	return tab, nil
}

// ReadParticleTable reads an ASCII table whose columns are
//     x y z [level] field[0] field[1] ...
// Positions are in code length. The level column is only read if hasLevel
// is true.
func ReadParticleTable(
	fname string, info *data.Info, fields []string, hasLevel bool,
) (*data.ParticleTable, error) {
	start := 3
	if hasLevel {
		start = 4
	}
	cols, err := readColumns(fname, start+len(fields))
	if err != nil {
		return nil, err
	}

	tab := &data.ParticleTable{
		Info: info, X: cols[0], Y: cols[1], Z: cols[2],
		Fields: map[string][]float64{},
	}
	if hasLevel {
		tab.Level, err = toInts(fname, "level", cols[3])
		if err != nil {
			return nil, err
		}
	}
	for k, name := range fields {
		tab.Fields[name] = cols[start+k]
	}

	if err := tab.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	return tab, nil
}

func readColumns(fname string, n int) ([][]float64, error) {
	colIdxs := make([]int, n)
	for i := range colIdxs {
		colIdxs[i] = i
	}
	return table.ReadTable(fname, colIdxs, nil)
}

func toInts(fname, name string, col []float64) ([]int, error) {
	out := make([]int, len(col))
	for i, x := range col {
		if x != math.Trunc(x) {
			return nil, fmt.Errorf(
				"%w: %s, row %d: %s = %g is not an integer",
				data.ErrTable, fname, i, name, x,
			)
		}
		out[i] = int(x)
	}
	return out, nil
}
