package data

import (
	"fmt"
	"math"
	"sort"
)

// CellTable is a flat table of AMR cells. Row i is the cell at refinement
// level Level[i] with grid indices (Cx[i], Cy[i], Cz[i]) in [0, 2^level).
// The engine never writes to a CellTable.
type CellTable struct {
	Info *Info

	Level      []int
	Cx, Cy, Cz []int

	Fields map[string][]float64
}

// NewCellTable allocates an empty table with room for n cells.
func NewCellTable(info *Info, n int) *CellTable {
	return &CellTable{
		Info:   info,
		Level:  make([]int, 0, n),
		Cx:     make([]int, 0, n),
		Cy:     make([]int, 0, n),
		Cz:     make([]int, 0, n),
		Fields: make(map[string][]float64),
	}
}

// Append adds a single cell. vals is keyed by field name. Fields missing from
// vals are zero-filled.
func (t *CellTable) Append(level, cx, cy, cz int, vals map[string]float64) {
	t.Level = append(t.Level, level)
	t.Cx = append(t.Cx, cx)
	t.Cy = append(t.Cy, cy)
	t.Cz = append(t.Cz, cz)

	n := len(t.Level)
	for name, v := range vals {
		col := t.Fields[name]
		if len(col) < n-1 {
			col = append(col, make([]float64, n-1-len(col))...)
		}
		t.Fields[name] = append(col, v)
	}
	for name, col := range t.Fields {
		for len(col) < n {
			col = append(col, 0)
		}
		t.Fields[name] = col
	}
}

// Len returns the number of cells.
func (t *CellTable) Len() int { return len(t.Level) }

// Field returns the named column.
func (t *CellTable) Field(name string) ([]float64, bool) {
	col, ok := t.Fields[name]
	return col, ok
}

// FieldNames returns the column names in sorted order.
func (t *CellTable) FieldNames() []string { return fieldNames(t.Fields) }

// Index returns the grid index of cell i along dim (0, 1, or 2).
func (t *CellTable) Index(i, dim int) int {
	switch dim {
	case 0:
		return t.Cx[i]
	case 1:
		return t.Cy[i]
	}
	return t.Cz[i]
}

// Center returns the center of cell i along dim in box-fraction units.
func (t *CellTable) Center(i, dim int) float64 {
	return (float64(t.Index(i, dim)) + 0.5) * math.Ldexp(1, -t.Level[i])
}

// Position returns the center of cell i along dim in code length.
func (t *CellTable) Position(i, dim int) float64 {
	return t.Center(i, dim) * t.Info.Boxlen
}

// LevelRange returns the smallest and largest levels present. ok is false
// for an empty table.
func (t *CellTable) LevelRange() (min, max int, ok bool) {
	return levelRange(t.Level)
}

// Validate checks that the table is internally consistent.
func (t *CellTable) Validate() error {
	if t.Info == nil {
		return fmt.Errorf("%w: cell table has no Info", ErrTable)
	}
	if err := t.Info.Check(); err != nil {
		return err
	}

	n := len(t.Level)
	if len(t.Cx) != n || len(t.Cy) != n || len(t.Cz) != n {
		return fmt.Errorf(
			"%w: %d levels but %d/%d/%d x/y/z indices",
			ErrTable, n, len(t.Cx), len(t.Cy), len(t.Cz),
		)
	}
	if err := checkFields(t.Fields, n); err != nil {
		return err
	}

	info := t.Info
	for i, l := range t.Level {
		if l < 0 || l > 62 {
			return fmt.Errorf("%w: cell %d has level %d", ErrTable, i, l)
		}
		if info.Levelmax > 0 && (l < info.Levelmin || l > info.Levelmax) {
			return fmt.Errorf(
				"%w: cell %d has level %d outside [%d, %d]",
				ErrTable, i, l, info.Levelmin, info.Levelmax,
			)
		}

		width := 1 << uint(l)
		for dim := 0; dim < 3; dim++ {
			if dim == 2 && info.Ndim == 2 {
				continue
			}
			c := t.Index(i, dim)
			if c < 0 || c >= width {
				return fmt.Errorf(
					"%w: cell %d has index %d along axis %d, but level %d "+
						"only spans [0, %d)",
					ErrTable, i, c, dim, l, width,
				)
			}
		}
	}
	return nil
}

// ParticleTable is a flat table of particles with continuous positions in
// code length. Level is optional.
type ParticleTable struct {
	Info *Info

	X, Y, Z []float64
	Level   []int

	Fields map[string][]float64
}

// Len returns the number of particles.
func (t *ParticleTable) Len() int { return len(t.X) }

// Field returns the named column.
func (t *ParticleTable) Field(name string) ([]float64, bool) {
	col, ok := t.Fields[name]
	return col, ok
}

// FieldNames returns the column names in sorted order.
func (t *ParticleTable) FieldNames() []string { return fieldNames(t.Fields) }

// Coord returns the position of particle i along dim in code length.
func (t *ParticleTable) Coord(i, dim int) float64 {
	switch dim {
	case 0:
		return t.X[i]
	case 1:
		return t.Y[i]
	}
	return t.Z[i]
}

// LevelRange returns the smallest and largest levels present. ok is false
// if the table has no levels.
func (t *ParticleTable) LevelRange() (min, max int, ok bool) {
	return levelRange(t.Level)
}

// Validate checks that the table is internally consistent.
func (t *ParticleTable) Validate() error {
	if t.Info == nil {
		return fmt.Errorf("%w: particle table has no Info", ErrTable)
	}
	if err := t.Info.Check(); err != nil {
		return err
	}

	n := len(t.X)
	if len(t.Y) != n || len(t.Z) != n {
		return fmt.Errorf("%w: %d/%d/%d x/y/z positions",
			ErrTable, n, len(t.Y), len(t.Z))
	}
	if t.Level != nil && len(t.Level) != n {
		return fmt.Errorf("%w: %d positions but %d levels",
			ErrTable, n, len(t.Level))
	}
	return checkFields(t.Fields, n)
}

func checkFields(fields map[string][]float64, n int) error {
	for _, name := range fieldNames(fields) {
		if len(fields[name]) != n {
			return fmt.Errorf("%w: field '%s' has %d rows, expected %d",
				ErrTable, name, len(fields[name]), n)
		}
	}
	return nil
}

func fieldNames(fields map[string][]float64) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func levelRange(levels []int) (min, max int, ok bool) {
	if len(levels) == 0 {
		return 0, 0, false
	}
	min, max = levels[0], levels[0]
	for _, l := range levels {
		if l < min {
			min = l
		} else if l > max {
			max = l
		}
	}
	return min, max, true
}
