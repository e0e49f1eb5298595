package vars

import (
	"github.com/phil-mansfield/goramses/data"
)

// Source is the row-oriented view of a table that variables are computed
// from. Cells and particles both satisfy it through Cells and Particles.
type Source interface {
	// Len returns the number of rows.
	Len() int
	// Info returns the simulation metadata.
	Info() *data.Info
	// Field returns a raw column.
	Field(name string) ([]float64, bool)
	// Position returns the coordinate of row i along dim in code length.
	Position(i, dim int) float64
	// Level returns the refinement level of row i. ok is false if the
	// rows do not carry levels.
	Level(i int) (level int, ok bool)
}

type cells struct{ tab *data.CellTable }

// Cells wraps a cell table as a Source.
func Cells(tab *data.CellTable) Source { return cells{tab} }

func (c cells) Len() int                            { return c.tab.Len() }
func (c cells) Info() *data.Info                    { return c.tab.Info }
func (c cells) Field(name string) ([]float64, bool) { return c.tab.Field(name) }
func (c cells) Position(i, dim int) float64         { return c.tab.Position(i, dim) }
func (c cells) Level(i int) (int, bool)             { return c.tab.Level[i], true }

type particles struct{ tab *data.ParticleTable }

// Particles wraps a particle table as a Source.
func Particles(tab *data.ParticleTable) Source { return particles{tab} }

func (p particles) Len() int                            { return p.tab.Len() }
func (p particles) Info() *data.Info                    { return p.tab.Info }
func (p particles) Field(name string) ([]float64, bool) { return p.tab.Field(name) }
func (p particles) Position(i, dim int) float64         { return p.tab.Coord(i, dim) }

func (p particles) Level(i int) (int, bool) {
	if p.tab.Level == nil {
		return 0, false
	}
	return p.tab.Level[i], true
}
