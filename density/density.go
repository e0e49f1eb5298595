/*package density deposits AMR cells and particles onto two dimensional pixel
grids.

Deposition runs in two phases. BucketByLevel groups the selected rows by
refinement level, and an Interpolator then deposits each bucket with a cell
size which is constant across the whole bucket. Deposit splits every bucket
between a fixed number of workers, each of which owns private buffers, and
reduces those buffers in worker order.
*/
package density

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ctessum/sparse"

	"github.com/phil-mansfield/goramses/geom"
)

// ErrMode is returned for unrecognized aggregation modes.
var ErrMode = errors.New("unrecognized mode")

// Mode is the way contributions to a pixel are aggregated.
type Mode int

const (
	// Sum integrates the variable along the line of sight.
	Sum Mode = iota
	// Mean is the weighted average of the variable along the line of sight.
	Mean
)

func (m Mode) String() string {
	switch m {
	case Sum:
		return "sum"
	case Mean:
		return "mean"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode converts "sum" or "mean" into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sum":
		return Sum, nil
	case "mean":
		return Mean, nil
	}
	return -1, fmt.Errorf("%w '%s': must be 'sum' or 'mean'", ErrMode, s)
}

// Field is a column of per-row values. Extensive fields are totals carried
// by a whole cell (e.g. mass) and are spread over the area the cell covers.
// Intensive fields are densities and are integrated over the cell's depth.
type Field struct {
	Values    []float64
	Extensive bool
}

// Interpolator deposits rows of a single refinement level into a Buffer.
type Interpolator interface {
	Interpolate(buf *Buffer, level int, rows []int)
}

// Buffer is a pair of accumulation grids. Num holds the deposited values and
// Weight holds the normalization used by Mean.
type Buffer struct {
	Num, Weight *sparse.DenseArray

	// MaxLevel is the highest level which has deposited anything, or -1.
	MaxLevel int
	// Rows is the number of rows which have deposited anything.
	Rows int
}

// NewBuffer returns an empty Buffer matching g.
func NewBuffer(g *geom.Grid) *Buffer {
	return &Buffer{
		Num:      sparse.ZerosDense(g.Width[0], g.Width[1]),
		Weight:   sparse.ZerosDense(g.Width[0], g.Width[1]),
		MaxLevel: -1,
	}
}

// Add adds the contents of b2 into b.
func (b *Buffer) Add(b2 *Buffer) {
	b.Num.AddDense(b2.Num)
	b.Weight.AddDense(b2.Weight)
	if b2.MaxLevel > b.MaxLevel {
		b.MaxLevel = b2.MaxLevel
	}
	b.Rows += b2.Rows
}

func (b *Buffer) deposited(level int) {
	b.Rows++
	if level > b.MaxLevel {
		b.MaxLevel = level
	}
}

// Bucket is the list of selected rows at one refinement level.
type Bucket struct {
	Level int
	Rows  []int
}

// BucketByLevel groups the selected rows by level in ascending level order.
// A nil selected slice selects every row. A nil levels slice puts every
// selected row into a single level 0 bucket.
func BucketByLevel(levels []int, selected []bool, n int) []Bucket {
	rows := map[int][]int{}
	for i := 0; i < n; i++ {
		if selected != nil && !selected[i] {
			continue
		}
		l := 0
		if levels != nil {
			l = levels[i]
		}
		rows[l] = append(rows[l], i)
	}

	buckets := make([]Bucket, 0, len(rows))
	for l, r := range rows {
		buckets = append(buckets, Bucket{l, r})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Level < buckets[j].Level
	})
	return buckets
}
