package density

import (
	"math"

	"github.com/ctessum/sparse"

	"github.com/phil-mansfield/goramses/geom"
)

// Result is a finished map.
type Result struct {
	// Map is the sum or the weighted mean in every pixel. Mean maps are NaN
	// in pixels with no weight.
	Map *sparse.DenseArray
	// Weight is the total weight in every pixel.
	Weight *sparse.DenseArray

	MaxLevel int
	Rows     int
}

// MinChunk is the smallest number of rows worth giving a worker. Every
// worker owns two full-resolution buffers, so small depositions use fewer
// workers.
const MinChunk = 1 << 12

type workspace struct {
	buf  *Buffer
	intr Interpolator
}

// Deposit runs intr over every bucket. Each bucket is split into contiguous
// chunks, one per worker, and every worker accumulates into its own Buffer.
// The buffers are reduced in worker order, so the output only depends on the
// inputs and the worker count. The worker count is capped by
// EffectiveWorkers.
func Deposit(intr Interpolator, g *geom.Grid, buckets []Bucket, mode Mode, workers int) *Result {
	return deposit(intr, g, buckets, mode, EffectiveWorkers(workers, Rows(buckets)))
}

// EffectiveWorkers returns the number of workers used to deposit rows rows
// when workers are requested: at most one per MinChunk rows, and at least
// one.
func EffectiveWorkers(workers, rows int) int {
	if max := rows / MinChunk; workers > max {
		workers = max
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

// Rows returns the total number of rows in buckets.
func Rows(buckets []Bucket) int {
	n := 0
	for _, b := range buckets {
		n += len(b.Rows)
	}
	return n
}

func deposit(intr Interpolator, g *geom.Grid, buckets []Bucket, mode Mode, workers int) *Result {
	if workers < 1 {
		workers = 1
	}

	ws := make([]workspace, workers)
	for id := range ws {
		ws[id].buf = NewBuffer(g)
		ws[id].intr = intr
	}

	out := make(chan int, workers)
	for id := 0; id < workers-1; id++ {
		go ws[id].chanInterpolate(id, workers, buckets, out)
	}
	ws[workers-1].chanInterpolate(workers-1, workers, buckets, out)

	for i := 0; i < workers; i++ {
		<-out
	}

	total := ws[0].buf
	for id := 1; id < workers; id++ {
		total.Add(ws[id].buf)
	}

	return finalize(total, mode)
}

func (w *workspace) chanInterpolate(id, workers int, buckets []Bucket, out chan<- int) {
	for _, b := range buckets {
		low, high := chunk(len(b.Rows), id, workers)
		if low < high {
			w.intr.Interpolate(w.buf, b.Level, b.Rows[low:high])
		}
	}
	out <- id
}

// chunk returns the half-open range of n items handled by worker id.
func chunk(n, id, workers int) (low, high int) {
	return n * id / workers, n * (id + 1) / workers
}

func finalize(buf *Buffer, mode Mode) *Result {
	res := &Result{
		Weight:   buf.Weight,
		MaxLevel: buf.MaxLevel,
		Rows:     buf.Rows,
	}

	if mode == Sum {
		res.Map = buf.Num
		return res
	}

	res.Map = sparse.ZerosDense(buf.Num.Shape...)
	num, wt := buf.Num.Elements, buf.Weight.Elements
	for k := range res.Map.Elements {
		if wt[k] > 0 {
			res.Map.Elements[k] = num[k] / wt[k]
		} else {
			res.Map.Elements[k] = math.NaN()
		}
	}
	return res
}
