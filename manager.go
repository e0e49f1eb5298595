package goramses

import (
	"runtime"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/phil-mansfield/goramses/density"
)

// Manager runs the depositions of one projection. Maps are computed on a
// pool of goroutines, and every deposition splits its own work between a
// fixed number of workers.
type Manager struct {
	box     *Box
	buckets []density.Bucket
	spaces  []workspace

	workers  int
	log      logrus.FieldLogger
	progress func(done, total int)
}

func newManager(box *Box, buckets []density.Bucket, spaces []workspace, req *Request) *Manager {
	man := &Manager{
		box:      box,
		buckets:  buckets,
		spaces:   spaces,
		workers:  req.workers,
		log:      req.log,
		progress: req.progress,
	}
	if man.workers < 1 {
		man.workers = runtime.NumCPU()
	}
	if man.log == nil {
		man.log = logrus.StandardLogger()
	}
	return man
}

// Run deposits every map and returns the finished Result.
func (man *Manager) Run() *Result {
	rows := density.Rows(man.buckets)
	workers := density.EffectiveWorkers(man.workers, rows)
	pool := man.poolSize(workers)
	man.log.WithFields(logrus.Fields{
		"maps":       len(man.spaces),
		"cells":      rows,
		"levels":     len(man.buckets),
		"workers":    workers,
		"pool":       pool,
		"resolution": man.box.Grid.Width,
	}).Debug("Starting projection")

	jobs := make(chan int, len(man.spaces))
	for id := range man.spaces {
		jobs <- id
	}
	close(jobs)

	out := make(chan int, len(man.spaces))
	for i := 0; i < pool; i++ {
		go man.chanDeposit(jobs, out)
	}

	for done := 1; done <= len(man.spaces); done++ {
		id := <-out
		w := &man.spaces[id]
		man.log.WithFields(logrus.Fields{
			"variable": w.v.Name,
			"mode":     w.v.Mode,
			"cells":    w.res.Rows,
			"level":    w.res.MaxLevel,
		}).Debugf("Projected map %d/%d", done, len(man.spaces))
		if man.progress != nil {
			man.progress(done, len(man.spaces))
		}
	}

	return newResult(man.box, man.spaces)
}

func (man *Manager) chanDeposit(jobs <-chan int, out chan<- int) {
	for id := range jobs {
		w := &man.spaces[id]
		t0 := time.Now()
		w.res = density.Deposit(
			w.intr, man.box.Grid, man.buckets, w.v.Mode, man.workers,
		)
		man.log.WithField("variable", w.v.Name).
			Debugf("Deposited in %s", time.Since(t0))
		out <- id
	}
}

// poolSize returns how many maps are deposited at once when each deposition
// uses workers workers. The total number of live buffers stays near
// man.workers.
func (man *Manager) poolSize(workers int) int {
	pool := man.workers / workers
	if pool > len(man.spaces) {
		pool = len(man.spaces)
	}
	if pool < 1 {
		pool = 1
	}
	return pool
}
