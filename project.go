/*package goramses projects RAMSES adaptive mesh refinement outputs onto two
dimensional maps.

A projection takes a table of cells (or particles), resolves the requested
variables into value columns, selects the rows inside the requested region,
and deposits every selected row onto a uniform pixel grid with exact
area-weighting:

	res, err := goramses.Project(tab, []string{"rho", "T"},
		goramses.Res(256), goramses.Direction(goramses.X),
		goramses.Units("Msol_pc3", "K"), goramses.Modes(goramses.Sum, goramses.Mean),
	)

Each pixel of a Sum map holds the integral of its variable over the volume
of the pixel's column, with volumes measured in box fractions (extensive
variables like mass are simply totalled). Map totals therefore do not depend
on the resolution, and multiplying an intensive map by boxlen^3 gives the
integral in code volume. Mean maps hold the volume weighted mean (or the
mean weighted by the Weighting variable) and are NaN where nothing was
deposited. See Map for details.
*/
package goramses

import (
	"github.com/phil-mansfield/goramses/data"
	"github.com/phil-mansfield/goramses/density"
	"github.com/phil-mansfield/goramses/vars"
)

// Project projects the named cell variables. See the Option functions for
// the available settings.
func Project(tab *data.CellTable, names []string, opts ...Option) (*Result, error) {
	return ProjectRequest(tab, NewRequest(names, opts...))
}

// ProjectRequest is Project for a prebuilt Request.
func ProjectRequest(tab *data.CellTable, req *Request) (*Result, error) {
	if tab == nil {
		return nil, errorf(ErrTable, "nil cell table")
	}
	if err := tab.Validate(); err != nil {
		return nil, err
	}

	lmin, lmax := levelBounds(tab.Info, tab.LevelRange)
	box, vs, err := prepare(tab.Info, lmin, lmax, tab.Len(), req)
	if err != nil {
		return nil, err
	}

	cells := box.cellGeometry(tab)
	geo := func(mode Mode, val, weight density.Field) density.Interpolator {
		return density.Cells(box.Grid, cells, mode, val, weight)
	}
	spaces, err := newWorkspaces(vars.Cells(tab), vs, req, geo)
	if err != nil {
		return nil, err
	}

	sel := box.selectCells(tab, req.mask)
	buckets := density.BucketByLevel(tab.Level, sel, tab.Len())
	return newManager(box, buckets, spaces, req).Run(), nil
}

// ProjectParticles projects particle variables with nearest grid point
// binning. It accepts the same options as Project.
func ProjectParticles(tab *data.ParticleTable, names []string, opts ...Option) (*Result, error) {
	if tab == nil {
		return nil, errorf(ErrTable, "nil particle table")
	}
	if err := tab.Validate(); err != nil {
		return nil, err
	}

	req := NewRequest(names, opts...)
	lmin, lmax := levelBounds(tab.Info, tab.LevelRange)
	box, vs, err := prepare(tab.Info, lmin, lmax, tab.Len(), req)
	if err != nil {
		return nil, err
	}

	parts := box.particleGeometry(tab)
	geo := func(mode Mode, val, weight density.Field) density.Interpolator {
		return density.NearestGridPoint(box.Grid, parts, mode, val, weight)
	}
	spaces, err := newWorkspaces(vars.Particles(tab), vs, req, geo)
	if err != nil {
		return nil, err
	}

	sel := box.selectParticles(tab, req.mask)
	buckets := density.BucketByLevel(tab.Level, sel, tab.Len())
	return newManager(box, buckets, spaces, req).Run(), nil
}

// levelBounds returns the coarsest and finest levels to use. Declared
// levelmin takes precedence over the table. An empty table falls back on the
// declared levelmax.
func levelBounds(info *data.Info, levelRange func() (int, int, bool)) (lmin, lmax int) {
	lmin, lmax, ok := levelRange()
	if !ok {
		lmin, lmax = info.Levelmin, info.Levelmax
	}
	if info.Levelmin > 0 {
		lmin = info.Levelmin
	}
	return lmin, lmax
}

func prepare(info *data.Info, lmin, lmax, rows int, req *Request) (*Box, []Var, error) {
	vs, err := req.Vars()
	if err != nil {
		return nil, nil, err
	}
	if req.mask != nil && len(req.mask) != rows {
		return nil, nil, errorf(ErrMask,
			"mask has %d entries but the table has %d rows", len(req.mask), rows)
	}

	box, err := newBox(info, lmin, lmax, req)
	if err != nil {
		return nil, nil, err
	}
	return box, vs, nil
}
