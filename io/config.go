package io

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/gcfg.v1"

	"github.com/phil-mansfield/goramses"
	"github.com/phil-mansfield/goramses/data"
	"github.com/phil-mansfield/goramses/density"
	"github.com/phil-mansfield/goramses/geom"
)

const (
	ExampleProjectFile = `[Info]
# Simulation metadata, usually copied out of a RAMSES info_XXXXX.txt file.
# Everything here is optional. Without it, the table is assumed to be a unit
# box in code units.

# Boxlen = 1
# Levelmin = 6
# Levelmax = 12
# Ndim = 3
# Time = 0
# Aexp = 1
# H0 = 70
# OmegaM = 0.3
# OmegaL = 0.7
# unit_l, unit_d and unit_t in cgs.
# UnitL = 3.0857e21
# UnitD = 1.6726e-24
# UnitT = 3.0857e16
# Gamma = 1.6666667

[Project]

#######################
# Required Parameters #
#######################

# ASCII table to read. Cell tables hold the columns
#     level cx cy cz field1 field2 ...
# and particle tables hold the columns
#     x y z [level] field1 field2 ...
Input = path/to/cells.txt

# Names of the field columns, in order. Repeat once per column.
Field = rho
Field = vx
Field = vy
Field = vz
Field = p

# Variables to project. Repeat once per map. Besides the fields above, any
# derived variable can be used (v, cs, T, mach, mass, ekin, volume, cellsize,
# level, x, y, z) along with the aliases 'velocity' and 'acceleration'.
Variable = rho
Variable = T

#######################
# Optional Parameters #
#######################

# Either Cells (default) or Particles.
# TableType = Cells
# Set if a particle table has a level column after z.
# ParticleLevels = true

# Units of each variable, either once for every variable or once per
# variable. "standard" leaves values in code units.
# Unit = Msol_pc3
# Unit = K

# Aggregation mode: sum (default) or mean, either once or once per variable.
# Mode = sum
# Mode = mean
# Weighting = mass

# Projection direction, one of [ x | y | z ], or the image plane, one of
# [ xy | xz | yz ].
# Direction = z
# Plane = xy

# Resolution. Give at most one of Res, Pixels and PixelSize. The default
# matches the finest level in the table.
# Res = 256
# Pixels = 256 128
# PixelSize = 0.1 0.1
# PixelSizeUnit = kpc

# Ranges as "lo hi". They are absolute unless Center is set, in which case
# they are relative to it. Center is either "box" or "x y z".
# RangeUnit = box
# XRange = 0.25 0.75
# YRange = 0.25 0.75
# ZRange = 0 1
# Center = box
# CenterUnit = box

# Restricts the depth axis to a slab of the given thickness.
# SlabPosition = 0.5
# SlabThickness = 0.1

# Lmax = 10
# Workers = 4

# LogFile = log.out
# ProfileFile = prof.out
# Verbose = true`
)

type ProjectConfig struct {
	// Required
	Input    string
	Field    []string
	Variable []string

	// Optional
	TableType      string
	ParticleLevels bool

	Unit      []string
	Mode      []string
	Weighting string

	Direction, Plane string

	Res               int
	Pixels, PixelSize string
	PixelSizeUnit     string
	XRange, YRange    string
	ZRange, Center    string
	RangeUnit         string
	CenterUnit        string
	SlabPosition      float64
	SlabThickness     float64
	Lmax, Workers     int
	LogFile           string
	ProfileFile       string
	Verbose           bool
}

// ProjectWrapper is the layout of a projection config file. The [Info]
// section is read straight into the simulation metadata.
type ProjectWrapper struct {
	Info    data.Info
	Project ProjectConfig
}

func DefaultProjectWrapper() *ProjectWrapper {
	pc := ProjectConfig{TableType: "Cells", RangeUnit: "box", CenterUnit: "box"}
	return &ProjectWrapper{*data.DefaultInfo(), pc}
}

// ReadProjectConfig reads and checks an [Info] + [Project] config file.
func ReadProjectConfig(fname string) (*ProjectWrapper, error) {
	wrap := DefaultProjectWrapper()
	if err := gcfg.ReadFileInto(wrap, fname); err != nil {
		return nil, err
	}
	if err := wrap.Info.Check(); err != nil {
		return nil, err
	}
	if err := wrap.Project.CheckInit(); err != nil {
		return nil, err
	}
	return wrap, nil
}

func (con *ProjectConfig) ValidInput() bool {
	return con.Input != ""
}
func (con *ProjectConfig) ValidField() bool {
	return len(con.Field) > 0
}
func (con *ProjectConfig) ValidVariable() bool {
	return len(con.Variable) > 0
}
func (con *ProjectConfig) ValidTableType() bool {
	return con.IsCells() || con.IsParticles()
}
func (con *ProjectConfig) ValidRes() bool {
	return con.Res > 0
}
func (con *ProjectConfig) ValidLmax() bool {
	return con.Lmax > 0
}
func (con *ProjectConfig) ValidSlab() bool {
	return con.SlabThickness > 0
}
func (con *ProjectConfig) ValidLogFile() bool {
	return con.LogFile != ""
}
func (con *ProjectConfig) ValidProfileFile() bool {
	return con.ProfileFile != ""
}

func (con *ProjectConfig) IsCells() bool {
	return strings.EqualFold(con.TableType, "Cells")
}
func (con *ProjectConfig) IsParticles() bool {
	return strings.EqualFold(con.TableType, "Particles")
}

// CheckInit returns an error describing the first missing or malformed
// parameter.
func (con *ProjectConfig) CheckInit() error {
	if !con.ValidInput() {
		return fmt.Errorf("Invalid/non-existent 'Input' value.")
	} else if !con.ValidField() {
		return fmt.Errorf("Need to specify at least one 'Field'.")
	} else if !con.ValidVariable() {
		return fmt.Errorf("Need to specify at least one 'Variable'.")
	} else if !con.ValidTableType() {
		return fmt.Errorf(
			"TableType must be one of [Cells | Particles], but is '%s'.",
			con.TableType,
		)
	}

	if con.Res < 0 {
		return fmt.Errorf("Res must be positive, but is %d.", con.Res)
	} else if con.Lmax < 0 {
		return fmt.Errorf("Lmax must be positive, but is %d.", con.Lmax)
	} else if con.SlabThickness < 0 {
		return fmt.Errorf(
			"SlabThickness must be positive, but is %g.", con.SlabThickness,
		)
	}

	_, err := con.Options()
	return err
}

// Options converts the config into projection options.
func (con *ProjectConfig) Options() ([]goramses.Option, error) {
	opts := []goramses.Option{}

	if len(con.Unit) > 0 {
		opts = append(opts, goramses.Units(con.Unit...))
	}
	if len(con.Mode) > 0 {
		modes := make([]goramses.Mode, len(con.Mode))
		for i, s := range con.Mode {
			m, err := density.ParseMode(s)
			if err != nil {
				return nil, fmt.Errorf("Mode %d: %w", i, err)
			}
			modes[i] = m
		}
		opts = append(opts, goramses.Modes(modes...))
	}
	if con.Weighting != "" {
		opts = append(opts, goramses.Weighting(con.Weighting, ""))
	}

	if con.Direction != "" {
		dir, err := geom.ParseAxis(con.Direction)
		if err != nil {
			return nil, fmt.Errorf("Direction: %w", err)
		}
		opts = append(opts, goramses.Direction(dir))
	}
	if con.Plane != "" {
		opts = append(opts, goramses.Plane(con.Plane))
	}

	if con.ValidRes() {
		opts = append(opts, goramses.Res(con.Res))
	}
	if con.Pixels != "" {
		px, err := parseFloats("Pixels", con.Pixels, 2)
		if err != nil {
			return nil, err
		}
		opts = append(opts, goramses.Pixels(int(px[0]), int(px[1])))
	}
	if con.PixelSize != "" {
		dx, err := parseFloats("PixelSize", con.PixelSize, 2)
		if err != nil {
			return nil, err
		}
		opts = append(opts, goramses.PixelSize(dx[0], dx[1], con.PixelSizeUnit))
	}

	opts = append(opts, goramses.RangeUnit(con.RangeUnit))
	ranges := []struct {
		name, val string
		opt       func(lo, hi float64) goramses.Option
	}{
		{"XRange", con.XRange, goramses.XRange},
		{"YRange", con.YRange, goramses.YRange},
		{"ZRange", con.ZRange, goramses.ZRange},
	}
	for _, r := range ranges {
		if r.val == "" {
			continue
		}
		x, err := parseFloats(r.name, r.val, 2)
		if err != nil {
			return nil, err
		}
		opts = append(opts, r.opt(x[0], x[1]))
	}

	if strings.EqualFold(strings.TrimSpace(con.Center), "box") {
		opts = append(opts, goramses.BoxCenter())
	} else if con.Center != "" {
		c, err := parseFloats("Center", con.Center, 3)
		if err != nil {
			return nil, err
		}
		opts = append(opts,
			goramses.Center(c[0], c[1], c[2]),
			goramses.CenterUnit(con.CenterUnit),
		)
	}

	if con.ValidSlab() {
		opts = append(opts, goramses.Slab(con.SlabPosition, con.SlabThickness))
	}
	if con.ValidLmax() {
		opts = append(opts, goramses.Lmax(con.Lmax))
	}
	if con.Workers > 0 {
		opts = append(opts, goramses.Workers(con.Workers))
	}

	return opts, nil
}

func parseFloats(name, s string, n int) ([]float64, error) {
	tokens := strings.Fields(s)
	if len(tokens) != n {
		return nil, fmt.Errorf(
			"%s must contain %d numbers, but is '%s'.", name, n, s,
		)
	}

	out := make([]float64, n)
	for i, tok := range tokens {
		x, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf(
				"%s must contain %d numbers, but '%s' is not a number.",
				name, n, tok,
			)
		}
		out[i] = x
	}
	return out, nil
}
