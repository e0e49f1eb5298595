package goramses

import (
	"errors"
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/phil-mansfield/goramses/data"
)

// cubeTable returns a fully refined level with densities given by rho.
func cubeTable(level int, rho func(i, j, k int) float64) *data.CellTable {
	n := 1 << uint(level)
	tab := data.NewCellTable(data.DefaultInfo(), n*n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				tab.Append(level, i, j, k, map[string]float64{
					"rho": rho(i, j, k), "vx": float64(i - j),
				})
			}
		}
	}
	return tab
}

// twoLevelTable covers the box with level 3 cells of density 1, except for
// the column 0.25 <= x, y < 0.75, which is refined to level 4 with density
// 2. Gas moves along +x outside the column and along -x inside it.
func twoLevelTable() *data.CellTable {
	tab := data.NewCellTable(data.DefaultInfo(), 384+1024)
	for i := 0; i < 8; i++ {
		for j := 0; j < 8; j++ {
			for k := 0; k < 8; k++ {
				if i >= 2 && i < 6 && j >= 2 && j < 6 {
					continue
				}
				tab.Append(3, i, j, k, map[string]float64{
					"rho": 1, "p": 1, "vx": 1, "vy": 0, "vz": 0,
				})
			}
		}
	}
	for i := 4; i < 12; i++ {
		for j := 4; j < 12; j++ {
			for k := 0; k < 16; k++ {
				tab.Append(4, i, j, k, map[string]float64{
					"rho": 2, "p": 2, "vx": -1, "vy": 0, "vz": 0,
				})
			}
		}
	}
	return tab
}

func TestTwoLevelScenario(t *testing.T) {
	tab := twoLevelTable()

	res, err := Project(tab, []string{"rho"}, Res(64))
	require.NoError(t, err)
	rho := res.Map("rho")
	require.NotNil(t, rho)

	assert.Equal(t, [2]int{64, 64}, rho.Shape())
	assert.InEpsilon(t, 1.25, rho.Total(), 1e-12)
	assert.Equal(t, 4, rho.MaxLevel())
	assert.Equal(t, Sum, rho.Mode())
	assert.Equal(t, 3, res.Lmin())
	assert.Equal(t, 4, res.Lmax())

	res, err = Project(tab, []string{"rho"}, Res(64), Lmax(3))
	require.NoError(t, err)
	assert.InEpsilon(t, 0.75, res.Map("rho").Total(), 1e-12)
	assert.Equal(t, 3, res.Map("rho").MaxLevel())
}

func TestResolutionInvariance(t *testing.T) {
	tab := twoLevelTable()

	for _, n := range []int{1, 3, 16, 33, 64, 100} {
		res, err := Project(tab, []string{"rho", "mass"}, Res(n), Workers(3))
		require.NoError(t, err)
		assert.InEpsilon(t, 1.25, res.Map("rho").Total(), 1e-12, "res %d", n)
		assert.InEpsilon(t, 1.25, res.Map("mass").Total(), 1e-12, "res %d", n)
	}

	res, err := Project(tab, []string{"rho"})
	require.NoError(t, err)
	assert.Equal(t, [2]int{16, 16}, res.Resolution())
	assert.InEpsilon(t, 1.25, res.Map("rho").Total(), 1e-12)
}

func TestMaskPartition(t *testing.T) {
	tab := twoLevelTable()
	m, notM := make([]bool, tab.Len()), make([]bool, tab.Len())
	for i := range m {
		m[i] = i%3 == 0
		notM[i] = !m[i]
	}

	all, err := Project(tab, []string{"rho"}, Res(10))
	require.NoError(t, err)
	in, err := Project(tab, []string{"rho"}, Res(10), Mask(m))
	require.NoError(t, err)
	out, err := Project(tab, []string{"rho"}, Res(10), Mask(notM))
	require.NoError(t, err)

	sum := in.Map("rho").Values()
	sum.AddDense(out.Map("rho").Values())
	assert.True(t, floats.EqualApprox(
		sum.Elements, all.Map("rho").Values().Elements, 1e-12,
	))

	none, err := Project(tab, []string{"rho"}, Res(10), Mask(make([]bool, tab.Len())))
	require.NoError(t, err)
	assert.Equal(t, 0.0, none.Map("rho").Total())
}

func TestShape(t *testing.T) {
	tab := cubeTable(2, func(i, j, k int) float64 { return 1 })

	table := []struct {
		opts  []Option
		shape [2]int
	}{
		{[]Option{Res(7)}, [2]int{7, 7}},
		{[]Option{Res(1)}, [2]int{1, 1}},
		{[]Option{Pixels(3, 5)}, [2]int{3, 5}},
		{[]Option{Pixels(3, 5), Direction(X)}, [2]int{3, 5}},
		{[]Option{XRange(0, 0.5)}, [2]int{2, 4}},
		{[]Option{PixelSize(0.1, 0.25, "")}, [2]int{10, 4}},
		{[]Option{Plane("xz"), XRange(0, 0.5), ZRange(0, 0.25)}, [2]int{2, 1}},
	}

	for i, test := range table {
		res, err := Project(tab, []string{"rho"}, test.opts...)
		require.NoError(t, err, "%d", i)
		if shape := res.Map("rho").Shape(); shape != test.shape {
			t.Errorf("%d) Expected shape %v, got %v", i, test.shape, shape)
		}
		if r := res.Resolution(); r != test.shape {
			t.Errorf("%d) Expected resolution %v, got %v", i, test.shape, r)
		}
	}
}

func TestDirections(t *testing.T) {
	tab := cubeTable(2, func(i, j, k int) float64 {
		return float64(1 + i + 10*j + 100*k)
	})

	maps := map[string][]float64{}
	for _, dir := range []struct {
		name string
		opt  Option
	}{{"x", Direction(X)}, {"y", Direction(Y)}, {"z", Direction(Z)}} {
		res, err := Project(tab, []string{"rho"}, Res(4), dir.opt)
		require.NoError(t, err)
		assert.Equal(t, dir.name, res.Direction().String())
		maps[dir.name] = res.Map("rho").Values().Elements
		assert.InEpsilon(t, 167.5, floats.Sum(maps[dir.name]), 1e-12)
	}

	assert.NotEqual(t, maps["x"], maps["y"])
	assert.NotEqual(t, maps["y"], maps["z"])
	assert.NotEqual(t, maps["x"], maps["z"])

	// Along z, pixel (1, 2) sums rho(1, 2, k) over k.
	z, err := Project(tab, []string{"rho"}, Res(4), Direction(Z))
	require.NoError(t, err)
	assert.InDelta(t, 688.0/64, z.Map("rho").At(1, 2), 1e-12)

	// Along x, pixel (1, 2) sums rho(i, 1, 2) over i.
	x, err := Project(tab, []string{"rho"}, Res(4), Plane("yz"))
	require.NoError(t, err)
	assert.InDelta(t, 850.0/64, x.Map("rho").At(1, 2), 1e-12)
}

func TestEmptyRegion(t *testing.T) {
	tab := twoLevelTable()

	res, err := Project(tab, []string{"rho"}, Res(8), XRange(1.5, 2))
	require.NoError(t, err)
	m := res.Map("rho")
	assert.Equal(t, [2]int{8, 8}, m.Shape())
	assert.Equal(t, 1.0, m.FiniteFraction())
	assert.Equal(t, -1, m.MaxLevel())
	for _, x := range m.Values().Elements {
		if x != 0 {
			t.Fatalf("Expected an all zero map, found %g", x)
		}
	}

	res, err = Project(tab, []string{"rho"}, Res(8), XRange(1.5, 2), WithMode(Mean))
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Map("rho").FiniteFraction())
	_, _, ok := res.Map("rho").Bounds()
	assert.False(t, ok)
}

func TestMultiVariable(t *testing.T) {
	tab := twoLevelTable()

	batch, err := Project(tab, []string{"rho", "velocity", "T"},
		Res(20), Workers(3))
	require.NoError(t, err)
	assert.Equal(t, []string{"rho", "vx", "vy", "vz", "v", "T"}, batch.Names())
	assert.Equal(t, 6, batch.Len())

	alone, err := Project(tab, []string{"rho"}, Res(20), Workers(3))
	require.NoError(t, err)
	assert.Equal(t,
		alone.Map("rho").Values().Elements,
		batch.Map("rho").Values().Elements,
	)
	assert.Nil(t, alone.Map("vx"))
}

func TestErrors(t *testing.T) {
	tab := twoLevelTable()

	table := []struct {
		names []string
		opts  []Option
		err   error
	}{
		{[]string{"rho"}, []Option{Res(0)}, ErrResolution},
		{[]string{"rho"}, []Option{Pixels(4, 0)}, ErrResolution},
		{[]string{"rho"}, []Option{Res(4), Pixels(4, 4)}, ErrResolution},
		{[]string{"rho"}, []Option{PixelSize(3, 3, "")}, ErrResolution},
		{[]string{"rho"}, []Option{XRange(0.8, 0.2)}, ErrRange},
		{[]string{"rho"}, []Option{ZRange(0.5, 0.5)}, ErrRange},
		{[]string{"rho"}, []Option{Slab(0.5, 0)}, ErrRange},
		{[]string{"rho"}, []Option{YRange(0, math.Inf(+1))}, ErrRange},
		{[]string{"rho"}, []Option{XRange(math.NaN(), 1)}, ErrRange},
		{[]string{"rho"}, []Option{Center(0.5, math.NaN(), 0.5)}, ErrRange},
		{[]string{"rho"}, []Option{Slab(math.Inf(-1), 0.1)}, ErrRange},
		{[]string{"rho"}, []Option{Slab(0.5, math.NaN())}, ErrRange},
		{[]string{"rho"}, []Option{PixelSize(math.NaN(), 0.1, "")}, ErrResolution},
		{[]string{"rho"}, []Option{PixelSize(0.1, math.Inf(+1), "")}, ErrResolution},
		{[]string{"nonexistent"}, nil, ErrUnknownVariable},
		{[]string{"rho", "nonexistent"}, nil, ErrUnknownVariable},
		{[]string{}, nil, ErrUnknownVariable},
		{[]string{"rho"}, []Option{Weighting("nonexistent", "")}, ErrUnknownVariable},
		{[]string{"rho"}, []Option{Mask(make([]bool, 3))}, ErrMask},
		{[]string{"rho"}, []Option{Direction(Z), Plane("yz")}, ErrDirection},
		{[]string{"rho"}, []Option{Plane("diagonal")}, ErrDirection},
		{[]string{"rho"}, []Option{Direction(7)}, ErrDirection},
		{[]string{"rho"}, []Option{WithMode(7)}, ErrMode},
		{[]string{"rho", "vx"}, []Option{Modes(Sum, Mean, Sum)}, ErrMode},
		{[]string{"rho"}, []Option{Lmax(0)}, ErrLevel},
		{[]string{"rho"}, []Option{Lmax(2)}, ErrLevel},
		{[]string{"rho"}, []Option{Units("furlong")}, ErrUnknownUnit},
		{[]string{"rho", "vx"}, []Option{Units("g_cm3", "km_s", "K")}, ErrUnknownUnit},
		{[]string{"rho"}, []Option{Units("km_s")}, ErrIncompatibleUnit},
		{[]string{"rho"}, []Option{XRange(0, 1), RangeUnit("Msol")}, ErrIncompatibleUnit},
	}

	for i, test := range table {
		res, err := Project(tab, test.names, test.opts...)
		if !errors.Is(err, test.err) {
			t.Errorf("%d) Expected error '%v', got '%v'", i, test.err, err)
		}
		if res != nil {
			t.Errorf("%d) Expected no result on error", i)
		}
	}

	_, err := Project(nil, []string{"rho"})
	assert.True(t, errors.Is(err, ErrTable))

	bad := twoLevelTable()
	bad.Cx[0] = 100
	_, err = Project(bad, []string{"rho"})
	assert.True(t, errors.Is(err, ErrTable))
}

func TestCenteredRanges(t *testing.T) {
	tab := twoLevelTable()
	tab.Info.Boxlen = 4

	res, err := Project(tab, []string{"rho"}, Res(2), BoxCenter(),
		XRange(-0.25, 0.25), YRange(-0.25, 0.25))
	require.NoError(t, err)

	r := res.Ranges()
	assert.Equal(t, 0.25, r[0].Lo)
	assert.Equal(t, 0.75, r[1].Hi)
	assert.Equal(t, 1.0, r[2].Hi)
	assert.Equal(t, [4]float64{0.25, 0.75, 0.25, 0.75}, res.ExtentBox())
	assert.Equal(t, [4]float64{1, 3, 1, 3}, res.Extent())
	assert.Equal(t, [2]float64{1, 1}, res.PixelSize())
	assert.Equal(t, [3]float64{0.5, 0.5, 0.5}, res.Center())

	m := res.Map("rho")
	assert.InEpsilon(t, 0.5, m.Total(), 1e-12)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			assert.InEpsilon(t, 0.125, m.At(i, j), 1e-12)
		}
	}

	res, err = Project(tab, []string{"rho"}, Res(2), Center(2, 2, 2),
		CenterUnit(""), XRange(-0.25, 0.25))
	require.NoError(t, err)
	assert.Equal(t, 1.75, res.Ranges()[0].Lo)
}

func TestPhysicalUnits(t *testing.T) {
	kpc := 3.08567758149e21
	tab := twoLevelTable()
	tab.Info.UnitL = 10 * kpc

	res, err := Project(tab, []string{"rho"},
		RangeUnit("kpc"), XRange(2.5, 7.5), PixelSize(0.5, 0.5, "kpc"))
	require.NoError(t, err)
	assert.InDelta(t, 0.25, res.Ranges()[0].Lo, 1e-12)
	assert.InDelta(t, 0.75, res.Ranges()[0].Hi, 1e-12)
	assert.Equal(t, [2]int{10, 20}, res.Resolution())

	res, err = Project(tab, []string{"x"}, Units("kpc"), WithMode(Mean),
		CenterUnit("kpc"), Center(5, 5, 5), RangeUnit("kpc"),
		XRange(-1, 1), Res(1))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, res.Center()[0], 1e-12)
	assert.InDelta(t, 5, res.Map("x").At(0, 0), 1e-9)
	assert.Equal(t, "kpc", res.Map("x").Unit())
}

func TestSlab(t *testing.T) {
	tab := twoLevelTable()

	res, err := Project(tab, []string{"rho"}, Res(16), Slab(0.5, 0.5))
	require.NoError(t, err)
	assert.InEpsilon(t, 0.625, res.Map("rho").Total(), 1e-12)
	assert.Equal(t, 0.25, res.Ranges()[2].Lo)
	assert.Equal(t, 0.75, res.Ranges()[2].Hi)

	// Slabs replace explicit depth ranges.
	res2, err := Project(tab, []string{"rho"}, Res(16), ZRange(0, 0.1), Slab(0.5, 0.5))
	require.NoError(t, err)
	assert.Equal(t, res.Map("rho").Values().Elements, res2.Map("rho").Values().Elements)
}

func TestMean(t *testing.T) {
	tab := twoLevelTable()

	for _, opts := range [][]Option{
		{Res(4), WithMode(Mean)},
		{Res(4), WithMode(Mean), Weighting("mass", "")},
		{Res(4), Modes(Mean), Weighting("rho", "")},
	} {
		res, err := Project(tab, []string{"rho"}, opts...)
		require.NoError(t, err)
		m := res.Map("rho")
		assert.Equal(t, Mean, m.Mode())
		assert.InDelta(t, 1, m.At(0, 0), 1e-12)
		assert.InDelta(t, 2, m.At(1, 1), 1e-12)
		assert.InDelta(t, 2, m.At(2, 2), 1e-12)
		assert.InDelta(t, 1, m.At(3, 1), 1e-12)

		min, max, ok := m.Bounds()
		assert.True(t, ok)
		assert.InDelta(t, 1, min, 1e-12)
		assert.InDelta(t, 2, max, 1e-12)
	}

	// Mass weighting pulls the mean velocity towards the dense column.
	res, err := Project(tab, []string{"vx"}, Res(1), WithMode(Mean))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, res.Map("vx").At(0, 0), 1e-12)

	res, err = Project(tab, []string{"vx"}, Res(1), WithMode(Mean),
		Weighting("mass", ""))
	require.NoError(t, err)
	assert.InDelta(t, 0.2, res.Map("vx").At(0, 0), 1e-12)
}

func TestModesPerVariable(t *testing.T) {
	tab := twoLevelTable()
	res, err := Project(tab, []string{"rho", "vx"}, Res(4),
		Modes(Sum, Mean), Units("", "standard"))
	require.NoError(t, err)
	assert.Equal(t, Sum, res.Map("rho").Mode())
	assert.Equal(t, Mean, res.Map("vx").Mode())
	assert.Equal(t, "standard", res.Map("vx").Unit())
}

func TestProjectParticles(t *testing.T) {
	info := data.DefaultInfo()
	info.Boxlen = 2
	tab := &data.ParticleTable{
		Info:  info,
		X:     []float64{0.2, 0.4, 1.5, 1.9},
		Y:     []float64{0.2, 0.6, 1.5, 0.1},
		Z:     []float64{1, 1, 1, 1.99},
		Level: []int{5, 5, 5, 6},
		Fields: map[string][]float64{
			"mass": {1, 2, 4, 8},
			"vx":   {1, 1, 3, -1},
		},
	}

	res, err := ProjectParticles(tab, []string{"mass", "vx"}, Pixels(2, 2),
		Modes(Sum, Mean))
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 0, 8, 4}, res.Map("mass").Values().Elements)
	assert.Equal(t, 1.0, res.Map("vx").At(0, 0))
	assert.True(t, math.IsNaN(res.Map("vx").At(0, 1)))
	assert.Equal(t, 6, res.Map("mass").MaxLevel())

	res, err = ProjectParticles(tab, []string{"mass"}, Pixels(2, 2), Lmax(5),
		ZRange(0, 0.75), Mask([]bool{false, true, true, true}))
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 0, 0, 4}, res.Map("mass").Values().Elements)

	_, err = ProjectParticles(tab, []string{"mass"}, Mask([]bool{true}))
	assert.True(t, errors.Is(err, ErrMask))
}

func TestLoggingAndProgress(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.Level = logrus.DebugLevel

	calls := []int{}
	_, err := Project(twoLevelTable(), []string{"rho", "vx", "mass"}, Res(4),
		Logger(logger), Progress(func(done, total int) {
			assert.Equal(t, 3, total)
			calls = append(calls, done)
		}))
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, calls)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.DebugLevel, hook.LastEntry().Level)
}

func TestRequestVars(t *testing.T) {
	req := NewRequest([]string{"rho", "acceleration"}, Units("g_cm3"),
		WithMode(Mean))
	vs, err := req.Vars()
	require.NoError(t, err)
	require.Len(t, vs, 5)
	for _, v := range vs {
		assert.Equal(t, "g_cm3", v.Unit)
		assert.Equal(t, Mean, v.Mode)
	}
	assert.Equal(t, "a", vs[4].Name)
}

func TestResultImmutable(t *testing.T) {
	tab := twoLevelTable()
	res, err := Project(tab, []string{"rho"}, Res(8))
	require.NoError(t, err)

	m := res.Map("rho")
	x00 := m.At(0, 0)
	v := m.Values()
	v.Shape[0] = 2
	v.Elements[0] = -1

	assert.Equal(t, [2]int{8, 8}, m.Shape())
	assert.Equal(t, []int{8, 8}, res.Map("rho").Values().Shape)
	assert.Equal(t, x00, m.At(0, 0))

	names := res.Names()
	names[0] = "T"
	assert.Equal(t, []string{"rho"}, res.Names())
	assert.Equal(t, "rho", res.Map("rho").Name())
}

func TestSumPixelVolume(t *testing.T) {
	tab := cubeTable(1, func(i, j, k int) float64 { return 1 })
	tab.Info.Boxlen = 2

	res, err := Project(tab, []string{"rho", "mass"}, Res(2))
	require.NoError(t, err)

	boxVolume := math.Pow(tab.Info.Boxlen, 3)
	assert.InDelta(t, 1.0, res.Map("rho").Total(), 1e-12)
	assert.InDelta(t, 8.0, res.Map("mass").Total(), 1e-12)
	assert.InDelta(t,
		res.Map("mass").Total(), res.Map("rho").Total()*boxVolume, 1e-12,
	)
}

func TestAliasUnits(t *testing.T) {
	req := NewRequest([]string{"rho", "velocity"},
		Units("g_cm3", "km_s"), Modes(Sum, Mean))
	vs, err := req.Vars()
	require.NoError(t, err)
	require.Len(t, vs, 5)

	assert.Equal(t, Var{"rho", "g_cm3", Sum}, vs[0])
	for _, v := range vs[1:] {
		assert.Equal(t, "km_s", v.Unit, v.Name)
		assert.Equal(t, Mean, v.Mode, v.Name)
	}

	req = NewRequest([]string{"rho", "velocity"},
		Units("g_cm3", "km_s", "km_s", "standard", "km_s"))
	vs, err = req.Vars()
	require.NoError(t, err)
	assert.Equal(t, "standard", vs[3].Unit)

	_, err = Project(twoLevelTable(), []string{"rho", "velocity"}, Res(2),
		Units("g_cm3", "km_s"))
	assert.NoError(t, err)
}

func TestManagerPoolSize(t *testing.T) {
	man := &Manager{workers: 8, spaces: make([]workspace, 3)}

	table := []struct {
		workers, pool int
	}{
		{1, 3}, {3, 2}, {4, 2}, {8, 1},
	}
	for i, test := range table {
		if pool := man.poolSize(test.workers); pool != test.pool {
			t.Errorf("%d) Expected pool of %d for %d workers, got %d.",
				i, test.pool, test.workers, pool)
		}
	}

	man.workers = 1
	assert.Equal(t, 1, man.poolSize(1))
}
