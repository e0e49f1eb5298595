/*package geom contains the axis conventions, coordinate ranges and pixel grids
used when projecting box-fraction coordinates onto images.
*/
package geom

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAxis is returned for unrecognized direction or plane names.
var ErrAxis = errors.New("unrecognized axis")

// Axis is one of the three spatial dimensions. When used as a projection
// direction, it is the axis which gets integrated out.
type Axis int

const (
	X Axis = iota
	Y
	Z
)

func (a Axis) String() string {
	switch a {
	case X:
		return "x"
	case Y:
		return "y"
	case Z:
		return "z"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// Valid returns true if a is X, Y, or Z.
func (a Axis) Valid() bool { return a >= X && a <= Z }

// Plane returns the dimensions of the image plane for a projection along a.
// iDim is the first image axis and jDim is the second.
func (a Axis) Plane() (iDim, jDim int) {
	iDim, jDim = 0, 1
	if a == X {
		iDim, jDim = 1, 2
	}
	if a == Y {
		iDim, jDim = 0, 2
	}
	return iDim, jDim
}

// PlaneName returns the two-letter name of the image plane, e.g. "xy" for a
// projection along z.
func (a Axis) PlaneName() string {
	iDim, jDim := a.Plane()
	return Axis(iDim).String() + Axis(jDim).String()
}

// ParseAxis converts "x", "y", or "z" (in any case) into an Axis.
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x":
		return X, nil
	case "y":
		return Y, nil
	case "z":
		return Z, nil
	}
	return -1, fmt.Errorf("%w: direction '%s' must be one of x, y, z",
		ErrAxis, s)
}

// ParsePlane converts a plane name such as "xy" or "zx" into the projection
// direction normal to it.
func ParsePlane(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "xy", "yx":
		return Z, nil
	case "xz", "zx":
		return Y, nil
	case "yz", "zy":
		return X, nil
	}
	return -1, fmt.Errorf("%w: plane '%s' must be one of xy, xz, yz",
		ErrAxis, s)
}
