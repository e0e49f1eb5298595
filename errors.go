package goramses

import (
	"errors"
	"fmt"

	"github.com/phil-mansfield/goramses/data"
	"github.com/phil-mansfield/goramses/density"
	"github.com/phil-mansfield/goramses/units"
	"github.com/phil-mansfield/goramses/vars"
)

// Errors returned by Project and friends. They are always wrapped with a
// message naming the offending parameter, so compare with errors.Is.
var (
	ErrUnknownVariable  = vars.ErrUnknownVariable
	ErrUnknownUnit      = units.ErrUnknownUnit
	ErrIncompatibleUnit = units.ErrIncompatibleUnit
	ErrMode             = density.ErrMode
	ErrTable            = data.ErrTable

	ErrResolution = errors.New("invalid resolution")
	ErrRange      = errors.New("invalid range")
	ErrMask       = errors.New("invalid mask")
	ErrDirection  = errors.New("invalid direction")
	ErrLevel      = errors.New("invalid level")
)

func errorf(sentinel error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}
