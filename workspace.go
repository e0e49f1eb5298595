package goramses

import (
	"github.com/phil-mansfield/goramses/density"
	"github.com/phil-mansfield/goramses/vars"
)

// The workflow here is that every requested variable is resolved into a
// workspace before anything is deposited. A workspace holds everything one
// map needs and shares only read-only state with the others, so the manager
// can run them in any order.
type workspace struct {
	v    Var
	intr density.Interpolator
	res  *density.Result
}

// geometry builds an Interpolator for the given mode, values and weights.
type geometry func(mode Mode, val, weight density.Field) density.Interpolator

// newWorkspaces resolves every variable and the weighting variable of req
// against src. Any failure aborts the whole batch.
func newWorkspaces(src vars.Source, vs []Var, req *Request, geo geometry) ([]workspace, error) {
	weight := density.Field{}
	if req.weight != "" {
		wv, err := vars.Lookup(src, req.weight)
		if err != nil {
			return nil, err
		}
		vals, err := wv.Resolve(src, req.weightUnit)
		if err != nil {
			return nil, err
		}
		weight = density.Field{Values: vals, Extensive: wv.Extensive}
	}

	ws := make([]workspace, len(vs))
	for i, v := range vs {
		variable, err := vars.Lookup(src, v.Name)
		if err != nil {
			return nil, err
		}
		vals, err := variable.Resolve(src, v.Unit)
		if err != nil {
			return nil, err
		}

		val := density.Field{Values: vals, Extensive: variable.Extensive}
		ws[i].v = v
		ws[i].intr = geo(v.Mode, val, weight)
	}
	return ws, nil
}
