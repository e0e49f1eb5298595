package vars

var aliases = map[string][]string{
	"velocity":     {"vx", "vy", "vz", "v"},
	"acceleration": {"ax", "ay", "az", "a"},
}

// Expand replaces alias names with the variables they stand for. Order is
// preserved and later duplicates are dropped.
func Expand(names []string) []string {
	out, _ := ExpandIndex(names)
	return out
}

// ExpandIndex is Expand, but also returns the index of the name in names
// which produced each output variable.
func ExpandIndex(names []string) (out []string, origin []int) {
	out = make([]string, 0, len(names))
	origin = make([]int, 0, len(names))
	seen := map[string]bool{}

	add := func(name string, i int) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
			origin = append(origin, i)
		}
	}

	for i, name := range names {
		if group, ok := aliases[name]; ok {
			for _, member := range group {
				add(member, i)
			}
		} else {
			add(name, i)
		}
	}
	return out, origin
}
