// Package st holds the syntax tree produced by lowering a pt.Module:
// resolved registers, the Variable/Reference aliasing graph, and the
// is_mono/used_vars annotations described in spec.md §3–§4.3.
package st

// Variable is a logical user-visible value location (spec.md §3). Its
// integer ID is what used_vars bitsets record. References point at the
// Variable directly, so two references alias the same variable exactly
// when they hold the same *Variable.
type Variable struct {
	ID        int
	Exteriors map[string]bool
	Interiors map[string]bool
}

// newVariable creates a variable whose sole exterior is name.
func newVariable(id int, name string) *Variable {
	return &Variable{
		ID:        id,
		Exteriors: map[string]bool{name: true},
		Interiors: map[string]bool{},
	}
}

// SinglyOwned reports whether v has no interiors and exactly one
// exterior — the only shape that permits full consumption (unlet,
// steal, push).
func (v *Variable) SinglyOwned() bool {
	return len(v.Interiors) == 0 && len(v.Exteriors) == 1
}

// ResizableUnder reports whether v may be grown/shrunk through the
// reference named n: either v has no interiors at all, or its one
// interior is exactly n.
func (v *Variable) ResizableUnder(n string) bool {
	if len(v.Interiors) == 0 {
		return true
	}
	return len(v.Interiors) == 1 && v.Interiors[n]
}

// Reference is a named binding within the active function, aliasing a
// Variable (spec.md §3).
type Reference struct {
	IsInterior bool
	IsBorrowed bool
	Register   int
	Var        *Variable
}

// anchor names, synthesized to suppress resizes/removals that would
// otherwise be invisible to this function (spec.md §3).
const (
	CallerAnchor = "caller anchor"
	CallingScope = "calling scope"
)
