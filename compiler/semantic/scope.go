package semantic

import (
	"github.com/brimdata/gather/compiler/dag"
	"github.com/brimdata/gather/qerr"
)

// Scope holds the variables visible to an operator.  A COLLECT replaces
// the scope with one holding only the variables it binds.
type Scope struct {
	symbols map[string]*entry
	order   []string
}

func NewScope() *Scope {
	return &Scope{symbols: make(map[string]*entry)}
}

type entry struct {
	ref   *dag.VarExpr
	order int
}

func (s *Scope) define(v *dag.VarExpr) {
	s.symbols[v.Name] = &entry{ref: v, order: len(s.order)}
	s.order = append(s.order, v.Name)
}

func (s *Scope) lookup(name string) *dag.VarExpr {
	if e, ok := s.symbols[name]; ok {
		return e.ref
	}
	return nil
}

// Vars returns the variables of s in the order they were defined.
func (s *Scope) Vars() []*dag.VarExpr {
	vars := make([]*dag.VarExpr, 0, len(s.order))
	for _, name := range s.order {
		vars = append(vars, s.symbols[name].ref)
	}
	return vars
}

// slots assigns row slots to variables.  Variable names are unique within
// a query so that sort orders can be tracked by name.
type slots struct {
	n       int
	defined map[string]bool
}

func (s *slots) define(scope *Scope, v *dag.VarExpr) error {
	if v == nil || v.Name == "" {
		return qerr.Structural("variable name is missing")
	}
	if s.defined[v.Name] {
		return qerr.Structural("variable '%s' is assigned multiple times", v.Name)
	}
	s.defined[v.Name] = true
	v.Slot = s.n
	s.n++
	scope.define(v)
	return nil
}
