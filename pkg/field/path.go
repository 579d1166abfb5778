package field

import (
	"slices"
	"strings"
)

// A Path names an attribute inside a document.  By convention the first
// element of a path into a query row is the variable name, e.g., the
// expression doc.a.b is the Path{"doc", "a", "b"}.
type Path []string

func New(name string) Path {
	return Path{name}
}

func Dotted(s string) Path {
	if s == "" {
		return nil
	}
	return strings.Split(s, ".")
}

func (p Path) String() string {
	return strings.Join(p, ".")
}

func (p Path) Equal(to Path) bool {
	return slices.Equal(p, to)
}

// Rebase returns p prefixed with root.  It is used to
// translate index attribute paths, which are relative to a document, into
// paths rooted at a scan variable.
func (p Path) Rebase(root string) Path {
	return append(Path{root}, p...)
}

// List is a list of paths.
type List []Path

func (l List) Has(in Path) bool {
	return slices.ContainsFunc(l, in.Equal)
}

func (l List) Equal(to List) bool {
	return slices.EqualFunc(l, to, Path.Equal)
}
