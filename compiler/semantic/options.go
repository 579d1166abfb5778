package semantic

import (
	"slices"

	"github.com/brimdata/gather"
	"github.com/brimdata/gather/qerr"
)

// An option is an attribute recognized in the OPTIONS of a clause.  valid
// reports whether a value is acceptable for it.
type option struct {
	name  string
	valid func(gather.Value) bool
}

func isBool(v gather.Value) bool { return v.Kind() == gather.KindBool }

func oneOf(vals ...string) func(gather.Value) bool {
	return func(v gather.Value) bool {
		return v.IsString() && slices.Contains(vals, v.Str())
	}
}

func stringOrStrings(v gather.Value) bool {
	if v.IsString() {
		return true
	}
	if !v.IsArray() {
		return false
	}
	for _, elem := range v.Array() {
		if !elem.IsString() {
			return false
		}
	}
	return true
}

var (
	collectOptions = []option{
		{"method", oneOf("hash", "sorted")},
		{"forceMethod", isBool},
	}
	scanOptions = []option{
		{"indexHint", stringOrStrings},
		{"forceIndexHint", isBool},
		{"disableIndex", isBool},
	}
	// SORT and LIMIT recognize no options.
	noOptions []option
)

// checkOptions adds a warning for every attribute of opts that is not
// recognized for clause or whose value is invalid.  Options never fail a
// query.
func (a *analyzer) checkOptions(clause string, opts gather.Value, known []option) {
	if opts.IsNull() {
		return
	}
	if !opts.IsObject() {
		a.warnings.Add(qerr.KindInvalidOptionsAttribute, "%s OPTIONS must be an object, got %s", clause, opts.Kind())
		return
	}
	for _, f := range opts.Fields() {
		i := slices.IndexFunc(known, func(o option) bool { return o.name == f.Name })
		if i < 0 {
			a.warnings.Add(qerr.KindInvalidOptionsAttribute, "invalid OPTIONS attribute found for %s: %s", clause, f.Name)
			continue
		}
		if !known[i].valid(f.Value) {
			a.warnings.Add(qerr.KindInvalidOptionsAttribute, "invalid value for %s OPTIONS attribute '%s': %s", clause, f.Name, f.Value)
		}
	}
}
