package agg

import (
	"fmt"
	"strings"

	"github.com/brimdata/gather"
	"github.com/brimdata/gather/pkg/anymath"
)

// A Function is the per-group state of an aggregate.
type Function interface {
	Consume(gather.Value)
	Result() gather.Value
	// Size returns an estimate of the memory held by the state.
	Size() int
}

type Pattern func() Function

// Names maps every aggregate function name, aliases included, to its
// canonical name.
var Names = map[string]string{
	"BIT_AND":             "BIT_AND",
	"BIT_OR":              "BIT_OR",
	"BIT_XOR":             "BIT_XOR",
	"AVERAGE":             "AVERAGE",
	"AVG":                 "AVERAGE",
	"COUNT":               "LENGTH",
	"LENGTH":              "LENGTH",
	"COUNT_DISTINCT":      "COUNT_DISTINCT",
	"COUNT_UNIQUE":        "COUNT_DISTINCT",
	"MAX":                 "MAX",
	"MIN":                 "MIN",
	"PUSH":                "PUSH",
	"SORTED_UNIQUE":       "SORTED_UNIQUE",
	"STDDEV":              "STDDEV_POPULATION",
	"STDDEV_POPULATION":   "STDDEV_POPULATION",
	"STDDEV_SAMPLE":       "STDDEV_SAMPLE",
	"SUM":                 "SUM",
	"UNIQUE":              "UNIQUE",
	"VARIANCE":            "VARIANCE_POPULATION",
	"VARIANCE_POPULATION": "VARIANCE_POPULATION",
	"VARIANCE_SAMPLE":     "VARIANCE_SAMPLE",
}

// Canonical returns the canonical name of the aggregate function name
// (case insensitive) and whether name is an aggregate function at all.
func Canonical(name string) (string, bool) {
	canon, ok := Names[strings.ToUpper(name)]
	return canon, ok
}

func NewPattern(name string) (Pattern, error) {
	canon, ok := Canonical(name)
	if !ok {
		return nil, fmt.Errorf("unknown aggregate function: %s", name)
	}
	var pattern Pattern
	switch canon {
	case "LENGTH":
		pattern = func() Function {
			var c Count
			return &c
		}
	case "MIN":
		pattern = func() Function {
			return &extreme{keep: func(c int) bool { return c < 0 }}
		}
	case "MAX":
		pattern = func() Function {
			return &extreme{keep: func(c int) bool { return c > 0 }}
		}
	case "SUM":
		pattern = func() Function {
			return &Sum{}
		}
	case "AVERAGE":
		pattern = func() Function {
			return &Avg{}
		}
	case "COUNT_DISTINCT":
		pattern = func() Function {
			return newDistinct(countDistinct)
		}
	case "UNIQUE":
		pattern = func() Function {
			return newDistinct(uniqueValues)
		}
	case "SORTED_UNIQUE":
		pattern = func() Function {
			return newDistinct(sortedValues)
		}
	case "PUSH":
		pattern = func() Function {
			return &Push{}
		}
	case "VARIANCE_POPULATION":
		pattern = func() Function {
			return &Variance{result: varPopulation}
		}
	case "VARIANCE_SAMPLE":
		pattern = func() Function {
			return &Variance{result: varSample}
		}
	case "STDDEV_POPULATION":
		pattern = func() Function {
			return &Variance{result: stddevPopulation}
		}
	case "STDDEV_SAMPLE":
		pattern = func() Function {
			return &Variance{result: stddevSample}
		}
	case "BIT_AND":
		pattern = func() Function {
			return newBitReducer(anymath.BitAnd)
		}
	case "BIT_OR":
		pattern = func() Function {
			return newBitReducer(anymath.BitOr)
		}
	case "BIT_XOR":
		pattern = func() Function {
			return newBitReducer(anymath.BitXor)
		}
	default:
		return nil, fmt.Errorf("unknown aggregate function: %s", name)
	}
	return pattern, nil
}
