package function

import (
	"errors"
	"strings"

	"github.com/brimdata/gather/runtime/sam/expr"
)

var (
	ErrNoSuchFunction = errors.New("no such function")
	ErrTooFewArgs     = errors.New("too few arguments")
	ErrTooManyArgs    = errors.New("too many arguments")
)

// New returns the scalar function called name (case insensitive) for a
// call with narg arguments.
func New(name string, narg int) (expr.Function, error) {
	argmin := 1
	argmax := 1
	var f expr.Function
	switch strings.ToUpper(name) {
	case "ABS":
		f = &mathFn{fn: abs}
	case "ATTRIBUTES":
		argmax = 2
		f = &Attributes{}
	case "AVERAGE", "AVG":
		f = newArrayReducer("AVERAGE")
	case "CEIL":
		f = &mathFn{fn: ceil}
	case "CONCAT":
		argmin, argmax = 0, -1
		f = &Concat{}
	case "CONTAINS":
		argmin, argmax = 2, 2
		f = &Contains{}
	case "COUNT_DISTINCT", "COUNT_UNIQUE":
		f = newArrayReducer("COUNT_DISTINCT")
	case "FAIL":
		argmin = 0
		f = &Fail{}
	case "FIRST":
		f = &First{}
	case "FLOOR":
		f = &mathFn{fn: floor}
	case "HAS":
		argmin, argmax = 2, 2
		f = &Has{}
	case "IS_ARRAY", "IS_LIST":
		f = &isKind{is: isArray}
	case "IS_BOOL":
		f = &isKind{is: isBool}
	case "IS_NULL":
		f = &isKind{is: isNull}
	case "IS_NUMBER":
		f = &isKind{is: isNumber}
	case "IS_OBJECT", "IS_DOCUMENT":
		f = &isKind{is: isObject}
	case "IS_STRING":
		f = &isKind{is: isString}
	case "LAST":
		f = &Last{}
	case "LENGTH", "COUNT":
		f = &Length{}
	case "LOWER":
		f = &ToLower{}
	case "MAX":
		f = newArrayReducer("MAX")
	case "MIN":
		f = newArrayReducer("MIN")
	case "NOT_NULL":
		argmin, argmax = 0, -1
		f = &NotNull{}
	case "PUSH":
		argmin, argmax = 2, 3
		f = &Push{}
	case "RANGE":
		argmin, argmax = 2, 3
		f = &Range{}
	case "ROUND":
		f = &mathFn{fn: round}
	case "SORTED":
		f = &Sorted{}
	case "SORTED_UNIQUE":
		f = newArrayReducer("SORTED_UNIQUE")
	case "SQRT":
		f = &mathFn{fn: sqrt}
	case "SUBSTRING":
		argmin, argmax = 2, 3
		f = &Substring{}
	case "SUM":
		f = newArrayReducer("SUM")
	case "TO_ARRAY", "TO_LIST":
		f = &ToArray{}
	case "TO_BOOL":
		f = &ToBool{}
	case "TO_NUMBER":
		f = &ToNumber{}
	case "TO_STRING":
		f = &ToString{}
	case "TYPENAME":
		f = &TypeName{}
	case "UNIQUE":
		f = newArrayReducer("UNIQUE")
	case "UPPER":
		f = &ToUpper{}
	default:
		return nil, ErrNoSuchFunction
	}
	if err := CheckArgCount(narg, argmin, argmax); err != nil {
		return nil, err
	}
	return f, nil
}

func CheckArgCount(narg int, argmin int, argmax int) error {
	if argmin != -1 && narg < argmin {
		return ErrTooFewArgs
	}
	if argmax != -1 && narg > argmax {
		return ErrTooManyArgs
	}
	return nil
}

// IsTypePredicate reports whether name is a function testing the kind of
// its argument.
func IsTypePredicate(name string) bool {
	switch strings.ToUpper(name) {
	case "IS_ARRAY", "IS_LIST", "IS_BOOL", "IS_NULL", "IS_NUMBER", "IS_OBJECT", "IS_DOCUMENT", "IS_STRING":
		return true
	}
	return false
}
