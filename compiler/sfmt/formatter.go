// Package sfmt formats query plans and expressions as query text.
package sfmt

import (
	"fmt"
	"strings"
)

type formatter struct {
	strings.Builder
	indent int
	tab    int
}

func (f *formatter) write(args ...any) {
	if len(args) == 1 {
		f.WriteString(args[0].(string))
		return
	}
	f.WriteString(fmt.Sprintf(args[0].(string), args[1:]...))
}

func (f *formatter) line() {
	f.WriteString("\n")
	f.WriteString(strings.Repeat(" ", f.indent))
}

func (f *formatter) open() {
	f.indent += f.tab
}

func (f *formatter) close() {
	f.indent = max(f.indent-f.tab, 0)
}

func needsparens(parent, op string) bool {
	return precedence(parent)-precedence(op) < 0
}

func precedence(op string) int {
	switch op {
	case "!", "not":
		return 1
	case "*", "/", "%":
		return 3
	case "+", "-":
		return 4
	case "<", "<=", ">", ">=", "==", "!=", "in", "not in":
		return 5
	case "&&", "and":
		return 6
	case "||", "or":
		return 7
	case "?":
		return 8
	default:
		return 100
	}
}
