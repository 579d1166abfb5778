package dag

import (
	"encoding/json"
	"reflect"
	"slices"

	"github.com/brimdata/gather"
)

// A Main is a query plan: a sequence of operators where each operator
// consumes the rows produced by the one before it.
type Main struct {
	Body Seq `json:"body"`
}

type Op interface {
	opNode()
}

type Seq []Op

func (seq *Seq) Prepend(front Op) {
	*seq = append([]Op{front}, *seq...)
}

func (seq *Seq) Append(op Op) {
	*seq = append(*seq, op)
}

func (seq *Seq) Insert(at int, op Op) {
	*seq = slices.Insert(*seq, at, op)
}

func (seq *Seq) Delete(from, to int) {
	*seq = slices.Delete(*seq, from, to)
}

// Ops all have suffix "Op" except for sources, which have suffix "Scan".

type (
	// CollectOp groups its input by Groups and computes Aggs per group.
	// Method, EliminatedSort and MethodOverridden are set by the optimizer.
	CollectOp struct {
		Kind      string       `json:"kind" unpack:""`
		Groups    []Assignment `json:"groups"`
		Aggs      []Assignment `json:"aggregates"`
		Into      *Into        `json:"into,omitempty"`
		Keep      []*VarExpr   `json:"keep,omitempty"`
		CountInto *VarExpr     `json:"count_into,omitempty"`
		Options   gather.Value `json:"options"`
		// Resolved by the optimizer.
		Method           string `json:"method,omitempty"`
		EliminatedSort   bool   `json:"eliminated_sort,omitempty"`
		MethodOverridden bool   `json:"method_overridden,omitempty"`
		// Set when a hash collect is followed by SORT null: the output
		// order is the order of first occurrence of each group.
		Unsorted bool `json:"unsorted,omitempty"`
	}
	// CalcOp binds Var to the value of Expr (LET).
	CalcOp struct {
		Kind string   `json:"kind" unpack:""`
		Var  *VarExpr `json:"var"`
		Expr Expr     `json:"expr"`
	}
	FilterOp struct {
		Kind string `json:"kind" unpack:""`
		Expr Expr   `json:"expr"`
	}
	LimitOp struct {
		Kind      string       `json:"kind" unpack:""`
		Offset    int          `json:"offset"`
		Count     int          `json:"count"`
		FullCount bool         `json:"full_count,omitempty"`
		Options   gather.Value `json:"options"`
	}
	ReturnOp struct {
		Kind string `json:"kind" unpack:""`
		Expr Expr   `json:"expr"`
	}
	// SortOp sorts its input.  A SortOp whose only key is the literal
	// null (SORT null) does not sort and tells a preceding hash collect
	// not to order its output.
	SortOp struct {
		Kind    string       `json:"kind" unpack:""`
		Exprs   []SortExpr   `json:"exprs"`
		Options gather.Value `json:"options"`
		// Implicit marks a sort inserted by the optimizer.
		Implicit bool `json:"implicit,omitempty"`
	}
)

func (*CollectOp) opNode() {}
func (*CalcOp) opNode()    {}
func (*FilterOp) opNode()  {}
func (*LimitOp) opNode()   {}
func (*ReturnOp) opNode()  {}
func (*SortOp) opNode()    {}

// Sources.
type (
	// CollectionScan produces every document of a collection, binding
	// each to Var.
	CollectionScan struct {
		Kind       string       `json:"kind" unpack:""`
		Collection string       `json:"collection"`
		Var        *VarExpr     `json:"var"`
		Options    gather.Value `json:"options"`
	}
	// IndexScan produces the documents of a collection in the order of a
	// sorted index, binding each to Var.
	IndexScan struct {
		Kind       string       `json:"kind" unpack:""`
		Collection string       `json:"collection"`
		Index      string       `json:"index"`
		Var        *VarExpr     `json:"var"`
		Reverse    bool         `json:"reverse,omitempty"`
		Options    gather.Value `json:"options"`
	}
	// ValuesScan produces the elements of an array literal, binding each
	// to Var.  It stands in for subqueries and literal arrays in FOR.
	ValuesScan struct {
		Kind   string   `json:"kind" unpack:""`
		Var    *VarExpr `json:"var"`
		Values []Expr   `json:"values"`
	}
)

func (*CollectionScan) opNode() {}
func (*IndexScan) opNode()      {}
func (*ValuesScan) opNode()     {}

// Support types for Ops.
type (
	Assignment struct {
		Kind string   `json:"kind" unpack:""`
		LHS  *VarExpr `json:"lhs"`
		RHS  Expr     `json:"rhs"`
	}
	// Into is the INTO clause of a collect.  If Expr is nil, each group
	// retains an object of all variables in scope (or the Keep variables)
	// per input row.
	Into struct {
		Var  *VarExpr `json:"var"`
		Expr Expr     `json:"expr,omitempty"`
	}
)

func NewCollectionScan(collection, v string) *CollectionScan {
	return &CollectionScan{
		Kind:       "CollectionScan",
		Collection: collection,
		Var:        NewVar(v),
	}
}

func NewIndexScan(collection, index, v string, reverse bool) *IndexScan {
	return &IndexScan{
		Kind:       "IndexScan",
		Collection: collection,
		Index:      index,
		Var:        NewVar(v),
		Reverse:    reverse,
	}
}

func NewValuesScan(v string, values ...Expr) *ValuesScan {
	return &ValuesScan{Kind: "ValuesScan", Var: NewVar(v), Values: values}
}

func NewCollectOp(groups ...Assignment) *CollectOp {
	return &CollectOp{Kind: "CollectOp", Groups: groups}
}

func NewFilterOp(e Expr) *FilterOp {
	return &FilterOp{Kind: "FilterOp", Expr: e}
}

func NewCalcOp(v string, e Expr) *CalcOp {
	return &CalcOp{Kind: "CalcOp", Var: NewVar(v), Expr: e}
}

func NewLimitOp(offset, count int) *LimitOp {
	return &LimitOp{Kind: "LimitOp", Offset: offset, Count: count}
}

func NewReturnOp(e Expr) *ReturnOp {
	return &ReturnOp{Kind: "ReturnOp", Expr: e}
}

func NewSortOp(exprs ...SortExpr) *SortOp {
	return &SortOp{Kind: "SortOp", Exprs: exprs}
}

func NewAssignment(v string, e Expr) Assignment {
	return Assignment{Kind: "Assignment", LHS: NewVar(v), RHS: e}
}

// Implicit sorts are inserted by the optimizer.
func NewImplicitSortOp(exprs ...SortExpr) *SortOp {
	s := NewSortOp(exprs...)
	s.Implicit = true
	return s
}

// IsSortNull reports whether s is SORT null.
func (s *SortOp) IsSortNull() bool {
	if len(s.Exprs) != 1 {
		return false
	}
	lit, ok := s.Exprs[0].Key.(*Literal)
	return ok && lit.Value.IsNull()
}

// Vars returns the variables bound by c in output order: groups,
// aggregates, the INTO variable and the COUNT variable.
func (c *CollectOp) Vars() []*VarExpr {
	var out []*VarExpr
	for _, g := range c.Groups {
		out = append(out, g.LHS)
	}
	for _, a := range c.Aggs {
		out = append(out, a.LHS)
	}
	if c.Into != nil {
		out = append(out, c.Into.Var)
	}
	if c.CountInto != nil {
		out = append(out, c.CountInto)
	}
	return out
}

// SourceVar returns the variable bound by a source op or nil if op is not a
// source.
func SourceVar(op Op) *VarExpr {
	switch op := op.(type) {
	case *CollectionScan:
		return op.Var
	case *IndexScan:
		return op.Var
	case *ValuesScan:
		return op.Var
	}
	return nil
}

func CopySeq(seq Seq) Seq {
	var copies Seq
	for _, o := range seq {
		copies = append(copies, CopyOp(o))
	}
	return copies
}

func CopyOp(o Op) Op {
	if o == nil {
		panic("CopyOp nil")
	}
	b, err := json.Marshal(o)
	if err != nil {
		panic(err)
	}
	copy, err := UnmarshalOp(b)
	if err != nil {
		panic(err)
	}
	return copy
}

func WalkT[T any](v reflect.Value, post func(T) T) {
	switch v.Kind() {
	case reflect.Array, reflect.Slice:
		for i := range v.Len() {
			WalkT(v.Index(i), post)
		}
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			return
		}
		WalkT(v.Elem(), post)
	case reflect.Struct:
		for i := range v.NumField() {
			WalkT(v.Field(i), post)
		}
	}
	if v.CanSet() {
		if t, ok := v.Interface().(T); ok {
			v.Set(reflect.ValueOf(post(t)))
		}
	}
}
