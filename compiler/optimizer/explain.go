package optimizer

import (
	"github.com/brimdata/gather/compiler/dag"
	"github.com/brimdata/gather/compiler/sfmt"
	"github.com/brimdata/gather/order"
	"github.com/brimdata/gather/qerr"
	"github.com/brimdata/gather/storage"
)

// Explain is the introspection result of a query: its optimized plan as a
// list of nodes, the rules that shaped it and the warnings found while
// compiling it.
type Explain struct {
	Plan     Plan           `json:"plan"`
	Warnings []qerr.Warning `json:"warnings"`
}

type Plan struct {
	Nodes []Node   `json:"nodes"`
	Rules []string `json:"rules"`
}

type Variable struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Assignment struct {
	OutVariable Variable `json:"outVariable"`
	Expression  string   `json:"expression"`
}

type Aggregate struct {
	OutVariable Variable `json:"outVariable"`
	Type        string   `json:"type"`
	Expression  string   `json:"expression"`
}

type SortElement struct {
	Expression string `json:"expression"`
	Ascending  bool   `json:"ascending"`
}

type CollectOptions struct {
	Method string `json:"method"`
}

// A Node is one step of an explained plan.  Fields that do not apply to a
// node's type are omitted.
type Node struct {
	Type         string    `json:"type"`
	ID           int       `json:"id"`
	Dependencies []int     `json:"dependencies"`
	Collection   string    `json:"collection,omitempty"`
	OutVariable  *Variable `json:"outVariable,omitempty"`
	Expression   string    `json:"expression,omitempty"`

	// IndexNode
	Indexes []storage.IndexDef `json:"indexes,omitempty"`
	Reverse bool               `json:"reverse,omitempty"`

	// SortNode
	Elements []SortElement `json:"elements,omitempty"`
	Implicit bool          `json:"implicit,omitempty"`

	// LimitNode
	Offset    *int `json:"offset,omitempty"`
	Limit     *int `json:"limit,omitempty"`
	FullCount bool `json:"fullCount,omitempty"`

	// CollectNode
	CollectOptions   *CollectOptions `json:"collectOptions,omitempty"`
	Groups           []Assignment    `json:"groups,omitempty"`
	Aggregates       []Aggregate     `json:"aggregates,omitempty"`
	Into             *Assignment     `json:"into,omitempty"`
	CountVariable    *Variable       `json:"countVariable,omitempty"`
	EliminatedSort   bool            `json:"eliminatedSort,omitempty"`
	MethodOverridden bool            `json:"methodOverridden,omitempty"`
}

func variable(v *dag.VarExpr) *Variable {
	return &Variable{ID: v.Slot, Name: v.Name}
}

// Explain renders an optimized plan.
func (o *Optimizer) Explain(main *dag.Main, warnings qerr.Warnings) *Explain {
	nodes := []Node{{Type: "SingletonNode", ID: 1, Dependencies: []int{}}}
	for _, op := range main.Body {
		id := len(nodes) + 1
		node := o.node(op)
		node.ID = id
		node.Dependencies = []int{id - 1}
		nodes = append(nodes, node)
	}
	rules := o.Applied()
	if rules == nil {
		rules = []string{}
	}
	if warnings == nil {
		warnings = qerr.Warnings{}
	}
	return &Explain{
		Plan:     Plan{Nodes: nodes, Rules: rules},
		Warnings: warnings,
	}
}

func (o *Optimizer) node(op dag.Op) Node {
	switch op := op.(type) {
	case *dag.CollectionScan:
		return Node{
			Type:        "EnumerateCollectionNode",
			Collection:  op.Collection,
			OutVariable: variable(op.Var),
		}
	case *dag.IndexScan:
		node := Node{
			Type:        "IndexNode",
			Collection:  op.Collection,
			OutVariable: variable(op.Var),
			Reverse:     op.Reverse,
		}
		for _, def := range o.indexes.Indexes(op.Collection) {
			if def.Name == op.Index {
				node.Indexes = append(node.Indexes, def)
			}
		}
		return node
	case *dag.ValuesScan:
		return Node{
			Type:        "EnumerateListNode",
			OutVariable: variable(op.Var),
			Expression:  sfmt.DAGExpr(dag.NewArrayExpr(op.Values...)),
		}
	case *dag.CalcOp:
		return Node{
			Type:        "CalculationNode",
			OutVariable: variable(op.Var),
			Expression:  sfmt.DAGExpr(op.Expr),
		}
	case *dag.FilterOp:
		return Node{Type: "FilterNode", Expression: sfmt.DAGExpr(op.Expr)}
	case *dag.SortOp:
		node := Node{Type: "SortNode", Implicit: op.Implicit}
		for _, e := range op.Exprs {
			node.Elements = append(node.Elements, SortElement{
				Expression: sfmt.DAGExpr(e.Key),
				Ascending:  e.Order == order.Asc,
			})
		}
		return node
	case *dag.LimitOp:
		return Node{
			Type:      "LimitNode",
			Offset:    &op.Offset,
			Limit:     &op.Count,
			FullCount: op.FullCount,
		}
	case *dag.CollectOp:
		return collectNode(op)
	case *dag.ReturnOp:
		return Node{Type: "ReturnNode", Expression: sfmt.DAGExpr(op.Expr)}
	}
	return Node{Type: "UnknownNode"}
}

func collectNode(c *dag.CollectOp) Node {
	node := Node{
		Type:             "CollectNode",
		CollectOptions:   &CollectOptions{Method: c.Method},
		EliminatedSort:   c.EliminatedSort,
		MethodOverridden: c.MethodOverridden,
	}
	for _, g := range c.Groups {
		node.Groups = append(node.Groups, Assignment{
			OutVariable: *variable(g.LHS),
			Expression:  sfmt.DAGExpr(g.RHS),
		})
	}
	for _, a := range c.Aggs {
		call := a.RHS.(*dag.CallExpr)
		node.Aggregates = append(node.Aggregates, Aggregate{
			OutVariable: *variable(a.LHS),
			Type:        call.Name,
			Expression:  sfmt.DAGExprs(call.Args),
		})
	}
	if c.Into != nil {
		node.Into = &Assignment{OutVariable: *variable(c.Into.Var)}
		if c.Into.Expr != nil {
			node.Into.Expression = sfmt.DAGExpr(c.Into.Expr)
		}
	}
	if c.CountInto != nil {
		node.CountVariable = variable(c.CountInto)
	}
	return node
}

// Count returns the number of nodes of plan of the given type.
func (p Plan) Count(typ string) int {
	var n int
	for _, node := range p.Nodes {
		if node.Type == typ {
			n++
		}
	}
	return n
}

// Find returns the nodes of plan of the given type.
func (p Plan) Find(typ string) []Node {
	var out []Node
	for _, node := range p.Nodes {
		if node.Type == typ {
			out = append(out, node)
		}
	}
	return out
}
