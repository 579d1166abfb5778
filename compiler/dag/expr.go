package dag

import (
	"encoding/json"
	"reflect"

	"github.com/brimdata/gather"
	"github.com/brimdata/gather/order"
	"github.com/brimdata/gather/pkg/field"
)

type Expr interface {
	exprNode()
}

// Exprs

type (
	ArrayExpr struct {
		Kind  string `json:"kind" unpack:""`
		Elems []Expr `json:"elems"`
	}
	BinaryExpr struct {
		Kind string `json:"kind" unpack:""`
		Op   string `json:"op"`
		LHS  Expr   `json:"lhs"`
		RHS  Expr   `json:"rhs"`
	}
	// CallExpr is a function call.  In the aggregates of a CollectOp, Name
	// is an aggregate function.
	CallExpr struct {
		Kind string `json:"kind" unpack:""`
		Name string `json:"name"`
		Args []Expr `json:"args"`
	}
	CondExpr struct {
		Kind string `json:"kind" unpack:""`
		Cond Expr   `json:"cond"`
		Then Expr   `json:"then"`
		Else Expr   `json:"else"`
	}
	DotExpr struct {
		Kind string `json:"kind" unpack:""`
		LHS  Expr   `json:"lhs"`
		RHS  string `json:"rhs"`
	}
	IndexExpr struct {
		Kind  string `json:"kind" unpack:""`
		Expr  Expr   `json:"expr"`
		Index Expr   `json:"index"`
	}
	Literal struct {
		Kind  string       `json:"kind" unpack:""`
		Value gather.Value `json:"value"`
	}
	ObjectExpr struct {
		Kind   string  `json:"kind" unpack:""`
		Fields []Field `json:"fields"`
	}
	SortExpr struct {
		Key   Expr        `json:"key"`
		Order order.Which `json:"order"`
	}
	UnaryExpr struct {
		Kind    string `json:"kind" unpack:""`
		Op      string `json:"op"`
		Operand Expr   `json:"operand"`
	}
	// VarExpr is a variable reference.  Slot is the index of the variable
	// in a row and is assigned by the semantic pass.
	VarExpr struct {
		Kind string `json:"kind" unpack:""`
		Name string `json:"name"`
		Slot int    `json:"slot"`
	}
)

func (*ArrayExpr) exprNode()  {}
func (*BinaryExpr) exprNode() {}
func (*CallExpr) exprNode()   {}
func (*CondExpr) exprNode()   {}
func (*DotExpr) exprNode()    {}
func (*IndexExpr) exprNode()  {}
func (*Literal) exprNode()    {}
func (*ObjectExpr) exprNode() {}
func (*UnaryExpr) exprNode()  {}
func (*VarExpr) exprNode()    {}

type Field struct {
	Name  string `json:"name"`
	Value Expr   `json:"value"`
}

func NewBinaryExpr(op string, lhs, rhs Expr) *BinaryExpr {
	return &BinaryExpr{
		Kind: "BinaryExpr",
		Op:   op,
		LHS:  lhs,
		RHS:  rhs,
	}
}

func NewCall(name string, args ...Expr) *CallExpr {
	return &CallExpr{
		Kind: "CallExpr",
		Name: name,
		Args: args,
	}
}

func NewDot(lhs Expr, rhs string) *DotExpr {
	return &DotExpr{"DotExpr", lhs, rhs}
}

func NewArrayExpr(elems ...Expr) *ArrayExpr {
	return &ArrayExpr{"ArrayExpr", elems}
}

func NewObjectExpr(fields ...Field) *ObjectExpr {
	return &ObjectExpr{"ObjectExpr", fields}
}

func NewIndexExpr(e, index Expr) *IndexExpr {
	return &IndexExpr{"IndexExpr", e, index}
}

func NewLiteral(v gather.Value) *Literal {
	return &Literal{"Literal", v}
}

func NewUnaryExpr(op string, e Expr) *UnaryExpr {
	return &UnaryExpr{"UnaryExpr", op, e}
}

func NewVar(name string) *VarExpr {
	return &VarExpr{Kind: "VarExpr", Name: name, Slot: -1}
}

func NewSortExpr(key Expr, which order.Which) SortExpr {
	return SortExpr{Key: key, Order: which}
}

// Path returns the attribute path of e relative to the variable it is
// rooted at, or nil if e is not a chain of attribute accesses on a variable.
func Path(e Expr) (*VarExpr, field.Path) {
	switch e := e.(type) {
	case *VarExpr:
		return e, field.Path{}
	case *DotExpr:
		v, path := Path(e.LHS)
		if v == nil {
			return nil, nil
		}
		return v, append(path, e.RHS)
	case *IndexExpr:
		lit, ok := e.Index.(*Literal)
		if !ok || !lit.Value.IsString() {
			return nil, nil
		}
		v, path := Path(e.Expr)
		if v == nil {
			return nil, nil
		}
		return v, append(path, lit.Value.Str())
	}
	return nil, nil
}

// FullPath returns the path of e including the name of its root variable
// as the first element, or nil if e is not a path.
func FullPath(e Expr) field.Path {
	v, path := Path(e)
	if v == nil {
		return nil
	}
	return append(field.Path{v.Name}, path...)
}

// Vars returns the variables referenced by e.
func Vars(e Expr) []*VarExpr {
	var vars []*VarExpr
	WalkT(reflect.ValueOf(&e).Elem(), func(v *VarExpr) *VarExpr {
		vars = append(vars, v)
		return v
	})
	return vars
}

func CopyExpr(e Expr) Expr {
	if e == nil {
		panic("CopyExpr nil")
	}
	b, err := json.Marshal(e)
	if err != nil {
		panic(err)
	}
	var copy Expr
	if err := unpacker.Unmarshal(b, &copy); err != nil {
		panic(err)
	}
	return copy
}
