package dag

import (
	"fmt"

	"github.com/brimdata/gather/pkg/unpack"
)

var unpacker = unpack.New(
	ArrayExpr{},
	Assignment{},
	BinaryExpr{},
	CalcOp{},
	CallExpr{},
	CollectOp{},
	CollectionScan{},
	CondExpr{},
	DotExpr{},
	FilterOp{},
	IndexExpr{},
	IndexScan{},
	LimitOp{},
	Literal{},
	ObjectExpr{},
	ReturnOp{},
	SortOp{},
	UnaryExpr{},
	ValuesScan{},
	VarExpr{},
)

// UnmarshalOp transforms a JSON representation of an operator into an Op.
func UnmarshalOp(buf []byte) (Op, error) {
	var op Op
	if err := unpacker.Unmarshal(buf, &op); err != nil {
		return nil, fmt.Errorf("internal error: JSON object is not a DAG operator: %w", err)
	}
	return op, nil
}

// UnmarshalMain transforms a JSON representation of a plan into a Main.
func UnmarshalMain(buf []byte) (*Main, error) {
	var main Main
	if err := unpacker.Unmarshal(buf, &main); err != nil {
		return nil, err
	}
	return &main, nil
}
