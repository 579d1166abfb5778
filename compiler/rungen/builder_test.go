package rungen

import (
	"testing"

	"github.com/brimdata/gather"
	"github.com/brimdata/gather/compiler/dag"
	"github.com/brimdata/gather/order"
	"github.com/brimdata/gather/runtime"
	"github.com/brimdata/gather/runtime/exec"
	"github.com/brimdata/gather/sbuf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slotted(name string, slot int) *dag.VarExpr {
	v := dag.NewVar(name)
	v.Slot = slot
	return v
}

func TestWidth(t *testing.T) {
	scan := dag.NewValuesScan("x", dag.NewLiteral(gather.NewInt(1)))
	scan.Var.Slot = 0
	calc := dag.NewCalcOp("y", slotted("x", 0))
	calc.Var.Slot = 4
	main := &dag.Main{Body: dag.Seq{scan, calc, dag.NewReturnOp(slotted("y", 4))}}
	assert.Equal(t, 5, width(main))
}

func TestBuild(t *testing.T) {
	scan := dag.NewValuesScan("x", dag.NewLiteral(gather.NewInt(1)), dag.NewLiteral(gather.NewInt(2)))
	scan.Var.Slot = 0
	main := &dag.Main{Body: dag.Seq{
		scan,
		dag.NewSortOp(dag.NewSortExpr(dag.NewLiteral(gather.Null), order.Asc)),
		dag.NewReturnOp(dag.NewBinaryExpr("-", slotted("x", 0), dag.NewLiteral(gather.NewInt(1)))),
	}}
	rctx := runtime.DefaultContext()
	puller, err := NewBuilder(rctx, exec.NewEnvironment(nil, nil, nil)).Build(main)
	require.NoError(t, err)
	rows, err := sbuf.ReadAll(puller)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "0", rows[0][0].String())
	assert.Equal(t, "1", rows[1][0].String())
}

func TestBuildErrors(t *testing.T) {
	b := NewBuilder(runtime.DefaultContext(), exec.NewEnvironment(nil, nil, nil))
	_, err := b.Build(&dag.Main{})
	assert.Error(t, err)
	_, err = b.Build(&dag.Main{Body: dag.Seq{dag.NewReturnOp(dag.NewLiteral(gather.Null))}})
	assert.ErrorContains(t, err, "instead of a source")
	_, err = b.Build(&dag.Main{Body: dag.Seq{dag.NewCollectionScan("missing", "d")}})
	assert.Error(t, err)
	_, err = b.compileExpr(dag.NewBinaryExpr("=~", dag.NewLiteral(gather.Null), dag.NewLiteral(gather.Null)))
	assert.ErrorContains(t, err, "unknown operator")
	_, err = b.compileExpr(dag.NewVar("unresolved"))
	assert.ErrorContains(t, err, "no slot")
}

func TestBuildCollect(t *testing.T) {
	scan := dag.NewValuesScan("x",
		dag.NewLiteral(gather.NewInt(2)),
		dag.NewLiteral(gather.NewInt(1)),
		dag.NewLiteral(gather.NewInt(2)))
	scan.Var.Slot = 0
	collect := dag.NewCollectOp(dag.Assignment{LHS: slotted("g", 1), RHS: slotted("x", 0)})
	collect.Method = "hash"
	main := &dag.Main{Body: dag.Seq{scan, collect, dag.NewReturnOp(slotted("g", 1))}}
	require.Nil(t, collect.CountInto)
	assert.Equal(t, 2, width(main))
	puller, err := NewBuilder(runtime.DefaultContext(), exec.NewEnvironment(nil, nil, nil)).Build(main)
	require.NoError(t, err)
	rows, err := sbuf.ReadAll(puller)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2", rows[0][0].String())
	assert.Equal(t, "1", rows[1][0].String())
}
