// Package compiler turns a plan into a running query: the semantic pass
// validates the plan and assigns row slots, the optimizer rewrites it and
// rungen builds the puller graph.
package compiler

import (
	"github.com/brimdata/gather"
	"github.com/brimdata/gather/compiler/dag"
	"github.com/brimdata/gather/compiler/optimizer"
	"github.com/brimdata/gather/compiler/rungen"
	"github.com/brimdata/gather/compiler/semantic"
	"github.com/brimdata/gather/runtime"
	"github.com/brimdata/gather/runtime/exec"
	"github.com/brimdata/gather/sbuf"
)

// Compile analyzes and optimizes main, leaving main itself unmodified.
// Warnings are added to rctx.
func Compile(rctx *runtime.Context, env *exec.Environment, main *dag.Main) (*dag.Main, *optimizer.Optimizer, error) {
	if err := rctx.Options.Validate(); err != nil {
		return nil, nil, err
	}
	analyzed, err := semantic.Analyze(main, &rctx.Warnings)
	if err != nil {
		return nil, nil, err
	}
	o := optimizer.New(rctx.Logger, env, rctx.Options.Optimizer, &rctx.Warnings)
	return o.Optimize(analyzed, rctx.Options.FullCount), o, nil
}

// Explain returns the optimized plan of main without running it.
func Explain(rctx *runtime.Context, env *exec.Environment, main *dag.Main) (*optimizer.Explain, error) {
	optimized, o, err := Compile(rctx, env, main)
	if err != nil {
		return nil, err
	}
	return o.Explain(optimized, rctx.Warnings), nil
}

// Run compiles main and returns the query producing its results.  The
// caller pulls the query until end of stream or closes it.
func Run(rctx *runtime.Context, env *exec.Environment, main *dag.Main) (*exec.Query, error) {
	if rctx.Metrics == nil {
		rctx.Metrics = env.Metrics
	}
	optimized, _, err := Compile(rctx, env, main)
	if err != nil {
		return nil, err
	}
	puller, err := rungen.NewBuilder(rctx, env).Build(optimized)
	if err != nil {
		return nil, err
	}
	return exec.NewQuery(rctx, puller), nil
}

// RunAll runs main to completion and returns the RETURN values.
func RunAll(rctx *runtime.Context, env *exec.Environment, main *dag.Main) ([]gather.Value, error) {
	q, err := Run(rctx, env, main)
	if err != nil {
		return nil, err
	}
	defer q.Close()
	rows, err := sbuf.ReadAll(q)
	if err != nil {
		return nil, err
	}
	vals := make([]gather.Value, 0, len(rows))
	for _, row := range rows {
		vals = append(vals, row[0])
	}
	return vals, nil
}
