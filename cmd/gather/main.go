package main

import (
	"fmt"
	"os"

	"github.com/brimdata/gather/cmd/gather/explain"
	"github.com/brimdata/gather/cmd/gather/load"
	"github.com/brimdata/gather/cmd/gather/root"
	"github.com/brimdata/gather/cmd/gather/run"
	"github.com/brimdata/gather/qerr"
)

func main() {
	app, cmd := root.New()
	run.Register(app, cmd)
	explain.Register(app, cmd)
	load.Register(app, cmd)
	if _, err := app.Parse(os.Args[1:]); err != nil {
		if kind := qerr.KindOf(err); kind != qerr.KindUnknown {
			fmt.Fprintf(os.Stderr, "error %d: %s\n", kind.Code(), err)
		} else {
			fmt.Fprintf(os.Stderr, "gather: %s\n", err)
		}
		os.Exit(1)
	}
}
