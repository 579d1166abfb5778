package run

import (
	"context"
	"os"
	"os/signal"

	"github.com/alecthomas/kingpin/v2"
	"github.com/brimdata/gather/cli/outputflags"
	"github.com/brimdata/gather/cli/queryflags"
	"github.com/brimdata/gather/cmd/gather/root"
	"github.com/brimdata/gather/compiler"
	"github.com/brimdata/gather/runtime"
	"github.com/brimdata/gather/sbuf"
)

type Command struct {
	*root.Command
	queryFlags  queryflags.Flags
	outputFlags outputflags.Flags
}

func Register(app *kingpin.Application, parent *root.Command) {
	c := &Command{Command: parent}
	cmd := app.Command("run", "run a JSON plan and write its results as JSON lines")
	c.queryFlags.SetFlags(cmd)
	c.outputFlags.SetFlags(cmd)
	cmd.Action(func(*kingpin.ParseContext) error {
		return c.Run()
	})
}

func (c *Command) Run() error {
	opts, err := c.queryFlags.Options()
	if err != nil {
		return err
	}
	main, err := c.queryFlags.Plan()
	if err != nil {
		return err
	}
	env, err := c.Environment()
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	rctx := runtime.NewContext(ctx, opts, env.Logger)
	q, err := compiler.Run(rctx, env, main)
	if err != nil {
		return err
	}
	defer q.Close()
	queryflags.PrintWarnings(q.Warnings())
	w, err := c.outputFlags.Open()
	if err != nil {
		return err
	}
	if err := sbuf.CopyPuller(w, q); err != nil {
		w.Close()
		return err
	}
	c.queryFlags.PrintStats(rctx)
	return w.Close()
}
