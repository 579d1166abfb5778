package explain

import (
	"context"

	"github.com/alecthomas/kingpin/v2"
	"github.com/brimdata/gather/cli/outputflags"
	"github.com/brimdata/gather/cli/queryflags"
	"github.com/brimdata/gather/cmd/gather/root"
	"github.com/brimdata/gather/compiler"
	"github.com/brimdata/gather/runtime"
)

type Command struct {
	*root.Command
	queryFlags  queryflags.Flags
	outputFlags outputflags.Flags
}

func Register(app *kingpin.Application, parent *root.Command) {
	c := &Command{Command: parent}
	cmd := app.Command("explain", "print the optimized plan of a JSON plan")
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
	rctx := runtime.NewContext(context.Background(), opts, env.Logger)
	defer rctx.Cancel()
	e, err := compiler.Explain(rctx, env, main)
	if err != nil {
		return err
	}
	w, err := c.outputFlags.Open()
	if err != nil {
		return err
	}
	if err := w.WriteJSON(e); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
