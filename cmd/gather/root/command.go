package root

import (
	"github.com/alecthomas/kingpin/v2"
	"github.com/brimdata/gather/cli/dbflags"
	"github.com/brimdata/gather/cli/logflags"
	"github.com/brimdata/gather/metrics"
	"github.com/brimdata/gather/runtime/exec"
	"go.uber.org/zap"
)

// Command holds the flags shared by every subcommand.
type Command struct {
	LogFlags logflags.Flags
	DBFlags  dbflags.Flags
}

func New() (*kingpin.Application, *Command) {
	app := kingpin.New("gather", "run COLLECT queries over document collections")
	app.HelpFlag.Short('h')
	c := &Command{}
	c.LogFlags.SetFlags(app)
	c.DBFlags.SetFlags(app)
	return app, c
}

// Environment loads the database into memory and returns the environment
// that queries run against.
func (c *Command) Environment() (*exec.Environment, error) {
	logger, err := c.LogFlags.Logger()
	if err != nil {
		return nil, err
	}
	cat, err := c.DBFlags.Catalog(logger)
	if err != nil {
		return nil, err
	}
	logger.Debug("database loaded", zap.String("path", c.DBFlags.Path), zap.Strings("collections", cat.Names()))
	return exec.NewEnvironment(cat, logger, metrics.New(nil)), nil
}
