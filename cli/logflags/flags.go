package logflags

import (
	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Flags struct {
	level string
	dev   bool
}

func (f *Flags) SetFlags(app *kingpin.Application) {
	app.Flag("log-level", "logging level [debug,info,warn,error]").Default("warn").StringVar(&f.level)
	app.Flag("log-dev", "human-readable development logging").BoolVar(&f.dev)
}

// Logger returns a logger writing to stderr at the configured level.
func (f *Flags) Logger() (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(f.level)); err != nil {
		return nil, err
	}
	config := zap.NewProductionConfig()
	if f.dev {
		config = zap.NewDevelopmentConfig()
	}
	config.Level = zap.NewAtomicLevelAt(level)
	config.OutputPaths = []string{"stderr"}
	return config.Build()
}
