package queryflags

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/brimdata/gather/compiler/dag"
	"github.com/brimdata/gather/qerr"
	"github.com/brimdata/gather/runtime"
	"github.com/dustin/go-humanize"
)

type Flags struct {
	Stats       bool
	PlanFile    string
	optionsFile string
	memoryLimit string
	fullCount   bool
	batchSize   int
	rules       []string
}

func (f *Flags) SetFlags(cmd *kingpin.CmdClause) {
	cmd.Flag("options", "YAML file of query options").StringVar(&f.optionsFile)
	cmd.Flag("memory-limit", "memory ceiling of the query, e.g., 64MiB or auto (overrides -options)").StringVar(&f.memoryLimit)
	cmd.Flag("full-count", "count the rows the last LIMIT would return without its limit").BoolVar(&f.fullCount)
	cmd.Flag("batch-size", "rows per scan batch").IntVar(&f.batchSize)
	cmd.Flag("rule", "enable (+name) or disable (-name) optimizer rules; may be repeated").StringsVar(&f.rules)
	cmd.Flag("stats", "display execution stats on stderr").BoolVar(&f.Stats)
	cmd.Arg("plan", `JSON plan file ("-" for stdin)`).Required().StringVar(&f.PlanFile)
}

// Options returns the query options from the options file overridden by
// the command line.
func (f *Flags) Options() (runtime.Options, error) {
	var opts runtime.Options
	if f.optionsFile != "" {
		file, err := os.Open(f.optionsFile)
		if err != nil {
			return opts, err
		}
		defer file.Close()
		if opts, err = runtime.LoadOptions(file); err != nil {
			return opts, err
		}
	}
	if f.memoryLimit != "" {
		if err := opts.MemoryLimit.Set(f.memoryLimit); err != nil {
			return opts, err
		}
	}
	if f.fullCount {
		opts.FullCount = true
	}
	if f.batchSize != 0 {
		opts.BatchSize = f.batchSize
	}
	opts.Optimizer.Rules = append(opts.Optimizer.Rules, f.rules...)
	return opts, opts.Validate()
}

func (f *Flags) Plan() (*dag.Main, error) {
	var r io.Reader = os.Stdin
	if f.PlanFile != "-" {
		file, err := os.Open(f.PlanFile)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		r = file
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	main, err := dag.UnmarshalMain(b)
	if err != nil {
		return nil, qerr.Wrap(qerr.KindParseOrStructural, err, f.PlanFile)
	}
	return main, nil
}

func (f *Flags) PrintStats(rctx *runtime.Context) {
	if !f.Stats {
		return
	}
	s := rctx.Stats
	fmt.Fprintf(os.Stderr, "query %s: scannedFull %d, scannedIndex %d, filtered %d, peak memory %s, time %s\n",
		rctx.ID, s.ScannedFull, s.ScannedIndex, s.Filtered, humanize.IBytes(uint64(s.PeakMemoryUsage)), s.ExecutionTime)
	if rctx.Options.FullCount {
		fmt.Fprintf(os.Stderr, "fullCount %s\n", humanize.Comma(s.FullCount))
	}
}

// PrintWarnings writes the compile-time warnings of a query to stderr.
func PrintWarnings(warnings qerr.Warnings) {
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning %s\n", w)
	}
}
