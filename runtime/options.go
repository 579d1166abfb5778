package runtime

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/units"
	"github.com/brimdata/gather/qerr"
	"github.com/pbnjay/memory"
	"gopkg.in/yaml.v3"
)

// AutoMemoryFraction is the share of physical memory used as the memory
// ceiling when the limit is given as "auto".
var AutoMemoryFraction = 0.25

// Options are the query-level execution options.
type Options struct {
	// MemoryLimit is the ceiling on memory held by buffered intermediate
	// state.  Zero means unlimited.
	MemoryLimit Bytes `yaml:"memoryLimit" json:"memoryLimit"`
	// FullCount requests the number of rows the outermost LIMIT would
	// have produced without the limit.
	FullCount bool             `yaml:"fullCount" json:"fullCount"`
	Optimizer OptimizerOptions `yaml:"optimizer" json:"optimizer"`
	// BatchSize is the number of rows scans produce per batch.  Zero
	// selects the scan default.
	BatchSize int `yaml:"batchSize" json:"batchSize"`
}

type OptimizerOptions struct {
	// Rules enables or disables optimizer rules, applied in order:
	// "-all", "+all", "-<rule>", "+<rule>".
	Rules []string `yaml:"rules" json:"rules"`
}

func (o Options) Validate() error {
	if o.MemoryLimit < 0 {
		return qerr.BadParameter("memoryLimit must not be negative: %d", o.MemoryLimit)
	}
	if o.BatchSize < 0 {
		return qerr.BadParameter("batchSize must not be negative: %d", o.BatchSize)
	}
	for _, r := range o.Optimizer.Rules {
		if !strings.HasPrefix(r, "+") && !strings.HasPrefix(r, "-") {
			return qerr.BadParameter("optimizer rule %q must start with '+' or '-'", r)
		}
	}
	return nil
}

// LoadOptions reads Options from YAML.
func LoadOptions(r io.Reader) (Options, error) {
	var opts Options
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		if qerr.KindOf(err) != qerr.KindUnknown {
			return Options{}, err
		}
		return Options{}, qerr.Wrap(qerr.KindBadParameter, err, "query options")
	}
	return opts, opts.Validate()
}

// Bytes is a memory size that can be written as a plain number of bytes,
// with a unit suffix (e.g., "64MiB", "1GB"), or as "auto".
type Bytes int64

func ParseBytes(s string) (Bytes, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	if s == "auto" {
		return Bytes(float64(memory.TotalMemory()) * AutoMemoryFraction), nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Bytes(n), nil
	}
	n, err := units.ParseBase2Bytes(s)
	if err != nil {
		return 0, qerr.BadParameter("invalid memory size %q", s)
	}
	return Bytes(n), nil
}

func (b Bytes) Int64() int64 {
	return int64(b)
}

func (b Bytes) String() string {
	return units.Base2Bytes(b).String()
}

// Set implements flag.Value.
func (b *Bytes) Set(s string) error {
	n, err := ParseBytes(s)
	if err != nil {
		return err
	}
	*b = n
	return nil
}

func (b *Bytes) UnmarshalYAML(node *yaml.Node) error {
	return b.Set(node.Value)
}

func (b Bytes) MarshalYAML() (any, error) {
	return int64(b), nil
}
