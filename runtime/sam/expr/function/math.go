package function

import (
	"math"

	"github.com/brimdata/gather"
)

type mathFn struct {
	fn func(float64) float64
}

func (m *mathFn) Call(args []gather.Value) gather.Value {
	f, _ := args[0].ToNumber()
	return gather.NewNumber(m.fn(f))
}

func abs(f float64) float64   { return math.Abs(f) }
func ceil(f float64) float64  { return math.Ceil(f) }
func floor(f float64) float64 { return math.Floor(f) }
func sqrt(f float64) float64  { return math.Sqrt(f) }

// round rounds halves toward positive infinity.
func round(f float64) float64 { return math.Floor(f + 0.5) }
