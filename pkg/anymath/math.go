package anymath

import "math"

type Float64 func(float64, float64) float64
type Uint32 func(uint32, uint32) uint32

type Function struct {
	Init
	Float64
	Uint32
}

type Init struct {
	Float64 float64
	Uint32  uint32
}

var Min = &Function{
	Init:    Init{math.MaxFloat64, math.MaxUint32},
	Float64: func(a, b float64) float64 { return min(a, b) },
	Uint32:  func(a, b uint32) uint32 { return min(a, b) },
}

var Max = &Function{
	Init:    Init{-math.MaxFloat64, 0},
	Float64: func(a, b float64) float64 { return max(a, b) },
	Uint32:  func(a, b uint32) uint32 { return max(a, b) },
}

var Add = &Function{
	Float64: func(a, b float64) float64 { return a + b },
	Uint32:  func(a, b uint32) uint32 { return a + b },
}

var Sub = &Function{
	Float64: func(a, b float64) float64 { return a - b },
	Uint32:  func(a, b uint32) uint32 { return a - b },
}

var Mul = &Function{
	Init:    Init{1, 1},
	Float64: func(a, b float64) float64 { return a * b },
	Uint32:  func(a, b uint32) uint32 { return a * b },
}

// Div and Mod return NaN for a zero divisor.  Callers map NaN to null.
var Div = &Function{
	Float64: func(a, b float64) float64 {
		if b == 0 {
			return math.NaN()
		}
		return a / b
	},
}

var Mod = &Function{
	Float64: func(a, b float64) float64 {
		if b == 0 {
			return math.NaN()
		}
		return math.Mod(a, b)
	},
}

var BitAnd = &Function{
	Init:   Init{Uint32: math.MaxUint32},
	Uint32: func(a, b uint32) uint32 { return a & b },
}

var BitOr = &Function{
	Uint32: func(a, b uint32) uint32 { return a | b },
}

var BitXor = &Function{
	Uint32: func(a, b uint32) uint32 { return a ^ b },
}

// ToUint32 converts f to a bit-operation operand.  Only non-negative
// integral values representable in 32 bits qualify.
func ToUint32(f float64) (uint32, bool) {
	if f < 0 || f > math.MaxUint32 || f != math.Trunc(f) {
		return 0, false
	}
	return uint32(f), true
}
