package gather

import (
	"encoding/binary"
	"math"
	"slices"

	"github.com/cespare/xxhash/v2"
)

// Hasher computes 64-bit digests of values and value tuples that agree with
// Compare: values that compare equal hash equally.  A Hasher is not safe for
// concurrent use.
type Hasher struct {
	digest xxhash.Digest
	buf    []byte
	names  []string
}

func NewHasher() *Hasher {
	h := &Hasher{}
	h.digest.Reset()
	return h
}

// HashKey returns the digest of the tuple vals.
func (h *Hasher) HashKey(vals []Value) uint64 {
	h.digest.Reset()
	for _, v := range vals {
		h.write(v)
	}
	return h.digest.Sum64()
}

// Hash returns the digest of v.
func (h *Hasher) Hash(v Value) uint64 {
	h.digest.Reset()
	h.write(v)
	return h.digest.Sum64()
}

func (h *Hasher) write(v Value) {
	h.buf = append(h.buf[:0], byte(v.kind))
	switch v.kind {
	case KindBool, KindNumber:
		f := v.num
		if f == 0 {
			// Fold -0 into 0.
			f = 0
		}
		h.buf = binary.LittleEndian.AppendUint64(h.buf, math.Float64bits(f))
		h.digest.Write(h.buf)
	case KindString:
		h.buf = binary.AppendUvarint(h.buf, uint64(len(v.str)))
		h.digest.Write(h.buf)
		h.digest.WriteString(v.str)
	case KindArray:
		// Trailing nulls do not change equality so they must not change
		// the hash.
		n := len(v.arr)
		for n > 0 && v.arr[n-1].kind == KindNull {
			n--
		}
		h.buf = binary.AppendUvarint(h.buf, uint64(n))
		h.digest.Write(h.buf)
		for _, elem := range v.arr[:n] {
			h.write(elem)
		}
	case KindObject:
		// Null-valued attributes compare equal to missing attributes.
		start := len(h.names)
		for _, f := range v.obj {
			if f.Value.kind != KindNull {
				h.names = append(h.names, f.Name)
			}
		}
		names := h.names[start:]
		slices.Sort(names)
		h.buf = binary.AppendUvarint(h.buf, uint64(len(names)))
		h.digest.Write(h.buf)
		for _, name := range names {
			h.buf = binary.AppendUvarint(h.buf[:0], uint64(len(name)))
			h.digest.Write(h.buf)
			h.digest.WriteString(name)
			h.write(v.Attr(name))
		}
		h.names = h.names[:start]
	default:
		h.digest.Write(h.buf)
	}
}
