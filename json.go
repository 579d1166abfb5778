package gather

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/goccy/go-json"
)

// AppendJSON appends the JSON encoding of v to b.
func AppendJSON(b []byte, v Value) []byte {
	switch v.kind {
	case KindNull:
		return append(b, "null"...)
	case KindBool:
		return strconv.AppendBool(b, v.Bool())
	case KindNumber:
		return appendNumber(b, v.num)
	case KindString:
		return appendString(b, v.str)
	case KindArray:
		b = append(b, '[')
		for i, elem := range v.arr {
			if i > 0 {
				b = append(b, ',')
			}
			b = AppendJSON(b, elem)
		}
		return append(b, ']')
	case KindObject:
		b = append(b, '{')
		for i, f := range v.obj {
			if i > 0 {
				b = append(b, ',')
			}
			b = appendString(b, f.Name)
			b = append(b, ':')
			b = AppendJSON(b, f.Value)
		}
		return append(b, '}')
	}
	panic("gather: unknown value kind " + v.kind.String())
}

func appendNumber(b []byte, f float64) []byte {
	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		return strconv.AppendFloat(b, f, 'f', -1, 64)
	}
	return strconv.AppendFloat(b, f, 'g', -1, 64)
}

func appendString(b []byte, s string) []byte {
	out, err := json.Marshal(s)
	if err != nil {
		// Strings always encode.
		panic(err)
	}
	return append(b, out...)
}

// String returns the JSON text of v.
func (v Value) String() string {
	return string(AppendJSON(nil, v))
}

func (v Value) MarshalJSON() ([]byte, error) {
	return AppendJSON(nil, v), nil
}

func (v *Value) UnmarshalJSON(b []byte) error {
	val, err := Parse(b)
	if err != nil {
		return err
	}
	*v = val
	return nil
}

// Parse decodes a single JSON text into a Value, preserving the order of
// object attributes.
func Parse(b []byte) (Value, error) {
	d := NewDecoder(bytes.NewReader(b))
	val, err := d.Decode()
	if err != nil {
		if err == io.EOF {
			return Null, errors.New("empty JSON input")
		}
		return Null, err
	}
	if _, err := d.Decode(); err != io.EOF {
		if err == nil {
			return Null, errors.New("extra data after JSON value")
		}
		return Null, err
	}
	return val, nil
}

// MustParse is like Parse but panics on error.  It is intended for
// literals in tests and static tables.
func MustParse(s string) Value {
	val, err := Parse([]byte(s))
	if err != nil {
		panic(fmt.Sprintf("gather.MustParse: %s: %s", err, s))
	}
	return val
}

// Decoder reads a stream of JSON values such as a JSON Lines file.
type Decoder struct {
	dec *json.Decoder
}

func NewDecoder(r io.Reader) *Decoder {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &Decoder{dec}
}

// Decode returns the next value in the stream or io.EOF at the end of the
// stream.
func (d *Decoder) Decode() (Value, error) {
	tok, err := d.dec.Token()
	if err != nil {
		return Null, err
	}
	return d.value(tok)
}

func (d *Decoder) value(tok json.Token) (Value, error) {
	switch tok := tok.(type) {
	case nil:
		return Null, nil
	case bool:
		return NewBool(tok), nil
	case json.Number:
		f, err := tok.Float64()
		if err != nil {
			return Null, fmt.Errorf("bad number %q: %w", tok, err)
		}
		return NewNumber(f), nil
	case float64:
		return NewNumber(tok), nil
	case string:
		return NewString(tok), nil
	case json.Delim:
		switch tok {
		case '[':
			return d.array()
		case '{':
			return d.object()
		}
	}
	return Null, fmt.Errorf("unexpected JSON token %v", tok)
}

func (d *Decoder) array() (Value, error) {
	vals := []Value{}
	for {
		tok, err := d.dec.Token()
		if err != nil {
			return Null, noEOF(err)
		}
		if tok == json.Delim(']') {
			return NewArray(vals), nil
		}
		val, err := d.value(tok)
		if err != nil {
			return Null, err
		}
		vals = append(vals, val)
	}
}

func (d *Decoder) object() (Value, error) {
	fields := []Field{}
	for {
		tok, err := d.dec.Token()
		if err != nil {
			return Null, noEOF(err)
		}
		if tok == json.Delim('}') {
			return NewObject(fields), nil
		}
		name, ok := tok.(string)
		if !ok {
			return Null, fmt.Errorf("object key is not a string: %v", tok)
		}
		tok, err = d.dec.Token()
		if err != nil {
			return Null, noEOF(err)
		}
		val, err := d.value(tok)
		if err != nil {
			return Null, err
		}
		fields = append(fields, Field{name, val})
	}
}

func noEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
