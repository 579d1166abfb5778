// Package unpack decodes JSON into Go values whose fields are interfaces.
// The concrete type of an interface-typed value is chosen by the value's
// "kind" attribute, which names one of the template types given to New.
package unpack

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/goccy/go-json"
)

const KindKey = "kind"

var unmarshalerType = reflect.TypeFor[json.Unmarshaler]()

type Reflector map[string]reflect.Type

func New(templates ...any) Reflector {
	r := make(Reflector)
	for _, t := range templates {
		typ := reflect.TypeOf(t)
		r[typ.Name()] = typ
	}
	return r
}

// Unmarshal decodes b into result, which must be a non-nil pointer.
func (r Reflector) Unmarshal(b []byte, result any) error {
	v := reflect.ValueOf(result)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return errors.New("unpack: result must be a non-nil pointer")
	}
	return r.fill(v.Elem(), b)
}

func (r Reflector) fill(v reflect.Value, raw json.RawMessage) error {
	if isNull(raw) {
		v.Set(reflect.Zero(v.Type()))
		return nil
	}
	if v.Kind() != reflect.Interface && v.Kind() != reflect.Pointer && reflect.PointerTo(v.Type()).Implements(unmarshalerType) {
		return json.Unmarshal(raw, v.Addr().Interface())
	}
	switch v.Kind() {
	case reflect.Interface:
		var kind struct {
			Kind string `json:"kind"`
		}
		if err := json.Unmarshal(raw, &kind); err != nil {
			return err
		}
		if kind.Kind == "" {
			return fmt.Errorf("unpack: JSON object has no %q attribute: %s", KindKey, abbrev(raw))
		}
		typ, ok := r[kind.Kind]
		if !ok {
			return fmt.Errorf("unpack: unknown kind %q", kind.Kind)
		}
		ptr := reflect.New(typ)
		if !ptr.Type().Implements(v.Type()) {
			return fmt.Errorf("unpack: %s does not implement %s", ptr.Type(), v.Type())
		}
		if err := r.fill(ptr.Elem(), raw); err != nil {
			return err
		}
		v.Set(ptr)
	case reflect.Pointer:
		ptr := reflect.New(v.Type().Elem())
		if err := r.fill(ptr.Elem(), raw); err != nil {
			return err
		}
		v.Set(ptr)
	case reflect.Struct:
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return err
		}
		typ := v.Type()
		for i := range typ.NumField() {
			sf := typ.Field(i)
			if !sf.IsExported() {
				continue
			}
			name := jsonName(sf)
			if name == "-" {
				continue
			}
			fraw, ok := fields[name]
			if !ok {
				continue
			}
			if err := r.fill(v.Field(i), fraw); err != nil {
				return fmt.Errorf("%s.%s: %w", typ.Name(), sf.Name, err)
			}
		}
	case reflect.Slice:
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			return err
		}
		s := reflect.MakeSlice(v.Type(), len(elems), len(elems))
		for k, elem := range elems {
			if err := r.fill(s.Index(k), elem); err != nil {
				return err
			}
		}
		v.Set(s)
	default:
		return json.Unmarshal(raw, v.Addr().Interface())
	}
	return nil
}

func jsonName(sf reflect.StructField) string {
	tag, ok := sf.Tag.Lookup("json")
	if !ok {
		return sf.Name
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return sf.Name
	}
	return name
}

func isNull(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}

func abbrev(raw json.RawMessage) string {
	if len(raw) > 40 {
		return string(raw[:40]) + "..."
	}
	return string(raw)
}
