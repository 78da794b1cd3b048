package progress

import (
	"encoding/json"
	"sort"
	"time"
)

type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindObject
)

// Value is a JSON-like tagged union used for free-form activity and
// achievement metadata. The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	list []Value
	obj  map[string]Value
}

// Metadata is a schema-less key/value payload.
type Metadata map[string]Value

func Null() Value                     { return Value{} }
func Bool(b bool) Value               { return Value{kind: KindBool, b: b} }
func Number(n float64) Value          { return Value{kind: KindNumber, n: n} }
func Int(n int) Value                 { return Value{kind: KindNumber, n: float64(n)} }
func String(s string) Value           { return Value{kind: KindString, s: s} }
func List(vs ...Value) Value          { return Value{kind: KindList, list: vs} }
func Object(m map[string]Value) Value { return Value{kind: KindObject, obj: m} }
func Time(t time.Time) Value          { return String(t.Format(time.RFC3339)) }

func (v Value) Kind() Kind { return v.kind }

func (v Value) AsString() (string, bool)  { return v.s, v.kind == KindString }
func (v Value) AsNumber() (float64, bool) { return v.n, v.kind == KindNumber }
func (v Value) AsBool() (bool, bool)      { return v.b, v.kind == KindBool }

func (v Value) AsList() ([]Value, bool) {
	return v.list, v.kind == KindList
}

func (v Value) AsObject() (map[string]Value, bool) {
	return v.obj, v.kind == KindObject
}

// FromAny converts decoded JSON (or plain Go primitives) into a Value.
// Unsupported types become null.
func FromAny(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case bool:
		return Bool(t)
	case float64:
		return Number(t)
	case float32:
		return Number(float64(t))
	case int:
		return Int(t)
	case int64:
		return Number(float64(t))
	case uint:
		return Number(float64(t))
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return String(t.String())
		}
		return Number(f)
	case string:
		return String(t)
	case time.Time:
		return Time(t)
	case []any:
		vs := make([]Value, len(t))
		for i, e := range t {
			vs[i] = FromAny(e)
		}
		return List(vs...)
	case map[string]any:
		return Object(MetadataFrom(t))
	default:
		return Null()
	}
}

// MetadataFrom converts a decoded JSON object into Metadata.
func MetadataFrom(m map[string]any) Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = FromAny(v)
	}
	return out
}

// Any converts the value back into plain Go types suitable for encoding.
func (v Value) Any() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	case KindList:
		out := make([]any, len(v.list))
		for i, e := range v.list {
			out[i] = e.Any()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.obj))
		for k, e := range v.obj {
			out[k] = e.Any()
		}
		return out
	default:
		return nil
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Any())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var x any
	if err := json.Unmarshal(data, &x); err != nil {
		return err
	}
	*v = FromAny(x)
	return nil
}

// Keys returns the metadata keys in sorted order.
func (m Metadata) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
