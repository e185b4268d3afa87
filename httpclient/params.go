package httpclient

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
)

// ValueKind identifies which variant a Value holds.
type ValueKind int

const (
	// KindString is a plain string.
	KindString ValueKind = iota
	// KindList is a list of strings.
	KindList
	// KindMap is a nested parameter set.
	KindMap
	// KindJSON is any other JSON-encodable payload (numbers, booleans,
	// arrays of objects).
	KindJSON
)

// String returns the kind name.
func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindJSON:
		return "json"
	default:
		return "unknown"
	}
}

// Value is a single request parameter value.
type Value struct {
	kind ValueKind
	str  string
	list []string
	m    Params
	raw  any
}

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// ListValue wraps a list of strings.
func ListValue(items ...string) Value {
	if items == nil {
		items = []string{}
	}
	return Value{kind: KindList, list: items}
}

// MapValue wraps a nested parameter set.
func MapValue(p Params) Value { return Value{kind: KindMap, m: p} }

// JSONValue wraps an arbitrary JSON-encodable value.
func JSONValue(v any) Value { return Value{kind: KindJSON, raw: v} }

// Kind reports the variant held by v.
func (v Value) Kind() ValueKind { return v.kind }

// Str returns the string of a KindString value.
func (v Value) Str() string { return v.str }

// List returns the items of a KindList value.
func (v Value) List() []string { return v.list }

// Map returns the nested parameters of a KindMap value.
func (v Value) Map() Params { return v.m }

// Raw returns the payload of a KindJSON value.
func (v Value) Raw() any { return v.raw }

// MarshalJSON encodes the value as a JSON string, array, object or the raw payload.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	case KindMap:
		return v.m.MarshalJSON()
	case KindJSON:
		return json.Marshal(v.raw)
	default:
		return json.Marshal(v.str)
	}
}

// Display renders the value as the single string used for a multipart
// field: strings verbatim, lists comma-joined, maps and JSON payloads as
// compact JSON.
func (v Value) Display() (string, error) {
	switch v.kind {
	case KindString:
		return v.str, nil
	case KindList:
		return strings.Join(v.list, ","), nil
	default:
		data, err := v.MarshalJSON()
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}

// Param is one key/value pair.
type Param struct {
	Key   string
	Value Value
}

// Params is an ordered parameter set. Encoders emit pairs in slice order.
type Params []Param

// Get returns the value stored under key.
func (p Params) Get(key string) (Value, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return Value{}, false
}

// Set replaces the value under key in place, or appends a new pair.
func (p *Params) Set(key string, v Value) {
	for i := range *p {
		if (*p)[i].Key == key {
			(*p)[i].Value = v
			return
		}
	}
	*p = append(*p, Param{Key: key, Value: v})
}

// Keys returns the keys in order.
func (p Params) Keys() []string {
	keys := make([]string, len(p))
	for i, kv := range p {
		keys[i] = kv.Key
	}
	return keys
}

// MarshalJSON encodes the set as a JSON object with keys in slice order.
func (p Params) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kv := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(kv.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := kv.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Encode renders the set as a percent-encoded key=value string joined by
// '&'. Lists are comma-joined, maps are flattened to key[sub]=value pairs
// and JSON payloads are sent as compact JSON text.
func (p Params) Encode() (string, error) {
	var pairs []string
	if err := p.appendPairs(&pairs, ""); err != nil {
		return "", err
	}
	return strings.Join(pairs, "&"), nil
}

func (p Params) appendPairs(pairs *[]string, prefix string) error {
	for _, kv := range p {
		key := kv.Key
		if prefix != "" {
			key = prefix + "[" + kv.Key + "]"
		}
		if kv.Value.kind == KindMap {
			if err := kv.Value.m.appendPairs(pairs, key); err != nil {
				return err
			}
			continue
		}
		s, err := kv.Value.Display()
		if err != nil {
			return err
		}
		*pairs = append(*pairs, PercentEncode(key)+"="+PercentEncode(s))
	}
	return nil
}

// ParamsFromMap converts dynamic input into Params with keys sorted.
// Strings, string slices and nested maps map onto their variants; anything
// else becomes a JSON payload.
func ParamsFromMap(m map[string]any) Params {
	if m == nil {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	p := make(Params, 0, len(keys))
	for _, k := range keys {
		p = append(p, Param{Key: k, Value: ValueOf(m[k])})
	}
	return p
}

// ValueOf picks the Value variant for a dynamic Go value.
func ValueOf(v any) Value {
	switch t := v.(type) {
	case Value:
		return t
	case string:
		return StringValue(t)
	case []string:
		return ListValue(t...)
	case Params:
		return MapValue(t)
	case map[string]any:
		return MapValue(ParamsFromMap(t))
	case map[string]string:
		nested := make(map[string]any, len(t))
		for k, s := range t {
			nested[k] = s
		}
		return MapValue(ParamsFromMap(nested))
	default:
		return JSONValue(v)
	}
}

// PercentEncode escapes every byte outside the RFC 3986 unreserved set.
// Space becomes %20.
func PercentEncode(s string) string {
	const hex = "0123456789ABCDEF"
	n := 0
	for i := 0; i < len(s); i++ {
		if !unreserved(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '.', c == '_', c == '~':
		return true
	}
	return false
}
