// Package hdict implements HDict, an ordered mapping that merges
// positional, named, and bulk-mapping initialization into one structure.
//
// An HDict supports an optional default-value factory for missing keys and
// round-trips through JSON text.  Keys keep their original kind (string,
// integer, float, boolean) for membership and indexing and are converted to
// text only when serialized.  Output mirrors insertion order and is
// indented with four spaces per level by default.
package hdict

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Key is a mapping key.  Concrete types:
//
//   - String
//   - Int
//   - Float
//   - Bool
type Key interface {
	// Text returns the JSON object key this key serializes under.
	Text() string
	hdictKey() // sealed marker, only types in this package implement Key
}

// String is a text key.
type String string

// Int is a signed integer key.
type Int int64

// Float is a floating point key.  NaN is never a valid Float key.
type Float float64

// Bool is a boolean key.
type Bool bool

func (String) hdictKey() {}
func (Int) hdictKey()    {}
func (Float) hdictKey()  {}
func (Bool) hdictKey()   {}

func (k String) Text() string { return string(k) }
func (k Int) Text() string    { return strconv.FormatInt(int64(k), 10) }
func (k Float) Text() string  { return formatFloatKey(float64(k)) }
func (k Bool) Text() string   { return strconv.FormatBool(bool(k)) }

// KeyOf converts a Go value into a Key.  Key values are returned unchanged.
func KeyOf(v any) (Key, error) {
	switch k := v.(type) {
	case Key:
		if f, ok := k.(Float); ok && math.IsNaN(float64(f)) {
			return nil, newErr(ErrInvalidArguments, "NaN cannot be used as a key")
		}
		return k, nil
	case string:
		return String(k), nil
	case bool:
		return Bool(k), nil
	case int:
		return Int(k), nil
	case int8:
		return Int(k), nil
	case int16:
		return Int(k), nil
	case int32:
		return Int(k), nil
	case int64:
		return Int(k), nil
	case float32:
		return floatKey(float64(k))
	case float64:
		return floatKey(k)
	case nil:
		return nil, newErr(ErrInvalidArguments, "nil cannot be used as a key")
	}

	// Unsigned and named scalar types.
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, newErr(ErrInvalidArguments, fmt.Sprintf("unsigned key %d overflows int64", u))
		}
		return Int(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		return floatKey(rv.Float())
	}
	return nil, newErr(ErrInvalidArguments, fmt.Sprintf("unhashable key type %T", v))
}

func floatKey(f float64) (Key, error) {
	if math.IsNaN(f) {
		return nil, newErr(ErrInvalidArguments, "NaN cannot be used as a key")
	}
	return Float(f), nil
}

// formatFloatKey renders f the way a float key is written into JSON object
// keys: shortest round-trip digits, a ".0" suffix on integral values, and
// exponent notation below 1e-4 or from 1e16 upwards.
func formatFloatKey(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}

	sci := strconv.FormatFloat(f, 'e', -1, 64)
	exp, err := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	if err == nil && (exp < -4 || exp >= 16) {
		return sci
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// identity returns the key used for membership.  Integral floats and
// booleans fold onto Int, so Int(2), Float(2) and Bool(true)/Int(1) name
// the same entry.  The key first inserted is the one kept for output.
func identity(k Key) Key {
	switch v := k.(type) {
	case Bool:
		if v {
			return Int(1)
		}
		return Int(0)
	case Float:
		if i, ok := integralFloat(float64(v)); ok {
			return Int(i)
		}
	}
	return k
}

// hashIdentity maps a key to a string shared by every key it can compare
// equal to, either by identity or by serialized text.
func hashIdentity(k Key) string {
	s, ok := k.(String)
	if !ok {
		return identity(k).Text()
	}
	switch s {
	case "true":
		return "1"
	case "false":
		return "0"
	}
	f, err := strconv.ParseFloat(string(s), 64)
	if err != nil || math.IsNaN(f) {
		return string(s)
	}
	return identity(Float(f)).Text()
}

func integralFloat(f float64) (int64, bool) {
	if math.IsInf(f, 0) || math.Trunc(f) != f || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}
