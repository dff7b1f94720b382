package hdict

import (
	"bytes"
	"encoding"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/tidwall/pretty"
)

// DumpOption configures Dumps and Write.
type DumpOption func(*dumpOptions)

type dumpOptions struct {
	indent   int
	sortKeys bool
	compact  bool
	ascii    bool
}

// WithIndent sets the number of spaces per nesting level.
func WithIndent(n int) DumpOption {
	return func(o *dumpOptions) {
		if n < 0 {
			n = 0
		}
		o.indent = n
		o.compact = false
	}
}

// SortKeys orders object keys by their text at every level instead of
// insertion order.
func SortKeys() DumpOption {
	return func(o *dumpOptions) {
		o.sortKeys = true
	}
}

// ASCII escapes every non-ASCII character as \uXXXX.  Without it text is
// written as raw UTF-8.
func ASCII() DumpOption {
	return func(o *dumpOptions) {
		o.ascii = true
	}
}

// Compact renders the mapping on a single line without whitespace.
func Compact() DumpOption {
	return func(o *dumpOptions) {
		o.compact = true
	}
}

// Dumps returns d as JSON text.  Keys are written in insertion order using
// their Text form, indented by DefaultIndent spaces unless options say
// otherwise.  Non-ASCII text stays UTF-8 unless ASCII is given, and HTML
// characters are not escaped.
func (d *HDict) Dumps(opts ...DumpOption) (string, error) {
	b, err := d.render(opts)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Write writes the text produced by Dumps to w in a single call.  Nothing
// is written when serialization fails.  w is never closed.
func (d *HDict) Write(w io.Writer, opts ...DumpOption) error {
	b, err := d.render(opts)
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("hdict: write: %w", err)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.  The output preserves key order.
func (d *HDict) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := newEncoder().dict(&buf, d, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (d *HDict) render(opts []DumpOption) ([]byte, error) {
	o := dumpOptions{indent: DefaultIndent}
	for _, opt := range opts {
		opt(&o)
	}

	raw, err := d.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out []byte
	switch {
	case o.compact && o.sortKeys:
		out = pretty.Ugly(pretty.PrettyOptions(raw, &pretty.Options{SortKeys: true}))
	case o.compact:
		out = raw
	default:
		// Width 0 keeps every array element on its own line.
		out = pretty.PrettyOptions(raw, &pretty.Options{
			Indent:   strings.Repeat(" ", o.indent),
			SortKeys: o.sortKeys,
		})
		out = bytes.TrimSuffix(out, []byte("\n"))
	}

	if o.ascii {
		out = escapeASCII(out)
	}
	return out, nil
}

// encoder renders compact JSON while tracking nesting depth and the
// dicts currently being written, so cycles through lists and maps fail
// instead of recursing forever.
type encoder struct {
	active map[*HDict]struct{}
}

func newEncoder() *encoder {
	return &encoder{active: make(map[*HDict]struct{})}
}

func (e *encoder) dict(buf *bytes.Buffer, d *HDict, depth int) error {
	if depth >= MaxDepth {
		return newErr(ErrLimitDepth, "nesting exceeds MaxDepth")
	}
	if _, cyclic := e.active[d]; cyclic {
		return newErr(ErrSerialization, "circular reference detected")
	}
	e.active[d] = struct{}{}
	defer delete(e.active, d)

	buf.WriteByte('{')
	i := 0
	for k, v := range d.All() {
		if i > 0 {
			buf.WriteByte(',')
		}
		i++
		if err := encodeScalar(buf, k.Text()); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := e.value(buf, v, depth+1); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

// value writes v.  Slices, arrays, maps and pointers to them are walked
// here so any *HDict inside them shares this encoder; everything else is
// left to encoding/json.
func (e *encoder) value(buf *bytes.Buffer, v any, depth int) error {
	if d, ok := v.(*HDict); ok {
		if d == nil {
			buf.WriteString("null")
			return nil
		}
		return e.dict(buf, d, depth)
	}
	if v == nil || isMarshaler(v) {
		return e.leaf(buf, v)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			buf.WriteString("null")
			return nil
		}
		switch rv.Elem().Kind() {
		case reflect.Slice, reflect.Array, reflect.Map, reflect.Interface, reflect.Pointer:
			if depth >= MaxDepth {
				return newErr(ErrLimitDepth, "nesting exceeds MaxDepth")
			}
			return e.value(buf, rv.Elem().Interface(), depth+1)
		}

	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			break
		}
		if rv.IsNil() {
			buf.WriteString("null")
			return nil
		}
		return e.list(buf, rv, depth)

	case reflect.Array:
		return e.list(buf, rv, depth)

	case reflect.Map:
		if rv.IsNil() {
			buf.WriteString("null")
			return nil
		}
		if ok, err := e.mapping(buf, rv, depth); ok || err != nil {
			return err
		}
	}
	return e.leaf(buf, v)
}

func (e *encoder) list(buf *bytes.Buffer, rv reflect.Value, depth int) error {
	if depth >= MaxDepth {
		return newErr(ErrLimitDepth, "nesting exceeds MaxDepth")
	}
	buf.WriteByte('[')
	for i := 0; i < rv.Len(); i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := e.value(buf, rv.Index(i).Interface(), depth+1); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}

// mapping writes a Go map with keys sorted as encoding/json sorts them.
// It reports false, writing nothing, for key types it does not handle.
func (e *encoder) mapping(buf *bytes.Buffer, rv reflect.Value, depth int) (bool, error) {
	type member struct {
		name  string
		value reflect.Value
	}
	members := make([]member, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key()
		var name string
		switch k.Kind() {
		case reflect.String:
			name = k.String()
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			name = strconv.FormatInt(k.Int(), 10)
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			name = strconv.FormatUint(k.Uint(), 10)
		default:
			return false, nil
		}
		members = append(members, member{name: name, value: iter.Value()})
	}
	sort.Slice(members, func(i, j int) bool { return members[i].name < members[j].name })

	if depth >= MaxDepth {
		return true, newErr(ErrLimitDepth, "nesting exceeds MaxDepth")
	}
	buf.WriteByte('{')
	for i, m := range members {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeScalar(buf, m.name); err != nil {
			return true, err
		}
		buf.WriteByte(':')
		if err := e.value(buf, m.value.Interface(), depth+1); err != nil {
			return true, err
		}
	}
	buf.WriteByte('}')
	return true, nil
}

func (e *encoder) leaf(buf *bytes.Buffer, v any) error {
	if err := encodeScalar(buf, v); err != nil {
		return wrapErr(ErrSerialization, err, "value of type %T is not JSON serializable: %v", v, err)
	}
	return nil
}

func isMarshaler(v any) bool {
	switch v.(type) {
	case json.Marshaler, encoding.TextMarshaler:
		return true
	}
	return false
}

// encodeScalar appends the JSON encoding of v without HTML escaping.
func encodeScalar(buf *bytes.Buffer, v any) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
	return nil
}

// escapeASCII replaces every non-ASCII rune with a \uXXXX escape, using
// surrogate pairs above U+FFFF.  Valid JSON only carries such runes inside
// strings, so the document stays valid.
func escapeASCII(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for len(b) > 0 {
		if b[0] < utf8.RuneSelf {
			out = append(out, b[0])
			b = b[1:]
			continue
		}
		r, size := utf8.DecodeRune(b)
		b = b[size:]
		if r > 0xFFFF {
			r1, r2 := utf16.EncodeRune(r)
			out = fmt.Appendf(out, "\\u%04x\\u%04x", r1, r2)
			continue
		}
		out = fmt.Appendf(out, "\\u%04x", r)
	}
	return out
}
