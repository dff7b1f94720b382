package hdict

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"reflect"

	"github.com/cespare/xxhash/v2"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// HDict is an ordered mapping with an optional default-value factory.
// The zero value is an empty HDict without a factory.
type HDict struct {
	om      *orderedmap.OrderedMap[Key, slot]
	factory func() any
}

// slot holds an entry under its identity key.  key is the key as first
// inserted and is what iteration and serialization see.
type slot struct {
	key   Key
	value any
}

// Option configures New.
type Option func(*options)

type options struct {
	positional []any
	values     []any
	named      []Entry
	factory    func() any
}

// Args supplies positional arguments: alternating keys and values, a list
// of pairs, or a single mapping source.  Repeated Args options concatenate.
func Args(kv ...any) Option {
	return func(o *options) {
		o.positional = append(o.positional, kv...)
	}
}

// Values supplies a bulk source: an *HDict, a []Entry, a Go map, or a slice
// of pairs.  Repeated Values options are merged in the order given.
func Values(src any) Option {
	return func(o *options) {
		o.values = append(o.values, src)
	}
}

// Kw supplies one named argument.  Named arguments take priority over
// positional and bulk sources and are seated first.
func Kw(name string, value any) Option {
	return func(o *options) {
		o.named = append(o.named, Entry{Key: String(name), Value: value})
	}
}

// Factory sets the function called to produce a value for a missing key.
func Factory(fn func() any) Option {
	return func(o *options) {
		o.factory = fn
	}
}

// New builds an HDict from the given options.  No HDict is returned when
// any argument is invalid.
func New(opts ...Option) (*HDict, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	positional, err := positionalEntries(o.positional)
	if err != nil {
		return nil, err
	}

	var values []Entry
	for _, src := range o.values {
		entries, err := sourceEntries(src)
		if err != nil {
			return nil, err
		}
		values = append(values, entries...)
	}

	for _, src := range []*[]Entry{&positional, &values, &o.named} {
		if *src, err = adoptEntries(*src); err != nil {
			return nil, err
		}
	}

	return &HDict{
		om:      merge(positional, values, o.named),
		factory: o.factory,
	}, nil
}

// MustNew is like New but panics on error.
func MustNew(opts ...Option) *HDict {
	d, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return d
}

func (d *HDict) ensure() {
	if d.om == nil {
		d.om = orderedmap.New[Key, slot]()
	}
}

// Len returns the number of entries.
func (d *HDict) Len() int {
	if d == nil || d.om == nil {
		return 0
	}
	return d.om.Len()
}

// Empty reports whether d holds no entries.
func (d *HDict) Empty() bool {
	return d.Len() == 0
}

// Contains reports whether key is present.  Numeric keys match by value,
// so 2, 2.0 and Int(2) are the same key, while String("2") is not.
func (d *HDict) Contains(key any) bool {
	_, ok := d.Lookup(key)
	return ok
}

// Lookup returns the stored value for key.  The factory is not consulted.
func (d *HDict) Lookup(key any) (any, bool) {
	if d == nil || d.om == nil {
		return nil, false
	}
	k, err := KeyOf(key)
	if err != nil {
		return nil, false
	}
	s, ok := d.om.Get(identity(k))
	return s.value, ok
}

// Get returns the value for key.  A missing key yields a fresh factory
// value, which is not stored; without a factory it fails with
// ERR_KEY_NOT_FOUND.
func (d *HDict) Get(key any) (any, error) {
	k, err := KeyOf(key)
	if err != nil {
		return nil, err
	}
	if v, ok := d.Lookup(k); ok {
		return v, nil
	}
	if d != nil && d.factory != nil {
		return d.factory(), nil
	}
	return nil, newErr(ErrKeyNotFound, fmt.Sprintf("key %s not found", describeKey(k)))
}

// Set assigns value to key.  An existing key keeps its position and its
// original form.  Go maps are stored as *HDict.
func (d *HDict) Set(key any, value any) error {
	k, err := KeyOf(key)
	if err != nil {
		return err
	}
	value, err = adoptValue(value)
	if err != nil {
		return err
	}
	d.ensure()
	d.put(k, value)
	return nil
}

// put stores value under k, keeping the first-inserted key of an existing
// entry.
func (d *HDict) put(k Key, value any) {
	id := identity(k)
	if s, ok := d.om.Get(id); ok {
		k = s.key
	}
	d.om.Set(id, slot{key: k, value: value})
}

// adoptValue converts Go maps into *HDict so nested entries keep a stable
// order and support lookups.  Other values are returned unchanged.
func adoptValue(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if _, ok := v.(*HDict); ok {
		return v, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.IsNil() {
		return v, nil
	}
	nested, err := New(Values(v))
	if err != nil {
		return nil, err
	}
	return nested, nil
}

func adoptEntries(entries []Entry) ([]Entry, error) {
	if len(entries) == 0 {
		return entries, nil
	}
	out := make([]Entry, len(entries))
	for i, e := range entries {
		v, err := adoptValue(e.Value)
		if err != nil {
			return nil, err
		}
		out[i] = Entry{Key: e.Key, Value: v}
	}
	return out, nil
}

// Delete removes key and reports whether it was present.
func (d *HDict) Delete(key any) bool {
	if d == nil || d.om == nil {
		return false
	}
	k, err := KeyOf(key)
	if err != nil {
		return false
	}
	_, present := d.om.Delete(identity(k))
	return present
}

// Keys returns the keys in insertion order.
func (d *HDict) Keys() []Key {
	keys := make([]Key, 0, d.Len())
	for k := range d.All() {
		keys = append(keys, k)
	}
	return keys
}

// All iterates over the entries in insertion order.
func (d *HDict) All() iter.Seq2[Key, any] {
	return func(yield func(Key, any) bool) {
		if d == nil || d.om == nil {
			return
		}
		for pair := d.om.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(pair.Value.key, pair.Value.value) {
				return
			}
		}
	}
}

func (d *HDict) entryList() []Entry {
	entries := make([]Entry, 0, d.Len())
	for k, v := range d.All() {
		entries = append(entries, Entry{Key: k, Value: v})
	}
	return entries
}

// Equal reports whether d and other hold the same key/value pairs,
// regardless of order.  Keys of different kinds match when they serialize
// to the same text, so an HDict equals the result of loading its own
// serialized form.
func (d *HDict) Equal(other *HDict) bool {
	if d.Len() != other.Len() {
		return false
	}

	exact := true
	for k, v := range d.All() {
		ov, ok := other.Lookup(k)
		if !ok {
			exact = false
			break
		}
		if !valuesEqual(v, ov) {
			return false
		}
	}
	if exact {
		return true
	}

	a, b := d.textIndex(), other.textIndex()
	if a == nil || b == nil {
		return false
	}
	for text, v := range a {
		ov, ok := b[text]
		if !ok || !valuesEqual(v, ov) {
			return false
		}
	}
	return true
}

// textIndex maps serialized key text to value.  It returns nil when two
// keys share the same text.
func (d *HDict) textIndex() map[string]any {
	idx := make(map[string]any, d.Len())
	for k, v := range d.All() {
		text := k.Text()
		if _, dup := idx[text]; dup {
			return nil
		}
		idx[text] = v
	}
	return idx
}

// Hash returns an order-independent hash of the key set.  Equal HDicts
// hash equally.
func (d *HDict) Hash() uint64 {
	var h uint64
	for k := range d.All() {
		h += xxhash.Sum64String(hashIdentity(k))
	}
	return h
}

// valuesEqual compares values by their JSON form so that numerically equal
// values of different Go types match.
func valuesEqual(a, b any) bool {
	na, errA := normalize(a)
	nb, errB := normalize(b)
	if errA != nil || errB != nil {
		return reflect.DeepEqual(a, b)
	}
	return reflect.DeepEqual(na, nb)
}

func normalize(v any) (any, error) {
	var raw bytes.Buffer
	if err := newEncoder().value(&raw, v, 0); err != nil {
		return nil, err
	}
	dec := json.NewDecoder(&raw)
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func describeKey(k Key) string {
	if s, ok := k.(String); ok {
		return fmt.Sprintf("%q", string(s))
	}
	return k.Text()
}
