package hdict

import (
	"fmt"
	"reflect"
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Entry is a single key/value pair.
type Entry struct {
	Key   Key
	Value any
}

// merge combines the three construction sources into one ordered map.
//
// Keys are seated in first-appearance order across named, positional, then
// values.  Values are resolved lowest priority first (positional, values,
// named) so a later source overwrites in place without moving the key.
// Entries are matched by identity and keep the first key seen.
func merge(positional, values, named []Entry) *orderedmap.OrderedMap[Key, slot] {
	d := &HDict{om: orderedmap.New[Key, slot](len(positional) + len(values) + len(named))}

	for _, src := range [][]Entry{named, positional, values} {
		for _, e := range src {
			if _, present := d.om.Get(identity(e.Key)); !present {
				d.put(e.Key, nil)
			}
		}
	}

	for _, src := range [][]Entry{positional, values, named} {
		for _, e := range src {
			d.put(e.Key, e.Value)
		}
	}
	return d.om
}

// positionalEntries interprets positional arguments.  Accepted shapes, in
// order of precedence: a list of pairs, a flat key/value list, a single
// mapping source.
func positionalEntries(args []any) ([]Entry, error) {
	if len(args) == 0 {
		return nil, nil
	}

	if entries, ok := pairList(args); ok {
		return entries, nil
	}

	if len(args)%2 == 0 {
		entries := make([]Entry, 0, len(args)/2)
		for i := 0; i < len(args); i += 2 {
			k, err := KeyOf(args[i])
			if err != nil {
				return nil, err
			}
			entries = append(entries, Entry{Key: k, Value: args[i+1]})
		}
		return entries, nil
	}

	if len(args) == 1 && isMappingSource(args[0]) {
		return sourceEntries(args[0])
	}

	return nil, newErr(ErrInvalidArguments, fmt.Sprintf(
		"an even number of positional arguments is required to pass keys and values individually; key %v has no value",
		args[len(args)-1]))
}

// pairList reports whether every arg is a key/value pair and returns them.
func pairList(args []any) ([]Entry, bool) {
	entries := make([]Entry, 0, len(args))
	for _, arg := range args {
		e, ok := asPair(arg)
		if !ok {
			return nil, false
		}
		entries = append(entries, e)
	}
	return entries, true
}

func asPair(v any) (Entry, bool) {
	var k, val any
	switch p := v.(type) {
	case Entry:
		return p, p.Key != nil
	case [2]any:
		k, val = p[0], p[1]
	case []any:
		if len(p) != 2 {
			return Entry{}, false
		}
		k, val = p[0], p[1]
	default:
		return Entry{}, false
	}
	key, err := KeyOf(k)
	if err != nil {
		return Entry{}, false
	}
	return Entry{Key: key, Value: val}, true
}

func isMappingSource(v any) bool {
	switch v.(type) {
	case *HDict, []Entry:
		return true
	}
	return reflect.ValueOf(v).Kind() == reflect.Map
}

// sourceEntries flattens a bulk source into entries.  Go maps carry no
// order, so their entries are sorted by key text.
func sourceEntries(src any) ([]Entry, error) {
	switch s := src.(type) {
	case nil:
		return nil, nil
	case *HDict:
		return s.entryList(), nil
	case []Entry:
		for _, e := range s {
			if e.Key == nil {
				return nil, newErr(ErrInvalidArguments, "entry has a nil key")
			}
		}
		return s, nil
	}

	rv := reflect.ValueOf(src)
	switch rv.Kind() {
	case reflect.Map:
		entries := make([]Entry, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k, err := KeyOf(iter.Key().Interface())
			if err != nil {
				return nil, err
			}
			entries = append(entries, Entry{Key: k, Value: iter.Value().Interface()})
		}
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Key.Text() < entries[j].Key.Text()
		})
		return entries, nil

	case reflect.Slice, reflect.Array:
		entries := make([]Entry, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			e, ok := asPair(rv.Index(i).Interface())
			if !ok {
				return nil, newErr(ErrInvalidArguments, fmt.Sprintf("element %d of values is not a key/value pair", i))
			}
			entries = append(entries, e)
		}
		return entries, nil
	}
	return nil, newErr(ErrInvalidArguments, fmt.Sprintf("unsupported values source %T", src))
}
