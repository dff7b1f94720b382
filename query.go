package hdict

import (
	"github.com/tidwall/gjson"
)

// Query evaluates a GJSON path (such as "user.tags.0" or "items.#") against
// the serialized form of d.  Results use GJSON's value model: numbers are
// float64 and objects are map[string]any.  The boolean is false when the
// path matches nothing.
func (d *HDict) Query(path string) (any, bool, error) {
	raw, err := d.MarshalJSON()
	if err != nil {
		return nil, false, err
	}
	res := gjson.GetBytes(raw, path)
	if !res.Exists() {
		return nil, false, nil
	}
	return res.Value(), true, nil
}
