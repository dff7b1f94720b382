package hdict

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Loads parses JSON text into a new HDict without a factory.  Entries keep
// the order in which they appear in the text.
func Loads(text string) (*HDict, error) {
	return LoadBytes([]byte(text))
}

// Load reads all of r and parses it like Loads.
func Load(r io.Reader) (*HDict, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("hdict: read: %w", err)
	}
	return LoadBytes(raw)
}

// LoadBytes parses raw JSON into a new HDict.
//
// Syntax errors are reported before shape errors: malformed input fails
// with ERR_PARSE, and a well-formed document whose top-level value is not
// an object fails with ERR_INVALID_SHAPE.
func LoadBytes(raw []byte) (*HDict, error) {
	if err := checkSyntax(raw); err != nil {
		return nil, err
	}

	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if trimmed[0] != '{' {
		return nil, newErr(ErrInvalidShape, fmt.Sprintf("top-level JSON value is %s, not an object", describeJSON(trimmed[0])))
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if _, err := dec.Token(); err != nil {
		return nil, wrapErr(ErrParse, err, "%v", err)
	}
	return decodeObject(dec, 1)
}

// UnmarshalJSON implements json.Unmarshaler.  The factory, if any, is kept.
func (d *HDict) UnmarshalJSON(data []byte) error {
	loaded, err := LoadBytes(data)
	if err != nil {
		return err
	}
	d.om = loaded.om
	return nil
}

// checkSyntax validates raw as a single JSON value.
func checkSyntax(raw []byte) error {
	var discard json.RawMessage
	err := json.Unmarshal(raw, &discard)
	if err == nil {
		return nil
	}
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		return &Error{
			Code:   ErrParse,
			Msg:    fmt.Sprintf("%s (offset %d)", syn.Error(), syn.Offset),
			Offset: syn.Offset,
			Err:    err,
		}
	}
	return wrapErr(ErrParse, err, "%v", err)
}

// decodeObject decodes the members of an object whose opening '{' has
// already been consumed.  depth counts enclosing containers, root = 1.
func decodeObject(dec *json.Decoder, depth int) (*HDict, error) {
	if depth > MaxDepth {
		return nil, newErr(ErrLimitDepth, "nesting exceeds MaxDepth")
	}

	d := &HDict{}
	d.ensure()
	for dec.More() {
		kTok, err := dec.Token()
		if err != nil {
			return nil, wrapErr(ErrParse, err, "reading key: %v", err)
		}
		key, ok := kTok.(string)
		if !ok {
			return nil, newErr(ErrParse, fmt.Sprintf("object key is %T, not a string", kTok))
		}
		val, err := decodeValue(dec, depth)
		if err != nil {
			return nil, err
		}
		// Duplicate keys keep their first position and the last value.
		d.put(String(key), val)
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return d, nil
}

func decodeArray(dec *json.Decoder, depth int) ([]any, error) {
	if depth > MaxDepth {
		return nil, newErr(ErrLimitDepth, "nesting exceeds MaxDepth")
	}

	arr := make([]any, 0, 4)
	for dec.More() {
		val, err := decodeValue(dec, depth)
		if err != nil {
			return nil, err
		}
		arr = append(arr, val)
	}

	if err := expectDelim(dec, ']'); err != nil {
		return nil, err
	}
	return arr, nil
}

// decodeValue decodes one value inside a container at the given depth.
func decodeValue(dec *json.Decoder, depth int) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, wrapErr(ErrParse, err, "%v", err)
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			return decodeObject(dec, depth+1)
		case '[':
			return decodeArray(dec, depth+1)
		}
		return nil, newErr(ErrParse, fmt.Sprintf("unexpected delimiter %q", rune(v)))
	case json.Number:
		return convertNumber(v), nil
	case string, bool, nil:
		return v, nil
	}
	return nil, newErr(ErrParse, fmt.Sprintf("unexpected JSON token %T", tok))
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return wrapErr(ErrParse, err, "missing %q: %v", rune(want), err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return newErr(ErrParse, fmt.Sprintf("expected %q", rune(want)))
	}
	return nil
}

// convertNumber maps integer literals to int64 and other numbers to
// float64.  Literals outside those ranges stay json.Number so they encode
// back unchanged.
func convertNumber(n json.Number) any {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
		return n
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n
}

func describeJSON(first byte) string {
	switch first {
	case '[':
		return "an array"
	case '"':
		return "a string"
	case 't', 'f':
		return "a boolean"
	case 'n':
		return "null"
	}
	return "a number"
}
