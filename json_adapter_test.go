package hdict_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hdict "github.com/christophertubbs/HDict"
)

func TestLoadsEqualsNamedConstruction(t *testing.T) {
	loaded, err := hdict.Loads(`{"one": 1, "two": 2}`)
	require.NoError(t, err)

	assert.True(t, loaded.Equal(hdict.MustNew(hdict.Kw("one", 1), hdict.Kw("two", 2))))
	assert.Equal(t, []hdict.Key{hdict.String("one"), hdict.String("two")}, loaded.Keys())
}

func TestLoadsValueTypes(t *testing.T) {
	loaded, err := hdict.Loads(`{
		"int": 7,
		"float": 2.5,
		"big": 123456789012345678901234567890,
		"str": "s",
		"yes": true,
		"none": null,
		"list": [1, "a", {"k": "v"}],
		"obj": {"b": 1, "a": 2}
	}`)
	require.NoError(t, err)

	get := func(key string) any {
		v, err := loaded.Get(key)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, int64(7), get("int"))
	assert.Equal(t, 2.5, get("float"))
	assert.Equal(t, json.Number("123456789012345678901234567890"), get("big"))
	assert.Equal(t, "s", get("str"))
	assert.Equal(t, true, get("yes"))
	assert.Nil(t, get("none"))

	list, ok := get("list").([]any)
	require.True(t, ok)
	require.Len(t, list, 3)
	assert.Equal(t, int64(1), list[0])
	assert.IsType(t, &hdict.HDict{}, list[2])

	obj, ok := get("obj").(*hdict.HDict)
	require.True(t, ok)
	assert.Equal(t, []hdict.Key{hdict.String("b"), hdict.String("a")}, obj.Keys())

	_, err = loaded.Get("missing")
	assert.True(t, hdict.HasCode(err, hdict.ErrKeyNotFound), "loaded dicts carry no factory")
}

func TestLoadsDuplicateKeys(t *testing.T) {
	loaded, err := hdict.Loads(`{"a": 1, "b": 2, "a": 3}`)
	require.NoError(t, err)

	text, err := loaded.Dumps(hdict.Compact())
	require.NoError(t, err)
	assert.Equal(t, `{"a":3,"b":2}`, text)
}

func TestLoadsParseError(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		offset int64
	}{
		{"empty", "", 0},
		{"truncated", `{"a": 1`, 7},
		{"bad token", `{"a": tru}`, 10},
		{"trailing", `{} {}`, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := hdict.Loads(tt.input)
			assert.Nil(t, d)
			require.Error(t, err)

			var herr *hdict.Error
			require.True(t, errors.As(err, &herr))
			assert.Equal(t, hdict.ErrParse, herr.Code)
			assert.Equal(t, tt.offset, herr.Offset)
			assert.Contains(t, herr.Error(), "offset")
		})
	}
}

func TestLoadsInvalidShape(t *testing.T) {
	for _, input := range []string{`[1, 2]`, `"text"`, `42`, `null`, ` true `} {
		t.Run(strings.TrimSpace(input), func(t *testing.T) {
			d, err := hdict.Loads(input)
			assert.Nil(t, d)
			assert.True(t, hdict.HasCode(err, hdict.ErrInvalidShape), "got %v", err)
		})
	}
}

func TestLoadsSyntaxBeforeShape(t *testing.T) {
	_, err := hdict.Loads(`[1, 2`)
	assert.True(t, hdict.HasCode(err, hdict.ErrParse))
}

func TestLoadsDepthLimit(t *testing.T) {
	deep := strings.Repeat(`{"a":`, hdict.MaxDepth+1) + "1" + strings.Repeat("}", hdict.MaxDepth+1)

	_, err := hdict.Loads(deep)
	assert.True(t, hdict.HasCode(err, hdict.ErrLimitDepth))
}

func TestLoadReader(t *testing.T) {
	loaded, err := hdict.Load(strings.NewReader(`{"x": [true]}`))
	require.NoError(t, err)
	assert.True(t, loaded.Contains("x"))
}

func TestUnmarshalJSON(t *testing.T) {
	var wrapper struct {
		Payload *hdict.HDict `json:"payload"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"payload": {"z": 1, "a": 2}}`), &wrapper))
	require.NotNil(t, wrapper.Payload)
	assert.Equal(t, []hdict.Key{hdict.String("z"), hdict.String("a")}, wrapper.Payload.Keys())

	var d hdict.HDict
	err := json.Unmarshal([]byte(`[1]`), &d)
	assert.True(t, hdict.HasCode(err, hdict.ErrInvalidShape))
}

func TestRoundTripPreservesText(t *testing.T) {
	inputs := []string{
		readmeJSON,
		"{\n    \"list\": [\n        1,\n        2.5,\n        \"x\"\n    ],\n    \"obj\": {\n        \"b\": null\n    }\n}",
		"{}",
	}

	for _, input := range inputs {
		loaded, err := hdict.Loads(input)
		require.NoError(t, err)

		out, err := loaded.Dumps()
		require.NoError(t, err)
		assert.Equal(t, input, out)
	}
}
