package hdict_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hdict "github.com/christophertubbs/HDict"
)

type label string

func TestKeyOf(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want hdict.Key
		text string
	}{
		{"string", "one", hdict.String("one"), "one"},
		{"int", 2, hdict.Int(2), "2"},
		{"negative int8", int8(-3), hdict.Int(-3), "-3"},
		{"uint", uint16(9), hdict.Int(9), "9"},
		{"bool", true, hdict.Bool(true), "true"},
		{"float", 2.5, hdict.Float(2.5), "2.5"},
		{"integral float", 3.0, hdict.Float(3), "3.0"},
		{"float32", float32(0.5), hdict.Float(0.5), "0.5"},
		{"large float", 1e16, hdict.Float(1e16), "1e+16"},
		{"below exponent threshold", 1e15, hdict.Float(1e15), "1000000000000000.0"},
		{"small float", 0.00001, hdict.Float(0.00001), "1e-05"},
		{"inf", math.Inf(-1), hdict.Float(math.Inf(-1)), "-Infinity"},
		{"named string", label("x"), hdict.String("x"), "x"},
		{"key passthrough", hdict.Int(7), hdict.Int(7), "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := hdict.KeyOf(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.text, got.Text())
		})
	}
}

func TestKeyOfRejects(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{"nil", nil},
		{"slice", []string{"a"}},
		{"map", map[string]int{}},
		{"nan", math.NaN()},
		{"nan key", hdict.Float(math.NaN())},
		{"uint overflow", uint64(math.MaxUint64)},
		{"struct", struct{}{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := hdict.KeyOf(tt.in)
			require.Error(t, err)
			assert.True(t, hdict.HasCode(err, hdict.ErrInvalidArguments))
		})
	}
}
