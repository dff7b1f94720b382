package hdict

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentity(t *testing.T) {
	tests := []struct {
		in   Key
		want Key
	}{
		{Int(2), Int(2)},
		{Float(2), Int(2)},
		{Float(math.Copysign(0, -1)), Int(0)},
		{Float(2.5), Float(2.5)},
		{Float(1e300), Float(1e300)},
		{Float(math.Inf(1)), Float(math.Inf(1))},
		{Bool(true), Int(1)},
		{Bool(false), Int(0)},
		{String("2"), String("2")},
	}

	for _, tt := range tests {
		t.Run(tt.in.Text(), func(t *testing.T) {
			assert.Equal(t, tt.want, identity(tt.in))
		})
	}
}

func TestHashIdentityAgreesWithText(t *testing.T) {
	keys := []Key{Int(2), Int(-7), Float(2), Float(2.5), Float(1e16), Float(1e-5), Float(math.Inf(-1)), Bool(true), Bool(false), String("x")}

	for _, k := range keys {
		t.Run(k.Text(), func(t *testing.T) {
			assert.Equal(t, hashIdentity(k), hashIdentity(String(k.Text())))
			assert.Equal(t, hashIdentity(k), hashIdentity(identity(k)))
		})
	}
}
