package antvec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/maxpenner/dectnrp-core/antvec"
)

func TestBasicQueries(t *testing.T) {
	v := antvec.New(4)
	v.Set(0, 1.0)
	v.Set(1, 5.0)
	v.Set(2, -2.0)
	v.Set(3, 5.0)

	assert.Equal(t, 9.0, v.Sum())
	assert.Equal(t, 5.0, v.Max())
	assert.Equal(t, 1, v.IndexOfMax()) // first of the ties
	assert.Equal(t, -2.0, v.Min())
	assert.Equal(t, 2, v.IndexOfMin())
	assert.Equal(t, 3, v.CountLarger(0.0))
}

func TestMaxMinIndexConsistency(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, antvec.MaxAntennas).Draw(rt, "n")
		v := antvec.New(n)
		for i := 0; i < n; i++ {
			v.Set(i, rapid.Float64Range(-1000, 1000).Draw(rt, "val"))
		}

		assert.Equal(t, v.At(v.IndexOfMax()), v.Max())
		assert.Equal(t, v.At(v.IndexOfMin()), v.Min())
	})
}
