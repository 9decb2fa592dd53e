package transmit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSamplerAdmitsEveryEventWhenRateIsOneOrLess(t *testing.T) {
	s := NewSampler(func() float64 { t.Fatal("rand should not be consulted"); return 0 })
	assert.True(t, s.Admit(0))
	assert.True(t, s.Admit(1))
}

func TestSamplerFixedRandDeterministic(t *testing.T) {
	s := NewSampler(func() float64 { return 0.11 })
	// sampleRate 10 -> admit iff rand() < 0.1; 0.11 is not, so dropped.
	assert.False(t, s.Admit(10))

	s2 := NewSampler(func() float64 { return 0.05 })
	assert.True(t, s2.Admit(10))
}

func TestSamplerDefaultsToMathRand(t *testing.T) {
	s := NewSampler(nil)
	admitted := 0
	const n = 2000
	for i := 0; i < n; i++ {
		if s.Admit(4) {
			admitted++
		}
	}
	frac := float64(admitted) / float64(n)
	assert.InDelta(t, 0.25, frac, 0.1)
}
