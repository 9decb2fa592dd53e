package transmit

import "math/rand"

// Sampler is a pure probabilistic admission gate: an event with sample
// rate s is admitted iff s <= 1, or a draw from Rand lands below 1/s. Rand
// is injectable so tests can pin the outcome (e.g. sampleRate 10 with rand
// fixed at 0.11 is not below 1/10, so the event is dropped).
type Sampler struct {
	Rand func() float64
}

// NewSampler builds a Sampler around the given random source, defaulting
// to math/rand's global source when rand is nil.
func NewSampler(rand func() float64) *Sampler {
	if rand == nil {
		rand = mathRandFloat64
	}
	return &Sampler{Rand: rand}
}

func mathRandFloat64() float64 { return rand.Float64() }

// Admit reports whether an event at the given sample rate should be kept.
func (s *Sampler) Admit(sampleRate int) bool {
	if sampleRate <= 1 {
		return true
	}
	return s.Rand() < 1/float64(sampleRate)
}
