package simulation

import (
	"hash/fnv"
	"math"
	"math/rand"
)

// RandSource is a seeded, reproducible pseudo-random stream. Each semantic
// stream ("inflation", one per holding, per trial) gets its own source so
// correlated and independent correlation models can share or diverge
// deterministically. Identical seed and stream always produce a bit-identical
// sequence.
type RandSource struct {
	rng      *rand.Rand
	spare    float64
	hasSpare bool
}

// NewRandSource derives a source from a user seed string and a stream label.
func NewRandSource(seed, stream string) *RandSource {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	_, _ = h.Write([]byte{':'})
	_, _ = h.Write([]byte(stream))
	return &RandSource{rng: rand.New(rand.NewSource(int64(h.Sum64())))}
}

// Uniform returns a uniform deviate in [0, 1).
func (s *RandSource) Uniform() float64 {
	return s.rng.Float64()
}

// Norm returns a standard-normal variate via the Box-Muller transform. Both
// generated values are used; the second is cached.
func (s *RandSource) Norm() float64 {
	if s.hasSpare {
		s.hasSpare = false
		return s.spare
	}
	var u1 float64
	for u1 == 0 {
		u1 = s.rng.Float64()
	}
	u2 := s.rng.Float64()
	r := math.Sqrt(-2 * math.Log(u1))
	s.spare = r * math.Sin(2*math.Pi*u2)
	s.hasSpare = true
	return r * math.Cos(2*math.Pi*u2)
}

// ShockSequence returns n persistence-weighted standard shocks:
// shock[t] = p*shock[t-1] + sqrt(1-p^2)*N(0,1). The sqrt term keeps the
// stationary variance at 1 so callers can scale by a plain stdev.
func (s *RandSource) ShockSequence(n int, persistence float64) []float64 {
	if n <= 0 {
		return nil
	}
	p := clampPersistence(persistence)
	innovation := math.Sqrt(1 - p*p)
	shocks := make([]float64, n)
	prev := s.Norm()
	shocks[0] = prev
	for t := 1; t < n; t++ {
		prev = p*prev + innovation*s.Norm()
		shocks[t] = prev
	}
	return shocks
}

// AnnualRegimeSequence draws one shock per calendar year and holds it for all
// twelve months, with the annual persistence applied as-is year to year.
func (s *RandSource) AnnualRegimeSequence(months int, persistence float64) []float64 {
	if months <= 0 {
		return nil
	}
	years := (months + 11) / 12
	annual := s.ShockSequence(years, persistence)
	shocks := make([]float64, months)
	for t := range shocks {
		shocks[t] = annual[t/12]
	}
	return shocks
}

// MonthlyPersistence converts an annual AR(1) coefficient to its monthly
// equivalent.
func MonthlyPersistence(annual float64) float64 {
	p := clampPersistence(annual)
	if p == 0 {
		return 0
	}
	return math.Pow(p, 1.0/12.0)
}

func clampPersistence(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 0.999 {
		return 0.999
	}
	return p
}
