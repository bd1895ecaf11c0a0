package galton

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// RandomSource is the capability every random decision goes through.
// Float64 must return a uniform sample in [0, 1).
type RandomSource interface {
	Float64() float64
}

// crypto random : default source when the caller passes nil
type cryptoRNG struct{}

func (cryptoRNG) Float64() float64 {
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		// back to math/rand/v2
		return rand.Float64()
	}

	// 53 bits => [0, 1)
	u := binary.BigEndian.Uint64(buf[:]) >> 11
	return float64(u) / (1 << 53)
}

func DefaultRNG() RandomSource { return cryptoRNG{} }

// Replicable RNG (tests, batch runs with a seed)
type seededRNG struct{ r *rand.Rand }

func NewSeededRNG(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRNG) Float64() float64 { return s.r.Float64() }

// SequenceRNG replays fixed samples in order and wraps around.
// Handy for forcing a particular path.
type SequenceRNG struct {
	Samples []float64
	i       int
}

func (s *SequenceRNG) Float64() float64 {
	if len(s.Samples) == 0 {
		return 0
	}
	v := s.Samples[s.i%len(s.Samples)]
	s.i++
	return v
}
