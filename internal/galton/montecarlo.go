package galton

import (
	"math"
	"sort"
)

// Stats summarizes the landing slots of a batch of balls against the
// expected binomial distribution.
type Stats struct {
	Mean   float64 `json:"mean"`
	Var    float64 `json:"var"`
	StdDev float64 `json:"stddev"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	P99    float64 `json:"p99"`

	ExpectedMean float64 `json:"expected_mean"`
	ExpectedVar  float64 `json:"expected_var"`
	// Pearson statistic over slots with non-zero expected mass.
	ChiSquare float64 `json:"chi_square"`
	// Half the L1 distance between empirical and expected shares.
	TotalVariation float64 `json:"total_variation"`

	// Optional: raw samples if caller needs histograms/exports
	Samples []int `json:"-"`
}

// calcStats computes mean/variance/percentiles for integer samples.
func calcStats(xs []int) Stats {
	n := len(xs)
	if n == 0 {
		return Stats{}
	}
	// mean
	var sum float64
	for _, v := range xs {
		sum += float64(v)
	}
	mean := sum / float64(n)

	// variance (population)
	var acc float64
	for _, v := range xs {
		d := float64(v) - mean
		acc += d * d
	}
	variance := acc / float64(n)

	// percentiles
	cp := append([]int(nil), xs...)
	sort.Ints(cp)
	percentile := func(p float64) float64 {
		if n == 1 || p <= 0 {
			return float64(cp[0])
		}
		if p >= 1 {
			return float64(cp[n-1])
		}
		pos := p * float64(n-1)
		i := int(math.Floor(pos))
		f := pos - float64(i)
		if i+1 >= n {
			return float64(cp[i])
		}
		return float64(cp[i])*(1-f) + float64(cp[i+1])*f
	}

	return Stats{
		Mean:    mean,
		Var:     variance,
		StdDev:  math.Sqrt(variance),
		P50:     percentile(0.50),
		P90:     percentile(0.90),
		P99:     percentile(0.99),
		Samples: xs,
	}
}

// Compare fills the goodness-of-fit fields from per-slot counts.
func (s *Stats) Compare(counts []int, expected Distribution) {
	s.ExpectedMean = expected.Mean()
	s.ExpectedVar = expected.Variance()

	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return
	}
	var chi, tv float64
	for slot, sp := range expected.Slots {
		obs := 0
		if slot < len(counts) {
			obs = counts[slot]
		}
		share := float64(obs) / float64(total)
		tv += math.Abs(share - sp.Probability)
		exp := sp.Probability * float64(total)
		if exp > 0 {
			d := float64(obs) - exp
			chi += d * d / exp
		}
	}
	s.ChiSquare = chi
	s.TotalVariation = tv / 2
}

// Summarize builds Stats straight from slot counts, e.g. a finished run's
// bottom row.
func Summarize(counts []int, expected Distribution) Stats {
	samples := make([]int, 0)
	for slot, c := range counts {
		for i := 0; i < c; i++ {
			samples = append(samples, slot)
		}
	}
	st := calcStats(samples)
	st.Compare(counts, expected)
	return st
}

// BatchResult is the outcome of an unpaced run.
type BatchResult struct {
	Config     BoardConfig  `json:"config"`
	Expected   Distribution `json:"expected"`
	SlotCounts []int        `json:"slot_counts"`
	Hits       [][]int      `json:"hits"`
	Stats      Stats        `json:"stats"`
}

// RunBatch drops every ball of cfg back to back with no pacing. Hits are
// committed per row exactly as a paced run would, entry peg included.
func RunBatch(cfg BoardConfig, rng RandomSource) (BatchResult, error) {
	if err := cfg.Validate(); err != nil {
		return BatchResult{}, err
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	expected, err := ExpectedDistribution(cfg.Levels, cfg.RightProbability)
	if err != nil {
		return BatchResult{}, err
	}

	hits := NewHitCounts(cfg.Levels)
	samples := make([]int, cfg.BallCount)
	for b := 0; b < cfg.BallCount; b++ {
		w, err := NewWalker(cfg.Levels, cfg.RightProbability, rng)
		if err != nil {
			return BatchResult{}, err
		}
		if _, err := hits.Increment(w.Position()); err != nil {
			return BatchResult{}, err
		}
		for {
			pos, ok := w.Next()
			if !ok {
				break
			}
			if _, err := hits.Increment(pos); err != nil {
				return BatchResult{}, err
			}
		}
		samples[b] = w.Position().Slot()
	}

	counts := hits.SlotCounts()
	st := calcStats(samples)
	st.Compare(counts, expected)
	return BatchResult{
		Config:     cfg,
		Expected:   expected,
		SlotCounts: counts,
		Hits:       hits.Rows(),
		Stats:      st,
	}, nil
}
