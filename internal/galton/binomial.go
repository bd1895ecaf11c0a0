package galton

import "math"

// BinomialProbability returns P(X = k) for X ~ Binomial(n, p).
// k outside [0, n] (or n < 0) gives 0. p = 0 and p = 1 put all the mass on
// k = 0 and k = n respectively.
//
// The coefficient is accumulated as a sum of log ratios (n-k+i)/i, so nothing
// grows past float64 range even for boards with thousands of levels.
func BinomialProbability(n, k int, p float64) float64 {
	if n < 0 || k < 0 || k > n {
		return 0
	}
	if validateProb(p) != nil {
		return 0
	}
	// 0^0 == 1, 0^positive == 0
	if p == 0 {
		if k == 0 {
			return 1
		}
		return 0
	}
	if p == 1 {
		if k == n {
			return 1
		}
		return 0
	}
	q := 1 - p
	logProb := logChoose(n, k) + float64(k)*math.Log(p) + float64(n-k)*math.Log(q)
	return math.Exp(logProb)
}

// logChoose is log C(n, k) built multiplicatively from the smaller side.
func logChoose(n, k int) float64 {
	if k > n-k {
		k = n - k
	}
	var s float64
	for i := 1; i <= k; i++ {
		s += math.Log(float64(n-k+i) / float64(i))
	}
	return s
}

// Mode is the most likely outcome, round(n*p).
func Mode(n int, p float64) int {
	if n <= 0 {
		return 0
	}
	return int(math.Round(float64(n) * p))
}

// PeakProbability is the probability at the mode. It scales the expected
// distribution for display and changes whenever n or p does.
func PeakProbability(n int, p float64) float64 {
	return BinomialProbability(n, Mode(n, p), p)
}

func Mean(n int, p float64) float64 { return float64(n) * p }

func Variance(n int, p float64) float64 { return float64(n) * p * (1 - p) }

// Distribution is the expected landing distribution of one board.
type Distribution struct {
	Trials int               `json:"trials"`
	P      float64           `json:"p"`
	Mode   int               `json:"mode"`
	Peak   float64           `json:"peak"`
	Slots  []SlotProbability `json:"slots"`
}

// ExpectedDistribution computes the per-slot probabilities for a board of
// the given number of levels. A board of L levels has L slots and L-1 trials.
func ExpectedDistribution(levels int, p float64) (Distribution, error) {
	if err := validateLevels(levels); err != nil {
		return Distribution{}, err
	}
	if err := validateProb(p); err != nil {
		return Distribution{}, err
	}
	n := levels - 1
	slots := make([]SlotProbability, levels)
	for k := range slots {
		slots[k] = SlotProbability{Slot: k, Probability: BinomialProbability(n, k, p)}
	}
	return Distribution{
		Trials: n,
		P:      p,
		Mode:   Mode(n, p),
		Peak:   PeakProbability(n, p),
		Slots:  slots,
	}, nil
}

// Probability returns the expected share of slot; 0 when out of range.
func (d Distribution) Probability(slot int) float64 {
	if slot < 0 || slot >= len(d.Slots) {
		return 0
	}
	return d.Slots[slot].Probability
}

// Relative is a share measured against the peak probability, the scale the
// expected and actual bars are compared on. 1 means "as tall as the mode".
func (d Distribution) Relative(share float64) float64 {
	if d.Peak <= 0 {
		return 0
	}
	return share / d.Peak
}

func (d Distribution) Mean() float64 { return Mean(d.Trials, d.P) }

func (d Distribution) Variance() float64 { return Variance(d.Trials, d.P) }
