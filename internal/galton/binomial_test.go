package galton_test

import (
	"math"
	"testing"

	"github.com/xtding233/beanmachine/internal/galton"
)

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestBinomialKnownValues(t *testing.T) {
	tests := []struct {
		n, k int
		p    float64
		want float64
	}{
		{5, 0, 0.5, 0.03125},
		{5, 2, 0.5, 0.3125},
		{5, 5, 0.5, 0.03125},
		{1, 1, 0.3, 0.3},
		{2, 1, 0.25, 0.375},
		{0, 0, 0.7, 1},
	}
	for _, tt := range tests {
		got := galton.BinomialProbability(tt.n, tt.k, tt.p)
		if !near(got, tt.want, 1e-12) {
			t.Errorf("P(%d,%d,%v)=%v want %v", tt.n, tt.k, tt.p, got, tt.want)
		}
	}
}

func TestBinomialOutOfRange(t *testing.T) {
	if got := galton.BinomialProbability(5, -1, 0.5); got != 0 {
		t.Fatalf("k<0 should be 0, got %v", got)
	}
	if got := galton.BinomialProbability(5, 6, 0.5); got != 0 {
		t.Fatalf("k>n should be 0, got %v", got)
	}
	if got := galton.BinomialProbability(0, 1, 0.5); got != 0 {
		t.Fatalf("n=0,k=1 should be 0, got %v", got)
	}
	if got := galton.BinomialProbability(3, 1, 1.5); got != 0 {
		t.Fatalf("p>1 should be 0, got %v", got)
	}
}

func TestBinomialDegenerateP(t *testing.T) {
	for _, n := range []int{0, 1, 7, 300} {
		for k := 0; k <= n; k++ {
			got0 := galton.BinomialProbability(n, k, 0)
			got1 := galton.BinomialProbability(n, k, 1)
			want0, want1 := 0.0, 0.0
			if k == 0 {
				want0 = 1
			}
			if k == n {
				want1 = 1
			}
			if got0 != want0 || got1 != want1 {
				t.Fatalf("n=%d k=%d: p=0 -> %v (want %v), p=1 -> %v (want %v)", n, k, got0, want0, got1, want1)
			}
		}
	}
}

func TestBinomialSumsToOne(t *testing.T) {
	for _, n := range []int{0, 1, 2, 10, 50, 200, 1000, 3000} {
		for _, p := range []float64{0, 0.01, 0.3, 0.5, 0.77, 0.999, 1} {
			var sum float64
			for k := 0; k <= n; k++ {
				v := galton.BinomialProbability(n, k, p)
				if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 1 {
					t.Fatalf("P(%d,%d,%v)=%v out of [0,1]", n, k, p, v)
				}
				sum += v
			}
			if !near(sum, 1, 1e-9) {
				t.Fatalf("sum over k for n=%d p=%v = %.15f", n, p, sum)
			}
		}
	}
}

func TestBinomialSymmetry(t *testing.T) {
	for _, n := range []int{1, 4, 9, 33, 400} {
		for _, p := range []float64{0, 0.1, 0.25, 0.5, 0.6, 0.9, 1} {
			for k := 0; k <= n; k++ {
				a := galton.BinomialProbability(n, k, p)
				b := galton.BinomialProbability(n, n-k, 1-p)
				if !near(a, b, 1e-9*math.Max(a, 1e-300)+1e-300) {
					t.Fatalf("symmetry broken n=%d k=%d p=%v: %v vs %v", n, k, p, a, b)
				}
			}
		}
	}
}

func TestModeAndPeak(t *testing.T) {
	if m := galton.Mode(10, 0.5); m != 5 {
		t.Fatalf("mode(10,.5)=%d", m)
	}
	if m := galton.Mode(9, 0.3); m != 3 {
		t.Fatalf("mode(9,.3)=%d", m)
	}
	if m := galton.Mode(0, 0.3); m != 0 {
		t.Fatalf("mode(0,.3)=%d", m)
	}
	peak := galton.PeakProbability(10, 0.5)
	if !near(peak, 252.0/1024.0, 1e-12) {
		t.Fatalf("peak(10,.5)=%v", peak)
	}
	for k := 0; k <= 10; k++ {
		if galton.BinomialProbability(10, k, 0.5) > peak+1e-15 {
			t.Fatalf("k=%d exceeds peak", k)
		}
	}
}

func TestExpectedDistribution(t *testing.T) {
	d, err := galton.ExpectedDistribution(6, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if d.Trials != 5 || len(d.Slots) != 6 {
		t.Fatalf("trials=%d slots=%d", d.Trials, len(d.Slots))
	}
	if !near(d.Probability(2), 0.3125, 1e-12) {
		t.Fatalf("slot 2 = %v", d.Probability(2))
	}
	if d.Probability(-1) != 0 || d.Probability(6) != 0 {
		t.Fatalf("out of range slot must be 0")
	}
	if !near(d.Relative(d.Peak), 1, 1e-12) {
		t.Fatalf("relative(peak) should be 1")
	}
	if !near(d.Mean(), 2.5, 1e-12) || !near(d.Variance(), 1.25, 1e-12) {
		t.Fatalf("mean=%v var=%v", d.Mean(), d.Variance())
	}

	one, err := galton.ExpectedDistribution(1, 0.3)
	if err != nil {
		t.Fatal(err)
	}
	if len(one.Slots) != 1 || one.Slots[0].Probability != 1 {
		t.Fatalf("single level board should be certain: %+v", one)
	}

	if _, err := galton.ExpectedDistribution(0, 0.5); err == nil {
		t.Fatalf("levels=0 must error")
	}
	if _, err := galton.ExpectedDistribution(3, -0.1); err == nil {
		t.Fatalf("p<0 must error")
	}
}
