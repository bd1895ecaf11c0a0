package galton_test

import (
	"errors"
	"math"
	"testing"

	"github.com/xtding233/beanmachine/internal/galton"
)

func TestRunBatchCountsEveryBall(t *testing.T) {
	for _, p := range []float64{0, 0.13, 0.5, 0.8, 1} {
		for _, balls := range []int{1, 7, 250} {
			cfg := galton.BoardConfig{Levels: 9, BallCount: balls, RightProbability: p}
			res, err := galton.RunBatch(cfg, galton.NewSeededRNG(99))
			if err != nil {
				t.Fatal(err)
			}
			sum := 0
			for _, c := range res.SlotCounts {
				sum += c
			}
			if sum != balls {
				t.Fatalf("p=%v balls=%d: slot sum %d", p, balls, sum)
			}
			for r, row := range res.Hits {
				total := 0
				for _, c := range row {
					total += c
				}
				if total != balls {
					t.Fatalf("row %d total %d want %d", r, total, balls)
				}
			}
		}
	}
}

func TestRunBatchExtremes(t *testing.T) {
	res, err := galton.RunBatch(galton.BoardConfig{Levels: 6, BallCount: 30, RightProbability: 0}, galton.NewSeededRNG(1))
	if err != nil {
		t.Fatal(err)
	}
	if res.SlotCounts[0] != 30 {
		t.Fatalf("p=0 slots=%v", res.SlotCounts)
	}
	res, err = galton.RunBatch(galton.BoardConfig{Levels: 6, BallCount: 30, RightProbability: 1}, galton.NewSeededRNG(1))
	if err != nil {
		t.Fatal(err)
	}
	if res.SlotCounts[5] != 30 {
		t.Fatalf("p=1 slots=%v", res.SlotCounts)
	}
	if res.Stats.ChiSquare != 0 || res.Stats.TotalVariation != 0 {
		t.Fatalf("certain outcome should match exactly: %+v", res.Stats)
	}
}

func TestRunBatchStatsApprox(t *testing.T) {
	cfg := galton.BoardConfig{Levels: 11, BallCount: 20000, RightProbability: 0.3}
	res, err := galton.RunBatch(cfg, galton.NewSeededRNG(42))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(res.Stats.Mean-res.Stats.ExpectedMean) > 0.1 {
		t.Fatalf("mean=%v expected %v", res.Stats.Mean, res.Stats.ExpectedMean)
	}
	if math.Abs(res.Stats.Var-res.Stats.ExpectedVar) > 0.2 {
		t.Fatalf("var=%v expected %v", res.Stats.Var, res.Stats.ExpectedVar)
	}
	if res.Stats.TotalVariation > 0.03 {
		t.Fatalf("empirical distribution too far from binomial: tv=%v", res.Stats.TotalVariation)
	}
}

func TestRunBatchRejectsInvalidConfig(t *testing.T) {
	_, err := galton.RunBatch(galton.BoardConfig{Levels: 0, BallCount: 0, RightProbability: 2}, nil)
	if !errors.Is(err, galton.ErrInvalidConfiguration) {
		t.Fatalf("want ErrInvalidConfiguration, got %v", err)
	}
	for _, sentinel := range []error{galton.ErrInvalidLevels, galton.ErrInvalidBallCount, galton.ErrInvalidProb} {
		if !errors.Is(err, sentinel) {
			t.Fatalf("error %v should carry %v", err, sentinel)
		}
	}
}

func TestSummarize(t *testing.T) {
	d, err := galton.ExpectedDistribution(3, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	st := galton.Summarize([]int{1, 2, 1}, d)
	if st.Mean != 1 || st.Var != 0.5 {
		t.Fatalf("mean=%v var=%v", st.Mean, st.Var)
	}
	if st.TotalVariation != 0 || st.ChiSquare != 0 {
		t.Fatalf("exact match expected, got tv=%v chi=%v", st.TotalVariation, st.ChiSquare)
	}
	if empty := galton.Summarize(nil, d); empty.Mean != 0 {
		t.Fatalf("empty summary should be zero")
	}
}

func TestBoardConfigValidate(t *testing.T) {
	ok := galton.BoardConfig{Levels: 1, BallCount: 1, RightProbability: 0}
	if err := ok.Validate(); err != nil {
		t.Fatalf("minimal config rejected: %v", err)
	}
	bad := []galton.BoardConfig{
		{Levels: 0, BallCount: 1, RightProbability: 0.5},
		{Levels: 3, BallCount: 0, RightProbability: 0.5},
		{Levels: 3, BallCount: 1, RightProbability: -0.01},
		{Levels: 3, BallCount: 1, RightProbability: math.NaN()},
		{Levels: 3, BallCount: 1, RightProbability: math.Inf(1)},
	}
	for _, c := range bad {
		if err := c.Validate(); !errors.Is(err, galton.ErrInvalidConfiguration) {
			t.Fatalf("%+v: want ErrInvalidConfiguration, got %v", c, err)
		}
	}
}
