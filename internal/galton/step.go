package galton

// Deflect bounces a ball off one peg under p and reports whether it went right.
// One sample is always consumed, even when p is 0 or 1, so a shared source
// advances the same way whatever the probability. nil rng => DefaultRNG.
func Deflect(p float64, rng RandomSource) (bool, error) {
	if err := validateProb(p); err != nil {
		return false, err
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	return rng.Float64() < p, nil
}
