package galton

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidConfiguration = errors.New("invalid board configuration")
	ErrInvalidProb          = errors.New("invalid probability p; must be 0..1")
	ErrInvalidLevels        = errors.New("invalid levels; must be >= 1")
	ErrInvalidBallCount     = errors.New("invalid ball count; must be >= 1")
	ErrInvalidPosition      = errors.New("position is not a peg on this board")
)

func validateProb(p float64) error {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return ErrInvalidProb
	}
	if p < 0 || p > 1 {
		return ErrInvalidProb
	}
	return nil
}

func validateLevels(levels int) error {
	if levels < 1 {
		return ErrInvalidLevels
	}
	return nil
}

// Validate reports every violated field at once. The returned error matches
// ErrInvalidConfiguration and each field sentinel with errors.Is.
func (c BoardConfig) Validate() error {
	var errs []error
	if err := validateLevels(c.Levels); err != nil {
		errs = append(errs, fmt.Errorf("%w (got %d)", err, c.Levels))
	}
	if c.BallCount < 1 {
		errs = append(errs, fmt.Errorf("%w (got %d)", ErrInvalidBallCount, c.BallCount))
	}
	if err := validateProb(c.RightProbability); err != nil {
		errs = append(errs, fmt.Errorf("%w (got %v)", err, c.RightProbability))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfiguration, errors.Join(errs...))
}
