package config

import (
	"fmt"
	"math"
	"strings"
)

// ValidateRaw checks semantic constraints of a RawConfig.
func ValidateRaw(cfg RawConfig) error {
	var errs []string

	// board
	if cfg.Board.Levels != nil && *cfg.Board.Levels < 1 {
		errs = append(errs, "board.levels must be >= 1")
	}
	if cfg.Board.Balls != nil && *cfg.Board.Balls < 1 {
		errs = append(errs, "board.balls must be >= 1")
	}
	if cfg.Board.P != nil {
		p := *cfg.Board.P
		if math.IsNaN(p) || p < 0 || p > 1 {
			errs = append(errs, "board.p must be in [0,1]")
		}
	}

	// pacing
	if pc := cfg.Pacing; pc != nil {
		if pc.PegDelay != nil && *pc.PegDelay < 0 {
			errs = append(errs, "pacing.peg_delay must be >= 0")
		}
		if pc.BallDelay != nil && *pc.BallDelay < 0 {
			errs = append(errs, "pacing.ball_delay must be >= 0")
		}
		if pc.DropDelay != nil && *pc.DropDelay < 0 {
			errs = append(errs, "pacing.drop_delay must be >= 0")
		}
		if pc.Speed != nil {
			s := *pc.Speed
			if math.IsNaN(s) || math.IsInf(s, 0) || s <= 0 {
				errs = append(errs, "pacing.speed must be > 0")
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
