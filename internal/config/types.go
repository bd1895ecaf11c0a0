// types.go
package config

import "time"

// RawConfig is one YAML file as written. Every field is optional so that a
// preset only needs to name what it changes.
type RawConfig struct {
	Version string      `yaml:"version"`
	Board   BoardConfig `yaml:"board"`
	Pacing  *PacingCfg  `yaml:"pacing,omitempty"`
	Notes   string      `yaml:"notes,omitempty"`
}

type BoardConfig struct {
	Levels *int     `yaml:"levels"`
	Balls  *int     `yaml:"balls"`
	P      *float64 `yaml:"p"`
}

type PacingCfg struct {
	PegDelay  *time.Duration `yaml:"peg_delay,omitempty"`
	BallDelay *time.Duration `yaml:"ball_delay,omitempty"`
	DropDelay *time.Duration `yaml:"drop_delay,omitempty"`
	Speed     *float64       `yaml:"speed,omitempty"`
}
