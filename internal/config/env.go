package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env is the process-level configuration read from BEANMACHINE_* variables.
type Env struct {
	ConfigDir string `env:"BEANMACHINE_CONFIG_DIR" envDefault:"configs"`
	Preset    string `env:"BEANMACHINE_PRESET"`
	HTTPAddr  string `env:"BEANMACHINE_HTTP_ADDR" envDefault:":8080"`
	GRPCAddr  string `env:"BEANMACHINE_GRPC_ADDR" envDefault:":9090"`
	LogLevel  string `env:"BEANMACHINE_LOG_LEVEL" envDefault:"info"`
	// 0 means a crypto-backed source.
	Seed  uint64 `env:"BEANMACHINE_SEED"`
	Watch bool   `env:"BEANMACHINE_WATCH" envDefault:"true"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadEnv returns Env with defaults applied.
func LoadEnv() (Env, error) {
	var e Env
	if err := ParseEnv(&e); err != nil {
		return Env{}, err
	}
	return e, nil
}
