package cli

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of the environment variables read by LoadConfig.
const EnvPrefix = "FILEMETA"

// Config holds flag defaults taken from the environment.
// Explicit flags always take precedence.
type Config struct {
	// Workers is the default pool size (FILEMETA_WORKERS, 0 = number of CPUs).
	Workers int `envconfig:"WORKERS"`
	// Strategy is the default fan-out (FILEMETA_STRATEGY).
	Strategy string `envconfig:"STRATEGY" default:"pool"`
	// Output is the default output format (FILEMETA_OUTPUT).
	Output string `envconfig:"OUTPUT" default:"text"`
	// Debug enables debug logging (FILEMETA_DEBUG).
	Debug bool `envconfig:"DEBUG"`
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("reading %s_* environment: %w", EnvPrefix, err)
	}

	if cfg.Workers < 0 {
		cfg.Workers = 0
	}

	return cfg, nil
}
