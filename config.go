package relief

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig reads pipeline configuration from a YAML file, merging it
// over the package defaults so partial files stay valid.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("loading config from %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("loading config from %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks configuration ranges before the pipeline runs.
func (c Config) Validate() error {
	if c.Resolution < 1 {
		return fmt.Errorf("%w: resolution %d, must be >= 1", ErrInvalidParameter, c.Resolution)
	}
	if c.DepthScale <= 0 {
		return fmt.Errorf("%w: depth scale %g, must be > 0", ErrInvalidParameter, c.DepthScale)
	}
	if c.Smoothness < 0 || c.Smoothness > 1 {
		return fmt.Errorf("%w: smoothness %g outside [0,1]", ErrInvalidParameter, c.Smoothness)
	}
	if c.Subdivisions < 0 {
		return fmt.Errorf("%w: subdivisions %d", ErrInvalidParameter, c.Subdivisions)
	}
	if c.SmoothingPasses < 0 {
		return fmt.Errorf("%w: smoothing passes %d", ErrInvalidParameter, c.SmoothingPasses)
	}
	if c.SmoothingFactor < 0 || c.SmoothingFactor > 1 {
		return fmt.Errorf("%w: smoothing factor %g outside [0,1]", ErrInvalidParameter, c.SmoothingFactor)
	}
	return nil
}
