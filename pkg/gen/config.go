package gen

import (
	"time"

	wberrors "github.com/matzehuels/wrldbldr/pkg/errors"
	"github.com/matzehuels/wrldbldr/pkg/world"
)

// Default configuration values.
const (
	DefaultScale      = 1.0
	DefaultTimeout    = 100 * time.Millisecond
	DefaultSeed       = 42
	DefaultStallLimit = 4096

	// MaxSectionsLimit is the largest accepted MaxSections.
	MaxSectionsLimit = 1 << 26
)

// Config holds the engine configuration.
type Config struct {
	// Scale is the uniform spacing between neighboring section centers.
	Scale float64

	// Timeout is the time budget of a single [Run.Step] slice.
	Timeout time.Duration

	// Seed initializes the engine's random stream.
	Seed uint64

	// StallLimit bounds the number of consecutive fallback iterations that
	// neither place nor link a section before the run fails as exhausted.
	StallLimit int

	// MaxSections caps the number of live sections in the engine's world.
	MaxSections int
}

// DefaultConfig returns a Config with every field at its default.
func DefaultConfig() Config {
	c := Config{Seed: DefaultSeed}
	c.SetDefaults()
	return c
}

// SetDefaults fills zero fields with their defaults. Seed is left alone since
// 0 is a valid seed.
func (c *Config) SetDefaults() {
	if c.Scale == 0 {
		c.Scale = DefaultScale
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.StallLimit == 0 {
		c.StallLimit = DefaultStallLimit
	}
	if c.MaxSections == 0 {
		c.MaxSections = world.DefaultMaxSections
	}
}

// Validate checks the configuration after defaults have been applied.
func (c Config) Validate() error {
	if c.Scale <= 0 {
		return wberrors.New(wberrors.ErrCodeInvalidInput, "scale must be positive, got %g", c.Scale)
	}
	if c.Timeout < 0 {
		return wberrors.New(wberrors.ErrCodeInvalidInput, "timeout must not be negative, got %s", c.Timeout)
	}
	if c.StallLimit < 0 {
		return wberrors.New(wberrors.ErrCodeInvalidInput, "stall limit must not be negative, got %d", c.StallLimit)
	}
	if c.MaxSections < 0 || c.MaxSections > MaxSectionsLimit {
		return wberrors.New(wberrors.ErrCodeInvalidInput, "max sections must be in [0, %d], got %d", MaxSectionsLimit, c.MaxSections)
	}
	return nil
}
