// Package config loads the process-wide runtime tunables that don't belong
// on the command line: a handful of knobs better left environment-driven
// than source-driven (the stress-GC flag chief among them).
package config

import "github.com/caarlos0/env/v6"

// Config holds every LOXVM_*-prefixed environment variable the VM reads at
// startup. The envDefault tags are what a bare `loxvm <path>` gets with no
// environment configured at all; the zero value builds the same VM, since
// the machine and gc options ignore zero frame, stack and grow-factor
// settings.
type Config struct {
	// GCStress forces a full collection before every single heap allocation,
	// a pathological mode for shaking out missing GC roots. Far too slow
	// for normal use.
	GCStress bool `env:"LOXVM_GC_STRESS" envDefault:"false"`

	// GCGrowFactor scales the next-collection threshold after each
	// collection relative to the bytes still live.
	GCGrowFactor float64 `env:"LOXVM_GC_GROW_FACTOR" envDefault:"2.0"`

	// MaxFrames bounds the call-frame stack.
	MaxFrames int `env:"LOXVM_MAX_FRAMES" envDefault:"64"`

	// MaxStack bounds the value stack. Zero means derive it from MaxFrames
	// the way the compiled-in default does (FramesMax*256).
	MaxStack int `env:"LOXVM_MAX_STACK" envDefault:"0"`
}

// Load reads Config from the process environment, applying defaults for
// anything unset.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
