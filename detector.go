package collide

import (
	"github.com/akmonengine/collide/epa"
	"github.com/akmonengine/collide/gjk"
)

const DEFAULT_WORKERS = 1

// Config gathers the tuning of every stage of a query. NewDetector replaces EPA and
// EPA2D iteration caps under 1, and tolerances left at zero, by their defaults; a
// negative tolerance is kept and means "never accept early". GJK keeps its own rule
// that a cap under 1 removes it.
type Config struct {
	// Workers is the goroutine count of each batch stage, at least DEFAULT_WORKERS.
	Workers int

	GJK   gjk.Options
	EPA   epa.Options
	EPA2D epa.Options
}

// DefaultConfig returns the tuning used by Solid.Collides and Flat.Collides.
func DefaultConfig() Config {
	return Config{
		Workers: DEFAULT_WORKERS,
		GJK:     gjk.DefaultOptions(),
		EPA:     epa.DefaultOptions(),
		EPA2D:   epa.DefaultOptions2D(),
	}
}

// Detector runs collision queries with a given Config. It holds no per-query state and
// may be shared between goroutines.
type Detector struct {
	config Config
	logger Logger
}

var defaultDetector = NewDetector(DefaultConfig(), nil)

// NewDetector creates a detector; a nil logger discards everything.
func NewDetector(config Config, logger Logger) *Detector {
	if logger == nil {
		logger = NewNopLogger()
	}
	config.Workers = max(DEFAULT_WORKERS, config.Workers)
	config.EPA = withDefaults(config.EPA, epa.DefaultOptions())
	config.EPA2D = withDefaults(config.EPA2D, epa.DefaultOptions2D())

	return &Detector{config: config, logger: logger}
}

func (d *Detector) Config() Config {
	return d.config
}

func (d *Detector) Logger() Logger {
	return d.logger
}

func withDefaults(opts, defaults epa.Options) epa.Options {
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = defaults.MaxIterations
	}
	if opts.Tolerance == 0 {
		opts.Tolerance = defaults.Tolerance
	}
	return opts
}
