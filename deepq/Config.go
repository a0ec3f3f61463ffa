package deepq

import (
	"fmt"

	"github.com/samuelfneumann/gopac/initwfn"
	"github.com/samuelfneumann/gopac/solver"
)

// Observation layout consumed by the Trainer. The channel semantics
// are defined by the environment encoder; the Trainer only fixes how
// many channels and actions there are.
const (
	ObservationChannels int = 6
	NumActions          int = 4
)

// Config implements a configuration for a Trainer
type Config struct {
	// Grid dimensions of observations
	Width  int
	Height int

	LearningRate float64
	Discount     float64

	// LoadPath optionally names a checkpoint to resume from. A missing
	// or unreadable checkpoint is not fatal; the Trainer starts fresh.
	LoadPath string

	// Solver adapts the network weights. If nil, Adam with
	// LearningRate is used. When set, it takes precedence over
	// LearningRate.
	Solver *solver.Solver

	// InitWFn initializes the network weights. If nil, Glorot Uniform
	// initialization is used.
	InitWFn *initwfn.InitWFn
}

// Validate checks a Config to ensure it is a valid configuration of a
// Trainer.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("config: invalid grid size %vx%v", c.Width,
			c.Height)
	}

	if c.Discount < 0 || c.Discount >= 1.0 {
		return fmt.Errorf("config: discount must be in [0, 1)"+
			"\n\thave(%v)", c.Discount)
	}

	if c.Solver == nil && c.LearningRate <= 0 {
		return fmt.Errorf("config: learning rate must be positive"+
			"\n\thave(%v)", c.LearningRate)
	}

	return nil
}
