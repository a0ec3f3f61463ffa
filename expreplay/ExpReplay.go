// Package expreplay implements experience replay: a bounded buffer of
// transitions from which minibatches are sampled uniformly for
// training. The oldest transition is evicted when the buffer is full.
package expreplay

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/gopac/deepq"
)

// Transition is a single step of agent-environment interaction. States
// are flattened channel-last observation grids and the action is a
// one-hot vector.
type Transition struct {
	State     []float64
	Action    []float64
	Terminal  float64
	NextState []float64
	Reward    float64
}

// Config describes an ExperienceReplayer
type Config struct {
	// MinCapacity is the number of transitions required in the buffer
	// before sampling is allowed
	MinCapacity int

	// MaxCapacity is the maximum number of stored transitions; adding
	// beyond it evicts the oldest transition
	MaxCapacity int

	// BatchSize is the number of transitions per sampled minibatch
	BatchSize int

	Seed uint64
}

// ExperienceReplayer implements an experience replay buffer
type ExperienceReplayer interface {
	// Add adds a transition to the buffer
	Add(Transition) error

	// Sample samples a minibatch of stored transitions
	Sample() (deepq.Batch, error)

	// Capacity returns the current number of samples in the buffer
	Capacity() int

	// MaxCapacity returns the maximum allowable samples in the buffer
	MaxCapacity() int

	// MinCapacity returns the number of samples required to be in the
	// buffer before the buffer can be sampled
	MinCapacity() int

	// BatchSize returns the number of samples returned by Sample()
	BatchSize() int
}

// cache implements a concrete ExperienceReplayer using flat per-field
// slices and FIFO eviction
type cache struct {
	stateCache     []float64
	actionCache    []float64
	terminalCache  []float64
	nextStateCache []float64
	rewardCache    []float64

	// next is the ring index at which the next transition is stored
	next int
	size int

	minCapacity int
	maxCapacity int
	batchSize   int
	featureSize int
	actionSize  int

	rng *rand.Rand
}

// New creates and returns a new ExperienceReplayer storing transitions
// with featureSize state features and actionSize one-hot action
// entries.
func New(config Config, featureSize, actionSize int) (ExperienceReplayer,
	error) {
	if config.MinCapacity <= 0 {
		return nil, fmt.Errorf("new: minCapacity must be > 0")
	}
	if config.MaxCapacity < config.MinCapacity {
		return nil, fmt.Errorf("new: maxCapacity (%v) < minCapacity (%v)",
			config.MaxCapacity, config.MinCapacity)
	}
	if config.BatchSize < 1 {
		return nil, fmt.Errorf("new: batch size must be > 0")
	}
	if config.BatchSize > config.MaxCapacity {
		return nil, fmt.Errorf("new: cannot have batch size (%v) > max "+
			"buffer capacity (%v)", config.BatchSize, config.MaxCapacity)
	}

	return &cache{
		stateCache:     make([]float64, config.MaxCapacity*featureSize),
		actionCache:    make([]float64, config.MaxCapacity*actionSize),
		terminalCache:  make([]float64, config.MaxCapacity),
		nextStateCache: make([]float64, config.MaxCapacity*featureSize),
		rewardCache:    make([]float64, config.MaxCapacity),

		minCapacity: config.MinCapacity,
		maxCapacity: config.MaxCapacity,
		batchSize:   config.BatchSize,
		featureSize: featureSize,
		actionSize:  actionSize,

		rng: rand.New(rand.NewSource(config.Seed)),
	}, nil
}

// Add adds a transition to the cache, evicting the oldest stored
// transition if the cache is full
func (c *cache) Add(t Transition) error {
	if len(t.State) != c.featureSize || len(t.NextState) != c.featureSize {
		return fmt.Errorf("add: invalid feature size \n\twant(%v)"+
			"\n\thave(%v, %v)", c.featureSize, len(t.State),
			len(t.NextState))
	}
	if len(t.Action) != c.actionSize {
		return fmt.Errorf("add: invalid action size \n\twant(%v)"+
			"\n\thave(%v)", c.actionSize, len(t.Action))
	}

	index := c.next
	copy(c.stateCache[index*c.featureSize:], t.State)
	copy(c.actionCache[index*c.actionSize:], t.Action)
	c.terminalCache[index] = t.Terminal
	copy(c.nextStateCache[index*c.featureSize:], t.NextState)
	c.rewardCache[index] = t.Reward

	c.next = (c.next + 1) % c.maxCapacity
	if c.size < c.maxCapacity {
		c.size++
	}
	return nil
}

// Sample samples and returns a minibatch of transitions from the
// replay buffer
func (c *cache) Sample() (deepq.Batch, error) {
	if c.size == 0 {
		return deepq.Batch{}, &ExpReplayError{
			Op:  "sample",
			Err: errEmptyBuffer,
		}
	}
	if c.size < c.minCapacity {
		return deepq.Batch{}, &ExpReplayError{
			Op:  "sample",
			Err: errInsufficientSamples,
		}
	}

	batch := deepq.Batch{
		States:     make([]float64, c.batchSize*c.featureSize),
		Actions:    make([]float64, c.batchSize*c.actionSize),
		Terminals:  make([]float64, c.batchSize),
		NextStates: make([]float64, c.batchSize*c.featureSize),
		Rewards:    make([]float64, c.batchSize),
	}

	for i := 0; i < c.batchSize; i++ {
		index := c.rng.Intn(c.size)

		copy(batch.States[i*c.featureSize:(i+1)*c.featureSize],
			c.stateCache[index*c.featureSize:])
		copy(batch.Actions[i*c.actionSize:(i+1)*c.actionSize],
			c.actionCache[index*c.actionSize:])
		batch.Terminals[i] = c.terminalCache[index]
		copy(batch.NextStates[i*c.featureSize:(i+1)*c.featureSize],
			c.nextStateCache[index*c.featureSize:])
		batch.Rewards[i] = c.rewardCache[index]
	}

	return batch, nil
}

// Capacity returns the current number of transitions in the cache
func (c *cache) Capacity() int {
	return c.size
}

// MaxCapacity returns the maximum number of transitions that are
// allowed in the cache
func (c *cache) MaxCapacity() int {
	return c.maxCapacity
}

// MinCapacity returns the minimum number of transitions required in
// the cache before sampling is allowed
func (c *cache) MinCapacity() int {
	return c.minCapacity
}

// BatchSize returns the number of transitions sampled using Sample()
func (c *cache) BatchSize() int {
	return c.batchSize
}
