package agent

import (
	"fmt"

	"golang.org/x/exp/rand"
	G "gorgonia.org/gorgonia"

	"github.com/samuelfneumann/gopac/deepq"
	"github.com/samuelfneumann/gopac/game"
	"github.com/samuelfneumann/gopac/network"
	"github.com/samuelfneumann/gopac/utils/floatutils"
)

// QAgent selects Pacman's moves ε-greedily with respect to a
// convolutional action-value network. The agent owns a single-sample
// clone of the source network; Sync copies the source's current
// weights into the clone, so the source may keep learning while the
// agent acts.
type QAgent struct {
	source network.NeuralNet
	net    network.NeuralNet
	vm     G.VM

	width, height int
	epsilon       float64

	rng *rand.Rand
}

// NewQAgent returns a QAgent acting ε-greedily with respect to source,
// which values boards of the given width and height.
func NewQAgent(source network.NeuralNet, width, height int,
	epsilon float64, seed uint64) (*QAgent, error) {
	if epsilon < 0 || epsilon > 1 {
		return nil, fmt.Errorf("newqagent: epsilon must be in [0, 1] "+
			"\n\thave(%v)", epsilon)
	}

	net, err := source.CloneWithBatch(1)
	if err != nil {
		return nil, fmt.Errorf("newqagent: could not clone value "+
			"network: %v", err)
	}

	return &QAgent{
		source:  source,
		net:     net,
		vm:      G.NewTapeMachine(net.Graph()),
		width:   width,
		height:  height,
		epsilon: epsilon,
		rng:     rand.New(rand.NewSource(seed)),
	}, nil
}

// SelectAction returns Pacman's next move: a uniformly random direction
// with probability ε, otherwise the direction of maximal estimated
// action value, with ties broken uniformly at random.
func (q *QAgent) SelectAction(s *game.State) game.Direction {
	if q.rng.Float64() < q.epsilon {
		return game.Directions[q.rng.Intn(game.NumActions)]
	}

	values, err := q.ActionValues(s)
	if err != nil {
		// An unrunnable network is a programming error, not a game
		// event
		panic(fmt.Sprintf("selectaction: %v", err))
	}

	_, indices := floatutils.MaxSlice(values)
	return game.Directions[indices[q.rng.Intn(len(indices))]]
}

// ActionValues returns the network's value estimate for each action in
// state s, ordered as game.Directions.
func (q *QAgent) ActionValues(s *game.State) ([]float64, error) {
	obs := deepq.ToChannelFirst(s.Observation(), 1, q.height, q.width,
		game.NumChannels)
	if err := q.net.SetInput(obs); err != nil {
		return nil, fmt.Errorf("actionvalues: could not set input: %v", err)
	}
	if err := q.vm.RunAll(); err != nil {
		return nil, fmt.Errorf("actionvalues: could not run network: %v",
			err)
	}

	output := q.net.Output().Data().([]float64)
	values := make([]float64, len(output))
	copy(values, output)
	q.vm.Reset()

	return values, nil
}

// Sync copies the source network's current weights into the agent's
// acting network. Call after the source has been updated.
func (q *QAgent) Sync() error {
	return q.net.Set(q.source)
}

// Epsilon returns the agent's current exploration rate
func (q *QAgent) Epsilon() float64 {
	return q.epsilon
}

// SetEpsilon sets the agent's exploration rate, clipping it to [0, 1]
func (q *QAgent) SetEpsilon(epsilon float64) {
	q.epsilon = floatutils.Clip(epsilon, 0, 1)
}

// Close releases the agent's virtual machine. The agent cannot select
// actions afterward.
func (q *QAgent) Close() error {
	return q.vm.Close()
}
