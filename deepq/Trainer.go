// Package deepq implements deep Q-learning from sampled batches of
// transitions. A Trainer owns a convolutional action-value network and
// adapts its weights with one gradient step per Update call:
//
//	target = r + (1 - terminal) * discount * max[Q(s', a')]
//	loss   = mean((target - Q(s, a))^2)
//
// The same weights produce both the update target and the prediction;
// there is no separate target network. The target is computed on a
// detached copy of the network in its own graph so that no gradient
// flows through it.
package deepq

import (
	"fmt"
	"os"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/samuelfneumann/gopac/initwfn"
	"github.com/samuelfneumann/gopac/network"
	"github.com/samuelfneumann/gopac/solver"
)

// Trainer trains a convolutional action-value network online from
// sampled transition batches. Trainers are not safe for concurrent
// use; exactly one goroutine should drive Update and Save.
type Trainer struct {
	// net holds the canonical network weights. It is also the network
	// that checkpoints serialize and that inference policies clone.
	net network.NeuralNet

	// trainNet is a batch-sized clone of net whose graph carries the
	// loss and gradient; its weights are adapted by the solver and
	// copied back to net after every step.
	trainNet network.NeuralNet
	trainVM  G.VM

	// evalNet is a second batch-sized clone used to compute the update
	// target. Its graph has no gradient, so the target computation is
	// structurally detached from backpropagation.
	evalNet network.NeuralNet
	evalVM  G.VM

	sol *solver.Solver

	// Input nodes of the training graph that carry the pieces of the
	// Bellman target and the one-hot action selection
	nextStateActionValues *G.Node
	rewards               *G.Node
	discounts             *G.Node
	selectedActions       *G.Node

	lossVal G.Value

	width, height int
	discount      float64
	batchSize     int
	globalStep    int
}

// New returns a new Trainer with freshly initialized weights. If
// config.LoadPath names an existing, readable checkpoint, the weights
// are overwritten with the checkpoint's and the global step is resumed
// from the step count encoded in the checkpoint's file name; any
// failure along the way is logged and the Trainer starts fresh.
func New(config Config) (*Trainer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	init := config.InitWFn
	if init == nil {
		var err error
		init, err = initwfn.NewGlorotU(1.0)
		if err != nil {
			return nil, fmt.Errorf("new: could not create weight "+
				"initializer: %v", err)
		}
	}

	g := G.NewGraph()
	net, err := network.NewConvQNet(config.Width, config.Height,
		ObservationChannels, NumActions, 1, g, init.InitWFn())
	if err != nil {
		return nil, fmt.Errorf("new: could not create value network: %v",
			err)
	}

	sol := config.Solver
	if sol == nil {
		// The cost is already a mean over the batch, so the solver
		// sees an effective batch size of 1
		sol, err = solver.NewDefaultAdam(config.LearningRate, 1)
		if err != nil {
			return nil, fmt.Errorf("new: could not create solver: %v", err)
		}
	}

	t := &Trainer{
		net:      net,
		sol:      sol,
		width:    config.Width,
		height:   config.Height,
		discount: config.Discount,
	}

	if config.LoadPath != "" {
		t.loadCheckpoint(config.LoadPath)
	}

	return t, nil
}

// Update performs a single training step on a batch of transitions and
// returns the new global step count along with the scalar loss.
func (t *Trainer) Update(b Batch) (int, float64, error) {
	n := b.Size()
	if n == 0 {
		return t.globalStep, 0, fmt.Errorf("update: empty batch")
	}
	if err := t.ensureBatch(n); err != nil {
		return t.globalStep, 0, fmt.Errorf("update: %v", err)
	}

	// Observations arrive channel-last; the network convolves over
	// channel-first batches
	states := ToChannelFirst(b.States, n, t.height, t.width,
		ObservationChannels)
	nextStates := ToChannelFirst(b.NextStates, n, t.height, t.width,
		ObservationChannels)

	// Compute the next state-action values on the detached network
	if err := t.evalNet.SetInput(nextStates); err != nil {
		return t.globalStep, 0, fmt.Errorf("update: could not set eval "+
			"net input: %v", err)
	}
	if err := t.evalVM.RunAll(); err != nil {
		return t.globalStep, 0, fmt.Errorf("update: could not run eval "+
			"net: %v", err)
	}
	err := G.Let(t.nextStateActionValues, t.evalNet.Output())
	if err != nil {
		return t.globalStep, 0, fmt.Errorf("update: could not set next "+
			"state-action values: %v", err)
	}
	t.evalVM.Reset()

	// Bellman target: r + (1 - terminal) * discount * max[Q(s', a')].
	// Terminal transitions contribute no future value.
	discounts := make([]float64, n)
	for i := range discounts {
		discounts[i] = (1.0 - b.Terminals[i]) * t.discount
	}

	err = G.Let(t.rewards, tensor.New(tensor.WithBacking(b.Rewards),
		tensor.WithShape(n)))
	if err != nil {
		return t.globalStep, 0, fmt.Errorf("update: could not set "+
			"rewards: %v", err)
	}
	err = G.Let(t.discounts, tensor.New(tensor.WithBacking(discounts),
		tensor.WithShape(n)))
	if err != nil {
		return t.globalStep, 0, fmt.Errorf("update: could not set "+
			"discounts: %v", err)
	}
	err = G.Let(t.selectedActions, tensor.New(tensor.WithBacking(b.Actions),
		tensor.WithShape(n, NumActions)))
	if err != nil {
		return t.globalStep, 0, fmt.Errorf("update: could not set "+
			"selected actions: %v", err)
	}
	if err := t.trainNet.SetInput(states); err != nil {
		return t.globalStep, 0, fmt.Errorf("update: could not set train "+
			"net input: %v", err)
	}

	// Run the learning step
	if err := t.trainVM.RunAll(); err != nil {
		return t.globalStep, 0, fmt.Errorf("update: could not run "+
			"training step: %v", err)
	}
	if err := t.sol.Step(t.trainNet.Model()); err != nil {
		return t.globalStep, 0, fmt.Errorf("update: could not apply "+
			"solver step: %v", err)
	}
	t.trainVM.Reset()

	// The canonical and target-providing networks always track the
	// newly learned weights
	if err := t.net.Set(t.trainNet); err != nil {
		return t.globalStep, 0, fmt.Errorf("update: could not sync "+
			"network weights: %v", err)
	}
	if err := t.evalNet.Set(t.trainNet); err != nil {
		return t.globalStep, 0, fmt.Errorf("update: could not sync eval "+
			"network weights: %v", err)
	}

	t.globalStep++
	return t.globalStep, t.lossVal.Data().(float64), nil
}

// ensureBatch (re)builds the training and evaluation graphs when the
// incoming batch size differs from the graphs' fixed batch size. The
// batch size of a minibatch is chosen by the replay buffer, not by the
// Trainer, so the graphs are compiled lazily against the first batch
// seen and recompiled only if the size ever changes.
func (t *Trainer) ensureBatch(n int) error {
	if n == t.batchSize {
		return nil
	}

	trainNet, err := t.net.CloneWithBatch(n)
	if err != nil {
		return fmt.Errorf("ensurebatch: could not clone training "+
			"network: %v", err)
	}
	g := trainNet.Graph()

	// Create nodes to compute the update target:
	// r + (1 - terminal) * discount * max[Q(s', a')]. The per-row
	// discounts node carries (1 - terminal) * discount.
	nextStateActionValues := G.NewMatrix(g, tensor.Float64,
		G.WithShape(n, NumActions), G.WithName("targetActionVals"))
	rewards := G.NewVector(g, tensor.Float64, G.WithShape(n),
		G.WithName("reward"))
	discounts := G.NewVector(g, tensor.Float64, G.WithShape(n),
		G.WithName("discount"))

	updateTarget := G.Must(G.Max(nextStateActionValues, 1))
	updateTarget = G.Must(G.HadamardProd(updateTarget, discounts))
	updateTarget = G.Must(G.Add(updateTarget, rewards))

	// Actions are one-hot, so an elementwise product with the
	// predictions followed by a sum along the action axis isolates the
	// value of the action actually taken
	selectedActions := G.NewMatrix(g, tensor.Float64,
		G.WithShape(n, NumActions), G.WithName("actionSelected"))
	selectedActionValue := G.Must(G.HadamardProd(trainNet.Prediction(),
		selectedActions))
	selectedActionValue = G.Must(G.Sum(selectedActionValue, 1))

	// Mean squared TD error
	losses := G.Must(G.Sub(updateTarget, selectedActionValue))
	losses = G.Must(G.Square(losses))
	cost := G.Must(G.Mean(losses))
	G.Read(cost, &t.lossVal)

	if _, err := G.Grad(cost, trainNet.Learnables()...); err != nil {
		return fmt.Errorf("ensurebatch: could not compute gradient: %v",
			err)
	}

	trainVM := G.NewTapeMachine(g,
		G.BindDualValues(trainNet.Learnables()...))

	evalNet, err := t.net.CloneWithBatch(n)
	if err != nil {
		return fmt.Errorf("ensurebatch: could not clone eval network: %v",
			err)
	}
	evalVM := G.NewTapeMachine(evalNet.Graph())

	if t.trainVM != nil {
		t.trainVM.Close()
		t.evalVM.Close()
	}

	t.trainNet = trainNet
	t.trainVM = trainVM
	t.evalNet = evalNet
	t.evalVM = evalVM
	t.nextStateActionValues = nextStateActionValues
	t.rewards = rewards
	t.discounts = discounts
	t.selectedActions = selectedActions
	t.batchSize = n

	return nil
}

// GlobalStep returns the number of completed training updates,
// including those recovered from a loaded checkpoint.
func (t *Trainer) GlobalStep() int {
	return t.globalStep
}

// Network returns the network holding the Trainer's current weights.
// Action-selection policies should clone it rather than mutate it.
func (t *Trainer) Network() network.NeuralNet {
	return t.net
}

// loadCheckpoint attempts to resume from a checkpoint file. Failure is
// never fatal: a missing or unreadable checkpoint leaves the Trainer
// fresh, and a checkpoint name without a parsable step count leaves
// the global step at 0.
func (t *Trainer) loadCheckpoint(path string) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Could not find checkpoint at %v, "+
			"starting fresh\n", path)
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading checkpoint %v: %v. "+
			"Starting fresh\n", path, err)
		return
	}

	if err := t.net.GobDecode(data); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading checkpoint %v: %v. "+
			"Starting fresh\n", path, err)
		return
	}

	step, err := DecodeStep(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Loaded checkpoint %v but could not "+
			"recover its step count: %v\n", path, err)
		return
	}

	t.globalStep = step
	fmt.Fprintf(os.Stderr, "Loaded checkpoint, resuming from step %v\n",
		step)
}
