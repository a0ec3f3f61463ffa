// Package network implements value function approximators using
// Gorgonia.
package network

import (
	"encoding/gob"

	G "gorgonia.org/gorgonia"
)

// NeuralNet is a parametric function approximator built on a Gorgonia
// computational graph. A NeuralNet only populates the graph; it has no
// virtual machine of its own. An external VM should be used to run the
// graph after setting the network input with SetInput(). Once the VM
// has been run, Output() holds the value of the network's prediction.
type NeuralNet interface {
	gob.GobEncoder
	gob.GobDecoder

	Graph() *G.ExprGraph

	// CloneWithBatch clones the network, along with its current
	// weights, onto a fresh graph with a new input batch size.
	CloneWithBatch(int) (NeuralNet, error)

	BatchSize() int
	Outputs() int

	// SetInput sets the value of the network's input node before a
	// VM run.
	SetInput([]float64) error

	// Set overwrites the network's weights with those of another
	// network of identical architecture.
	Set(NeuralNet) error

	Learnables() G.Nodes
	Model() []G.ValueGrad

	// Prediction returns the graph node holding the network output;
	// Output returns that node's value after the last VM run.
	Prediction() *G.Node
	Output() G.Value
}

// Layer is a single stage of a NeuralNet's forward pass.
type Layer interface {
	fwd(*G.Node) (*G.Node, error)
	CloneTo(*G.ExprGraph) Layer
	Weights() *G.Node
	Bias() *G.Node
	Activation() *Activation
}
