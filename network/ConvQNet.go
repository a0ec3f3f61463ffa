package network

import (
	"bytes"
	"encoding/gob"
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Fixed architecture of the action-value network. Only the input
// spatial dimensions vary between games.
const (
	conv1Filters = 16
	conv2Filters = 32
	kernelSize   = 3
	hiddenUnits  = 256
)

// convQNet implements a convolutional action-value network. Given a
// batch of multi-channel grid observations, the network predicts one
// action value per action:
//
//	conv(channels -> 16, 3x3, same padding) + ReLU
//	conv(16 -> 32, 3x3, same padding)       + ReLU
//	flatten to 32*width*height features
//	fully connected -> 256                  + ReLU
//	fully connected -> actions              (raw values)
//
// Inputs are NCHW batches. Callers with channel-last data must
// transpose before calling SetInput.
type convQNet struct {
	g      *G.ExprGraph
	layers []Layer

	// flattenAt is the index of the first fully connected layer; the
	// conv output is reshaped to a feature matrix before it.
	flattenAt int

	input *G.Node

	width, height, channels int
	actions                 int
	batchSize               int

	learnables G.Nodes
	model      []G.ValueGrad

	prediction *G.Node
	predVal    G.Value
}

// NewConvQNet returns a new convolutional action-value network for
// width x height grids with the given number of observation channels,
// predicting one value for each of actions actions. The network is
// added to graph g and its weights are initialized with init.
func NewConvQNet(width, height, channels, actions, batch int,
	g *G.ExprGraph, init G.InitWFn) (NeuralNet, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("newconvqnet: invalid grid size %vx%v",
			width, height)
	}
	if channels <= 0 || actions <= 0 {
		return nil, fmt.Errorf("newconvqnet: channels and actions must "+
			"be positive \n\thave(%v, %v)", channels, actions)
	}
	if batch <= 0 {
		return nil, fmt.Errorf("newconvqnet: invalid batch size %v", batch)
	}

	input := G.NewTensor(
		g,
		tensor.Float64,
		4,
		G.WithShape(batch, channels, height, width),
		G.WithName("input"),
		G.WithInit(G.Zeroes()),
	)

	flat := conv2Filters * width * height
	layers := []Layer{
		newConvLayer(g, channels, conv1Filters, kernelSize, ReLU(), init,
			"conv1"),
		newConvLayer(g, conv1Filters, conv2Filters, kernelSize, ReLU(),
			init, "conv2"),
		newFCLayer(g, flat, hiddenUnits, ReLU(), init, "fc3"),
		newFCLayer(g, hiddenUnits, actions, Identity(), init, "out"),
	}

	net := &convQNet{
		g:         g,
		layers:    layers,
		flattenAt: 2,
		input:     input,
		width:     width,
		height:    height,
		channels:  channels,
		actions:   actions,
		batchSize: batch,
	}

	if _, err := net.fwd(input); err != nil {
		return nil, fmt.Errorf("newconvqnet: could not compute forward "+
			"pass: %v", err)
	}
	return net, nil
}

// fwd performs the forward pass of the convQNet on the input node
func (c *convQNet) fwd(input *G.Node) (*G.Node, error) {
	pred := input
	var err error
	for i, l := range c.layers {
		if i == c.flattenAt {
			flat := conv2Filters * c.width * c.height
			pred, err = G.Reshape(pred, tensor.Shape{c.batchSize, flat})
			if err != nil {
				return nil, fmt.Errorf("fwd: could not flatten conv "+
					"output: %v", err)
			}
		}
		if pred, err = l.fwd(pred); err != nil {
			return nil, fmt.Errorf("fwd: could not compute forward pass "+
				"of layer %v: %v", i, err)
		}
	}

	c.prediction = pred
	G.Read(c.prediction, &c.predVal)

	return pred, nil
}

// Graph returns the computational graph of the convQNet
func (c *convQNet) Graph() *G.ExprGraph {
	return c.g
}

// CloneWithBatch clones the convQNet, along with its current weights,
// onto a fresh graph with a new input batch size.
func (c *convQNet) CloneWithBatch(batch int) (NeuralNet, error) {
	if batch <= 0 {
		return nil, fmt.Errorf("clonewithbatch: invalid batch size %v",
			batch)
	}

	g := G.NewGraph()
	input := G.NewTensor(
		g,
		tensor.Float64,
		4,
		G.WithShape(batch, c.channels, c.height, c.width),
		G.WithName("input"),
		G.WithInit(G.Zeroes()),
	)

	layers := make([]Layer, len(c.layers))
	for i := range c.layers {
		layers[i] = c.layers[i].CloneTo(g)
	}

	net := &convQNet{
		g:         g,
		layers:    layers,
		flattenAt: c.flattenAt,
		input:     input,
		width:     c.width,
		height:    c.height,
		channels:  c.channels,
		actions:   c.actions,
		batchSize: batch,
	}

	if _, err := net.fwd(input); err != nil {
		return nil, fmt.Errorf("clonewithbatch: could not compute "+
			"forward pass: %v", err)
	}
	return net, nil
}

// BatchSize returns the batch size of inputs to the network
func (c *convQNet) BatchSize() int {
	return c.batchSize
}

// Outputs returns the number of action values the network predicts
func (c *convQNet) Outputs() int {
	return c.actions
}

// SetInput sets the value of the input node before running the forward
// pass. The input must be an NCHW batch flattened in row-major order.
func (c *convQNet) SetInput(input []float64) error {
	want := c.batchSize * c.channels * c.height * c.width
	if len(input) != want {
		return fmt.Errorf("setinput: invalid number of inputs"+
			"\n\twant(%v)\n\thave(%v)", want, len(input))
	}
	inputTensor := tensor.New(
		tensor.WithBacking(input),
		tensor.WithShape(c.input.Shape()...),
	)
	return G.Let(c.input, inputTensor)
}

// Set overwrites the network's weights with those of source, which
// must have an identical architecture.
func (dest *convQNet) Set(source NeuralNet) error {
	sourceNodes := source.Learnables()
	nodes := dest.Learnables()
	if len(nodes) != len(sourceNodes) {
		return fmt.Errorf("set: source network has %v parameter tensors, "+
			"expected %v", len(sourceNodes), len(nodes))
	}
	for i, destLearnable := range nodes {
		sourceLearnable := sourceNodes[i].Clone()
		err := G.Let(destLearnable, sourceLearnable.(*G.Node).Value())
		if err != nil {
			return err
		}
	}
	return nil
}

// Learnables returns the learnable nodes in a convQNet
func (c *convQNet) Learnables() G.Nodes {
	// Lazy instantiation
	if c.learnables == nil {
		learnables := make([]*G.Node, 0, 2*len(c.layers))
		for i := range c.layers {
			learnables = append(learnables, c.layers[i].Weights())
			if bias := c.layers[i].Bias(); bias != nil {
				learnables = append(learnables, bias)
			}
		}
		c.learnables = G.Nodes(learnables)
	}
	return c.learnables
}

// Model returns the learnable nodes with their gradients.
func (c *convQNet) Model() []G.ValueGrad {
	// Lazy instantiation
	if c.model == nil {
		model := make([]G.ValueGrad, 0, 2*len(c.layers))
		for _, node := range c.Learnables() {
			model = append(model, node)
		}
		c.model = model
	}
	return c.model
}

// Prediction returns the node of the computational graph that stores
// the output of the convQNet
func (c *convQNet) Prediction() *G.Node {
	return c.prediction
}

// Output returns the output of the convQNet after the last VM run
func (c *convQNet) Output() G.Value {
	return c.predVal
}

// GobEncode implements the gob.GobEncoder interface. Only parameter
// tensors are encoded, keyed by layer name.
func (c *convQNet) GobEncode() ([]byte, error) {
	params := make(map[string]*tensor.Dense, len(c.Learnables()))
	for _, node := range c.Learnables() {
		params[node.Name()] = node.Value().(*tensor.Dense)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(params); err != nil {
		return nil, fmt.Errorf("gobencode: could not encode parameters: %v",
			err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface. The parameters in
// the blob are loaded into the network in place; the network's
// architecture must match the one that produced the blob.
func (c *convQNet) GobDecode(in []byte) error {
	var params map[string]*tensor.Dense
	dec := gob.NewDecoder(bytes.NewReader(in))
	if err := dec.Decode(&params); err != nil {
		return fmt.Errorf("gobdecode: could not decode parameters: %v", err)
	}

	// Validate the full parameter set before touching any weights so
	// that a mismatched blob leaves the network unchanged
	for _, node := range c.Learnables() {
		param, ok := params[node.Name()]
		if !ok {
			return fmt.Errorf("gobdecode: missing parameter %q", node.Name())
		}
		if !param.Shape().Eq(node.Shape()) {
			return fmt.Errorf("gobdecode: parameter %q has shape %v"+
				"\n\twant(%v)", node.Name(), param.Shape(), node.Shape())
		}
	}

	for _, node := range c.Learnables() {
		if err := G.Let(node, params[node.Name()]); err != nil {
			return fmt.Errorf("gobdecode: could not set parameter %q: %v",
				node.Name(), err)
		}
	}
	return nil
}
