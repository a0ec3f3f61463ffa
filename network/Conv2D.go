package network

import (
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// convLayer implements a 2D convolutional layer operating on NCHW
// input batches.
type convLayer struct {
	weights *G.Node // (filters, inChannels, kernel, kernel)
	bias    *G.Node // (1, filters, 1, 1)
	act     *Activation

	kernel tensor.Shape
	pad    []int
	stride []int
}

// newConvLayer adds a square-kernel convolutional layer to graph g.
// The padding is chosen so that the output spatial dimensions equal
// the input spatial dimensions when stride is 1.
func newConvLayer(g *G.ExprGraph, inChannels, filters, kernel int,
	act *Activation, init G.InitWFn, name string) *convLayer {
	weights := G.NewTensor(
		g,
		tensor.Float64,
		4,
		G.WithShape(filters, inChannels, kernel, kernel),
		G.WithName(name+"/w"),
		G.WithInit(init),
	)
	bias := G.NewTensor(
		g,
		tensor.Float64,
		4,
		G.WithShape(1, filters, 1, 1),
		G.WithName(name+"/b"),
		G.WithInit(G.Zeroes()),
	)

	return &convLayer{
		weights: weights,
		bias:    bias,
		act:     act,
		kernel:  tensor.Shape{kernel, kernel},
		pad:     []int{kernel / 2, kernel / 2},
		stride:  []int{1, 1},
	}
}

// fwd adds the forward pass of the convLayer to the computational
// graph
func (c *convLayer) fwd(x *G.Node) (*G.Node, error) {
	x, err := G.Conv2d(x, c.weights, c.kernel, c.pad, c.stride,
		[]int{1, 1})
	if err != nil {
		return nil, err
	}

	// Broadcast the bias along the batch and spatial dimensions
	x, err = G.BroadcastAdd(x, c.bias, nil, []byte{0, 2, 3})
	if err != nil {
		return nil, err
	}

	if c.act == nil || c.act.IsIdentity() {
		return x, nil
	}
	return c.act.fwd(x)
}

// CloneTo clones a convLayer to a new computational graph
func (c *convLayer) CloneTo(g *G.ExprGraph) Layer {
	return &convLayer{
		weights: c.weights.CloneTo(g),
		bias:    c.bias.CloneTo(g),
		act:     c.act,
		kernel:  c.kernel,
		pad:     c.pad,
		stride:  c.stride,
	}
}

func (c *convLayer) Activation() *Activation {
	return c.act
}

func (c *convLayer) Bias() *G.Node {
	return c.bias
}

func (c *convLayer) Weights() *G.Node {
	return c.weights
}
