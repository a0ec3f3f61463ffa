package network

import (
	"math"
	"testing"

	G "gorgonia.org/gorgonia"
)

const (
	testWidth    = 5
	testHeight   = 4
	testChannels = 6
	testActions  = 4
)

// runForward runs one forward pass of net on input and returns a copy
// of the predicted action values.
func runForward(t *testing.T, net NeuralNet, input []float64) []float64 {
	t.Helper()

	vm := G.NewTapeMachine(net.Graph())
	defer vm.Close()

	if err := net.SetInput(input); err != nil {
		t.Fatal(err)
	}
	if err := vm.RunAll(); err != nil {
		t.Fatal(err)
	}

	output := net.Output().Data().([]float64)
	values := make([]float64, len(output))
	copy(values, output)
	vm.Reset()

	return values
}

// testInput returns a deterministic input batch
func testInput(batch int) []float64 {
	input := make([]float64, batch*testChannels*testHeight*testWidth)
	for i := range input {
		input[i] = math.Mod(float64(i)*0.37, 1.0)
	}
	return input
}

func newTestNet(t *testing.T, batch int, init G.InitWFn) NeuralNet {
	t.Helper()
	net, err := NewConvQNet(testWidth, testHeight, testChannels,
		testActions, batch, G.NewGraph(), init)
	if err != nil {
		t.Fatal(err)
	}
	return net
}

func TestConvQNetOutputShape(t *testing.T) {
	batch := 3
	net := newTestNet(t, batch, G.GlorotU(1.0))

	if net.BatchSize() != batch {
		t.Errorf("wrong batch size \n\twant(%v)\n\thave(%v)", batch,
			net.BatchSize())
	}
	if net.Outputs() != testActions {
		t.Errorf("wrong output count \n\twant(%v)\n\thave(%v)", testActions,
			net.Outputs())
	}

	shape := net.Prediction().Shape()
	if len(shape) != 2 || shape[0] != batch || shape[1] != testActions {
		t.Errorf("wrong prediction shape \n\twant(%v)\n\thave(%v)",
			[]int{batch, testActions}, shape)
	}

	out := runForward(t, net, testInput(batch))
	if len(out) != batch*testActions {
		t.Errorf("wrong output size \n\twant(%v)\n\thave(%v)",
			batch*testActions, len(out))
	}
}

func TestConvQNetZeroInitPredictsZero(t *testing.T) {
	net := newTestNet(t, 2, G.Zeroes())

	for i, v := range runForward(t, net, testInput(2)) {
		if v != 0 {
			t.Errorf("output %v of a zero network is %v", i, v)
		}
	}
}

func TestConvQNetSetInputRejectsWrongSize(t *testing.T) {
	net := newTestNet(t, 1, G.Zeroes())
	if err := net.SetInput(make([]float64, 7)); err == nil {
		t.Error("wrong input size should be rejected")
	}
}

func TestConvQNetCloneWithBatchPreservesOutputs(t *testing.T) {
	net := newTestNet(t, 1, G.GlorotU(1.0))
	input := testInput(1)
	want := runForward(t, net, input)

	clone, err := net.CloneWithBatch(1)
	if err != nil {
		t.Fatal(err)
	}
	have := runForward(t, clone, input)

	for i := range want {
		if want[i] != have[i] {
			t.Errorf("output %v differs \n\twant(%v)\n\thave(%v)", i,
				want[i], have[i])
		}
	}
}

func TestConvQNetSetCopiesWeights(t *testing.T) {
	source := newTestNet(t, 1, G.GlorotU(1.0))
	dest := newTestNet(t, 1, G.Zeroes())

	if err := dest.Set(source); err != nil {
		t.Fatal(err)
	}

	input := testInput(1)
	want := runForward(t, source, input)
	have := runForward(t, dest, input)
	for i := range want {
		if want[i] != have[i] {
			t.Errorf("output %v differs \n\twant(%v)\n\thave(%v)", i,
				want[i], have[i])
		}
	}
}

func TestConvQNetGobRoundTrip(t *testing.T) {
	source := newTestNet(t, 1, G.GlorotU(1.0))
	dest := newTestNet(t, 1, G.Zeroes())

	data, err := source.GobEncode()
	if err != nil {
		t.Fatal(err)
	}
	if err := dest.GobDecode(data); err != nil {
		t.Fatal(err)
	}

	input := testInput(1)
	want := runForward(t, source, input)
	have := runForward(t, dest, input)
	for i := range want {
		if want[i] != have[i] {
			t.Errorf("output %v differs \n\twant(%v)\n\thave(%v)", i,
				want[i], have[i])
		}
	}
}

func TestConvQNetGobDecodeRejectsMismatchedArchitecture(t *testing.T) {
	source, err := NewConvQNet(testWidth+2, testHeight, testChannels,
		testActions, 1, G.NewGraph(), G.GlorotU(1.0))
	if err != nil {
		t.Fatal(err)
	}
	dest := newTestNet(t, 1, G.Zeroes())

	data, err := source.GobEncode()
	if err != nil {
		t.Fatal(err)
	}
	if err := dest.GobDecode(data); err == nil {
		t.Fatal("decoding a mismatched network should fail")
	}

	// A failed decode must leave the weights untouched
	for i, v := range runForward(t, dest, testInput(1)) {
		if v != 0 {
			t.Errorf("output %v changed after failed decode: %v", i, v)
		}
	}
}
