package deepq

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	G "gorgonia.org/gorgonia"

	"github.com/samuelfneumann/gopac/initwfn"
	"github.com/samuelfneumann/gopac/network"
)

const (
	testWidth  = 7
	testHeight = 7
)

// testBatch returns a deterministic batch of n transitions on a
// testWidth x testHeight grid. Transition i takes action i mod 4 and
// the last transition is terminal.
func testBatch(n int) Batch {
	grid := testWidth * testHeight * ObservationChannels

	b := Batch{
		States:     make([]float64, n*grid),
		Actions:    make([]float64, n*NumActions),
		Terminals:  make([]float64, n),
		NextStates: make([]float64, n*grid),
		Rewards:    make([]float64, n),
	}
	for i := range b.States {
		b.States[i] = math.Mod(float64(i)*0.13, 1.0)
		b.NextStates[i] = math.Mod(float64(i)*0.31, 1.0)
	}
	rewards := []float64{10, -1, 500, -500}
	for i := 0; i < n; i++ {
		b.Actions[i*NumActions+i%NumActions] = 1
		b.Rewards[i] = rewards[i%len(rewards)]
	}
	b.Terminals[n-1] = 1

	return b
}

// forward runs one forward pass of net and returns a copy of its
// predictions
func forward(t *testing.T, net network.NeuralNet,
	input []float64) []float64 {
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

func TestUpdateZeroNetworkLossIsMeanSquaredReward(t *testing.T) {
	init, err := initwfn.NewZeroes()
	if err != nil {
		t.Fatal(err)
	}
	trainer, err := New(Config{
		Width:        testWidth,
		Height:       testHeight,
		LearningRate: 0.001,
		Discount:     0.9,
		InitWFn:      init,
	})
	if err != nil {
		t.Fatal(err)
	}

	// With all weights zero, every prediction and every next state
	// value is zero, so the target reduces to the reward alone
	b := testBatch(4)
	step, loss, err := trainer.Update(b)
	if err != nil {
		t.Fatal(err)
	}
	if step != 1 {
		t.Errorf("wrong global step \n\twant(%v)\n\thave(%v)", 1, step)
	}

	var want float64
	for _, r := range b.Rewards {
		want += r * r
	}
	want /= float64(b.Size())

	if math.Abs(loss-want) > 1e-9 {
		t.Errorf("wrong loss \n\twant(%v)\n\thave(%v)", want, loss)
	}
}

func TestUpdateLossMatchesDirectComputation(t *testing.T) {
	discount := 0.95
	trainer, err := New(Config{
		Width:        testWidth,
		Height:       testHeight,
		LearningRate: 0.0001,
		Discount:     discount,
	})
	if err != nil {
		t.Fatal(err)
	}

	n := 4
	b := testBatch(n)

	// Compute the expected loss from plain forward passes with the
	// pre-update weights
	net, err := trainer.Network().CloneWithBatch(n)
	if err != nil {
		t.Fatal(err)
	}
	states := ToChannelFirst(b.States, n, testHeight, testWidth,
		ObservationChannels)
	nextStates := ToChannelFirst(b.NextStates, n, testHeight, testWidth,
		ObservationChannels)
	predictions := forward(t, net, states)
	nextValues := forward(t, net, nextStates)

	var want float64
	for i := 0; i < n; i++ {
		maxNext := nextValues[i*NumActions]
		for a := 1; a < NumActions; a++ {
			if v := nextValues[i*NumActions+a]; v > maxNext {
				maxNext = v
			}
		}
		target := b.Rewards[i] + (1-b.Terminals[i])*discount*maxNext

		var selected float64
		for a := 0; a < NumActions; a++ {
			selected += predictions[i*NumActions+a] * b.Actions[i*NumActions+a]
		}

		diff := target - selected
		want += diff * diff
	}
	want /= float64(n)

	_, loss, err := trainer.Update(b)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(loss-want) > 1e-8 {
		t.Errorf("wrong loss \n\twant(%v)\n\thave(%v)", want, loss)
	}
}

func TestUpdateGlobalStepIncrements(t *testing.T) {
	trainer, err := New(Config{
		Width:        testWidth,
		Height:       testHeight,
		LearningRate: 0.001,
		Discount:     0.9,
	})
	if err != nil {
		t.Fatal(err)
	}
	if trainer.GlobalStep() != 0 {
		t.Errorf("fresh trainer should start at step 0, is at %v",
			trainer.GlobalStep())
	}

	b := testBatch(2)
	for i := 1; i <= 3; i++ {
		step, _, err := trainer.Update(b)
		if err != nil {
			t.Fatal(err)
		}
		if step != i || trainer.GlobalStep() != i {
			t.Errorf("wrong global step \n\twant(%v)\n\thave(%v)", i, step)
		}
	}
}

func TestUpdateRejectsEmptyBatch(t *testing.T) {
	trainer, err := New(Config{
		Width:        testWidth,
		Height:       testHeight,
		LearningRate: 0.001,
		Discount:     0.9,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := trainer.Update(Batch{}); err == nil {
		t.Error("updating with an empty batch should fail")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	config := Config{
		Width:        testWidth,
		Height:       testHeight,
		LearningRate: 0.001,
		Discount:     0.9,
	}
	trainer, err := New(config)
	if err != nil {
		t.Fatal(err)
	}

	// Take a few update steps so the saved weights are not the initial
	// ones
	b := testBatch(2)
	for i := 0; i < 3; i++ {
		if _, _, err := trainer.Update(b); err != nil {
			t.Fatal(err)
		}
	}

	path := EncodeStep(filepath.Join(t.TempDir(), "model"),
		trainer.GlobalStep(), "weights.bin")
	if err := trainer.Save(path); err != nil {
		t.Fatal(err)
	}

	config.LoadPath = path
	loaded, err := New(config)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.GlobalStep() != trainer.GlobalStep() {
		t.Errorf("wrong resumed step \n\twant(%v)\n\thave(%v)",
			trainer.GlobalStep(), loaded.GlobalStep())
	}

	// Identical weights produce identical predictions
	input := make([]float64, testWidth*testHeight*ObservationChannels)
	for i := range input {
		input[i] = math.Mod(float64(i)*0.17, 1.0)
	}
	wantNet, err := trainer.Network().CloneWithBatch(1)
	if err != nil {
		t.Fatal(err)
	}
	haveNet, err := loaded.Network().CloneWithBatch(1)
	if err != nil {
		t.Fatal(err)
	}
	want := forward(t, wantNet, input)
	have := forward(t, haveNet, input)
	for i := range want {
		if want[i] != have[i] {
			t.Errorf("output %v differs \n\twant(%v)\n\thave(%v)", i,
				want[i], have[i])
		}
	}
}

func TestLoadRecoversStepFromFileName(t *testing.T) {
	config := Config{
		Width:        testWidth,
		Height:       testHeight,
		LearningRate: 0.001,
		Discount:     0.9,
	}
	trainer, err := New(config)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "model-smallGrid_10000_100")
	if err := trainer.Save(path); err != nil {
		t.Fatal(err)
	}

	config.LoadPath = path
	loaded, err := New(config)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.GlobalStep() != 10000 {
		t.Errorf("wrong resumed step \n\twant(%v)\n\thave(%v)", 10000,
			loaded.GlobalStep())
	}
}

func TestLoadCorruptCheckpointStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model_77_weights.bin")
	if err := os.WriteFile(path, []byte("not a checkpoint"), 0o644); err != nil {
		t.Fatal(err)
	}

	// Zero initialization makes fresh weights observable: an undecodable
	// blob must leave every prediction at zero and the step at 0, not 77
	init, err := initwfn.NewZeroes()
	if err != nil {
		t.Fatal(err)
	}
	trainer, err := New(Config{
		Width:        testWidth,
		Height:       testHeight,
		LearningRate: 0.001,
		Discount:     0.9,
		LoadPath:     path,
		InitWFn:      init,
	})
	if err != nil {
		t.Fatal(err)
	}
	if trainer.GlobalStep() != 0 {
		t.Errorf("corrupt checkpoint should leave the step at 0, got %v",
			trainer.GlobalStep())
	}

	net, err := trainer.Network().CloneWithBatch(1)
	if err != nil {
		t.Fatal(err)
	}
	input := make([]float64, testWidth*testHeight*ObservationChannels)
	for i := range input {
		input[i] = math.Mod(float64(i)*0.17, 1.0)
	}
	for i, v := range forward(t, net, input) {
		if v != 0 {
			t.Errorf("output %v is %v; weights should be freshly "+
				"initialized", i, v)
		}
	}
}

func TestLoadMissingCheckpointStartsFresh(t *testing.T) {
	trainer, err := New(Config{
		Width:        testWidth,
		Height:       testHeight,
		LearningRate: 0.001,
		Discount:     0.9,
		LoadPath:     filepath.Join(t.TempDir(), "missing_100_weights.bin"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if trainer.GlobalStep() != 0 {
		t.Errorf("missing checkpoint should leave the step at 0, got %v",
			trainer.GlobalStep())
	}
}

func TestConfigValidate(t *testing.T) {
	configs := []Config{
		{Width: 0, Height: 4, LearningRate: 0.1, Discount: 0.9},
		{Width: 4, Height: 0, LearningRate: 0.1, Discount: 0.9},
		{Width: 4, Height: 4, LearningRate: 0.1, Discount: 1.0},
		{Width: 4, Height: 4, LearningRate: 0.1, Discount: -0.1},
		{Width: 4, Height: 4, LearningRate: 0, Discount: 0.9},
	}
	for i, config := range configs {
		if err := config.Validate(); err == nil {
			t.Errorf("config %v should be rejected", i)
		}
	}

	valid := Config{Width: 4, Height: 4, LearningRate: 0.1, Discount: 0.9}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}
