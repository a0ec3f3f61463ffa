package deepq

// Batch is a minibatch of transitions sampled by an experience replay
// buffer. All five fields hold one row per transition, flattened in
// row-major order:
//
//	States, NextStates: channel-last (height, width, channel) grids
//	Actions:            one-hot vectors of length NumActions
//	Terminals:          1 if the transition ended an episode, else 0
//	Rewards:            scalar rewards
//
// Batch well-formedness (equal lengths, correct grid dimensions) is
// the producer's contract to uphold.
type Batch struct {
	States     []float64
	Actions    []float64
	Terminals  []float64
	NextStates []float64
	Rewards    []float64
}

// Size returns the number of transitions in the batch
func (b Batch) Size() int {
	return len(b.Rewards)
}

// ToChannelFirst transposes a batch of channel-last (batch, height,
// width, channel) grids into the channel-first (batch, channel,
// height, width) layout the value network convolves over.
func ToChannelFirst(data []float64, batch, height, width,
	channels int) []float64 {
	out := make([]float64, len(data))
	grid := height * width * channels
	for b := 0; b < batch; b++ {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				for c := 0; c < channels; c++ {
					src := b*grid + (y*width+x)*channels + c
					dst := b*grid + (c*height+y)*width + x
					out[dst] = data[src]
				}
			}
		}
	}
	return out
}
