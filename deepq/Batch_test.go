package deepq

import (
	"testing"
)

func TestBatchSize(t *testing.T) {
	b := Batch{Rewards: []float64{1, 2, 3}}
	if b.Size() != 3 {
		t.Errorf("wrong size \n\twant(%v)\n\thave(%v)", 3, b.Size())
	}
	if (Batch{}).Size() != 0 {
		t.Error("empty batch should have size 0")
	}
}

func TestToChannelFirst(t *testing.T) {
	// Two samples of a 2x2 grid with 2 channels, channel-last. The
	// channel index varies fastest within each sample.
	data := []float64{
		1, 2, 3, 4, 5, 6, 7, 8,
		11, 12, 13, 14, 15, 16, 17, 18,
	}
	want := []float64{
		1, 3, 5, 7, 2, 4, 6, 8,
		11, 13, 15, 17, 12, 14, 16, 18,
	}

	have := ToChannelFirst(data, 2, 2, 2, 2)
	for i := range want {
		if have[i] != want[i] {
			t.Fatalf("wrong value at %v \n\twant(%v)\n\thave(%v)", i,
				want[i], have[i])
		}
	}
}
