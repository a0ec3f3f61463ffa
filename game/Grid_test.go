package game

import (
	"testing"
)

func TestGridOutOfBounds(t *testing.T) {
	g := NewGrid(3, 2)
	for _, p := range []Position{
		{X: -1, Y: 0}, {X: 0, Y: -1}, {X: 3, Y: 0}, {X: 0, Y: 2},
	} {
		if g.At(p) {
			t.Errorf("out-of-bounds position %v should read false", p)
		}
	}
}

func TestGridCopyIsIndependent(t *testing.T) {
	g := NewGrid(2, 2)
	g.Set(Position{X: 1, Y: 1}, true)

	c := g.Copy()
	c.Set(Position{X: 0, Y: 0}, true)

	if g.At(Position{X: 0, Y: 0}) {
		t.Error("mutating a copy changed the original")
	}
	if g.Count() != 1 || c.Count() != 2 {
		t.Errorf("wrong counts: original %v, copy %v", g.Count(), c.Count())
	}
}

func TestGridAsList(t *testing.T) {
	g := NewGrid(3, 3)
	g.Set(Position{X: 2, Y: 0}, true)
	g.Set(Position{X: 0, Y: 1}, true)

	want := []Position{{X: 2, Y: 0}, {X: 0, Y: 1}}
	have := g.AsList()
	if len(have) != len(want) {
		t.Fatalf("wrong list length \n\twant(%v)\n\thave(%v)", len(want),
			len(have))
	}
	for i := range want {
		if have[i] != want[i] {
			t.Errorf("wrong position at %v \n\twant(%v)\n\thave(%v)", i,
				want[i], have[i])
		}
	}
}

func TestDirectionOneHot(t *testing.T) {
	for i, d := range Directions {
		oneHot := d.OneHot()
		for j, v := range oneHot {
			want := 0.0
			if j == i {
				want = 1.0
			}
			if v != want {
				t.Errorf("%v: wrong one-hot encoding %v", d, oneHot)
			}
		}
	}
}

func TestDirectionReverseRoundTrip(t *testing.T) {
	for _, d := range Directions {
		if d.Reverse().Reverse() != d {
			t.Errorf("%v: reverse of reverse is not identity", d)
		}
	}
}

func TestManhattanDistance(t *testing.T) {
	a := Position{X: 1, Y: 2}
	b := Position{X: 4, Y: 0}
	if dist := ManhattanDistance(a, b); dist != 5 {
		t.Errorf("wrong distance \n\twant(%v)\n\thave(%v)", 5, dist)
	}
	if dist := ManhattanDistance(b, a); dist != 5 {
		t.Error("distance should be symmetric")
	}
}
