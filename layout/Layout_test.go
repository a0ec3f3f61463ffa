package layout

import (
	"strings"
	"testing"

	"github.com/samuelfneumann/gopac/game"
)

func TestFromText(t *testing.T) {
	rows := []string{
		"%%%%%",
		"%P.o%",
		"%G G%",
		"%%%%%",
	}

	l, err := FromText(rows)
	if err != nil {
		t.Fatal(err)
	}

	if l.Width != 5 || l.Height != 4 {
		t.Errorf("wrong dimensions \n\twant(%vx%v)\n\thave(%vx%v)", 5, 4,
			l.Width, l.Height)
	}
	if l.Pacman != (game.Position{X: 1, Y: 1}) {
		t.Errorf("wrong Pacman start: %v", l.Pacman)
	}
	if l.NumGhosts() != 2 {
		t.Errorf("wrong number of ghosts \n\twant(%v)\n\thave(%v)", 2,
			l.NumGhosts())
	}
	if l.Food.Count() != 1 || !l.Food.At(game.Position{X: 2, Y: 1}) {
		t.Error("food not parsed")
	}
	if len(l.Capsules) != 1 || l.Capsules[0] != (game.Position{X: 3, Y: 1}) {
		t.Errorf("capsule not parsed: %v", l.Capsules)
	}
	if !l.Walls.At(game.Position{X: 0, Y: 0}) ||
		l.Walls.At(game.Position{X: 1, Y: 1}) {
		t.Error("walls not parsed")
	}
}

func TestFromTextErrors(t *testing.T) {
	if _, err := FromText(nil); err == nil {
		t.Error("empty layout should be rejected")
	}
	if _, err := FromText([]string{"%%%", "%P%%", "%%%"}); err == nil {
		t.Error("ragged rows should be rejected")
	}
	if _, err := FromText([]string{"%%%", "%.%", "%%%"}); err == nil {
		t.Error("a layout without Pacman should be rejected")
	}
}

func TestStringRoundTrip(t *testing.T) {
	rows := []string{
		"%%%%%%%",
		"%. o G%",
		"% %%% %",
		"%  P .%",
		"%%%%%%%",
	}

	l, err := FromText(rows)
	if err != nil {
		t.Fatal(err)
	}

	if got := l.String(); got != strings.Join(rows, "\n") {
		t.Errorf("layout does not round trip through String:\n%v", got)
	}
}

func TestSmallGrid(t *testing.T) {
	l := SmallGrid()
	if l.Width != 7 || l.Height != 7 {
		t.Errorf("wrong dimensions \n\twant(%vx%v)\n\thave(%vx%v)", 7, 7,
			l.Width, l.Height)
	}
	if l.NumGhosts() != 1 {
		t.Errorf("wrong number of ghosts \n\twant(%v)\n\thave(%v)", 1,
			l.NumGhosts())
	}

	s := l.Game()
	if s.Terminal() {
		t.Error("a fresh game should not be terminal")
	}
	if s.Food().Count() == 0 {
		t.Error("the board should start with food")
	}
}

func TestRandomRejectsBadDimensions(t *testing.T) {
	for _, dims := range [][2]int{{4, 9}, {9, 4}, {8, 9}, {9, 8}} {
		_, err := Random(dims[0], dims[1], 1, 14)
		if err == nil {
			t.Errorf("dimensions %vx%v should be rejected", dims[0], dims[1])
		}
	}
}

func TestRandomGeneratesPlayableMaze(t *testing.T) {
	l, err := Random(9, 11, 2, 14)
	if err != nil {
		t.Fatal(err)
	}

	// The border must be solid wall
	for x := 0; x < l.Width; x++ {
		if !l.Walls.At(game.Position{X: x, Y: 0}) ||
			!l.Walls.At(game.Position{X: x, Y: l.Height - 1}) {
			t.Fatalf("border is not solid at column %v", x)
		}
	}
	for y := 0; y < l.Height; y++ {
		if !l.Walls.At(game.Position{X: 0, Y: y}) ||
			!l.Walls.At(game.Position{X: l.Width - 1, Y: y}) {
			t.Fatalf("border is not solid at row %v", y)
		}
	}

	if l.Walls.At(l.Pacman) {
		t.Error("Pacman starts inside a wall")
	}
	for _, g := range l.Ghosts {
		if l.Walls.At(g) {
			t.Errorf("ghost starts inside a wall at %v", g)
		}
	}
	if l.NumGhosts() != 2 {
		t.Errorf("wrong number of ghosts \n\twant(%v)\n\thave(%v)", 2,
			l.NumGhosts())
	}
	if l.Food.Count() == 0 {
		t.Error("maze has no food")
	}
	for _, c := range l.Capsules {
		if l.Walls.At(c) || l.Food.At(c) {
			t.Errorf("capsule at %v overlaps a wall or food", c)
		}
	}

	s := l.Game()
	if len(s.LegalPacmanActions()) == 0 {
		t.Error("Pacman has no legal moves")
	}
}

func TestRandomIsDeterministicPerSeed(t *testing.T) {
	a, err := Random(9, 9, 1, 42)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Random(9, 9, 1, 42)
	if err != nil {
		t.Fatal(err)
	}

	if a.String() != b.String() {
		t.Error("the same seed should generate the same maze")
	}
}
