// Package layout implements parsing and generation of static Pacman
// maze layouts: walls, food, capsules, and agent starting positions.
package layout

import (
	"fmt"
	"os"
	"strings"

	"github.com/samuelfneumann/gopac/game"
)

// Characters of the layout text format
const (
	wallChar    = '%'
	foodChar    = '.'
	capsuleChar = 'o'
	pacmanChar  = 'P'
	ghostChar   = 'G'
)

// Layout is the static representation of a Pacman maze
type Layout struct {
	Width  int
	Height int

	Walls    *game.Grid
	Food     *game.Grid
	Capsules []game.Position
	Pacman   game.Position
	Ghosts   []game.Position
}

// FromText parses a maze from its row-by-row text representation. Row
// 0 is the top of the board. Recognized characters are '%' (wall),
// '.' (food), 'o' (capsule), 'P' (Pacman start), 'G' (ghost start);
// anything else is empty space.
func FromText(rows []string) (*Layout, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("fromtext: empty layout")
	}

	height := len(rows)
	width := len(rows[0])

	l := &Layout{
		Width:  width,
		Height: height,
		Walls:  game.NewGrid(width, height),
		Food:   game.NewGrid(width, height),
		Pacman: game.Position{X: -1, Y: -1},
	}

	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("fromtext: row %v has %v cells"+
				"\n\twant(%v)", y, len(row), width)
		}
		for x, char := range row {
			p := game.Position{X: x, Y: y}
			switch char {
			case wallChar:
				l.Walls.Set(p, true)
			case foodChar:
				l.Food.Set(p, true)
			case capsuleChar:
				l.Capsules = append(l.Capsules, p)
			case pacmanChar:
				l.Pacman = p
			case ghostChar:
				l.Ghosts = append(l.Ghosts, p)
			}
		}
	}

	if l.Pacman.X < 0 {
		return nil, fmt.Errorf("fromtext: layout has no Pacman start")
	}
	return l, nil
}

// FromFile parses a maze layout from a text file
func FromFile(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fromfile: %v", err)
	}

	text := strings.TrimRight(string(data), "\n")
	return FromText(strings.Split(text, "\n"))
}

// SmallGrid returns the built-in 7x7 training maze
func SmallGrid() *Layout {
	l, err := FromText([]string{
		"%%%%%%%",
		"%.   G%",
		"% %%% %",
		"%  P  %",
		"% %%% %",
		"%.   .%",
		"%%%%%%%",
	})
	if err != nil {
		panic(fmt.Sprintf("smallgrid: %v", err))
	}
	return l
}

// Game returns a new game in the layout's starting configuration
func (l *Layout) Game() *game.State {
	return game.NewState(l.Walls, l.Food, l.Capsules, l.Pacman, l.Ghosts)
}

// NumGhosts returns the number of ghost starting positions in the
// layout
func (l *Layout) NumGhosts() int {
	return len(l.Ghosts)
}

// String returns the layout in its text representation
func (l *Layout) String() string {
	var sb strings.Builder
	capsules := make(map[game.Position]bool, len(l.Capsules))
	for _, c := range l.Capsules {
		capsules[c] = true
	}
	ghosts := make(map[game.Position]bool, len(l.Ghosts))
	for _, g := range l.Ghosts {
		ghosts[g] = true
	}

	for y := 0; y < l.Height; y++ {
		for x := 0; x < l.Width; x++ {
			p := game.Position{X: x, Y: y}
			switch {
			case l.Walls.At(p):
				sb.WriteByte(wallChar)
			case p == l.Pacman:
				sb.WriteByte(pacmanChar)
			case ghosts[p]:
				sb.WriteByte(ghostChar)
			case capsules[p]:
				sb.WriteByte(capsuleChar)
			case l.Food.At(p):
				sb.WriteByte(foodChar)
			default:
				sb.WriteByte(' ')
			}
		}
		if y < l.Height-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
