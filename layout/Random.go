package layout

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/gopac/game"
)

// Random generates a random maze layout with the given number of
// ghosts. The maze is carved with a depth-first backtracker over the
// odd-coordinate cells, so width and height must be odd and at least
// 5. Every open cell except the starts holds food, and one capsule is
// placed in the open cell furthest from Pacman.
func Random(width, height, numGhosts int, seed uint64) (*Layout, error) {
	if width < 5 || height < 5 {
		return nil, fmt.Errorf("random: maze must be at least 5x5"+
			"\n\thave(%vx%v)", width, height)
	}
	if width%2 == 0 || height%2 == 0 {
		return nil, fmt.Errorf("random: maze dimensions must be odd"+
			"\n\thave(%vx%v)", width, height)
	}

	rng := rand.New(rand.NewSource(seed))

	walls := game.NewGrid(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			walls.Set(game.Position{X: x, Y: y}, true)
		}
	}

	// Carve passages between odd-coordinate cells
	start := game.Position{X: 1, Y: 1}
	walls.Set(start, false)
	stack := []game.Position{start}
	for len(stack) > 0 {
		current := stack[len(stack)-1]

		var next []game.Direction
		for _, d := range game.Directions {
			cell := current.Add(d).Add(d)
			if cell.X > 0 && cell.Y > 0 && cell.X < width-1 &&
				cell.Y < height-1 && walls.At(cell) {
				next = append(next, d)
			}
		}

		if len(next) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}

		d := next[rng.Intn(len(next))]
		walls.Set(current.Add(d), false)
		cell := current.Add(d).Add(d)
		walls.Set(cell, false)
		stack = append(stack, cell)
	}

	// Knock out a few extra walls so the maze has cycles; a perfect
	// maze makes ghosts too easy to dodge
	open := func(p game.Position) bool { return !walls.At(p) }
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			p := game.Position{X: x, Y: y}
			if !walls.At(p) {
				continue
			}
			horizontal := open(p.Add(game.East)) && open(p.Add(game.West))
			vertical := open(p.Add(game.North)) && open(p.Add(game.South))
			if (horizontal || vertical) && rng.Float64() < 0.15 {
				walls.Set(p, false)
			}
		}
	}

	// Pacman starts in the top-left open cell; ghosts fill corners
	// starting from the one furthest away
	pacman := start
	corners := []game.Position{
		{X: width - 2, Y: height - 2},
		{X: width - 2, Y: 1},
		{X: 1, Y: height - 2},
	}
	if numGhosts > len(corners) {
		numGhosts = len(corners)
	}
	ghosts := corners[:numGhosts]

	occupied := map[game.Position]bool{pacman: true}
	for _, g := range ghosts {
		walls.Set(g, false)
		occupied[g] = true
	}

	food := game.NewGrid(width, height)
	capsule := pacman
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p := game.Position{X: x, Y: y}
			if walls.At(p) || occupied[p] {
				continue
			}
			food.Set(p, true)
			if game.ManhattanDistance(p, pacman) >
				game.ManhattanDistance(capsule, pacman) {
				capsule = p
			}
		}
	}

	var capsules []game.Position
	if capsule != pacman {
		food.Set(capsule, false)
		capsules = append(capsules, capsule)
	}

	return &Layout{
		Width:    width,
		Height:   height,
		Walls:    walls,
		Food:     food,
		Capsules: capsules,
		Pacman:   pacman,
		Ghosts:   ghosts,
	}, nil
}
