// Package game implements the Pacman grid-world: board state, move
// dynamics, and the multi-channel observation encoding consumed by
// learning agents.
package game

// NumActions is the number of discrete moves
const NumActions int = 4

// Direction is one of the four discrete moves. The ordering is fixed
// and matches the one-hot action layout used in training data.
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

// Directions lists all moves in their fixed order
var Directions = [NumActions]Direction{North, East, South, West}

// Vector returns the grid displacement of the move. The y axis points
// down: row 0 is the top of the board.
func (d Direction) Vector() (dx, dy int) {
	switch d {
	case North:
		return 0, -1
	case East:
		return 1, 0
	case South:
		return 0, 1
	default:
		return -1, 0
	}
}

// Reverse returns the opposite move
func (d Direction) Reverse() Direction {
	switch d {
	case North:
		return South
	case East:
		return West
	case South:
		return North
	default:
		return East
	}
}

// OneHot returns the move encoded as a one-hot vector of length
// NumActions
func (d Direction) OneHot() []float64 {
	oneHot := make([]float64, NumActions)
	oneHot[d] = 1.0
	return oneHot
}

func (d Direction) String() string {
	switch d {
	case North:
		return "North"
	case East:
		return "East"
	case South:
		return "South"
	default:
		return "West"
	}
}
