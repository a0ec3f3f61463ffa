package game

// Position is a cell on the board. X runs across columns and Y down
// rows; (0, 0) is the top-left corner.
type Position struct {
	X, Y int
}

// Add returns the position one step away in direction d
func (p Position) Add(d Direction) Position {
	dx, dy := d.Vector()
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// ManhattanDistance returns the L1 distance between two positions
func ManhattanDistance(a, b Position) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// Grid is a fixed-size boolean board mask, used for walls and food
type Grid struct {
	width, height int
	cells         []bool
}

// NewGrid returns a new all-false width x height Grid
func NewGrid(width, height int) *Grid {
	return &Grid{
		width:  width,
		height: height,
		cells:  make([]bool, width*height),
	}
}

// Width returns the number of columns in the Grid
func (g *Grid) Width() int {
	return g.width
}

// Height returns the number of rows in the Grid
func (g *Grid) Height() int {
	return g.height
}

// At returns the value at position p. Positions off the board read as
// false.
func (g *Grid) At(p Position) bool {
	if p.X < 0 || p.Y < 0 || p.X >= g.width || p.Y >= g.height {
		return false
	}
	return g.cells[p.Y*g.width+p.X]
}

// Set sets the value at position p
func (g *Grid) Set(p Position, value bool) {
	if p.X < 0 || p.Y < 0 || p.X >= g.width || p.Y >= g.height {
		return
	}
	g.cells[p.Y*g.width+p.X] = value
}

// Count returns the number of true cells in the Grid
func (g *Grid) Count() int {
	count := 0
	for _, cell := range g.cells {
		if cell {
			count++
		}
	}
	return count
}

// AsList returns the positions of all true cells, in row-major order
func (g *Grid) AsList() []Position {
	positions := make([]Position, 0, g.Count())
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			if g.cells[y*g.width+x] {
				positions = append(positions, Position{X: x, Y: y})
			}
		}
	}
	return positions
}

// Copy returns a deep copy of the Grid
func (g *Grid) Copy() *Grid {
	cells := make([]bool, len(g.cells))
	copy(cells, g.cells)
	return &Grid{width: g.width, height: g.height, cells: cells}
}
