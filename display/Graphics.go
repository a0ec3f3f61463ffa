package display

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"

	"github.com/samuelfneumann/gopac/game"
)

// Pixels per board cell
const cellSize float64 = 24

// Graphics is a Display that renders each game state as a PNG frame in
// a directory. Frames are numbered in step order so they can be
// stitched into a video afterward.
type Graphics struct {
	dir   string
	frame int

	background   color.Color
	wallColour   color.Color
	foodColour   color.Color
	pacmanColour color.Color
	ghostColour  color.Color
	scaredColour color.Color
}

// NewGraphics returns a Display that writes one PNG per game state
// into dir, creating the directory if needed.
func NewGraphics(dir string) (*Graphics, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("newgraphics: could not create frame "+
			"directory: %v", err)
	}

	return &Graphics{
		dir:          dir,
		background:   color.RGBA{R: 0, G: 0, B: 0, A: 255},
		wallColour:   color.RGBA{R: 33, G: 33, B: 222, A: 255},
		foodColour:   color.RGBA{R: 255, G: 255, B: 255, A: 255},
		pacmanColour: color.RGBA{R: 255, G: 255, B: 61, A: 255},
		ghostColour:  color.RGBA{R: 222, G: 33, B: 33, A: 255},
		scaredColour: color.RGBA{R: 61, G: 61, B: 255, A: 255},
	}, nil
}

// Update renders the current state of the game to the next PNG frame
func (gr *Graphics) Update(s *game.State) error {
	dc := gg.NewContext(s.Width()*int(cellSize), s.Height()*int(cellSize))
	dc.SetColor(gr.background)
	dc.Clear()

	center := func(p game.Position) (float64, float64) {
		return (float64(p.X) + 0.5) * cellSize,
			(float64(p.Y) + 0.5) * cellSize
	}

	// Walls and food
	for y := 0; y < s.Height(); y++ {
		for x := 0; x < s.Width(); x++ {
			p := game.Position{X: x, Y: y}
			if s.Walls().At(p) {
				dc.SetColor(gr.wallColour)
				dc.DrawRectangle(float64(x)*cellSize, float64(y)*cellSize,
					cellSize, cellSize)
				dc.Fill()
			} else if s.Food().At(p) {
				cx, cy := center(p)
				dc.SetColor(gr.foodColour)
				dc.DrawCircle(cx, cy, cellSize/8)
				dc.Fill()
			}
		}
	}

	// Capsules are larger pellets
	for _, c := range s.Capsules() {
		cx, cy := center(c)
		dc.SetColor(gr.foodColour)
		dc.DrawCircle(cx, cy, cellSize/3)
		dc.Fill()
	}

	cx, cy := center(s.Pacman())
	dc.SetColor(gr.pacmanColour)
	dc.DrawCircle(cx, cy, cellSize/2-2)
	dc.Fill()

	for i := 0; i < s.NumGhosts(); i++ {
		colour := gr.ghostColour
		if s.Scared(i) {
			colour = gr.scaredColour
		}
		gx, gy := center(s.Ghost(i))
		dc.SetColor(colour)
		dc.DrawCircle(gx, gy, cellSize/2-2)
		dc.Fill()
	}

	path := filepath.Join(gr.dir, fmt.Sprintf("frame-%06d.png", gr.frame))
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("update: could not save frame: %v", err)
	}
	gr.frame++

	return nil
}

// Finish reports where the rendered frames were written
func (gr *Graphics) Finish(s *game.State) error {
	fmt.Printf("Final score %v; wrote %v frames to %v\n", s.Score(),
		gr.frame, gr.dir)
	return nil
}
