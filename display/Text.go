package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/samuelfneumann/gopac/game"
)

// Text is a Display that renders each game state as an ASCII board
// followed by the score. Scared ghosts render as 'g', brave ghosts as
// 'G'.
type Text struct {
	out io.Writer
}

// NewText returns a Display rendering ASCII boards to out
func NewText(out io.Writer) *Text {
	return &Text{out: out}
}

// Update renders the current state of the game
func (t *Text) Update(s *game.State) error {
	var sb strings.Builder

	capsules := make(map[game.Position]bool)
	for _, c := range s.Capsules() {
		capsules[c] = true
	}

	ghosts := make(map[game.Position]byte)
	for i := 0; i < s.NumGhosts(); i++ {
		char := byte('G')
		if s.Scared(i) {
			char = 'g'
		}
		ghosts[s.Ghost(i)] = char
	}

	for y := 0; y < s.Height(); y++ {
		for x := 0; x < s.Width(); x++ {
			p := game.Position{X: x, Y: y}
			switch {
			case s.Walls().At(p):
				sb.WriteByte('%')
			case p == s.Pacman():
				sb.WriteByte('P')
			case ghosts[p] != 0:
				sb.WriteByte(ghosts[p])
			case capsules[p]:
				sb.WriteByte('o')
			case s.Food().At(p):
				sb.WriteByte('.')
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString(fmt.Sprintf("Score: %v\n\n", s.Score()))

	_, err := io.WriteString(t.out, sb.String())
	return err
}

// Finish renders the outcome of the game
func (t *Text) Finish(s *game.State) error {
	outcome := "Pacman died!"
	if s.Won() {
		outcome = "Pacman emerges victorious!"
	}
	_, err := fmt.Fprintf(t.out, "%v Final score: %v\n", outcome, s.Score())
	return err
}
