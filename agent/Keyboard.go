package agent

import (
	"bufio"
	"io"
	"strings"

	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/gopac/game"
)

// Key bindings of a KeyboardAgent
const (
	northKey = "w"
	westKey  = "a"
	southKey = "s"
	eastKey  = "d"
)

// KeyboardAgent controls Pacman from a text input stream, one move per
// line: w, a, s, d for north, west, south, east. An unrecognized or
// illegal move repeats the previous move while it is still legal and
// otherwise falls back to a uniformly random legal move, so the game
// never stalls on bad input.
type KeyboardAgent struct {
	scanner *bufio.Scanner

	last    game.Direction
	hasLast bool

	rng *rand.Rand
}

// NewKeyboardAgent returns a KeyboardAgent reading moves from in
func NewKeyboardAgent(in io.Reader, seed uint64) *KeyboardAgent {
	return &KeyboardAgent{
		scanner: bufio.NewScanner(in),
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// SelectAction reads the next move from the input stream
func (k *KeyboardAgent) SelectAction(s *game.State) game.Direction {
	legal := s.LegalPacmanActions()
	isLegal := make(map[game.Direction]bool, len(legal))
	for _, d := range legal {
		isLegal[d] = true
	}

	move, ok := k.readMove()
	if !ok || !isLegal[move] {
		if k.hasLast && isLegal[k.last] {
			move = k.last
		} else {
			move = legal[k.rng.Intn(len(legal))]
		}
	}

	k.last = move
	k.hasLast = true
	return move
}

// readMove reads one line of input and maps it to a direction. The
// second return value is false when the line holds no recognized key
// or the stream has ended.
func (k *KeyboardAgent) readMove() (game.Direction, bool) {
	if !k.scanner.Scan() {
		return game.North, false
	}

	switch strings.ToLower(strings.TrimSpace(k.scanner.Text())) {
	case northKey:
		return game.North, true
	case westKey:
		return game.West, true
	case southKey:
		return game.South, true
	case eastKey:
		return game.East, true
	default:
		return game.North, false
	}
}
