// Package agent implements the decision-making agents of a Pacman
// game: a learned value-network policy for Pacman and the scripted
// ghost policies it plays against.
package agent

import (
	"github.com/samuelfneumann/gopac/game"
)

// Agent selects one move per game step
type Agent interface {
	SelectAction(*game.State) game.Direction
}
