// Package display implements rendering of Pacman games: a silent
// display for training, a text display for terminals, and a graphical
// display that renders PNG frames.
package display

import (
	"github.com/samuelfneumann/gopac/game"
)

// Display renders the successive states of one game
type Display interface {
	// Update renders the current state of the game
	Update(*game.State) error

	// Finish is called once after the game's final state has been
	// rendered
	Finish(*game.State) error
}

// Null is a Display that renders nothing. It is the display of choice
// during training.
type Null struct{}

// NewNull returns a Display that renders nothing
func NewNull() Null {
	return Null{}
}

// Update implements the Display interface and does nothing
func (n Null) Update(*game.State) error {
	return nil
}

// Finish implements the Display interface and does nothing
func (n Null) Finish(*game.State) error {
	return nil
}
