package agent

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samuelfneumann/gopac/game"
)

// RandomGhost moves a single ghost uniformly at random among its legal
// moves
type RandomGhost struct {
	ghost int
	rng   *rand.Rand
}

// NewRandomGhost returns a RandomGhost controlling ghost i
func NewRandomGhost(ghost int, seed uint64) *RandomGhost {
	return &RandomGhost{
		ghost: ghost,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// SelectAction returns a uniformly random legal move for the ghost
func (r *RandomGhost) SelectAction(s *game.State) game.Direction {
	legal := s.LegalGhostActions(r.ghost)
	return legal[r.rng.Intn(len(legal))]
}

// DirectionalGhost moves a single ghost toward Pacman while brave and
// away from Pacman while scared. A bestProb share of the probability
// mass is split among the moves that minimize (or, when scared,
// maximize) the Manhattan distance to Pacman; the remaining mass is
// split among all legal moves.
type DirectionalGhost struct {
	ghost    int
	bestProb float64
	source   rand.Source
}

// NewDirectionalGhost returns a DirectionalGhost controlling ghost i
// that takes a distance-optimizing move with probability bestProb.
func NewDirectionalGhost(ghost int, bestProb float64,
	seed uint64) *DirectionalGhost {
	return &DirectionalGhost{
		ghost:    ghost,
		bestProb: bestProb,
		source:   rand.NewSource(seed),
	}
}

// SelectAction samples the ghost's next move from its chase/flee
// distribution
func (d *DirectionalGhost) SelectAction(s *game.State) game.Direction {
	legal := s.LegalGhostActions(d.ghost)
	if len(legal) == 1 {
		return legal[0]
	}

	position := s.Ghost(d.ghost)
	distances := make([]int, len(legal))
	for i, move := range legal {
		distances[i] = game.ManhattanDistance(position.Add(move), s.Pacman())
	}

	// Scared ghosts flee, so the furthest moves become the best ones
	scared := s.Scared(d.ghost)
	best := distances[0]
	for _, dist := range distances[1:] {
		if (scared && dist > best) || (!scared && dist < best) {
			best = dist
		}
	}
	numBest := 0
	for _, dist := range distances {
		if dist == best {
			numBest++
		}
	}

	weights := make([]float64, len(legal))
	for i := range weights {
		weights[i] = (1.0 - d.bestProb) / float64(len(legal))
		if distances[i] == best {
			weights[i] += d.bestProb / float64(numBest)
		}
	}

	dist := distuv.NewCategorical(weights, d.source)
	return legal[int(dist.Rand())]
}
