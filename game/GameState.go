package game

// NumChannels is the number of channels in an encoded observation
const NumChannels int = 6

// Observation channel ordering. The value network never interprets
// these; only the encoder below and its tests do.
const (
	channelWall int = iota
	channelFood
	channelCapsule
	channelPacman
	channelGhost
	channelScaredGhost
)

// Reward scheme and capsule effect duration
const (
	TimePenalty    float64 = -1
	FoodReward     float64 = 10
	EatGhostReward float64 = 200
	WinReward      float64 = 500
	LoseReward     float64 = -500

	ScaredDuration int = 40
)

// State is the complete, mutable state of one Pacman game
type State struct {
	walls    *Grid
	food     *Grid
	capsules map[Position]bool

	pacman      Position
	pacmanStart Position

	ghosts      []Position
	ghostStarts []Position
	ghostDirs   []Direction
	scared      []int // remaining scared steps per ghost

	score    float64
	steps    int
	terminal bool
	won      bool
}

// NewState returns a game in its starting configuration. The food grid
// and ghost slice are copied; the walls grid is shared since it never
// changes.
func NewState(walls, food *Grid, capsules []Position, pacman Position,
	ghosts []Position) *State {
	capsuleSet := make(map[Position]bool, len(capsules))
	for _, c := range capsules {
		capsuleSet[c] = true
	}

	ghostStarts := make([]Position, len(ghosts))
	copy(ghostStarts, ghosts)
	ghostPositions := make([]Position, len(ghosts))
	copy(ghostPositions, ghosts)

	return &State{
		walls:       walls,
		food:        food.Copy(),
		capsules:    capsuleSet,
		pacman:      pacman,
		pacmanStart: pacman,
		ghosts:      ghostPositions,
		ghostStarts: ghostStarts,
		ghostDirs:   make([]Direction, len(ghosts)),
		scared:      make([]int, len(ghosts)),
	}
}

// Walls returns the wall mask of the board
func (s *State) Walls() *Grid {
	return s.walls
}

// Food returns the remaining food mask
func (s *State) Food() *Grid {
	return s.food
}

// Capsules returns the positions of the remaining capsules
func (s *State) Capsules() []Position {
	capsules := make([]Position, 0, len(s.capsules))
	for c := range s.capsules {
		capsules = append(capsules, c)
	}
	return capsules
}

// Pacman returns Pacman's position
func (s *State) Pacman() Position {
	return s.pacman
}

// NumGhosts returns the number of ghosts in the game
func (s *State) NumGhosts() int {
	return len(s.ghosts)
}

// Ghost returns the position of ghost i
func (s *State) Ghost(i int) Position {
	return s.ghosts[i]
}

// Scared returns whether ghost i is currently scared
func (s *State) Scared(i int) bool {
	return s.scared[i] > 0
}

// Score returns the cumulative score of the game
func (s *State) Score() float64 {
	return s.score
}

// Terminal returns whether the game has ended
func (s *State) Terminal() bool {
	return s.terminal
}

// Won returns whether the game ended with all food eaten
func (s *State) Won() bool {
	return s.won
}

// Width returns the number of columns on the board
func (s *State) Width() int {
	return s.walls.Width()
}

// Height returns the number of rows on the board
func (s *State) Height() int {
	return s.walls.Height()
}

// LegalActions returns the moves from p that do not run into a wall or
// off the board
func (s *State) LegalActions(p Position) []Direction {
	legal := make([]Direction, 0, NumActions)
	for _, d := range Directions {
		next := p.Add(d)
		if next.X < 0 || next.Y < 0 || next.X >= s.Width() ||
			next.Y >= s.Height() {
			continue
		}
		if !s.walls.At(next) {
			legal = append(legal, d)
		}
	}
	return legal
}

// LegalPacmanActions returns Pacman's legal moves
func (s *State) LegalPacmanActions() []Direction {
	return s.LegalActions(s.pacman)
}

// LegalGhostActions returns ghost i's legal moves. Ghosts cannot
// reverse direction unless they have no other choice.
func (s *State) LegalGhostActions(i int) []Direction {
	legal := s.LegalActions(s.ghosts[i])

	reverse := s.ghostDirs[i].Reverse()
	forward := make([]Direction, 0, len(legal))
	for _, d := range legal {
		if d != reverse {
			forward = append(forward, d)
		}
	}
	if len(forward) > 0 {
		return forward
	}
	return legal
}

// Step advances the game by one move for every agent. Pacman moves
// first, then each ghost moves by ghostMoves[i]. Illegal moves leave
// the mover in place. Step returns the reward earned this step and
// whether the game has ended.
func (s *State) Step(action Direction, ghostMoves []Direction) (float64,
	bool) {
	if s.terminal {
		return 0, true
	}

	reward := TimePenalty

	// Move Pacman and consume whatever is in the new cell
	if next := s.pacman.Add(action); !s.walls.At(next) &&
		next.X >= 0 && next.Y >= 0 && next.X < s.Width() &&
		next.Y < s.Height() {
		s.pacman = next
	}
	if s.food.At(s.pacman) {
		s.food.Set(s.pacman, false)
		reward += FoodReward
	}
	if s.capsules[s.pacman] {
		delete(s.capsules, s.pacman)
		for i := range s.scared {
			s.scared[i] = ScaredDuration
		}
	}

	reward += s.resolveCollisions()

	// Move the ghosts. Scared ghosts move at half speed.
	if !s.terminal {
		for i := range s.ghosts {
			if i >= len(ghostMoves) {
				break
			}
			if s.scared[i] > 0 && s.steps%2 == 1 {
				continue
			}
			move := ghostMoves[i]
			next := s.ghosts[i].Add(move)
			if !s.walls.At(next) && next.X >= 0 && next.Y >= 0 &&
				next.X < s.Width() && next.Y < s.Height() {
				s.ghosts[i] = next
				s.ghostDirs[i] = move
			}
		}
		reward += s.resolveCollisions()
	}

	for i := range s.scared {
		if s.scared[i] > 0 {
			s.scared[i]--
		}
	}

	if !s.terminal && s.food.Count() == 0 {
		reward += WinReward
		s.terminal = true
		s.won = true
	}

	s.steps++
	s.score += reward
	return reward, s.terminal
}

// resolveCollisions handles ghosts sharing Pacman's cell: scared
// ghosts are eaten and respawn at their start, any other ghost ends
// the game.
func (s *State) resolveCollisions() float64 {
	var reward float64
	for i := range s.ghosts {
		if s.ghosts[i] != s.pacman {
			continue
		}
		if s.scared[i] > 0 {
			reward += EatGhostReward
			s.ghosts[i] = s.ghostStarts[i]
			s.ghostDirs[i] = North
			s.scared[i] = 0
		} else {
			reward += LoseReward
			s.terminal = true
			s.won = false
		}
	}
	return reward
}

// Observation encodes the board as a channel-last (height, width,
// channel) grid of NumChannels binary feature planes: walls, food,
// capsules, Pacman, ghosts, and scared ghosts.
func (s *State) Observation() []float64 {
	width, height := s.Width(), s.Height()
	obs := make([]float64, height*width*NumChannels)

	at := func(p Position, channel int) int {
		return (p.Y*width+p.X)*NumChannels + channel
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p := Position{X: x, Y: y}
			if s.walls.At(p) {
				obs[at(p, channelWall)] = 1
			}
			if s.food.At(p) {
				obs[at(p, channelFood)] = 1
			}
		}
	}
	for c := range s.capsules {
		obs[at(c, channelCapsule)] = 1
	}
	obs[at(s.pacman, channelPacman)] = 1
	for i, g := range s.ghosts {
		if s.scared[i] > 0 {
			obs[at(g, channelScaredGhost)] = 1
		} else {
			obs[at(g, channelGhost)] = 1
		}
	}

	return obs
}
