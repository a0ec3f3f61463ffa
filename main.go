package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/samuelfneumann/gopac/agent"
	"github.com/samuelfneumann/gopac/deepq"
	"github.com/samuelfneumann/gopac/display"
	"github.com/samuelfneumann/gopac/expreplay"
	"github.com/samuelfneumann/gopac/game"
	"github.com/samuelfneumann/gopac/layout"
	"github.com/samuelfneumann/gopac/utils/progressbar"
)

// Probability with which a directional ghost takes its best move
const ghostBestProb float64 = 0.8

func main() {
	var (
		layoutName = flag.String("layout", "small", "board layout: small, "+
			"random, or the path of a layout file")
		mazeWidth  = flag.Int("width", 9, "width of a random maze")
		mazeHeight = flag.Int("height", 9, "height of a random maze")
		numGhosts  = flag.Int("ghosts", 2, "number of ghosts in a random "+
			"maze")

		steps        = flag.Int("steps", 100_000, "training steps to run")
		episodeSteps = flag.Int("episodeSteps", 500, "maximum steps per "+
			"episode")
		batchSize    = flag.Int("batch", 32, "minibatch size")
		capacity     = flag.Int("capacity", 10_000, "replay buffer capacity")
		learningRate = flag.Float64("lr", 0.0002, "Adam learning rate")
		discount     = flag.Float64("discount", 0.95, "reward discount "+
			"factor")

		epsilonStart = flag.Float64("epsilonStart", 1.0, "initial "+
			"exploration rate")
		epsilonEnd = flag.Float64("epsilonEnd", 0.1, "final exploration "+
			"rate")
		epsilonSteps = flag.Int("epsilonSteps", 10_000, "steps over which "+
			"the exploration rate anneals")

		loadPath   = flag.String("load", "", "checkpoint file to resume "+
			"from")
		savePrefix = flag.String("save", "", "checkpoint file prefix; no "+
			"checkpoints are written when empty")
		saveEvery = flag.Int("saveEvery", 10_000, "steps between "+
			"checkpoints")

		displayMode = flag.String("display", "text", "how to show the "+
			"post-training game: none, text, or frames")
		keyboard = flag.Bool("keyboard", false, "control Pacman from "+
			"stdin (w/a/s/d) in the post-training game instead of the "+
			"learned policy")
		frameDir = flag.String("frameDir", "frames", "directory for PNG "+
			"frames when display=frames")

		seed = flag.Uint64("seed", 192382, "random seed")
	)
	flag.Parse()

	l, err := chooseLayout(*layoutName, *mazeWidth, *mazeHeight, *numGhosts,
		*seed)
	if err != nil {
		log.Fatalf("could not create layout: %v", err)
	}

	trainer, err := deepq.New(deepq.Config{
		Width:        l.Width,
		Height:       l.Height,
		LearningRate: *learningRate,
		Discount:     *discount,
		LoadPath:     *loadPath,
	})
	if err != nil {
		log.Fatalf("could not create trainer: %v", err)
	}

	featureSize := l.Width * l.Height * game.NumChannels
	replay, err := expreplay.New(expreplay.Config{
		MinCapacity: *batchSize,
		MaxCapacity: *capacity,
		BatchSize:   *batchSize,
		Seed:        *seed,
	}, featureSize, game.NumActions)
	if err != nil {
		log.Fatalf("could not create replay buffer: %v", err)
	}

	pacman, err := agent.NewQAgent(trainer.Network(), l.Width, l.Height,
		*epsilonStart, *seed)
	if err != nil {
		log.Fatalf("could not create agent: %v", err)
	}

	ghosts := make([]agent.Agent, l.NumGhosts())
	for i := range ghosts {
		ghosts[i] = agent.NewDirectionalGhost(i, ghostBestProb,
			*seed+uint64(i)+1)
	}

	err = train(trainer, replay, pacman, ghosts, l, trainConfig{
		steps:        *steps,
		episodeSteps: *episodeSteps,
		epsilonStart: *epsilonStart,
		epsilonEnd:   *epsilonEnd,
		epsilonSteps: *epsilonSteps,
		savePrefix:   *savePrefix,
		saveEvery:    *saveEvery,
	})
	if err != nil {
		log.Fatalf("training failed: %v", err)
	}

	if *displayMode == "none" {
		return
	}
	disp, err := chooseDisplay(*displayMode, *frameDir)
	if err != nil {
		log.Fatalf("could not create display: %v", err)
	}

	var player agent.Agent = pacman
	if *keyboard {
		player = agent.NewKeyboardAgent(os.Stdin, *seed)
	} else {
		pacman.SetEpsilon(0)
	}
	if err := play(player, ghosts, l, *episodeSteps, disp); err != nil {
		log.Fatalf("could not play game: %v", err)
	}
}

type trainConfig struct {
	steps        int
	episodeSteps int

	epsilonStart float64
	epsilonEnd   float64
	epsilonSteps int

	savePrefix string
	saveEvery  int
}

// train runs the deep Q-learning loop: play one move per iteration,
// store the transition, sample a minibatch, and take one gradient
// step. The agent's acting weights are refreshed after every update.
func train(trainer *deepq.Trainer, replay expreplay.ExperienceReplayer,
	pacman *agent.QAgent, ghosts []agent.Agent, l *layout.Layout,
	config trainConfig) error {
	// On a resumed run the bar covers only the steps left to train, so
	// it still reaches 100% when the loop ends
	remaining := config.steps - trainer.GlobalStep()
	if remaining <= 0 {
		return nil
	}
	bar := progressbar.New(50, remaining)
	defer bar.Close()

	state := l.Game()
	stepsThisEpisode := 0

	for step := trainer.GlobalStep(); step < config.steps; {
		if state.Terminal() || stepsThisEpisode >= config.episodeSteps {
			state = l.Game()
			stepsThisEpisode = 0
		}

		pacman.SetEpsilon(annealedEpsilon(step, config))

		obs := state.Observation()
		action := pacman.SelectAction(state)
		ghostMoves := make([]game.Direction, len(ghosts))
		for i, ghost := range ghosts {
			ghostMoves[i] = ghost.SelectAction(state)
		}

		reward, terminal := state.Step(action, ghostMoves)
		stepsThisEpisode++

		var terminalValue float64
		if terminal {
			terminalValue = 1
		}
		err := replay.Add(expreplay.Transition{
			State:     obs,
			Action:    action.OneHot(),
			Terminal:  terminalValue,
			NextState: state.Observation(),
			Reward:    reward,
		})
		if err != nil {
			return fmt.Errorf("train: could not store transition: %v", err)
		}

		batch, err := replay.Sample()
		if expreplay.IsInsufficientSamples(err) ||
			expreplay.IsEmptyBuffer(err) {
			continue
		} else if err != nil {
			return fmt.Errorf("train: could not sample: %v", err)
		}

		var loss float64
		step, loss, err = trainer.Update(batch)
		if err != nil {
			return fmt.Errorf("train: could not update: %v", err)
		}
		if err := pacman.Sync(); err != nil {
			return fmt.Errorf("train: could not sync agent weights: %v",
				err)
		}

		if config.savePrefix != "" && step%config.saveEvery == 0 {
			path := deepq.EncodeStep(config.savePrefix, step, "weights.bin")
			if err := trainer.Save(path); err != nil {
				fmt.Fprintf(os.Stderr, "Could not save checkpoint %v: %v\n",
					path, err)
			}
		}

		bar.Increment(loss)
		bar.Display()
	}

	if config.savePrefix != "" {
		path := deepq.EncodeStep(config.savePrefix, trainer.GlobalStep(),
			"weights.bin")
		if err := trainer.Save(path); err != nil {
			return fmt.Errorf("train: could not save final checkpoint: %v",
				err)
		}
	}

	return nil
}

// annealedEpsilon linearly anneals the exploration rate from its start
// to its end value over the first epsilonSteps training steps
func annealedEpsilon(step int, config trainConfig) float64 {
	if step >= config.epsilonSteps {
		return config.epsilonEnd
	}
	progress := float64(step) / float64(config.epsilonSteps)
	return config.epsilonStart +
		progress*(config.epsilonEnd-config.epsilonStart)
}

// play runs a single rendered game with the given Pacman agent
func play(pacman agent.Agent, ghosts []agent.Agent, l *layout.Layout,
	maxSteps int, disp display.Display) error {
	state := l.Game()
	if err := disp.Update(state); err != nil {
		return fmt.Errorf("play: %v", err)
	}

	for step := 0; !state.Terminal() && step < maxSteps; step++ {
		action := pacman.SelectAction(state)
		ghostMoves := make([]game.Direction, len(ghosts))
		for i, ghost := range ghosts {
			ghostMoves[i] = ghost.SelectAction(state)
		}
		state.Step(action, ghostMoves)

		if err := disp.Update(state); err != nil {
			return fmt.Errorf("play: %v", err)
		}
	}

	return disp.Finish(state)
}

func chooseLayout(name string, width, height, ghosts int,
	seed uint64) (*layout.Layout, error) {
	switch name {
	case "small":
		return layout.SmallGrid(), nil
	case "random":
		return layout.Random(width, height, ghosts, seed)
	default:
		return layout.FromFile(name)
	}
}

func chooseDisplay(mode, frameDir string) (display.Display, error) {
	switch mode {
	case "text":
		return display.NewText(os.Stdout), nil
	case "frames":
		return display.NewGraphics(frameDir)
	default:
		return nil, fmt.Errorf("choosedisplay: unknown display mode %q",
			mode)
	}
}
