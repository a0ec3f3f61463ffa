// Package progressbar implements functionality of printing a progress
// bar to the terminal window
package progressbar

import (
	"fmt"
	"strings"
	"time"
)

// ProgressBar prints training progress to the terminal, redrawing in
// place. Alongside the completion percentage and elapsed time it shows
// the most recent training loss.
type ProgressBar struct {
	width           float64
	maxProgress     float64
	currentProgress float64
	loss            float64
	bar             strings.Builder
	startTime       time.Time
}

// New returns a new ProgressBar that is width characters wide and
// reaches 100% after max Increment() calls.
func New(width, max int) *ProgressBar {
	return &ProgressBar{
		width:       float64(width),
		maxProgress: float64(max),
		startTime:   time.Now(),
	}
}

// Increment advances the progress counter by one completed iteration
// and records the iteration's loss.
func (p *ProgressBar) Increment(loss float64) {
	if p.currentProgress < p.maxProgress {
		p.currentProgress++
	}
	p.loss = loss
}

// Display redraws the progress bar on the current terminal line
func (p *ProgressBar) Display() {
	fmt.Printf("\n\033[1A\033[K%v", p.render())
}

// render builds the bar's current line
func (p *ProgressBar) render() string {
	p.bar.Reset()
	p.bar.Write([]byte("|"))

	currentProg := p.currentProgress / p.maxProgress * p.width
	for i := 0.0; i < currentProg; i++ {
		p.bar.Write([]byte("█"))
	}
	for i := currentProg; i < p.width; i++ {
		p.bar.Write([]byte(" "))
	}
	p.bar.Write([]byte(fmt.Sprintf("| [%.2f%v | loss: %.4f | elapsed: %v]",
		p.currentProgress/p.maxProgress*100, "%", p.loss,
		time.Since(p.startTime).Truncate(time.Second))))

	return p.bar.String()
}

// Close ends in-place redrawing, leaving the final bar on its own line
func (p *ProgressBar) Close() {
	fmt.Println()
}
