// Package console prints search progress as ANSI status lines. Pass lines end
// in a carriage return and are overwritten by the next one; iteration lines
// end in a newline and stay on screen.
package console

import (
	"fmt"
	"io"
	"sync"

	"gocrack/internal/crack"
)

const (
	clearLine = "\033[2K"
	heatTag   = "\033[1;31mHEAT\033[0m"
	coolTag   = "\033[1;36mCOOL\033[0m"
)

// Reporter implements crack.Observer. It is safe for concurrent use.
type Reporter struct {
	mu sync.Mutex
	w  io.Writer
}

func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

func (r *Reporter) IterationStarted(iteration, iterations int, temperature float64) {
	r.printf(clearLine+"Iterating (%d/%d) T = %.6g K\n", iteration+1, iterations, temperature)
}

func (r *Reporter) PassCompleted(p crack.PassResult) {
	tag := coolTag
	if p.Heated() {
		tag = heatTag
	}
	r.printf(clearLine+"Adjusting bit %d: %.6g -> %.6g (%.6g%%) (%s)\r",
		p.Bit, p.Before, p.After, p.Change(), tag)
}

func (r *Reporter) IterationCompleted(crack.IterationResult) error { return nil }

// Dispersion prints one of the baseline energies shown before refining
func (r *Reporter) Dispersion(label string, energy float64) {
	r.printf("Dispersion (%s): %.6g\n", label, energy)
}

// Printf writes a free-form line
func (r *Reporter) Printf(format string, args ...any) {
	r.printf(format, args...)
}

func (r *Reporter) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, format, args...)
}
