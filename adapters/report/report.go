// Package report renders the summary of a finished run as Markdown or HTML.
package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gocrack/domain/run"
	"gocrack/internal/errors"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Baseline is an energy measured before refining
type Baseline struct {
	Label  string
	Energy float64
}

// Accuracy compares a recovered mask with a known key
type Accuracy struct {
	LowBits      float64 // share of columns whose bits below MaxBit match
	FullColumns  float64 // share of columns matching in all 32 bits
	MeanErrors   float64 // wrong bits per column
	MedianErrors float64
	P90Errors    float64
}

// Summary is everything a report shows
type Summary struct {
	Record    *run.Record
	Baselines []Baseline
	Restarts  []float64 // final energy of each search
	Best      int
	Trace     []float64 // energy per iteration of the best search
	TraceMean float64
	TraceStd  float64
	Accuracy  *Accuracy
}

// Markdown renders s as a Markdown document
func Markdown(s Summary) []byte {
	var b bytes.Buffer
	rec := s.Record

	fmt.Fprintf(&b, "# Keystream recovery run %s\n\n", rec.ID)
	fmt.Fprintf(&b, "Source: `%s`, %d days x %d measures, seed %d.\n\n", rec.Source, rec.Days, rec.Measures, rec.Seed)

	b.WriteString("## Settings\n\n")
	b.WriteString("| Parameter | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Iterations | %d |\n", rec.Iterations)
	fmt.Fprintf(&b, "| Max bit | %d |\n", rec.MaxBit)
	fmt.Fprintf(&b, "| Bit cycles | %d |\n", rec.BitCycles)
	fmt.Fprintf(&b, "| T0 | %g |\n", rec.T0)
	fmt.Fprintf(&b, "| K | %g |\n", rec.K)
	fmt.Fprintf(&b, "| Width | %d |\n", rec.Width)
	fmt.Fprintf(&b, "| Restarts | %d |\n", rec.Restarts)
	fmt.Fprintf(&b, "| Rebase | %t |\n", rec.Rebase)
	fmt.Fprintf(&b, "| Fixed baseline | %t |\n\n", rec.FixedBaseline)

	b.WriteString("## Dispersion\n\n")
	b.WriteString("| Stage | Energy |\n|---|---|\n")
	for _, bl := range s.Baselines {
		fmt.Fprintf(&b, "| %s | %.6g |\n", bl.Label, bl.Energy)
	}
	fmt.Fprintf(&b, "| refined | %.6g |\n\n", rec.FinalEnergy)

	if len(s.Restarts) > 1 {
		b.WriteString("## Restarts\n\n")
		b.WriteString("| Search | Final energy |\n|---|---|\n")
		for i, e := range s.Restarts {
			mark := ""
			if i == s.Best {
				mark = " (best)"
			}
			fmt.Fprintf(&b, "| %d%s | %.6g |\n", i, mark, e)
		}
		b.WriteString("\n")
	}

	if len(s.Trace) > 0 {
		b.WriteString("## Energy trace\n\n")
		fmt.Fprintf(&b, "Mean %.6g, standard deviation %.6g over %d iterations.\n\n", s.TraceMean, s.TraceStd, len(s.Trace))
		parts := make([]string, len(s.Trace))
		for i, e := range s.Trace {
			parts[i] = fmt.Sprintf("%.6g", e)
		}
		fmt.Fprintf(&b, "```\n%s\n```\n\n", strings.Join(parts, " "))
	}

	if a := s.Accuracy; a != nil {
		b.WriteString("## Key accuracy\n\n")
		fmt.Fprintf(&b, "* Columns matching below the max bit: %.1f%%\n", 100*a.LowBits)
		fmt.Fprintf(&b, "* Columns matching in all bits: %.1f%%\n", 100*a.FullColumns)
		fmt.Fprintf(&b, "* Wrong bits per column: mean %.3g, median %.3g, p90 %.3g\n\n", a.MeanErrors, a.MedianErrors, a.P90Errors)
	}

	fmt.Fprintf(&b, "Fingerprint `%s`\n", rec.Fingerprint)
	return b.Bytes()
}

// HTML renders s as a standalone HTML page
func HTML(s Summary) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	r := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: fmt.Sprintf("Run %s", s.Record.ID),
	})
	return markdown.ToHTML(Markdown(s), p, r)
}

// Write saves the report; a .html extension selects HTML, anything else Markdown
func Write(path string, s Summary) error {
	body := Markdown(s)
	if strings.EqualFold(filepath.Ext(path), ".html") {
		body = HTML(s)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return errors.IOError(path, err)
	}
	return nil
}
