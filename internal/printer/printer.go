// Package printer is the thin CLI-output collaborator the mutation engine
// never depends on directly: it turns a mutate.Result into bold-header,
// human-readable lines, the way pkg/cli/printer.go turns a tool call into
// one. The engine itself stays silent; this is purely cmd/root's concern.
package printer

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/poe-code/poe-code/mutate"
)

var bold = color.New(color.Bold).SprintfFunc()

type Printer struct {
	out io.Writer
}

func New(out io.Writer) *Printer {
	return &Printer{out: out}
}

func (p *Printer) Printf(format string, a ...any) {
	fmt.Fprintf(p.out, format, a...)
}

func (p *Printer) Println(a ...any) {
	fmt.Fprintln(p.out, a...)
}

// PrintHeader prints a bold section header, e.g. "Configuring claude".
func (p *Printer) PrintHeader(verb, agent string) {
	p.Printf("\n%s\n", bold("%s %s", verb, agent))
}

// PrintOutcomes renders one line per mutation outcome. Outcomes with
// Changed == false are rendered dimmed as "· no change".
func (p *Printer) PrintOutcomes(outcomes []mutate.Outcome) {
	for _, o := range outcomes {
		if !o.Changed {
			p.Printf("  %s %s\n", dim("·"), dim("no change"))
			continue
		}
		p.Printf("  %s %s (%s)\n", bold("✓"), o.Effect, o.Detail)
	}
}

// PrintError prints a scoped error message (§7 "plain, scoped messages").
func (p *Printer) PrintError(err error) {
	p.Printf("%s %s\n", bold("✗"), err)
}

var dim = color.New(color.Faint).SprintfFunc()
