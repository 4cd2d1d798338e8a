// Package render prints change descriptions for a terminal.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/fuad-daoud/disma/commands"
	"github.com/fuad-daoud/disma/diff"
)

type Renderer struct {
	out     io.Writer
	add     *color.Color
	remove  *color.Color
	change  *color.Color
	field   *color.Color
	heading *color.Color
}

// New renders to out, with colours only when out is a terminal.
func New(out io.Writer) *Renderer {
	colored := false
	if f, ok := out.(*os.File); ok {
		colored = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return newRenderer(out, colored)
}

func newRenderer(out io.Writer, colored bool) *Renderer {
	r := &Renderer{
		out:     out,
		add:     color.New(color.FgGreen),
		remove:  color.New(color.FgRed),
		change:  color.New(color.FgYellow),
		field:   color.New(color.FgCyan),
		heading: color.New(color.Bold),
	}
	for _, c := range []*color.Color{r.add, r.remove, r.change, r.field, r.heading} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

func (r *Renderer) ShowChanges(changes []commands.Description) {
	if len(changes) == 0 {
		fmt.Fprintln(r.out, "No changes.")
		return
	}
	r.heading.Fprintf(r.out, "%d changes:\n", len(changes))
	for _, change := range changes {
		fmt.Fprintln(r.out, r.Description(change))
	}
}

func (r *Renderer) ShowApplied(change commands.Description) {
	fmt.Fprintf(r.out, "%s %s\n", r.add.Sprint("✔"), change)
}

func (r *Renderer) Description(d commands.Description) string {
	var b strings.Builder
	switch d.Action {
	case commands.Create:
		b.WriteString(r.add.Sprintf("+ create %s %s", d.Entity, d.Name))
	case commands.Delete:
		b.WriteString(r.remove.Sprintf("- delete %s %s", d.Entity, d.Name))
	default:
		b.WriteString(r.change.Sprintf("* update %s %s", d.Entity, d.Name))
	}
	for _, child := range d.Diffs {
		b.WriteString("\n")
		r.writeDiff(&b, child, 1)
	}
	return b.String()
}

func (r *Renderer) writeDiff(b *strings.Builder, d diff.Diff, depth int) {
	b.WriteString(strings.Repeat("    ", depth))
	switch d.Kind {
	case diff.KindAdd:
		b.WriteString(r.add.Sprint("+ " + d.After))
	case diff.KindRemove:
		b.WriteString(r.remove.Sprint("- " + d.Before))
	case diff.KindChange:
		b.WriteString(r.change.Sprint("~ " + orNone(d.Before) + " => " + orNone(d.After)))
	case diff.KindUpdate:
		b.WriteString(r.field.Sprint(d.Field) + ":")
		for _, child := range d.Children {
			b.WriteString("\n")
			r.writeDiff(b, child, depth+1)
		}
	}
}

func orNone(value string) string {
	if value == "" {
		return "<none>"
	}
	return fmt.Sprintf("%q", value)
}
