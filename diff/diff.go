// Package diff describes the difference between a live value and its desired
// counterpart as a tree of nodes. An empty slice means the two values are the
// same as far as the compared fields go.
package diff

import "strings"

type Kind int

const (
	KindAdd Kind = iota
	KindRemove
	KindChange
	KindUpdate
)

func (k Kind) String() string {
	switch k {
	case KindAdd:
		return "add"
	case KindRemove:
		return "remove"
	case KindChange:
		return "change"
	case KindUpdate:
		return "update"
	default:
		return "unknown"
	}
}

// Diff is either a leaf (Add, Remove, Change) or an Update node naming a field
// and carrying the diffs of that field.
type Diff struct {
	Kind     Kind
	Field    string
	Before   string
	After    string
	Children []Diff
}

func Added(value string) Diff {
	return Diff{Kind: KindAdd, After: value}
}

func Removed(value string) Diff {
	return Diff{Kind: KindRemove, Before: value}
}

func Changed(before, after string) Diff {
	return Diff{Kind: KindChange, Before: before, After: after}
}

func Updated(field string, children []Diff) Diff {
	return Diff{Kind: KindUpdate, Field: field, Children: children}
}

func (d Diff) IsLeaf() bool {
	return d.Kind != KindUpdate
}

func (d Diff) String() string {
	var b strings.Builder
	d.write(&b, 0)
	return b.String()
}

func (d Diff) write(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	switch d.Kind {
	case KindAdd:
		b.WriteString("+ " + d.After)
	case KindRemove:
		b.WriteString("- " + d.Before)
	case KindChange:
		b.WriteString("~ " + quote(d.Before) + " => " + quote(d.After))
	case KindUpdate:
		b.WriteString("* " + d.Field)
		for _, child := range d.Children {
			b.WriteString("\n")
			child.write(b, depth+1)
		}
	}
}

func quote(value string) string {
	if value == "" {
		return "<none>"
	}
	return `"` + value + `"`
}

// Strings yields a single Change leaf when before and after differ.
func Strings(before, after string) []Diff {
	if before == after {
		return nil
	}
	return []Diff{Changed(before, after)}
}

func Bools(before, after bool) []Diff {
	if before == after {
		return nil
	}
	return []Diff{Changed(formatBool(before), formatBool(after))}
}

func formatBool(value bool) string {
	if value {
		return "true"
	}
	return "false"
}

// Builder collects field diffs, keeping only the fields whose own diff is not
// empty.
type Builder struct {
	diffs []Diff
}

func (b *Builder) Field(name string, diffs []Diff) *Builder {
	if len(diffs) > 0 {
		b.diffs = append(b.diffs, Updated(name, diffs))
	}
	return b
}

// Leaves appends diffs as they are, without a wrapping field.
func (b *Builder) Leaves(diffs ...Diff) *Builder {
	b.diffs = append(b.diffs, diffs...)
	return b
}

func (b *Builder) Build() []Diff {
	return b.diffs
}
