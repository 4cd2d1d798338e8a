package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrNonInteractive = errors.New("confirmation needed but input is not a terminal, use --force")

type InteractivePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewInteractivePrompter(in io.Reader, out io.Writer) *InteractivePrompter {
	return &InteractivePrompter{in: bufio.NewReader(in), out: out}
}

// Confirm answers false on anything but y or yes, EOF included.
func (p *InteractivePrompter) Confirm(ctx context.Context, question string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	fmt.Fprintf(p.out, "%s [y/N]: ", question)

	type answer struct {
		line string
		err  error
	}
	answers := make(chan answer, 1)
	go func() {
		line, err := p.in.ReadString('\n')
		answers <- answer{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case a := <-answers:
		if a.err != nil && !errors.Is(a.err, io.EOF) {
			return false, a.err
		}
		switch strings.ToLower(strings.TrimSpace(a.line)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}

type NonInteractivePrompter struct{}

func (NonInteractivePrompter) Confirm(context.Context, string) (bool, error) {
	return false, ErrNonInteractive
}
