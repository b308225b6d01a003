package handlers

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// StdinConfirmer prompts on out and reads a yes/no answer from in
type StdinConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

// NewStdinConfirmer creates a confirmer reading answers from in
func NewStdinConfirmer(in io.Reader, out io.Writer) *StdinConfirmer {
	return &StdinConfirmer{in: bufio.NewReader(in), out: out}
}

// Confirm returns true for "yes" or "y", case-insensitively. Any other answer,
// including an empty one or end of input, declines.
func (c *StdinConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	if _, err := fmt.Fprint(c.out, prompt); err != nil {
		return false, fmt.Errorf("failed to write prompt: %w", err)
	}

	type answer struct {
		line string
		err  error
	}
	ch := make(chan answer, 1)
	go func() {
		line, err := c.in.ReadString('\n')
		ch <- answer{line, err}
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case a := <-ch:
		if a.err != nil && !errors.Is(a.err, io.EOF) {
			return false, fmt.Errorf("failed to read answer: %w", a.err)
		}
		switch strings.ToLower(strings.TrimSpace(a.line)) {
		case "yes", "y":
			return true, nil
		default:
			return false, nil
		}
	}
}
